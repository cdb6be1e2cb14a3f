// Package batch implements the block-oriented append sub-protocol layered
// on top of the generic wire framing. Many small application writes are
// packed into fixed-size AppendBlock chunks of wire.AppendBlockSize bytes;
// inside a block each write is framed as a nested Event command, and a
// write that straddles a block boundary is split into PartialEvent
// fragments that the receiver concatenates back together. A run of blocks
// is closed by exactly one AppendBlockEnd carrying the reconciliation
// trailer (last event number, whole-event byte count, residual un-blocked
// bytes).
//
// BlockWriter is the sender side: it accepts event payloads, performs the
// splitting, and hands back completed blocks plus the closing trailer.
// Reassembler is the receiver side for one connection; Decoder keys
// reassemblers by connection identifier so that independent connections
// decode in parallel while frames of one connection stay strictly
// sequential.
package batch
