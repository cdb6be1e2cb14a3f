// Package wire defines the complete catalog of binary commands exchanged
// between clients and servers of the streaming-storage system. Each command
// is self-contained, providing both its serialization and deserialization
// logic. Commands are not nested and contain only primitive types. All
// multi-byte integers are written big-endian.
//
// The on-wire frame layout is [type: int32][length: int32][payload], where
// length counts only the payload. Type and length are handled by the frame
// envelope (EncodeCommand / DecodeCommand), so individual commands only
// write and read their fields.
//
// Compatible changes (adding new members a reader unaware of them can
// ignore) may be made to a command at any time. Incompatible changes must
// instead introduce a new command with a new type code; codes are never
// reused.
//
// The package is organized as follows:
//
//   - types.go: the command code catalog and the immutable code-to-type
//     registry used for decode dispatch.
//
//   - buffer.go: the bounds-checked payload reader and the growable writer
//     every command encodes through.
//
//   - commands.go / commands_segment.go: the command variants with their
//     field layouts.
//
//   - frame.go: the frame envelope (header sizing, maximum frame size
//     enforcement, registry dispatch).
//
//   - interface.go / dispatch.go: the Request/Reply roles, the
//     RequestProcessor and ReplyProcessor contracts, and the central
//     dispatch of decoded commands onto them.
//
// The block-oriented append sub-protocol layered on top of these commands
// lives in the wire/batch subpackage.
package wire
