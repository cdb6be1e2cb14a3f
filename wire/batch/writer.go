package batch

import (
	"fmt"

	"github.com/ValentinKolb/dSS/wire"
	"github.com/google/uuid"
)

// BlockWriter packs event payloads into fixed-size append blocks for one
// connection. It is not safe for concurrent use; the append stream of a
// connection is strictly sequential.
//
// Invariant maintained across every write: the open block is either exactly
// full (and gets sealed) or has at least TypePlusLengthSize bytes of room
// left, so a Padding frame can always close it.
type BlockWriter struct {
	connectionID    uuid.UUID
	buf             []byte
	full            []*wire.AppendBlock
	wholeEventBytes int
}

// NewBlockWriter creates a writer for one connection's append stream.
func NewBlockWriter(connectionID uuid.UUID) *BlockWriter {
	return &BlockWriter{
		connectionID: connectionID,
		buf:          make([]byte, 0, wire.AppendBlockSize),
	}
}

// ConnectionID returns the connection this writer belongs to.
func (w *BlockWriter) ConnectionID() uuid.UUID {
	return w.connectionID
}

// Append frames one event payload into the current block, splitting it into
// PartialEvent fragments wherever it straddles a block boundary. The final
// fragment is always an Event frame, which is what tells the receiver the
// event is complete.
func (w *BlockWriter) Append(data []byte) error {
	rest := data
	split := false
	for {
		remaining := wire.AppendBlockSize - len(w.buf)
		frameSize := wire.TypePlusLengthSize + len(rest)

		if frameSize <= remaining {
			leftover := remaining - frameSize
			if leftover == 0 || leftover >= wire.TypePlusLengthSize {
				if err := w.writeNested(&wire.Event{Data: rest}); err != nil {
					return err
				}
				if !split {
					w.wholeEventBytes += frameSize
				}
				if len(w.buf) == wire.AppendBlockSize {
					w.sealBlock()
				}
				return nil
			}
			// The completing frame would leave a sliver too small for any
			// further frame. Close this block with padding instead.
			if len(w.buf) > 0 {
				if err := w.writeNested(&wire.Padding{Length: remaining - wire.TypePlusLengthSize}); err != nil {
					return err
				}
				w.sealBlock()
				continue
			}
			// The block is empty, so padding would only recreate the same
			// sliver in the next block. Peel the tail of the event off into
			// the next block instead.
			chunk := rest[:len(rest)-wire.TypePlusLengthSize]
			if err := w.writeNested(&wire.PartialEvent{Data: chunk}); err != nil {
				return err
			}
			rest = rest[len(chunk):]
			split = true
			continue
		}

		// The event straddles the boundary: emit the portion that exactly
		// fills the block as a PartialEvent and continue in the next block.
		chunk := rest[:remaining-wire.TypePlusLengthSize]
		if err := w.writeNested(&wire.PartialEvent{Data: chunk}); err != nil {
			return err
		}
		w.sealBlock()
		rest = rest[len(chunk):]
		split = true
	}
}

// TakeBlocks drains the completed full-size blocks accumulated so far, in
// order. The caller transmits them before the run's AppendBlockEnd.
func (w *BlockWriter) TakeBlocks() []*wire.AppendBlock {
	blocks := w.full
	w.full = nil
	return blocks
}

// Close ends the current block run. It returns any not-yet-taken full
// blocks followed by the AppendBlockEnd trailer, which carries the residual
// bytes that never filled a whole block and the whole-event byte count.
// The writer is reset afterwards: a new run may begin on the same
// connection without a new setup.
func (w *BlockWriter) Close(lastEventNumber int64) ([]*wire.AppendBlock, *wire.AppendBlockEnd, error) {
	if len(w.buf) > 0 && len(w.buf) < wire.TypePlusLengthSize {
		return nil, nil, fmt.Errorf("%w: residual block content of %d bytes", wire.ErrMalformedFrame, len(w.buf))
	}
	blocks := w.TakeBlocks()
	end := &wire.AppendBlockEnd{
		ConnectionID:      w.connectionID,
		LastEventNumber:   lastEventNumber,
		SizeOfWholeEvents: int32(w.wholeEventBytes),
		Data:              w.buf,
	}
	w.buf = make([]byte, 0, wire.AppendBlockSize)
	w.wholeEventBytes = 0
	return blocks, end, nil
}

// writeNested appends one nested frame to the open block.
func (w *BlockWriter) writeNested(cmd wire.WireCommand) error {
	frame, err := wire.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, frame...)
	return nil
}

// sealBlock turns the open block content into an AppendBlock command and
// starts a fresh block.
func (w *BlockWriter) sealBlock() {
	block := &wire.AppendBlock{ConnectionID: w.connectionID, Data: w.buf}
	w.buf = make([]byte, 0, wire.AppendBlockSize)
	w.full = append(w.full, block)
}
