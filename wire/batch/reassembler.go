package batch

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dSS/wire"
	"github.com/google/uuid"
)

// Reassembler rebuilds complete events from the block stream of one
// connection. Frames must be fed in transport order; the partial-event
// state is strictly sequential across blocks. Not safe for concurrent use.
type Reassembler struct {
	connectionID uuid.UUID
	segment      string
	partial      []byte
	hasPartial   bool
	events       [][]byte
	runBytes     int
}

// NewReassembler creates the receiver-side state for one connection,
// typically when its SetupAppend arrives.
func NewReassembler(connectionID uuid.UUID, segment string) *Reassembler {
	return &Reassembler{connectionID: connectionID, segment: segment}
}

// OnBlock consumes one AppendBlock of the current run.
func (r *Reassembler) OnBlock(block *wire.AppendBlock) error {
	if block.ConnectionID != r.connectionID {
		return fmt.Errorf("%w: block for connection %s on stream of %s",
			wire.ErrMalformedFrame, block.ConnectionID, r.connectionID)
	}
	return r.consume(block.Data)
}

// OnBlockEnd closes the current run. It consumes the trailer's residual
// bytes, validates the reconciliation metadata, and returns the run's
// completed events as Appends numbered consecutively up to the trailer's
// LastEventNumber. The reassembler is then ready for the next run.
func (r *Reassembler) OnBlockEnd(end *wire.AppendBlockEnd) ([]*wire.Append, error) {
	if end.ConnectionID != r.connectionID {
		return nil, fmt.Errorf("%w: block end for connection %s on stream of %s",
			wire.ErrMalformedFrame, end.ConnectionID, r.connectionID)
	}
	if err := r.consume(end.Data); err != nil {
		return nil, err
	}
	if r.hasPartial {
		return nil, fmt.Errorf("%w: partial event left open at end of block run", wire.ErrMalformedFrame)
	}
	if int(end.SizeOfWholeEvents) > r.runBytes {
		return nil, fmt.Errorf("%w: trailer claims %d whole-event bytes, run delivered %d",
			wire.ErrMalformedFrame, end.SizeOfWholeEvents, r.runBytes)
	}

	n := int64(len(r.events))
	appends := make([]*wire.Append, 0, n)
	for i, data := range r.events {
		appends = append(appends, &wire.Append{
			Segment:      r.segment,
			ConnectionID: r.connectionID,
			EventNumber:  end.LastEventNumber - n + 1 + int64(i),
			Data:         data,
		})
	}

	// ready for the next run, no new setup required
	r.events = nil
	r.runBytes = 0
	return appends, nil
}

// consume parses the nested Event / PartialEvent / Padding frames inside
// one chunk of block data. Nested frames never straddle chunks, so a header
// pointing past the end of the chunk is a malformed frame.
func (r *Reassembler) consume(data []byte) error {
	r.runBytes += len(data)
	for off := 0; off < len(data); {
		if len(data)-off < wire.TypePlusLengthSize {
			return fmt.Errorf("%w: %d stray bytes after last nested frame",
				wire.ErrMalformedFrame, len(data)-off)
		}
		length := int32(binary.BigEndian.Uint32(data[off+wire.TypeSize : off+wire.TypePlusLengthSize]))
		if length < 0 || off+wire.TypePlusLengthSize+int(length) > len(data) {
			return fmt.Errorf("%w: nested frame of %d bytes exceeds block remainder",
				wire.ErrMalformedFrame, length)
		}
		next := off + wire.TypePlusLengthSize + int(length)
		cmd, err := wire.DecodeCommand(data[off:next])
		if err != nil {
			return err
		}
		switch c := cmd.(type) {
		case *wire.Event:
			payload := c.Data
			if r.hasPartial {
				payload = append(r.partial, payload...)
				r.partial = nil
				r.hasPartial = false
			}
			r.events = append(r.events, payload)
		case *wire.PartialEvent:
			r.partial = append(r.partial, c.Data...)
			r.hasPartial = true
		case *wire.Padding:
			// carries nothing
		default:
			return fmt.Errorf("%w: %s inside append block", wire.ErrMalformedFrame, cmd.Type().Name)
		}
		off = next
	}
	return nil
}
