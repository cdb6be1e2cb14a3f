package batch

import (
	"fmt"

	"github.com/ValentinKolb/dSS/wire"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("wire/batch")

// Decoder is the receiver-side front door for the append sub-protocol. It
// holds one Reassembler per connection identifier, so frames of distinct
// connections may be decoded from different goroutines while frames of one
// connection must be fed in transport order.
type Decoder struct {
	reassemblers *xsync.MapOf[uuid.UUID, *Reassembler]
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		reassemblers: xsync.NewMapOf[uuid.UUID, *Reassembler](),
	}
}

// OnCommand feeds one decoded command through the append state machine.
// SetupAppend registers the connection, AppendBlock accumulates, and
// AppendBlockEnd closes the run and yields the completed appends. Commands
// outside the append path pass through with no effect.
func (d *Decoder) OnCommand(cmd wire.WireCommand) ([]*wire.Append, error) {
	switch c := cmd.(type) {
	case *wire.SetupAppend:
		d.reassemblers.Store(c.ConnectionID, NewReassembler(c.ConnectionID, c.Segment))
		Logger.Debugf("append stream registered for connection %s on segment %q", c.ConnectionID, c.Segment)
		return nil, nil
	case *wire.AppendBlock:
		r, ok := d.reassemblers.Load(c.ConnectionID)
		if !ok {
			return nil, fmt.Errorf("append block for connection %s without setup", c.ConnectionID)
		}
		return nil, r.OnBlock(c)
	case *wire.AppendBlockEnd:
		r, ok := d.reassemblers.Load(c.ConnectionID)
		if !ok {
			return nil, fmt.Errorf("append block end for connection %s without setup", c.ConnectionID)
		}
		appends, err := r.OnBlockEnd(c)
		if err != nil {
			return nil, err
		}
		Logger.Debugf("block run closed for connection %s: %d events up to %d",
			c.ConnectionID, len(appends), c.LastEventNumber)
		return appends, nil
	default:
		return nil, nil
	}
}

// Release drops the reassembler of a connection, typically when the
// transport-level connection goes away.
func (d *Decoder) Release(connectionID uuid.UUID) {
	d.reassemblers.Delete(connectionID)
}
