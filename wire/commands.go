package wire

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// typeOf resolves a catalog code to its descriptor. Every command's code is
// registered at init, so a miss is a programming error.
func typeOf(code int32) *CommandType {
	ct, ok := defaultRegistry.Lookup(code)
	if !ok {
		panic(fmt.Sprintf("wire: command code %d not in catalog", code))
	}
	return ct
}

// --------------------------------------------------------------------------
// Append (in-memory only)
// --------------------------------------------------------------------------

// Append is the in-memory representation of one application write. It never
// travels over the wire directly: upstream logic converts it into the
// Event / AppendBlock framing (see wire/batch) to save space. Appends are
// totally ordered by EventNumber per connection; this ordering is the
// authoritative append sequence used to detect gaps and duplicates
// downstream.
type Append struct {
	Segment      string
	ConnectionID uuid.UUID
	EventNumber  int64
	Data         []byte
}

func (c *Append) Type() *CommandType { return typeOf(CodeAppend) }
func (c *Append) request()           {}

func (c *Append) WriteFields(w *Writer) error {
	return fmt.Errorf("%w: Append must be converted to Event framing", ErrUnsupportedEncode)
}

func readAppend(r *Reader, length int) (WireCommand, error) {
	return nil, fmt.Errorf("%w: Append never appears on the wire", ErrUnsupportedEncode)
}

// Less orders appends by ascending event number.
func (c *Append) Less(other *Append) bool {
	return c.EventNumber < other.EventNumber
}

// SortAppends sorts appends into the authoritative per-connection order.
func SortAppends(appends []*Append) {
	sort.Slice(appends, func(i, j int) bool {
		return appends[i].Less(appends[j])
	})
}

// --------------------------------------------------------------------------
// Event Framing (nested inside append blocks)
// --------------------------------------------------------------------------

// Event carries the bytes of one complete application event, or the final
// fragment of an event that was split across block boundaries.
type Event struct {
	Data []byte
}

func (c *Event) Type() *CommandType { return typeOf(CodeEvent) }

func (c *Event) WriteFields(w *Writer) error {
	w.WriteBytes(c.Data)
	return nil
}

func readEvent(r *Reader, length int) (WireCommand, error) {
	data, err := r.ReadBytes(length)
	if err != nil {
		return nil, err
	}
	return &Event{Data: data}, nil
}

// PartialEvent carries a fragment of an event split across two or more
// blocks. The receiver concatenates consecutive PartialEvent payloads until
// an Event completes the pending data.
type PartialEvent struct {
	Data []byte
}

func (c *PartialEvent) Type() *CommandType { return typeOf(CodePartialEvent) }

func (c *PartialEvent) WriteFields(w *Writer) error {
	w.WriteBytes(c.Data)
	return nil
}

func readPartialEvent(r *Reader, length int) (WireCommand, error) {
	data, err := r.ReadBytes(length)
	if err != nil {
		return nil, err
	}
	return &PartialEvent{Data: data}, nil
}

// Padding fills block space too small to hold another nested frame. Its
// payload is Length zero bytes and carries no information.
type Padding struct {
	Length int
}

func (c *Padding) Type() *CommandType { return typeOf(CodePadding) }

func (c *Padding) WriteFields(w *Writer) error {
	if c.Length < 0 {
		return fmt.Errorf("%w: negative padding length %d", ErrMalformedFrame, c.Length)
	}
	w.WriteZero(c.Length)
	return nil
}

func readPadding(r *Reader, length int) (WireCommand, error) {
	if err := r.Skip(length); err != nil {
		return nil, err
	}
	return &Padding{Length: length}, nil
}

// --------------------------------------------------------------------------
// Append Protocol
// --------------------------------------------------------------------------

// SetupAppend registers a logical append stream for a segment. The sender
// must not append until the matching AppendSetup arrives.
type SetupAppend struct {
	ConnectionID uuid.UUID
	Segment      string
}

func (c *SetupAppend) Type() *CommandType { return typeOf(CodeSetupAppend) }
func (c *SetupAppend) request()           {}

func (c *SetupAppend) WriteFields(w *Writer) error {
	w.WriteUUID(c.ConnectionID)
	return w.WriteUTF(c.Segment)
}

func readSetupAppend(r *Reader, length int) (WireCommand, error) {
	id, err := r.ReadUUID()
	if err != nil {
		return nil, err
	}
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &SetupAppend{ConnectionID: id, Segment: segment}, nil
}

// AppendSetup confirms a SetupAppend and reports the last durably-known
// event number, so a reconnecting sender can resume without re-sending
// already-applied data.
type AppendSetup struct {
	Segment         string
	ConnectionID    uuid.UUID
	LastEventNumber int64
}

func (c *AppendSetup) Type() *CommandType { return typeOf(CodeAppendSetup) }
func (c *AppendSetup) reply()             {}

func (c *AppendSetup) WriteFields(w *Writer) error {
	if err := w.WriteUTF(c.Segment); err != nil {
		return err
	}
	w.WriteUUID(c.ConnectionID)
	w.WriteInt64(c.LastEventNumber)
	return nil
}

func readAppendSetup(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	id, err := r.ReadUUID()
	if err != nil {
		return nil, err
	}
	last, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	return &AppendSetup{Segment: segment, ConnectionID: id, LastEventNumber: last}, nil
}

// AppendBlock carries one fixed-size chunk of event-framed bytes. The data
// size is implicit from the frame length.
type AppendBlock struct {
	ConnectionID uuid.UUID
	Data         []byte
}

func (c *AppendBlock) Type() *CommandType { return typeOf(CodeAppendBlock) }

func (c *AppendBlock) WriteFields(w *Writer) error {
	w.WriteUUID(c.ConnectionID)
	w.WriteBytes(c.Data)
	return nil
}

func readAppendBlock(r *Reader, length int) (WireCommand, error) {
	id, err := r.ReadUUID()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(length - 16)
	if err != nil {
		return nil, err
	}
	return &AppendBlock{ConnectionID: id, Data: data}, nil
}

// AppendBlockEnd closes a block run. SizeOfWholeEvents counts the bytes of
// the run that belong to events not split across blocks; Data carries any
// residual event-framed bytes that never filled a whole block. The trailing
// data is length-prefixed even when empty.
type AppendBlockEnd struct {
	ConnectionID      uuid.UUID
	LastEventNumber   int64
	SizeOfWholeEvents int32
	Data              []byte
}

func (c *AppendBlockEnd) Type() *CommandType { return typeOf(CodeAppendBlockEnd) }

func (c *AppendBlockEnd) WriteFields(w *Writer) error {
	w.WriteUUID(c.ConnectionID)
	w.WriteInt64(c.LastEventNumber)
	w.WriteInt32(c.SizeOfWholeEvents)
	w.WriteInt32(int32(len(c.Data)))
	w.WriteBytes(c.Data)
	return nil
}

func readAppendBlockEnd(r *Reader, length int) (WireCommand, error) {
	id, err := r.ReadUUID()
	if err != nil {
		return nil, err
	}
	last, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	whole, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	dataLength, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if int(dataLength) > r.Remaining() {
		return nil, fmt.Errorf("%w: trailing data length %d exceeds frame remainder %d",
			ErrMalformedFrame, dataLength, r.Remaining())
	}
	data, err := r.ReadBytes(int(dataLength))
	if err != nil {
		return nil, err
	}
	return &AppendBlockEnd{
		ConnectionID:      id,
		LastEventNumber:   last,
		SizeOfWholeEvents: whole,
		Data:              data,
	}, nil
}

// DataAppended acknowledges that everything up to EventNumber is durably
// applied for the connection.
type DataAppended struct {
	ConnectionID uuid.UUID
	EventNumber  int64
}

func (c *DataAppended) Type() *CommandType { return typeOf(CodeDataAppended) }
func (c *DataAppended) reply()             {}

func (c *DataAppended) WriteFields(w *Writer) error {
	w.WriteUUID(c.ConnectionID)
	w.WriteInt64(c.EventNumber)
	return nil
}

func readDataAppended(r *Reader, length int) (WireCommand, error) {
	id, err := r.ReadUUID()
	if err != nil {
		return nil, err
	}
	num, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	return &DataAppended{ConnectionID: id, EventNumber: num}, nil
}

// --------------------------------------------------------------------------
// KeepAlive
// --------------------------------------------------------------------------

// KeepAlive is a liveness probe. It is meaningful in either direction, so
// it is the one command that is both a Request and a Reply.
type KeepAlive struct{}

func (c *KeepAlive) Type() *CommandType { return typeOf(CodeKeepAlive) }
func (c *KeepAlive) request()           {}
func (c *KeepAlive) reply()             {}

func (c *KeepAlive) WriteFields(w *Writer) error { return nil }

func readKeepAlive(r *Reader, length int) (WireCommand, error) {
	return &KeepAlive{}, nil
}
