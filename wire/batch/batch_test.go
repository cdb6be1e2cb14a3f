package batch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ValentinKolb/dSS/wire"
	"github.com/google/uuid"
)

var (
	testConnectionID  = uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")
	otherConnectionID = uuid.MustParse("ffffffff-0000-0000-0000-000000000001")
)

// patterned creates a payload with recognizable, position-dependent content
func patterned(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

// runThrough writes the given events through a BlockWriter and feeds the
// resulting blocks and trailer into a Reassembler, returning the rebuilt
// appends
func runThrough(t *testing.T, events [][]byte) []*wire.Append {
	t.Helper()

	w := NewBlockWriter(testConnectionID)
	for _, data := range events {
		if err := w.Append(data); err != nil {
			t.Fatalf("failed to append event of %d bytes: %v", len(data), err)
		}
	}
	blocks, end, err := w.Close(int64(len(events)))
	if err != nil {
		t.Fatalf("failed to close block run: %v", err)
	}

	r := NewReassembler(testConnectionID, "segment-1")
	for i, block := range blocks {
		if err := r.OnBlock(block); err != nil {
			t.Fatalf("failed to consume block %d: %v", i, err)
		}
	}
	appends, err := r.OnBlockEnd(end)
	if err != nil {
		t.Fatalf("failed to close run on receiver: %v", err)
	}
	return appends
}

// TestRoundTrip rebuilds event payloads byte for byte across a range of
// sizes, including events that straddle one or more block boundaries
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		events [][]byte
	}{
		{"single small event", [][]byte{patterned(40)}},
		{"empty event", [][]byte{{}}},
		{"several small events", [][]byte{patterned(10), patterned(20), patterned(30)}},
		{"event filling a block exactly", [][]byte{patterned(wire.AppendBlockSize - wire.TypePlusLengthSize)}},
		{"event split across two blocks", [][]byte{patterned(wire.AppendBlockSize + 100)}},
		{"event split across three blocks", [][]byte{patterned(2*wire.AppendBlockSize + 100)}},
		{"split event between whole events", [][]byte{patterned(100), patterned(2 * wire.AppendBlockSize), patterned(100)}},
		{"event leaving an unusable sliver", [][]byte{patterned(wire.AppendBlockSize - wire.TypePlusLengthSize - 15), patterned(5)}},
		{"sliver in an empty block", [][]byte{patterned(wire.AppendBlockSize - 2*wire.TypePlusLengthSize + 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appends := runThrough(t, tt.events)

			if len(appends) != len(tt.events) {
				t.Fatalf("rebuilt %d events, want %d", len(appends), len(tt.events))
			}
			for i, app := range appends {
				if app.EventNumber != int64(i+1) {
					t.Errorf("event %d numbered %d, want %d", i, app.EventNumber, i+1)
				}
				if app.Segment != "segment-1" {
					t.Errorf("event %d on segment %q", i, app.Segment)
				}
				if app.ConnectionID != testConnectionID {
					t.Errorf("event %d on connection %s", i, app.ConnectionID)
				}
				if !bytes.Equal(app.Data, tt.events[i]) {
					t.Errorf("event %d has %d bytes, want %d, content differs",
						i, len(app.Data), len(tt.events[i]))
				}
			}
		})
	}
}

// TestWholeEventAccounting verifies the trailer only counts events that were
// never split across a block boundary
func TestWholeEventAccounting(t *testing.T) {
	w := NewBlockWriter(testConnectionID)

	// three events that fit whole, framed as 8-byte header plus payload
	whole := 0
	for _, n := range []int{100, 200, 300} {
		if err := w.Append(patterned(n)); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		whole += wire.TypePlusLengthSize + n
	}

	// one event that must split and therefore does not count
	if err := w.Append(patterned(wire.AppendBlockSize + 50)); err != nil {
		t.Fatalf("failed to append split event: %v", err)
	}

	_, end, err := w.Close(4)
	if err != nil {
		t.Fatalf("failed to close block run: %v", err)
	}
	if end.SizeOfWholeEvents != int32(whole) {
		t.Errorf("SizeOfWholeEvents = %d, want %d", end.SizeOfWholeEvents, whole)
	}
}

// TestBlockSizing verifies every completed block is exactly AppendBlockSize
// and the residual frames travel in the trailer
func TestBlockSizing(t *testing.T) {
	w := NewBlockWriter(testConnectionID)
	if err := w.Append(patterned(2*wire.AppendBlockSize + 100)); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	blocks, end, err := w.Close(1)
	if err != nil {
		t.Fatalf("failed to close block run: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d full blocks, want 2", len(blocks))
	}
	for i, block := range blocks {
		if len(block.Data) != wire.AppendBlockSize {
			t.Errorf("block %d holds %d bytes, want %d", i, len(block.Data), wire.AppendBlockSize)
		}
		if block.ConnectionID != testConnectionID {
			t.Errorf("block %d on connection %s", i, block.ConnectionID)
		}
	}
	if len(end.Data) == 0 {
		t.Errorf("trailer carries no residual frame for the final fragment")
	}
}

// TestWriterReuse verifies a writer and reassembler survive across block
// runs on the same connection
func TestWriterReuse(t *testing.T) {
	w := NewBlockWriter(testConnectionID)
	r := NewReassembler(testConnectionID, "segment-1")

	feed := func(last int64, events ...[]byte) []*wire.Append {
		t.Helper()
		for _, data := range events {
			if err := w.Append(data); err != nil {
				t.Fatalf("failed to append: %v", err)
			}
		}
		blocks, end, err := w.Close(last)
		if err != nil {
			t.Fatalf("failed to close block run: %v", err)
		}
		for _, block := range blocks {
			if err := r.OnBlock(block); err != nil {
				t.Fatalf("failed to consume block: %v", err)
			}
		}
		appends, err := r.OnBlockEnd(end)
		if err != nil {
			t.Fatalf("failed to close run on receiver: %v", err)
		}
		return appends
	}

	first := feed(2, patterned(10), patterned(20))
	second := feed(5, patterned(wire.AppendBlockSize+30), patterned(40), patterned(50))

	if len(first) != 2 || len(second) != 3 {
		t.Fatalf("runs yielded %d and %d events, want 2 and 3", len(first), len(second))
	}
	for i, app := range second {
		if app.EventNumber != int64(3+i) {
			t.Errorf("second run event %d numbered %d, want %d", i, app.EventNumber, 3+i)
		}
	}
}

// TestReassemblerRejectsForeignFrames verifies connection identity is
// enforced on both blocks and trailers
func TestReassemblerRejectsForeignFrames(t *testing.T) {
	r := NewReassembler(testConnectionID, "segment-1")

	err := r.OnBlock(&wire.AppendBlock{ConnectionID: otherConnectionID, Data: []byte{}})
	if !errors.Is(err, wire.ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame for foreign block, got %v", err)
	}

	_, err = r.OnBlockEnd(&wire.AppendBlockEnd{ConnectionID: otherConnectionID})
	if !errors.Is(err, wire.ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame for foreign trailer, got %v", err)
	}
}

// TestReassemblerRejectsDanglingPartial verifies a run cannot close with an
// event still open
func TestReassemblerRejectsDanglingPartial(t *testing.T) {
	fragment, err := wire.EncodeCommand(&wire.PartialEvent{Data: patterned(16)})
	if err != nil {
		t.Fatalf("failed to encode fragment: %v", err)
	}

	r := NewReassembler(testConnectionID, "segment-1")
	_, err = r.OnBlockEnd(&wire.AppendBlockEnd{ConnectionID: testConnectionID, LastEventNumber: 1, Data: fragment})
	if !errors.Is(err, wire.ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame for dangling partial, got %v", err)
	}
}

// TestReassemblerRejectsStrayBytes verifies block content that is not a
// whole sequence of nested frames fails
func TestReassemblerRejectsStrayBytes(t *testing.T) {
	frame, err := wire.EncodeCommand(&wire.Event{Data: patterned(4)})
	if err != nil {
		t.Fatalf("failed to encode event: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"bytes after last frame", append(frame, 1, 2, 3)},
		{"nested length past block end", frame[:len(frame)-1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReassembler(testConnectionID, "segment-1")
			err := r.OnBlock(&wire.AppendBlock{ConnectionID: testConnectionID, Data: tt.data})
			if !errors.Is(err, wire.ErrMalformedFrame) {
				t.Errorf("expected ErrMalformedFrame, got %v", err)
			}
		})
	}
}

// TestReassemblerRejectsForeignNestedFrame verifies only the three framing
// kinds may appear inside a block
func TestReassemblerRejectsForeignNestedFrame(t *testing.T) {
	frame, err := wire.EncodeCommand(&wire.KeepAlive{})
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	r := NewReassembler(testConnectionID, "segment-1")
	err = r.OnBlock(&wire.AppendBlock{ConnectionID: testConnectionID, Data: frame})
	if !errors.Is(err, wire.ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame, got %v", err)
	}
}

// TestReassemblerRejectsOverstatedWholeBytes verifies the trailer cannot
// claim more whole-event bytes than the run delivered
func TestReassemblerRejectsOverstatedWholeBytes(t *testing.T) {
	frame, err := wire.EncodeCommand(&wire.Event{Data: patterned(4)})
	if err != nil {
		t.Fatalf("failed to encode event: %v", err)
	}

	r := NewReassembler(testConnectionID, "segment-1")
	_, err = r.OnBlockEnd(&wire.AppendBlockEnd{
		ConnectionID:      testConnectionID,
		LastEventNumber:   1,
		SizeOfWholeEvents: int32(len(frame) + 1),
		Data:              frame,
	})
	if !errors.Is(err, wire.ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame, got %v", err)
	}
}

// TestDecoderLifecycle drives the connection state machine through setup,
// block run, and release
func TestDecoderLifecycle(t *testing.T) {
	d := NewDecoder()

	// block frames before setup are a protocol violation
	if _, err := d.OnCommand(&wire.AppendBlock{ConnectionID: testConnectionID}); err == nil {
		t.Errorf("expected error for block without setup")
	}
	if _, err := d.OnCommand(&wire.AppendBlockEnd{ConnectionID: testConnectionID}); err == nil {
		t.Errorf("expected error for trailer without setup")
	}

	if _, err := d.OnCommand(&wire.SetupAppend{ConnectionID: testConnectionID, Segment: "segment-1"}); err != nil {
		t.Fatalf("failed to register connection: %v", err)
	}

	w := NewBlockWriter(testConnectionID)
	event := patterned(wire.AppendBlockSize + 200)
	if err := w.Append(event); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	blocks, end, err := w.Close(1)
	if err != nil {
		t.Fatalf("failed to close block run: %v", err)
	}

	for _, block := range blocks {
		appends, err := d.OnCommand(block)
		if err != nil {
			t.Fatalf("failed to consume block: %v", err)
		}
		if appends != nil {
			t.Errorf("block yielded %d events before the trailer", len(appends))
		}
	}

	appends, err := d.OnCommand(end)
	if err != nil {
		t.Fatalf("failed to close run: %v", err)
	}
	if len(appends) != 1 || !bytes.Equal(appends[0].Data, event) {
		t.Fatalf("rebuilt %d events, want the original back intact", len(appends))
	}
	if appends[0].Segment != "segment-1" || appends[0].EventNumber != 1 {
		t.Errorf("rebuilt event = segment %q number %d", appends[0].Segment, appends[0].EventNumber)
	}

	// commands outside the append path pass through untouched
	if got, err := d.OnCommand(&wire.KeepAlive{}); err != nil || got != nil {
		t.Errorf("pass-through command = %v, %v", got, err)
	}

	d.Release(testConnectionID)
	if _, err := d.OnCommand(&wire.AppendBlock{ConnectionID: testConnectionID}); err == nil {
		t.Errorf("expected error for block after release")
	}
}
