package wire

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
)

var testConnectionID = uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")

// testCommands creates one value per serializable command kind, including
// boundary field values
func testCommands() []WireCommand {
	return []WireCommand{
		&Padding{Length: 0},
		&Padding{Length: 13},
		&PartialEvent{Data: []byte{}},
		&PartialEvent{Data: []byte("fragment")},
		&Event{Data: []byte{}},
		&Event{Data: []byte{0, 1, 2, 254, 255}},
		&SetupAppend{ConnectionID: testConnectionID, Segment: "segment-1"},
		&SetupAppend{ConnectionID: uuid.UUID{}, Segment: ""},
		&AppendSetup{Segment: "segment-1", ConnectionID: testConnectionID, LastEventNumber: 42},
		&AppendBlock{ConnectionID: testConnectionID, Data: []byte{}},
		&AppendBlock{ConnectionID: testConnectionID, Data: make([]byte, AppendBlockSize)},
		&AppendBlockEnd{ConnectionID: testConnectionID, LastEventNumber: 7, SizeOfWholeEvents: 40, Data: []byte{}},
		&AppendBlockEnd{ConnectionID: testConnectionID, LastEventNumber: 8, SizeOfWholeEvents: 0, Data: []byte("trailing")},
		&DataAppended{ConnectionID: testConnectionID, EventNumber: 9},
		&ReadSegment{Segment: "segment-1", Offset: 1024, SuggestedLength: 4096},
		&SegmentRead{Segment: "segment-1", Offset: 0, AtTail: true, EndOfSegment: false, Data: []byte{}},
		&SegmentRead{Segment: "s", Offset: 1 << 40, AtTail: false, EndOfSegment: true, Data: []byte("payload")},
		&GetStreamSegmentInfo{SegmentName: "segment-1"},
		&StreamSegmentInfo{SegmentName: "segment-1", Exists: true, IsSealed: false, IsDeleted: true, LastModified: 123456, SegmentLength: 1 << 33},
		&CreateSegment{Segment: "segment-1"},
		&SegmentCreated{Segment: "segment-1"},
		&SealSegment{Segment: "segment-1"},
		&SegmentSealed{},
		&DeleteSegment{},
		&SegmentDeleted{},
		&WrongHost{Segment: "segment-1", CorrectHost: "host-2:9090"},
		&WrongHost{Segment: "", CorrectHost: ""},
		&SegmentIsSealed{Segment: "segment-1"},
		&SegmentAlreadyExists{Segment: "segment-1"},
		&NoSuchSegment{Segment: "segment-1"},
		&NoSuchBatch{Batch: "batch-1"},
		&KeepAlive{},
	}
}

// TestCommandRoundTrip encodes and decodes every serializable command
func TestCommandRoundTrip(t *testing.T) {
	for _, cmd := range testCommands() {
		t.Run(cmd.Type().Name, func(t *testing.T) {
			frame, err := EncodeCommand(cmd)
			if err != nil {
				t.Fatalf("failed to encode: %v", err)
			}

			result, err := DecodeCommand(frame)
			if err != nil {
				t.Fatalf("failed to decode: %v", err)
			}

			if !reflect.DeepEqual(cmd, result) {
				t.Errorf("command doesn't match after round trip:\nOriginal: %+v\nResult: %+v", cmd, result)
			}
		})
	}
}

// TestStringBoundaries round-trips the 0 and 65535 byte string bounds
func TestStringBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		segment string
	}{
		{"empty string", ""},
		{"max length string", strings.Repeat("x", 65535)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeCommand(&CreateSegment{Segment: tt.segment})
			if err != nil {
				t.Fatalf("failed to encode: %v", err)
			}
			result, err := DecodeCommand(frame)
			if err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if result.(*CreateSegment).Segment != tt.segment {
				t.Errorf("segment doesn't match after round trip")
			}
		})
	}

	// one past the representable bound must fail, not truncate
	_, err := EncodeCommand(&CreateSegment{Segment: strings.Repeat("x", 65536)})
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame for oversized string, got %v", err)
	}
}

// TestAppendNotSerializable verifies Append never reaches the wire directly
func TestAppendNotSerializable(t *testing.T) {
	app := &Append{Segment: "s", ConnectionID: testConnectionID, EventNumber: 1, Data: []byte("x")}

	if _, err := EncodeCommand(app); !errors.Is(err, ErrUnsupportedEncode) {
		t.Errorf("expected ErrUnsupportedEncode on encode, got %v", err)
	}

	frame := []byte{0xff, 0xff, 0xff, 0xfd, 0, 0, 0, 0} // code -3, empty payload
	if _, err := DecodeCommand(frame); !errors.Is(err, ErrUnsupportedEncode) {
		t.Errorf("expected ErrUnsupportedEncode on decode, got %v", err)
	}
}

// TestBatchPlaceholders verifies the unimplemented batch commands fail
// loudly in both directions
func TestBatchPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		cmd  WireCommand
		code int32
	}{
		{"CreateBatch", &CreateBatch{}, CodeCreateBatch},
		{"BatchCreated", &BatchCreated{}, CodeBatchCreated},
		{"MergeBatch", &MergeBatch{}, CodeMergeBatch},
		{"BatchMerged", &BatchMerged{}, CodeBatchMerged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeCommand(tt.cmd); !errors.Is(err, ErrUnimplementedCommand) {
				t.Errorf("expected ErrUnimplementedCommand on encode, got %v", err)
			}

			w := NewWriter()
			w.WriteInt32(tt.code)
			w.WriteInt32(0)
			if _, err := DecodeCommand(w.Bytes()); !errors.Is(err, ErrUnimplementedCommand) {
				t.Errorf("expected ErrUnimplementedCommand on decode, got %v", err)
			}
		})
	}
}

// TestAppendOrdering verifies the authoritative event-number ordering
func TestAppendOrdering(t *testing.T) {
	appends := []*Append{
		{EventNumber: 5},
		{EventNumber: 1},
		{EventNumber: 3},
		{EventNumber: 2},
		{EventNumber: 4},
	}

	SortAppends(appends)

	for i, app := range appends {
		if app.EventNumber != int64(i+1) {
			t.Fatalf("position %d has event number %d", i, app.EventNumber)
		}
	}

	a := &Append{EventNumber: 7}
	b := &Append{EventNumber: 7}
	if a.Less(b) || b.Less(a) {
		t.Errorf("equal event numbers must compare equal")
	}
}
