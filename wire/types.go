package wire

import "fmt"

// --------------------------------------------------------------------------
// Framing Constants
// --------------------------------------------------------------------------

const (
	// TypeSize is the size of the type code at the head of every frame.
	TypeSize = 4

	// TypePlusLengthSize is the size of the full frame header.
	TypePlusLengthSize = 8

	// AppendBlockSize is the fixed chunk size for AppendBlock payloads.
	// Only the final block of a run may be shorter.
	AppendBlockSize = 32 * 1024

	// MaxWireCommandSize is the hard ceiling for one frame's payload.
	// A frame exceeding this is a protocol violation, not a truncation.
	MaxWireCommandSize = 0x007FFFFF // 8MB
)

// --------------------------------------------------------------------------
// Command Codes
// --------------------------------------------------------------------------

// Type codes are assigned once and never reused. Negative codes belong to
// the framing commands nested inside append blocks; they never appear at
// the top level of a connection on their own.
const (
	CodeAppend               int32 = -3
	CodePartialEvent         int32 = -2
	CodePadding              int32 = -1
	CodeEvent                int32 = 0
	CodeSetupAppend          int32 = 1
	CodeAppendSetup          int32 = 2
	CodeAppendBlock          int32 = 3
	CodeAppendBlockEnd       int32 = 4
	CodeDataAppended         int32 = 7
	CodeReadSegment          int32 = 9
	CodeSegmentRead          int32 = 10
	CodeGetStreamSegmentInfo int32 = 16
	CodeStreamSegmentInfo    int32 = 17
	CodeCreateSegment        int32 = 20
	CodeSegmentCreated       int32 = 21
	CodeCreateBatch          int32 = 22
	CodeBatchCreated         int32 = 23
	CodeMergeBatch           int32 = 24
	CodeBatchMerged          int32 = 25
	CodeSealSegment          int32 = 28
	CodeSegmentSealed        int32 = 29
	CodeDeleteSegment        int32 = 30
	CodeSegmentDeleted       int32 = 31
	CodeWrongHost            int32 = 50
	CodeSegmentIsSealed      int32 = 51
	CodeSegmentAlreadyExists int32 = 52
	CodeNoSuchSegment        int32 = 53
	CodeNoSuchBatch          int32 = 54
	CodeKeepAlive            int32 = 100
)

// --------------------------------------------------------------------------
// Command Type Descriptors
// --------------------------------------------------------------------------

// CommandType describes one command kind: its wire code, a human-readable
// name, and the decoder that turns a payload of the given length into a
// command instance.
type CommandType struct {
	Code     int32
	Name     string
	ReadFrom func(r *Reader, length int) (WireCommand, error)
}

func (ct *CommandType) String() string {
	return fmt.Sprintf("%s(%d)", ct.Name, ct.Code)
}

// allTypes is the closed catalog of command kinds. Adding a kind means
// adding it here with a fresh code; removing or renumbering one breaks
// wire compatibility and is never allowed.
var allTypes = []*CommandType{
	{CodeAppend, "Append", readAppend},
	{CodePartialEvent, "PartialEvent", readPartialEvent},
	{CodePadding, "Padding", readPadding},
	{CodeEvent, "Event", readEvent},
	{CodeSetupAppend, "SetupAppend", readSetupAppend},
	{CodeAppendSetup, "AppendSetup", readAppendSetup},
	{CodeAppendBlock, "AppendBlock", readAppendBlock},
	{CodeAppendBlockEnd, "AppendBlockEnd", readAppendBlockEnd},
	{CodeDataAppended, "DataAppended", readDataAppended},
	{CodeReadSegment, "ReadSegment", readReadSegment},
	{CodeSegmentRead, "SegmentRead", readSegmentRead},
	{CodeGetStreamSegmentInfo, "GetStreamSegmentInfo", readGetStreamSegmentInfo},
	{CodeStreamSegmentInfo, "StreamSegmentInfo", readStreamSegmentInfo},
	{CodeCreateSegment, "CreateSegment", readCreateSegment},
	{CodeSegmentCreated, "SegmentCreated", readSegmentCreated},
	{CodeCreateBatch, "CreateBatch", readCreateBatch},
	{CodeBatchCreated, "BatchCreated", readBatchCreated},
	{CodeMergeBatch, "MergeBatch", readMergeBatch},
	{CodeBatchMerged, "BatchMerged", readBatchMerged},
	{CodeSealSegment, "SealSegment", readSealSegment},
	{CodeSegmentSealed, "SegmentSealed", readSegmentSealed},
	{CodeDeleteSegment, "DeleteSegment", readDeleteSegment},
	{CodeSegmentDeleted, "SegmentDeleted", readSegmentDeleted},
	{CodeWrongHost, "WrongHost", readWrongHost},
	{CodeSegmentIsSealed, "SegmentIsSealed", readSegmentIsSealed},
	{CodeSegmentAlreadyExists, "SegmentAlreadyExists", readSegmentAlreadyExists},
	{CodeNoSuchSegment, "NoSuchSegment", readNoSuchSegment},
	{CodeNoSuchBatch, "NoSuchBatch", readNoSuchBatch},
	{CodeKeepAlive, "KeepAlive", readKeepAlive},
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Registry is the immutable code-to-type mapping built once at process
// start. After construction it is only ever read, so concurrent lookups
// need no synchronization.
type Registry struct {
	types map[int32]*CommandType
}

// newRegistry builds the registry from the given kinds. Two kinds sharing
// a code is a programming error the process must not start with.
func newRegistry(kinds []*CommandType) *Registry {
	m := make(map[int32]*CommandType, len(kinds))
	for _, ct := range kinds {
		if prev, ok := m[ct.Code]; ok {
			panic(fmt.Sprintf("wire: duplicate command code %d (%s and %s)", ct.Code, prev.Name, ct.Name))
		}
		m[ct.Code] = ct
	}
	return &Registry{types: m}
}

// Lookup resolves a type code to its descriptor. The second return value
// is false for unregistered codes, which callers must treat as a protocol
// error rather than a silent skip.
func (reg *Registry) Lookup(code int32) (*CommandType, bool) {
	ct, ok := reg.types[code]
	return ct, ok
}

var defaultRegistry = newRegistry(allTypes)

// DefaultRegistry returns the process-wide registry over the full command
// catalog. It is exposed so the transport layer can resolve an incoming
// type code before consuming any payload bytes.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Lookup resolves a type code against the default registry.
func Lookup(code int32) (*CommandType, bool) {
	return defaultRegistry.Lookup(code)
}
