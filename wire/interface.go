package wire

// --------------------------------------------------------------------------
// Command Interfaces
// --------------------------------------------------------------------------

// WireCommand is one decoded instance of a protocol message. Instances are
// immutable and short-lived: constructed by an application caller (encode
// path) or a decoder (decode path), consumed exactly once, then discarded.
type WireCommand interface {
	// Type returns the command's type descriptor.
	Type() *CommandType
	// WriteFields writes the command's fields in declaration order. The
	// type code and length header are the frame envelope's job.
	WriteFields(w *Writer) error
}

// Request marks commands that travel client-to-server. The marker method is
// unexported so the set of requests is closed within this package.
type Request interface {
	WireCommand
	request()
}

// Reply marks commands that travel server-to-client. KeepAlive is the one
// command that is both a Request and a Reply.
type Reply interface {
	WireCommand
	reply()
}

// --------------------------------------------------------------------------
// Processor Interfaces
// --------------------------------------------------------------------------

// RequestProcessor handles server-bound commands, one method per kind.
// Implemented by the server runtime; this package depends only on the
// signatures.
type RequestProcessor interface {
	SetupAppend(*SetupAppend)
	Append(*Append)
	ReadSegment(*ReadSegment)
	GetStreamSegmentInfo(*GetStreamSegmentInfo)
	CreateSegment(*CreateSegment)
	CreateBatch(*CreateBatch)
	MergeBatch(*MergeBatch)
	SealSegment(*SealSegment)
	DeleteSegment(*DeleteSegment)
	KeepAlive(*KeepAlive)
}

// ReplyProcessor handles client-bound commands, one method per kind.
// Implemented by the client runtime.
type ReplyProcessor interface {
	WrongHost(*WrongHost)
	SegmentIsSealed(*SegmentIsSealed)
	SegmentAlreadyExists(*SegmentAlreadyExists)
	NoSuchSegment(*NoSuchSegment)
	NoSuchBatch(*NoSuchBatch)
	AppendSetup(*AppendSetup)
	DataAppended(*DataAppended)
	SegmentRead(*SegmentRead)
	StreamSegmentInfo(*StreamSegmentInfo)
	SegmentCreated(*SegmentCreated)
	BatchCreated(*BatchCreated)
	BatchMerged(*BatchMerged)
	SegmentSealed(*SegmentSealed)
	SegmentDeleted(*SegmentDeleted)
	KeepAlive(*KeepAlive)
}
