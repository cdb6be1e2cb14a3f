package wire

import "fmt"

// --------------------------------------------------------------------------
// Segment Reads
// --------------------------------------------------------------------------

// ReadSegment asks for up to SuggestedLength bytes of a segment starting at
// Offset.
type ReadSegment struct {
	Segment         string
	Offset          int64
	SuggestedLength int32
}

func (c *ReadSegment) Type() *CommandType { return typeOf(CodeReadSegment) }
func (c *ReadSegment) request()           {}

func (c *ReadSegment) WriteFields(w *Writer) error {
	if err := w.WriteUTF(c.Segment); err != nil {
		return err
	}
	w.WriteInt64(c.Offset)
	w.WriteInt32(c.SuggestedLength)
	return nil
}

func readReadSegment(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	offset, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	suggested, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	return &ReadSegment{Segment: segment, Offset: offset, SuggestedLength: suggested}, nil
}

// SegmentRead returns segment bytes. The data is length-prefixed inside the
// payload; a prefix claiming more than the enclosing frame provides is a
// malformed frame, never an over-read.
type SegmentRead struct {
	Segment      string
	Offset       int64
	AtTail       bool
	EndOfSegment bool
	Data         []byte
}

func (c *SegmentRead) Type() *CommandType { return typeOf(CodeSegmentRead) }
func (c *SegmentRead) reply()             {}

func (c *SegmentRead) WriteFields(w *Writer) error {
	if err := w.WriteUTF(c.Segment); err != nil {
		return err
	}
	w.WriteInt64(c.Offset)
	w.WriteBool(c.AtTail)
	w.WriteBool(c.EndOfSegment)
	w.WriteInt32(int32(len(c.Data)))
	w.WriteBytes(c.Data)
	return nil
}

func readSegmentRead(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	offset, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	atTail, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	endOfSegment, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	dataLength, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if int64(dataLength) > int64(length) {
		return nil, fmt.Errorf("%w: data length %d exceeds frame length %d",
			ErrMalformedFrame, dataLength, length)
	}
	data, err := r.ReadBytes(int(dataLength))
	if err != nil {
		return nil, err
	}
	return &SegmentRead{
		Segment:      segment,
		Offset:       offset,
		AtTail:       atTail,
		EndOfSegment: endOfSegment,
		Data:         data,
	}, nil
}

// --------------------------------------------------------------------------
// Segment Metadata
// --------------------------------------------------------------------------

// GetStreamSegmentInfo asks for a segment's metadata.
type GetStreamSegmentInfo struct {
	SegmentName string
}

func (c *GetStreamSegmentInfo) Type() *CommandType { return typeOf(CodeGetStreamSegmentInfo) }
func (c *GetStreamSegmentInfo) request()           {}

func (c *GetStreamSegmentInfo) WriteFields(w *Writer) error {
	return w.WriteUTF(c.SegmentName)
}

func readGetStreamSegmentInfo(r *Reader, length int) (WireCommand, error) {
	name, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &GetStreamSegmentInfo{SegmentName: name}, nil
}

// StreamSegmentInfo reports a segment's metadata.
type StreamSegmentInfo struct {
	SegmentName   string
	Exists        bool
	IsSealed      bool
	IsDeleted     bool
	LastModified  int64
	SegmentLength int64
}

func (c *StreamSegmentInfo) Type() *CommandType { return typeOf(CodeStreamSegmentInfo) }
func (c *StreamSegmentInfo) reply()             {}

func (c *StreamSegmentInfo) WriteFields(w *Writer) error {
	if err := w.WriteUTF(c.SegmentName); err != nil {
		return err
	}
	w.WriteBool(c.Exists)
	w.WriteBool(c.IsSealed)
	w.WriteBool(c.IsDeleted)
	w.WriteInt64(c.LastModified)
	w.WriteInt64(c.SegmentLength)
	return nil
}

func readStreamSegmentInfo(r *Reader, length int) (WireCommand, error) {
	name, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	exists, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	sealed, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	deleted, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	lastModified, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	segmentLength, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	return &StreamSegmentInfo{
		SegmentName:   name,
		Exists:        exists,
		IsSealed:      sealed,
		IsDeleted:     deleted,
		LastModified:  lastModified,
		SegmentLength: segmentLength,
	}, nil
}

// --------------------------------------------------------------------------
// Segment Lifecycle
// --------------------------------------------------------------------------

// CreateSegment asks the server to create a segment.
type CreateSegment struct {
	Segment string
}

func (c *CreateSegment) Type() *CommandType { return typeOf(CodeCreateSegment) }
func (c *CreateSegment) request()           {}

func (c *CreateSegment) WriteFields(w *Writer) error {
	return w.WriteUTF(c.Segment)
}

func readCreateSegment(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &CreateSegment{Segment: segment}, nil
}

// SegmentCreated acknowledges a CreateSegment.
type SegmentCreated struct {
	Segment string
}

func (c *SegmentCreated) Type() *CommandType { return typeOf(CodeSegmentCreated) }
func (c *SegmentCreated) reply()             {}

func (c *SegmentCreated) WriteFields(w *Writer) error {
	return w.WriteUTF(c.Segment)
}

func readSegmentCreated(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &SegmentCreated{Segment: segment}, nil
}

// SealSegment asks the server to seal a segment against further appends.
type SealSegment struct {
	Segment string
}

func (c *SealSegment) Type() *CommandType { return typeOf(CodeSealSegment) }
func (c *SealSegment) request()           {}

func (c *SealSegment) WriteFields(w *Writer) error {
	return w.WriteUTF(c.Segment)
}

func readSealSegment(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &SealSegment{Segment: segment}, nil
}

// SegmentSealed acknowledges a SealSegment. It carries no payload.
type SegmentSealed struct{}

func (c *SegmentSealed) Type() *CommandType { return typeOf(CodeSegmentSealed) }
func (c *SegmentSealed) reply()             {}

func (c *SegmentSealed) WriteFields(w *Writer) error { return nil }

func readSegmentSealed(r *Reader, length int) (WireCommand, error) {
	return &SegmentSealed{}, nil
}

// DeleteSegment asks the server to delete a segment. It carries no payload.
type DeleteSegment struct{}

func (c *DeleteSegment) Type() *CommandType { return typeOf(CodeDeleteSegment) }
func (c *DeleteSegment) request()           {}

func (c *DeleteSegment) WriteFields(w *Writer) error { return nil }

func readDeleteSegment(r *Reader, length int) (WireCommand, error) {
	return &DeleteSegment{}, nil
}

// SegmentDeleted acknowledges a DeleteSegment. It carries no payload.
type SegmentDeleted struct{}

func (c *SegmentDeleted) Type() *CommandType { return typeOf(CodeSegmentDeleted) }
func (c *SegmentDeleted) reply()             {}

func (c *SegmentDeleted) WriteFields(w *Writer) error { return nil }

func readSegmentDeleted(r *Reader, length int) (WireCommand, error) {
	return &SegmentDeleted{}, nil
}

// --------------------------------------------------------------------------
// Batch Placeholders
// --------------------------------------------------------------------------

// The batch create/merge commands have reserved codes but no wire layout
// yet. Both directions fail with ErrUnimplementedCommand so conformance
// tests catch any accidental reliance on an empty payload.

// CreateBatch reserves the batch-creation request. Not implemented.
type CreateBatch struct{}

func (c *CreateBatch) Type() *CommandType { return typeOf(CodeCreateBatch) }
func (c *CreateBatch) request()           {}

func (c *CreateBatch) WriteFields(w *Writer) error {
	return fmt.Errorf("%w: CreateBatch", ErrUnimplementedCommand)
}

func readCreateBatch(r *Reader, length int) (WireCommand, error) {
	return nil, fmt.Errorf("%w: CreateBatch", ErrUnimplementedCommand)
}

// BatchCreated reserves the batch-creation reply. Not implemented.
type BatchCreated struct{}

func (c *BatchCreated) Type() *CommandType { return typeOf(CodeBatchCreated) }
func (c *BatchCreated) reply()             {}

func (c *BatchCreated) WriteFields(w *Writer) error {
	return fmt.Errorf("%w: BatchCreated", ErrUnimplementedCommand)
}

func readBatchCreated(r *Reader, length int) (WireCommand, error) {
	return nil, fmt.Errorf("%w: BatchCreated", ErrUnimplementedCommand)
}

// MergeBatch reserves the batch-merge request. Not implemented.
type MergeBatch struct{}

func (c *MergeBatch) Type() *CommandType { return typeOf(CodeMergeBatch) }
func (c *MergeBatch) request()           {}

func (c *MergeBatch) WriteFields(w *Writer) error {
	return fmt.Errorf("%w: MergeBatch", ErrUnimplementedCommand)
}

func readMergeBatch(r *Reader, length int) (WireCommand, error) {
	return nil, fmt.Errorf("%w: MergeBatch", ErrUnimplementedCommand)
}

// BatchMerged reserves the batch-merge reply. Not implemented.
type BatchMerged struct{}

func (c *BatchMerged) Type() *CommandType { return typeOf(CodeBatchMerged) }
func (c *BatchMerged) reply()             {}

func (c *BatchMerged) WriteFields(w *Writer) error {
	return fmt.Errorf("%w: BatchMerged", ErrUnimplementedCommand)
}

func readBatchMerged(r *Reader, length int) (WireCommand, error) {
	return nil, fmt.Errorf("%w: BatchMerged", ErrUnimplementedCommand)
}

// --------------------------------------------------------------------------
// Error Replies
// --------------------------------------------------------------------------

// WrongHost tells the client the segment is owned by another host.
type WrongHost struct {
	Segment     string
	CorrectHost string
}

func (c *WrongHost) Type() *CommandType { return typeOf(CodeWrongHost) }
func (c *WrongHost) reply()             {}

func (c *WrongHost) WriteFields(w *Writer) error {
	if err := w.WriteUTF(c.Segment); err != nil {
		return err
	}
	return w.WriteUTF(c.CorrectHost)
}

func readWrongHost(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	correctHost, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &WrongHost{Segment: segment, CorrectHost: correctHost}, nil
}

// SegmentIsSealed rejects an operation on a sealed segment.
type SegmentIsSealed struct {
	Segment string
}

func (c *SegmentIsSealed) Type() *CommandType { return typeOf(CodeSegmentIsSealed) }
func (c *SegmentIsSealed) reply()             {}

func (c *SegmentIsSealed) WriteFields(w *Writer) error {
	return w.WriteUTF(c.Segment)
}

func readSegmentIsSealed(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &SegmentIsSealed{Segment: segment}, nil
}

// SegmentAlreadyExists rejects creating a segment that exists.
type SegmentAlreadyExists struct {
	Segment string
}

func (c *SegmentAlreadyExists) Type() *CommandType { return typeOf(CodeSegmentAlreadyExists) }
func (c *SegmentAlreadyExists) reply()             {}

func (c *SegmentAlreadyExists) WriteFields(w *Writer) error {
	return w.WriteUTF(c.Segment)
}

func readSegmentAlreadyExists(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &SegmentAlreadyExists{Segment: segment}, nil
}

// NoSuchSegment rejects an operation on a segment that does not exist.
type NoSuchSegment struct {
	Segment string
}

func (c *NoSuchSegment) Type() *CommandType { return typeOf(CodeNoSuchSegment) }
func (c *NoSuchSegment) reply()             {}

func (c *NoSuchSegment) WriteFields(w *Writer) error {
	return w.WriteUTF(c.Segment)
}

func readNoSuchSegment(r *Reader, length int) (WireCommand, error) {
	segment, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &NoSuchSegment{Segment: segment}, nil
}

// NoSuchBatch rejects an operation on a batch that does not exist.
type NoSuchBatch struct {
	Batch string
}

func (c *NoSuchBatch) Type() *CommandType { return typeOf(CodeNoSuchBatch) }
func (c *NoSuchBatch) reply()             {}

func (c *NoSuchBatch) WriteFields(w *Writer) error {
	return w.WriteUTF(c.Batch)
}

func readNoSuchBatch(r *Reader, length int) (WireCommand, error) {
	batch, err := r.ReadUTF()
	if err != nil {
		return nil, err
	}
	return &NoSuchBatch{Batch: batch}, nil
}
