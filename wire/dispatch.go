package wire

import "fmt"

// --------------------------------------------------------------------------
// Dispatch
// --------------------------------------------------------------------------

// ProcessRequest routes a decoded request to the single processor method
// matching its kind. The switch enumerates the closed set of requests; a
// value that reaches the default case is a programming error surfaced as an
// error rather than silently dropped.
func ProcessRequest(req Request, p RequestProcessor) error {
	switch c := req.(type) {
	case *SetupAppend:
		p.SetupAppend(c)
	case *Append:
		p.Append(c)
	case *ReadSegment:
		p.ReadSegment(c)
	case *GetStreamSegmentInfo:
		p.GetStreamSegmentInfo(c)
	case *CreateSegment:
		p.CreateSegment(c)
	case *CreateBatch:
		p.CreateBatch(c)
	case *MergeBatch:
		p.MergeBatch(c)
	case *SealSegment:
		p.SealSegment(c)
	case *DeleteSegment:
		p.DeleteSegment(c)
	case *KeepAlive:
		p.KeepAlive(c)
	default:
		return fmt.Errorf("unhandled request %s", req.Type())
	}
	return nil
}

// ProcessReply routes a decoded reply to the single processor method
// matching its kind.
func ProcessReply(reply Reply, p ReplyProcessor) error {
	switch c := reply.(type) {
	case *WrongHost:
		p.WrongHost(c)
	case *SegmentIsSealed:
		p.SegmentIsSealed(c)
	case *SegmentAlreadyExists:
		p.SegmentAlreadyExists(c)
	case *NoSuchSegment:
		p.NoSuchSegment(c)
	case *NoSuchBatch:
		p.NoSuchBatch(c)
	case *AppendSetup:
		p.AppendSetup(c)
	case *DataAppended:
		p.DataAppended(c)
	case *SegmentRead:
		p.SegmentRead(c)
	case *StreamSegmentInfo:
		p.StreamSegmentInfo(c)
	case *SegmentCreated:
		p.SegmentCreated(c)
	case *BatchCreated:
		p.BatchCreated(c)
	case *BatchMerged:
		p.BatchMerged(c)
	case *SegmentSealed:
		p.SegmentSealed(c)
	case *SegmentDeleted:
		p.SegmentDeleted(c)
	case *KeepAlive:
		p.KeepAlive(c)
	default:
		return fmt.Errorf("unhandled reply %s", reply.Type())
	}
	return nil
}
