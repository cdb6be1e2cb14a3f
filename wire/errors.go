package wire

import "errors"

// --------------------------------------------------------------------------
// Error Kinds
// --------------------------------------------------------------------------

// All codec failures wrap exactly one of these sentinel errors so that the
// transport layer can discriminate them with errors.Is. The codec never
// retries or recovers on its own; recovery belongs to the caller.
var (
	// ErrUnknownCommandType is returned when a frame carries a type code
	// that is not present in the registry. No payload bytes are consumed.
	ErrUnknownCommandType = errors.New("unknown command type")

	// ErrMalformedFrame is returned when an inner length field disagrees
	// with the enclosing frame (e.g. claims more data than the envelope
	// provides) or the frame exceeds MaxWireCommandSize.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnsupportedEncode is returned when a command that is not directly
	// wire-representable (the in-memory Append) is asked to encode itself.
	ErrUnsupportedEncode = errors.New("command has no wire encoding")

	// ErrTruncated is returned when fewer bytes are available than a field
	// requires. No partially populated command is ever produced.
	ErrTruncated = errors.New("truncated payload")

	// ErrUnimplementedCommand is returned by the batch create/merge
	// placeholders, which have no wire layout yet. Failing loudly here
	// keeps anything from silently relying on an empty payload.
	ErrUnimplementedCommand = errors.New("command not implemented")
)
