package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Codec Metrics
// --------------------------------------------------------------------------

var (
	framesEncoded = metrics.NewCounter("wire_frames_encoded_total")
	framesDecoded = metrics.NewCounter("wire_frames_decoded_total")
	bytesEncoded  = metrics.NewCounter("wire_bytes_encoded_total")
	bytesDecoded  = metrics.NewCounter("wire_bytes_decoded_total")
	encodeErrors  = metrics.NewCounter("wire_encode_errors_total")
	decodeErrors  = metrics.NewCounter("wire_decode_errors_total")
)

// --------------------------------------------------------------------------
// Frame Envelope
// --------------------------------------------------------------------------

// EncodeCommand serializes a command into one complete frame:
// [type: int32][length: int32][payload]. The length counts only the payload
// and is computed by measuring the command's own field output.
func EncodeCommand(cmd WireCommand) ([]byte, error) {
	w := NewWriter()
	w.WriteInt32(cmd.Type().Code)
	w.WriteInt32(0) // patched below once the payload size is known
	if err := cmd.WriteFields(w); err != nil {
		encodeErrors.Inc()
		return nil, fmt.Errorf("encode %s: %w", cmd.Type().Name, err)
	}
	payload := w.Len() - TypePlusLengthSize
	if payload > MaxWireCommandSize {
		encodeErrors.Inc()
		return nil, fmt.Errorf("%w: %s payload of %d bytes exceeds %d",
			ErrMalformedFrame, cmd.Type().Name, payload, MaxWireCommandSize)
	}
	frame := w.Bytes()
	binary.BigEndian.PutUint32(frame[TypeSize:TypePlusLengthSize], uint32(payload))
	framesEncoded.Inc()
	bytesEncoded.Add(len(frame))
	return frame, nil
}

// DecodeCommand parses one complete frame. The registry is consulted before
// any payload byte is touched, so an unknown type code consumes nothing.
// The variant decoder sees exactly the declared payload, never more.
func DecodeCommand(frame []byte) (WireCommand, error) {
	return decodeWith(defaultRegistry, frame)
}

// DecodeCommandWith is DecodeCommand against an explicit registry.
func DecodeCommandWith(reg *Registry, frame []byte) (WireCommand, error) {
	return decodeWith(reg, frame)
}

func decodeWith(reg *Registry, frame []byte) (WireCommand, error) {
	if len(frame) < TypePlusLengthSize {
		decodeErrors.Inc()
		return nil, fmt.Errorf("%w: frame of %d bytes is shorter than the header", ErrTruncated, len(frame))
	}
	code := int32(binary.BigEndian.Uint32(frame[0:TypeSize]))
	length := int32(binary.BigEndian.Uint32(frame[TypeSize:TypePlusLengthSize]))
	ct, ok := reg.Lookup(code)
	if !ok {
		decodeErrors.Inc()
		return nil, fmt.Errorf("%w: code %d", ErrUnknownCommandType, code)
	}
	if length < 0 || length > MaxWireCommandSize {
		decodeErrors.Inc()
		return nil, fmt.Errorf("%w: %s declares payload of %d bytes", ErrMalformedFrame, ct.Name, length)
	}
	if len(frame)-TypePlusLengthSize < int(length) {
		decodeErrors.Inc()
		return nil, fmt.Errorf("%w: %s declares %d payload bytes, frame carries %d",
			ErrTruncated, ct.Name, length, len(frame)-TypePlusLengthSize)
	}
	r := NewReader(frame[TypePlusLengthSize : TypePlusLengthSize+int(length)])
	cmd, err := ct.ReadFrom(r, int(length))
	if err != nil {
		decodeErrors.Inc()
		return nil, fmt.Errorf("decode %s: %w", ct.Name, err)
	}
	framesDecoded.Inc()
	bytesDecoded.Add(TypePlusLengthSize + int(length))
	return cmd, nil
}

// ReadCommand reads one delimited frame from a byte stream and decodes it.
// A clean end of stream surfaces as io.EOF; a stream ending inside a frame
// surfaces as ErrTruncated.
func ReadCommand(r io.Reader) (WireCommand, error) {
	var header [TypePlusLengthSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: stream ended inside frame header", ErrTruncated)
	}
	length := int32(binary.BigEndian.Uint32(header[TypeSize:TypePlusLengthSize]))
	if length < 0 || length > MaxWireCommandSize {
		decodeErrors.Inc()
		return nil, fmt.Errorf("%w: declared payload of %d bytes", ErrMalformedFrame, length)
	}
	frame := make([]byte, TypePlusLengthSize+int(length))
	copy(frame, header[:])
	if _, err := io.ReadFull(r, frame[TypePlusLengthSize:]); err != nil {
		decodeErrors.Inc()
		return nil, fmt.Errorf("%w: stream ended inside frame payload", ErrTruncated)
	}
	return DecodeCommand(frame)
}
