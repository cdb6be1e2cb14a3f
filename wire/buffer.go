package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Reader
// --------------------------------------------------------------------------

// Reader is a bounds-checked, big-endian cursor over one frame payload.
// Every read either returns the requested field or an error wrapping
// ErrTruncated; the cursor never moves past the end of the payload.
// Byte slices returned by ReadBytes are copies, so a decoded command never
// aliases a buffer the transport may reuse for the next frame.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over the given payload. The Reader does not
// modify the slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// require checks that n more bytes are available.
func (r *Reader) require(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, r.Remaining())
	}
	return nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads a single byte and interprets any non-zero value as true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadUint16 reads a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

// ReadInt32 reads a big-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4
	return v, nil
}

// ReadInt64 reads a big-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(r.data[r.pos : r.pos+8]))
	r.pos += 8
	return v, nil
}

// ReadUUID reads a 128-bit identifier as two big-endian 64-bit halves.
func (r *Reader) ReadUUID() (uuid.UUID, error) {
	if err := r.require(16); err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	copy(id[:], r.data[r.pos:r.pos+16])
	r.pos += 16
	return id, nil
}

// ReadUTF reads a UTF-8 string with a 2-byte big-endian length prefix.
func (r *Reader) ReadUTF() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	if err := r.require(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadBytes reads exactly n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrMalformedFrame, n)
	}
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

// Skip advances the cursor by n bytes without reading them.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrMalformedFrame, n)
	}
	if err := r.require(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// --------------------------------------------------------------------------
// Writer
// --------------------------------------------------------------------------

// maxUTFLength is the largest string a 2-byte length prefix can describe.
const maxUTFLength = 65535

// Writer is a growable big-endian byte sink for command encoding. Commands
// write their fields in declaration order; the frame envelope owns the type
// and length header.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes. The slice is owned by the Writer until
// the caller stops writing to it.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBool writes a bool as one byte (1 or 0).
func (w *Writer) WriteBool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteUint16 writes a big-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// WriteInt32 writes a big-endian int32.
func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInt64 writes a big-endian int64.
func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

// WriteUUID writes a 128-bit identifier as two big-endian 64-bit halves.
func (w *Writer) WriteUUID(id uuid.UUID) {
	w.buf = append(w.buf, id[:]...)
}

// WriteUTF writes a UTF-8 string with a 2-byte big-endian length prefix.
// Strings longer than 65535 bytes cannot be represented on the wire.
func (w *Writer) WriteUTF(s string) error {
	if len(s) > maxUTFLength {
		return fmt.Errorf("%w: string of %d bytes exceeds %d", ErrMalformedFrame, len(s), maxUTFLength)
	}
	w.WriteUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteBytes writes raw bytes without a length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteZero writes n zero bytes.
func (w *Writer) WriteZero(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}
