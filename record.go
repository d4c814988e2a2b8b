package glove

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// CREC is a co-occurrence record: an ordered pair of ranks and the
// accumulated weight between them (spec §3). w1, w2 are 1-based ranks in
// [1, V]; val is always > 0 in an emitted stream.
type CREC struct {
	W1  int32
	W2  int32
	Val float64
}

// RecordSize is the on-disk size of a CREC: two 4-byte signed integers and
// one 8-byte IEEE-754 double, concatenated with no padding (spec §6.1). This
// is the one width/endianness choice all three executables must agree on
// byte-for-byte, so it lives in exactly one place.
const RecordSize = 4 + 4 + 8

// byteOrder is the platform's native byte order. spec §6.1 requires only
// that all three executables agree byte-for-byte; since they are always
// built and run on the same machine for a single pipeline invocation,
// native order avoids a pointless byte-swap on every record.
var byteOrder = binary.NativeEndian

// RecordWriter appends CRECs to an underlying stream in the fixed 16-byte
// layout. It buffers through its own 1 MiB bufio.Writer, so callers pass
// the raw stream and must call Flush when done (mirrors the teacher's thin
// wrapper style in io.go, just specialized to a fixed-width format instead
// of gob).
type RecordWriter struct {
	w   *bufio.Writer
	buf [RecordSize]byte
}

func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{w: bufio.NewWriterSize(w, 1<<20)}
}

func (rw *RecordWriter) Write(r CREC) error {
	byteOrder.PutUint32(rw.buf[0:4], uint32(r.W1))
	byteOrder.PutUint32(rw.buf[4:8], uint32(r.W2))
	byteOrder.PutUint64(rw.buf[8:16], math.Float64bits(r.Val))
	_, err := rw.w.Write(rw.buf[:])
	if err != nil {
		return newError(IoError, "RecordWriter.Write", "", err)
	}
	return nil
}

func (rw *RecordWriter) Flush() error {
	if err := rw.w.Flush(); err != nil {
		return newError(IoError, "RecordWriter.Flush", "", err)
	}
	return nil
}

// RecordReader reads CRECs one at a time until io.EOF. A read that returns a
// partial record is reported as IoError ("truncated record"), per spec §4.2.5.
type RecordReader struct {
	r   *bufio.Reader
	buf [RecordSize]byte
}

func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: bufio.NewReaderSize(r, 1<<20)}
}

// Read returns io.EOF (unwrapped) exactly when the stream ends on a record
// boundary. Any other outcome, including a short read mid-record, is an
// *Error of kind IoError.
func (rr *RecordReader) Read() (CREC, error) {
	n, err := io.ReadFull(rr.r, rr.buf[:])
	if err == io.EOF && n == 0 {
		return CREC{}, io.EOF
	}
	if err != nil {
		return CREC{}, newError(IoError, "RecordReader.Read", "", fmt.Errorf("truncated record after %d bytes: %w", n, err))
	}
	return CREC{
		W1:  int32(byteOrder.Uint32(rr.buf[0:4])),
		W2:  int32(byteOrder.Uint32(rr.buf[4:8])),
		Val: math.Float64frombits(byteOrder.Uint64(rr.buf[8:16])),
	}, nil
}

// ReadAll drains rr into a slice. Only ever used by tests and the shuffle
// stage's bounded block reads use Read directly instead, to avoid holding
// the whole stream in memory (spec §5).
func (rr *RecordReader) ReadAll() ([]CREC, error) {
	var out []CREC
	for {
		r, err := rr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
}
