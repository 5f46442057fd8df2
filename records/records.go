// Package records implements the sequential binary format used by recognition models,
// detection checkpoints and datasets.
//
// A stream is a plain sequence of records with no header. Every record starts with one tag
// byte followed by its payload:
//
//	None    no payload; used for placeholder fields
//	String  uvarint length, then the bytes
//	Int     zig-zag varint
//	Pair    two zig-zag varints
//	Tensor  a numpy (.npy, version 1.0) blob, as written by gorgonia.org/tensor
//
// Field order is defined entirely by the producer and consumer; records carry no names. A
// Reader must therefore read fields in the same order they were written, using Skip for
// fields it does not need.
package records

import (
	"bufio"
	"encoding/binary"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Kind is the tag byte that precedes each record.
type Kind byte

const (
	None   Kind = iota // 0
	String Kind = iota // 1
	Int    Kind = iota // 2
	Pair   Kind = iota // 3
	Tensor Kind = iota // 4
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case String:
		return "string"
	case Int:
		return "int"
	case Pair:
		return "pair"
	case Tensor:
		return "tensor"
	}

	return "unknown"
}

// maxStringLen guards against allocating absurd amounts of memory for a corrupt length prefix.
const maxStringLen = 1 << 20

// KindError is returned when the next record is not of the kind that was asked for.
type KindError struct {
	Field    int
	Expected Kind
	Got      Kind
}

func (err KindError) Error() string {
	return "record " + strconv.Itoa(err.Field) + ": expected " + err.Expected.String() + ", got " + err.Got.String()
}

// Writer writes records to an underlying io.Writer. Errors are sticky: after the first failure
// every call is a no-op and Flush returns that error.
type Writer struct {
	w     *bufio.Writer
	err   error
	field int
	buf   [2 * binary.MaxVarintLen64]byte
}

// NewWriter returns a Writer that buffers output to w. Flush must be called once all records
// have been written.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) tag(k Kind) bool {
	if w.err != nil {
		return false
	}

	if err := w.w.WriteByte(byte(k)); err != nil {
		w.err = errors.Wrapf(err, "Can't write record %d (%s)", w.field, k)
		return false
	}

	return true
}

func (w *Writer) write(p []byte) {
	if _, err := w.w.Write(p); err != nil {
		w.err = errors.Wrapf(err, "Can't write record %d", w.field)
	}
}

// None writes a placeholder record.
func (w *Writer) None() {
	w.tag(None)
	w.field++
}

// String writes a string record.
func (w *Writer) String(s string) {
	if w.tag(String) {
		n := binary.PutUvarint(w.buf[:], uint64(len(s)))
		w.write(w.buf[:n])
		if w.err == nil {
			if _, err := w.w.WriteString(s); err != nil {
				w.err = errors.Wrapf(err, "Can't write record %d", w.field)
			}
		}
	}
	w.field++
}

// Int writes an integer record.
func (w *Writer) Int(v int) {
	if w.tag(Int) {
		n := binary.PutVarint(w.buf[:], int64(v))
		w.write(w.buf[:n])
	}
	w.field++
}

// Pair writes a record holding two integers.
func (w *Writer) Pair(p [2]int) {
	if w.tag(Pair) {
		n := binary.PutVarint(w.buf[:], int64(p[0]))
		n += binary.PutVarint(w.buf[n:], int64(p[1]))
		w.write(w.buf[:n])
	}
	w.field++
}

// Tensor writes a tensor record. t must be non-nil and have at least one dimension.
func (w *Writer) Tensor(t *tensor.Dense) {
	if w.err == nil && t == nil {
		w.err = errors.Errorf("Can't write record %d, tensor is nil", w.field)
	}

	if w.tag(Tensor) {
		if err := t.WriteNpy(w.w); err != nil {
			w.err = errors.Wrapf(err, "Can't write record %d, failed to encode tensor", w.field)
		}
	}
	w.field++
}

// Flush writes any buffered data to the underlying writer, returning the first error that
// occurred while writing.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}

	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrapf(err, "Can't flush records")
	}

	return w.err
}

// Reader reads records from an underlying io.Reader.
type Reader struct {
	r     *bufio.Reader
	field int
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Field returns the number of records that have been read so far.
func (r *Reader) Field() int {
	return r.field
}

func (r *Reader) next(k Kind) error {
	b, err := r.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return errors.Wrapf(err, "Can't read record %d", r.field)
	}

	if Kind(b) != k {
		return KindError{r.field, k, Kind(b)}
	}

	return nil
}

func (r *Reader) varint() (int, error) {
	v, err := binary.ReadVarint(r.r)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, errors.Wrapf(err, "Can't read record %d", r.field)
	}

	return int(v), nil
}

// Peek returns the kind of the next record without consuming it.
func (r *Reader) Peek() (Kind, error) {
	b, err := r.r.Peek(1)
	if err != nil {
		return 0, errors.Wrapf(err, "Can't peek record %d", r.field)
	}

	return Kind(b[0]), nil
}

// None reads a placeholder record.
func (r *Reader) None() error {
	if err := r.next(None); err != nil {
		return err
	}

	r.field++
	return nil
}

// String reads a string record.
func (r *Reader) String() (string, error) {
	if err := r.next(String); err != nil {
		return "", err
	}

	n, err := binary.ReadUvarint(r.r)
	if err != nil {
		return "", errors.Wrapf(err, "Can't read length of record %d", r.field)
	} else if n > maxStringLen {
		return "", errors.Errorf("Can't read record %d, string length %d is too large", r.field, n)
	}

	b := make([]byte, n)
	if _, err = io.ReadFull(r.r, b); err != nil {
		return "", errors.Wrapf(err, "Can't read record %d", r.field)
	}

	r.field++
	return string(b), nil
}

// Int reads an integer record.
func (r *Reader) Int() (int, error) {
	if err := r.next(Int); err != nil {
		return 0, err
	}

	v, err := r.varint()
	if err != nil {
		return 0, err
	}

	r.field++
	return v, nil
}

// Pair reads a record holding two integers.
func (r *Reader) Pair() ([2]int, error) {
	var p [2]int
	if err := r.next(Pair); err != nil {
		return p, err
	}

	var err error
	for i := range p {
		if p[i], err = r.varint(); err != nil {
			return p, err
		}
	}

	r.field++
	return p, nil
}

// Tensor reads a tensor record.
func (r *Reader) Tensor() (*tensor.Dense, error) {
	if err := r.next(Tensor); err != nil {
		return nil, err
	}

	t := new(tensor.Dense)
	if err := t.ReadNpy(r.r); err != nil {
		return nil, errors.Wrapf(err, "Can't decode tensor in record %d", r.field)
	}

	r.field++
	return t, nil
}

// Skip reads and discards the next record, whatever its kind.
func (r *Reader) Skip() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}

	switch k {
	case None:
		return r.None()
	case String:
		_, err = r.String()
	case Int:
		_, err = r.Int()
	case Pair:
		_, err = r.Pair()
	case Tensor:
		_, err = r.Tensor()
	default:
		return errors.Errorf("Can't skip record %d, unknown tag %d", r.field, byte(k))
	}

	return err
}
