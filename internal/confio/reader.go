// Package confio implements a small buffered byte reader tailored to the
// config parser: single pass, fixed buffer, explicit EOF/error sentinels
// rather than bufio.Reader's rune-aware API.
package confio

import "io"

// bufSize matches the chunk size the config reader reads in.
const bufSize = 4096

// Reader reads bytes one at a time from an underlying io.Reader, refilling
// a fixed-size buffer as it's drained. It is not safe for concurrent use
// and is single-pass: once NextByte reports io.EOF, it keeps reporting it.
type Reader struct {
	src  io.Reader
	buf  [bufSize]byte
	off  int
	size int
	err  error
}

// New wraps src in a Reader, filling the first chunk eagerly.
func New(src io.Reader) *Reader {
	r := &Reader{src: src}
	r.fill()
	return r
}

func (r *Reader) fill() {
	n, err := r.src.Read(r.buf[:])
	r.off = 0
	r.size = n
	if err != nil && err != io.EOF {
		r.err = err
	} else if n == 0 && err == io.EOF {
		r.err = io.EOF
	}
}

// NextByte returns the next byte of input. ok is false exactly when err is
// non-nil: err is io.EOF at end of input, or the underlying reader's
// error, unwrapped, otherwise. Once NextByte has returned a non-nil err it continues to do
// so on every subsequent call.
func (r *Reader) NextByte() (b byte, ok bool, err error) {
	if r.off >= r.size {
		if r.err != nil {
			return 0, false, r.err
		}
		r.fill()
		if r.err != nil {
			return 0, false, r.err
		}
	}
	b = r.buf[r.off]
	r.off++
	return b, true, nil
}
