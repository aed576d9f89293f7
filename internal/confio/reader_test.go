package confio

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNextByteReadsAllBytesInOrder(t *testing.T) {
	in := "hello, config!"
	r := New(strings.NewReader(in))

	var got []byte
	for {
		b, ok, err := r.NextByte()
		if !ok {
			if err != io.EOF {
				t.Fatalf("unexpected error: %v", err)
			}
			break
		}
		got = append(got, b)
	}

	if string(got) != in {
		t.Fatalf("got %q, want %q", got, in)
	}
}

func TestNextByteStaysAtEOF(t *testing.T) {
	r := New(strings.NewReader(""))

	for i := 0; i < 3; i++ {
		_, ok, err := r.NextByte()
		if ok || err != io.EOF {
			t.Fatalf("call %d: got ok=%v err=%v, want ok=false err=io.EOF", i, ok, err)
		}
	}
}

func TestNextByteAcrossChunkBoundary(t *testing.T) {
	in := bytes.Repeat([]byte("x"), bufSize+10)
	r := New(bytes.NewReader(in))

	n := 0
	for {
		_, ok, err := r.NextByte()
		if !ok {
			if err != io.EOF {
				t.Fatalf("unexpected error: %v", err)
			}
			break
		}
		n++
	}
	if n != len(in) {
		t.Fatalf("read %d bytes, want %d", n, len(in))
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errBoom }

var errBoom = io.ErrUnexpectedEOF

func TestNextByteSurfacesReadError(t *testing.T) {
	r := New(errReader{})
	_, ok, err := r.NextByte()
	if ok || err != errBoom {
		t.Fatalf("got ok=%v err=%v, want ok=false err=%v", ok, err, errBoom)
	}
}
