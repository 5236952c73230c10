package aris

import (
	"bytes"
	"testing"
)

func TestNewFrameBuilderRejectsNegativeIndex(t *testing.T) {
	if _, err := NewFrameBuilder(-1, []byte{1}, []byte{2}, 10); err != ErrMalformedFirstPart {
		t.Fatalf("NewFrameBuilder(-1, ...) = %v, want ErrMalformedFirstPart", err)
	}
}

func TestNewFrameBuilderRejectsEmptyHeader(t *testing.T) {
	if _, err := NewFrameBuilder(0, nil, []byte{2}, 10); err != ErrMalformedFirstPart {
		t.Fatalf("NewFrameBuilder with empty header = %v, want ErrMalformedFirstPart", err)
	}
}

func TestFrameBuilderAssemblesInOrder(t *testing.T) {
	header := bytes.Repeat([]byte{0xAB}, 8)
	first := []byte("hello, ")
	b, err := NewFrameBuilder(5, header, first, len("hello, world"))
	if err != nil {
		t.Fatalf("NewFrameBuilder: %v", err)
	}
	if b.FrameIndex() != 5 {
		t.Fatalf("FrameIndex = %d, want 5", b.FrameIndex())
	}
	if b.IsComplete() {
		t.Fatalf("builder should not be complete after first fragment")
	}

	n := b.Append(len(first), []byte("world"))
	if n != len("world") {
		t.Fatalf("Append returned %d, want %d", n, len("world"))
	}
	if !b.IsComplete() {
		t.Fatalf("builder should be complete after all bytes received")
	}
	if b.PercentComplete() != 100 {
		t.Fatalf("PercentComplete = %v, want 100", b.PercentComplete())
	}

	if got := b.TakeFrameData(); string(got) != "hello, world" {
		t.Fatalf("TakeFrameData = %q, want %q", got, "hello, world")
	}
	if got := b.TakeHeader(); !bytes.Equal(got, header) {
		t.Fatalf("TakeHeader = %x, want %x", got, header)
	}
}

func TestFrameBuilderAppendClipsOutOfRange(t *testing.T) {
	b, err := NewFrameBuilder(0, []byte{1}, []byte("ab"), 4)
	if err != nil {
		t.Fatalf("NewFrameBuilder: %v", err)
	}
	if n := b.Append(100, []byte("xy")); n != 0 {
		t.Fatalf("Append at out-of-range offset returned %d, want 0", n)
	}
	if n := b.Append(-1, []byte("xy")); n != 0 {
		t.Fatalf("Append at negative offset returned %d, want 0", n)
	}
}

func TestFrameBuilderBytesReceivedAndExpectedSize(t *testing.T) {
	b, err := NewFrameBuilder(0, []byte{1}, []byte("ab"), 10)
	if err != nil {
		t.Fatalf("NewFrameBuilder: %v", err)
	}
	if b.ExpectedSize() != 10 {
		t.Fatalf("ExpectedSize = %d, want 10", b.ExpectedSize())
	}
	if b.BytesReceived() != 2 {
		t.Fatalf("BytesReceived = %d, want 2", b.BytesReceived())
	}
}
