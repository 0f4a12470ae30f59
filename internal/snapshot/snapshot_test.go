package snapshot

import (
	"bytes"
	"errors"
	"testing"
)

func testPixels(w, h int) []byte {
	pix := make([]byte, w*h*4)
	for i := range pix {
		pix[i] = byte(i / 64)
	}
	return pix
}

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
	}{
		{"raw", false},
		{"zstd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix := testPixels(16, 8)
			s := Pack(pix, 16, 8, tt.compress)
			if s.Compressed() != tt.compress {
				t.Errorf("Compressed() = %v, want %v", s.Compressed(), tt.compress)
			}
			if s.Width() != 16 || s.Height() != 8 {
				t.Errorf("dimensions = %dx%d, want 16x8", s.Width(), s.Height())
			}

			got, err := s.Unpack()
			if err != nil {
				t.Fatalf("Unpack() error = %v", err)
			}
			if !bytes.Equal(got, pix) {
				t.Error("Unpack() did not return the packed bytes")
			}
		})
	}
}

// TestPackIsACopy verifies later writes to the source do not leak into the snapshot.
func TestPackIsACopy(t *testing.T) {
	pix := testPixels(4, 4)
	s := Pack(pix, 4, 4, false)
	pix[0] = 99

	got, err := s.Unpack()
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if got[0] == 99 {
		t.Error("snapshot shares memory with the source buffer")
	}

	// Unpacked buffers are independent too.
	got[1] = 77
	again, _ := s.Unpack()
	if again[1] == 77 {
		t.Error("Unpack() returned shared memory")
	}
}

func TestCompressionShrinksFlatBuffers(t *testing.T) {
	pix := make([]byte, 64*64*4)
	s := Pack(pix, 64, 64, true)
	if s.StoredSize() >= len(pix) {
		t.Errorf("StoredSize() = %d, want less than %d", s.StoredSize(), len(pix))
	}
}

func TestUnpackSizeMismatch(t *testing.T) {
	s := Pack(make([]byte, 12), 4, 4, false)
	if _, err := s.Unpack(); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Unpack() error = %v, want ErrSizeMismatch", err)
	}
}
