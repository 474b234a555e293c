package flexle

import (
	"math"
	"testing"
)

// FuzzMutationSequence drives a Sampler through a sequence of Set/Append/
// DeleteAt operations derived from the fuzz input and asserts Verify stays
// clean after every one, following the teacher's packet fuzz harness
// pattern of decoding raw bytes into a bounded sequence of operations.
func FuzzMutationSequence(f *testing.F) {
	f.Add([]byte{0, 0, 0, 64, 0, 0, 0, 0, 1, 10, 2, 1, 3, 0})
	f.Add([]byte{1, 5, 200, 0, 10, 2, 3, 0, 0, 0, 0})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := New(nil)
		if err != nil {
			t.Fatalf("New(nil): %v", err)
		}

		pos := 0
		readByte := func() (byte, bool) {
			if pos >= len(data) {
				return 0, false
			}
			b := data[pos]
			pos++
			return b, true
		}

		for i := 0; i < 200; i++ {
			op, ok := readByte()
			if !ok {
				break
			}

			switch op % 3 {
			case 0:
				wb, ok := readByte()
				if !ok {
					break
				}
				w := float64(wb) / 4.0
				if math.IsNaN(w) || math.IsInf(w, 0) {
					break
				}
				if _, err := s.Append(w); err != nil {
					t.Fatalf("Append(%v): %v", w, err)
				}

			case 1:
				ib, ok := readByte()
				if !ok {
					break
				}
				wb, ok := readByte()
				if !ok {
					break
				}
				if s.Len() == 0 {
					break
				}
				idx := int(ib)%s.Len() + 1
				w := float64(wb) / 4.0
				if _, err := s.Set(idx, w); err != nil {
					t.Fatalf("Set(%d, %v): %v", idx, w, err)
				}

			case 2:
				ib, ok := readByte()
				if !ok {
					break
				}
				if s.Len() == 0 {
					break
				}
				idx := int(ib)%s.Len() + 1
				if _, err := s.DeleteAt(idx); err != nil {
					t.Fatalf("DeleteAt(%d): %v", idx, err)
				}
			}

			if err := s.Verify(); err != nil {
				t.Fatalf("Verify() failed after op %d (op byte %d): %v", i, op, err)
			}
		}
	})
}
