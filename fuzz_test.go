//go:build fuzz

package scale

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
)

// FuzzCompactRoundTrip checks that every u64 encodes minimally and decodes
// back under the strict profile.
func FuzzCompactRoundTrip(f *testing.F) {
	for _, v := range []uint64{0, 63, 64, 16383, 16384, 1<<30 - 1, 1 << 30, 1<<64 - 1} {
		f.Add(v)
	}

	f.Fuzz(func(t *testing.T, v uint64) {
		data, err := Encode(Compact, v)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", v, err)
		}
		if len(data) != CompactSize(v) {
			t.Fatalf("Encode(%d) gave %d bytes, CompactSize says %d", v, len(data), CompactSize(v))
		}
		got, err := Decode(Compact, data, WithStrictCompact())
		if err != nil {
			t.Fatalf("strict decode of %x failed: %v", data, err)
		}
		if got != v {
			t.Fatalf("round trip of %d gave %d", v, got)
		}
	})
}

// FuzzCompactDecode feeds arbitrary bytes to the compact decoder. Whatever
// the lenient reader accepts must re-encode to a prefix the strict reader
// accepts with the same value.
func FuzzCompactDecode(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x01, 0x00})
	f.Add([]byte{0x03, 0x00, 0x00, 0x00, 0x40})
	f.Add([]byte{0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		v := new(big.Int)
		r := NewReader(data)
		r.ReadCompactBig(v)
		if r.Err() != nil {
			return
		}
		w := NewBufferWriter(len(data))
		w.WriteCompactBig(v)
		if w.Err() != nil {
			t.Fatalf("re-encode of %s failed: %v", v, w.Err())
		}
		if w.Count() > int64(r.Pos()) {
			t.Fatalf("minimal form of %s is longer than %x", v, data[:r.Pos()])
		}
		strict := new(big.Int)
		sr := NewReader(w.Bytes(), WithStrictCompact())
		sr.ReadCompactBig(strict)
		if sr.Err() != nil || strict.Cmp(v) != 0 {
			t.Fatalf("strict decode of %x: %v, %s", w.Bytes(), sr.Err(), strict)
		}
	})
}

// FuzzSequenceDecode makes sure hostile length prefixes fail cleanly.
func FuzzSequenceDecode(f *testing.F) {
	f.Add([]byte{0x0c, 0x01, 0x02, 0x03})
	f.Add([]byte{0x28, 0x01, 0x02})
	f.Add([]byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x01})

	c := Sequence(Tuple2(U16, Option(String)))
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Decode(c, data, WithTrailingData())
		if err != nil {
			if !errors.Is(err, ErrEndOfInput) && !errors.Is(err, ErrOversizedLength) &&
				!errors.Is(err, ErrInvalidDiscriminant) && !errors.Is(err, ErrOverflow) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		out, err := Encode(c, v)
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		got, err := Decode(c, out)
		if err != nil {
			t.Fatalf("decode of re-encoded value failed: %v", err)
		}
		again, _ := Encode(c, got)
		if !bytes.Equal(out, again) {
			t.Fatalf("encoding is not stable: %x vs %x", out, again)
		}
	})
}
