package scale

import (
	"testing"
)

type benchmarkPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64 `scale:"compact"`
	Val3    uint64
	IsAlive bool
	Padding [3]byte
}

func BenchmarkEncodeStruct(b *testing.B) {
	h := sampleHeader()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(headerCodec, h)
	}
}

func BenchmarkDecodeStruct(b *testing.B) {
	data, _ := Encode(headerCodec, sampleHeader())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Decode(headerCodec, data)
	}
}

func BenchmarkMarshalTo(b *testing.B) {
	h := sampleHeader()
	buf := make([]byte, Size(headerCodec, h))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalTo(headerCodec, h, buf)
	}
}

func BenchmarkReflectMarshal(b *testing.B) {
	p := benchmarkPayload{ID: 1, Val1: 100, Val2: 1 << 20}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(p)
	}
}

func BenchmarkReflectUnmarshal(b *testing.B) {
	data, _ := Marshal(benchmarkPayload{ID: 1, Val1: 100, Val2: 1 << 20})
	var p benchmarkPayload
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Unmarshal(data, &p)
	}
}

func BenchmarkCompact(b *testing.B) {
	values := []uint64{1, 1 << 10, 1 << 20, 1 << 40}
	w := NewBufferWriter(64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.w.(interface{ Reset() }).Reset()
		for _, v := range values {
			w.WriteCompact(v)
		}
		r := NewReader(w.Bytes())
		for range values {
			var v uint64
			r.ReadCompact(&v)
		}
	}
}
