package hll

import (
	"fmt"
	"testing"
)

const benchKeys = 1 << 16

var benchData [][]byte

func init() {
	benchData = make([][]byte, benchKeys)
	for i := range benchKeys {
		benchData[i] = fmt.Appendf(nil, "key-%d", i)
	}
}

func BenchmarkAdd(b *testing.B) {
	e := New(DefaultPrecision)
	b.ResetTimer()
	for i := range b.N {
		e.Add(benchData[i%benchKeys])
	}
}

func BenchmarkAddXXH3(b *testing.B) {
	e := New(DefaultPrecision, WithHash(XXH3))
	b.ResetTimer()
	for i := range b.N {
		e.Add(benchData[i%benchKeys])
	}
}

func BenchmarkAddHash(b *testing.B) {
	e := New(DefaultPrecision)
	b.ResetTimer()
	for i := range b.N {
		e.AddHash(uint32(i) * 0x9e3779b1)
	}
}

func BenchmarkEstimate(b *testing.B) {
	for _, p := range []int{MinPrecision, DefaultPrecision, MaxPrecision} {
		b.Run(fmt.Sprintf("p%d", p), func(b *testing.B) {
			e := New(p)
			for _, k := range benchData {
				e.Add(k)
			}
			b.ResetTimer()
			for range b.N {
				_ = e.Estimate()
			}
		})
	}
}

func BenchmarkMerge(b *testing.B) {
	x := New(DefaultPrecision)
	y := New(DefaultPrecision)
	for i, k := range benchData {
		if i%2 == 0 {
			x.Add(k)
		} else {
			y.Add(k)
		}
	}
	b.ResetTimer()
	for range b.N {
		if err := x.Merge(y); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNew(b *testing.B) {
	b.ReportAllocs()
	for range b.N {
		if New(DefaultPrecision).RegisterCount() == 0 {
			b.Fatal("unexpected zero register count")
		}
	}
}
