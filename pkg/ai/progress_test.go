package ai

import (
	"io"
	"strings"
	"testing"
)

func TestProgressReader_Percentages(t *testing.T) {
	var got []float64
	r := NewProgressReader(strings.NewReader(strings.Repeat("x", 200)), 200, func(p *float64) {
		if p == nil {
			t.Fatalf("expected determinate progress")
		}
		got = append(got, *p)
	})

	buf := make([]byte, 50)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		}
	}

	want := []float64{25, 50, 75, 100}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestProgressReader_UnknownSize(t *testing.T) {
	calls := 0
	r := NewProgressReader(strings.NewReader("abcdef"), 0, func(p *float64) {
		if p != nil {
			t.Fatalf("expected indeterminate progress got %v", *p)
		}
		calls++
	})
	io.Copy(io.Discard, io.LimitReader(r, 3))
	io.Copy(io.Discard, r)

	if calls != 1 {
		t.Fatalf("expected a single indeterminate report got %d", calls)
	}
}

func TestProgressReader_NeverExceeds100(t *testing.T) {
	var last float64
	r := NewProgressReader(strings.NewReader("0123456789"), 5, func(p *float64) {
		last = *p
	})
	io.Copy(io.Discard, r)
	if last != 100 {
		t.Fatalf("expected clamp at 100 got %v", last)
	}
}
