package ai

import (
	"io"
	"math"
	"sync"
)

// ProgressFunc receives upload progress in percent. A nil percent means the
// total size is unknown and progress is indeterminate.
type ProgressFunc func(percent *float64)

// Media is an uploaded file handed to a transcriber.
type Media struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ProgressReader reports how much of the wrapped reader has been consumed.
// Reports are emitted only when the whole percent value changes.
type ProgressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu   sync.Mutex
	read int64
	last int
}

// NewProgressReader wraps r. total <= 0 makes every report indeterminate.
func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, fn: fn, last: -1}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

func (p *ProgressReader) advance(n int64) {
	if p.fn == nil {
		return
	}

	p.mu.Lock()
	p.read += n
	if p.total <= 0 {
		first := p.last == -1
		p.last = 0
		p.mu.Unlock()
		if first {
			p.fn(nil)
		}
		return
	}
	pct := math.Min(100, float64(p.read)/float64(p.total)*100)
	whole := int(pct)
	if whole == p.last {
		p.mu.Unlock()
		return
	}
	p.last = whole
	p.mu.Unlock()

	p.fn(&pct)
}

// Report sends a fixed value to fn when fn is set.
func (f ProgressFunc) Report(percent float64) {
	if f != nil {
		f(&percent)
	}
}
