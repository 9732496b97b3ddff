package transfer

import (
	"context"
	"io"

	"golang.org/x/sync/semaphore"
)

// boundedPipe wraps io.Pipe with a byte-weighted semaphore so a fast
// producer cannot grow memory unboundedly ahead of a slow consumer:
// full writes block, empty reads block (spec.md §4.8, §8 property 6).
// Stock io.Pipe already blocks a writer until a reader is ready, but has
// no notion of "how much unread data exists" — the semaphore adds that.
type boundedPipe struct {
	r   *io.PipeReader
	w   *io.PipeWriter
	cap int64
	sem *semaphore.Weighted
}

// NewBoundedPipe returns a pipe whose writer blocks once capacity bytes
// are in flight and whose reader releases capacity back as it consumes.
func NewBoundedPipe(capacity int64) (io.ReadCloser, io.WriteCloser) {
	pr, pw := io.Pipe()
	bp := &boundedPipe{r: pr, w: pw, cap: capacity, sem: semaphore.NewWeighted(capacity)}
	return &boundedReader{bp}, &boundedWriter{bp}
}

type boundedWriter struct{ *boundedPipe }

func (w *boundedWriter) Write(p []byte) (int, error) {
	n := int64(len(p))
	if n > w.cap {
		n = w.cap // never block forever on a single write larger than capacity
	}
	if err := w.sem.Acquire(context.Background(), n); err != nil {
		return 0, err
	}
	written, err := w.w.Write(p)
	return written, err
}

func (w *boundedWriter) Close() error { return w.w.Close() }

type boundedReader struct{ *boundedPipe }

func (r *boundedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		release := int64(n)
		if release > r.cap {
			release = r.cap
		}
		r.sem.Release(release)
	}
	return n, err
}

func (r *boundedReader) Close() error { return r.r.Close() }
