package registry

import (
	"bytes"
	"strings"
	"sync"

	"github.com/slok/progtree/internal/model"
)

// DetailWriter is an io.Writer that publishes every complete line written to it as
// the detail of an action.
type DetailWriter struct {
	r   *Registry
	id  model.ActionID
	mu  sync.Mutex
	buf []byte
}

// DetailWriter returns a writer for the detail of an action. The action doesn't
// need to exist until the first line is published.
func (r *Registry) DetailWriter(id model.ActionID) *DetailWriter {
	return &DetailWriter{r: r, id: id}
}

func (w *DetailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		line := strings.TrimRight(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]
		if err := w.r.SetDetail(w.id, line); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// Flush publishes the pending partial line, if any.
func (w *DetailWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) == 0 {
		return nil
	}

	line := strings.TrimRight(string(w.buf), "\r")
	w.buf = w.buf[:0]
	return w.r.SetDetail(w.id, line)
}
