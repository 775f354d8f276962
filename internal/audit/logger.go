// Package audit keeps a trail of device operations.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anchorageoss/zkclient/pkg/zymkey"
)

// Status values recorded for an operation.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Entry represents an audit log entry.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"`
	Kind      string    `json:"kind,omitempty"`
	NativeOp  string    `json:"native_op,omitempty"`
	Code      int       `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger records zymkey.Client operations. Each entry is written as one JSON
// line to the output writer and kept in memory for Query.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	store []Entry
	limit int
	now   func() time.Time
}

var _ zymkey.Recorder = (*Logger)(nil)

// NewLogger creates a logger writing to out, which may be nil. At most limit
// entries are kept in memory; 0 keeps everything.
func NewLogger(out io.Writer, limit int) *Logger {
	return &Logger{
		out:   out,
		limit: limit,
		now:   time.Now,
	}
}

// Record implements zymkey.Recorder.
func (l *Logger) Record(operation string, err error) {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC(),
		Operation: operation,
		Status:    StatusOK,
	}
	if err != nil {
		entry.Status = StatusError
		entry.Error = err.Error()

		var zkErr *zymkey.Error
		if errors.As(err, &zkErr) {
			entry.Kind = zkErr.Kind.String()
			entry.NativeOp = zkErr.Op
			entry.Code = zkErr.Code
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.store = append(l.store, entry)
	if l.limit > 0 && len(l.store) > l.limit {
		l.store = l.store[len(l.store)-l.limit:]
	}

	if l.out != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			slog.Error("audit marshal", "error", err)
			return
		}
		fmt.Fprintf(l.out, "%s\n", data)
	}
}

// Query returns stored entries, newest first. An empty operation matches all
// operations; a limit of 0 returns every match.
func (l *Logger) Query(operation string, limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var results []Entry
	for i := len(l.store) - 1; i >= 0; i-- {
		e := l.store[i]
		if operation != "" && e.Operation != operation {
			continue
		}
		results = append(results, e)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}
