package gateway

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/mtxpt/phx-fix-examples/errs"
)

// JournalEntry is one recorded session message with its direction and the
// local receive or send time.
type JournalEntry struct {
	Time      time.Time `json:"time"`
	Direction string    `json:"direction"`
	MsgType   string    `json:"msg_type"`
	Body      string    `json:"body"`
}

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Journal records session traffic in memory and writes it to disk on demand.
// It is safe for concurrent use so transports can record from their own
// goroutines.
type Journal struct {
	mu      sync.Mutex
	dir     string
	entries []JournalEntry
}

// NewJournal creates a journal writing files under dir. The directory is
// created on first save.
func NewJournal(dir string) *Journal {
	return &Journal{dir: dir}
}

// Record appends one message to the in-memory history.
func (j *Journal) Record(dir, msgType, body string, ts time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, JournalEntry{
		Time:      ts,
		Direction: dir,
		MsgType:   msgType,
		Body:      body,
	})
}

// Len returns the number of recorded messages.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Save writes the recorded history as JSON to "<prefix>_messages.json" under
// the journal directory. With purge set, the in-memory history is cleared
// after the write succeeds.
func (j *Journal) Save(prefix string, purge bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return errs.New("", errs.CodeInternal,
			errs.WithMessage("create journal directory"), errs.WithCause(err))
	}
	data, err := json.MarshalIndent(j.entries, "", "  ")
	if err != nil {
		return errs.New("", errs.CodeInternal,
			errs.WithMessage("encode journal"), errs.WithCause(err))
	}
	path := filepath.Join(j.dir, fmt.Sprintf("%s_messages.json", prefix))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.New("", errs.CodeInternal,
			errs.WithMessage("write journal"), errs.WithCause(err))
	}
	if purge {
		j.entries = nil
	}
	return nil
}

// FileNamePrefix builds the conventional journal file prefix from the
// session identity and a timestamp.
func FileNamePrefix(username, account string, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s", ts.Format("20060102_150405"), username, account)
}
