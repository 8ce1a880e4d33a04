package updatelog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Kind selects the record variant and its JSON shape.
type Kind string

const (
	KindPlatform Kind = "platform_update"
	KindPolicy   Kind = "policy_update"
)

// Record is one persisted change description. Immutable once created; it is
// dropped only by falling past the log's capacity. Platform records carry
// the source under "platform", policy records under "source".
type Record struct {
	ID             int64  `json:"id"`
	Platform       string `json:"platform,omitempty"`
	Source         string `json:"source,omitempty"`
	URL            string `json:"url"`
	Type           Kind   `json:"type"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	Timestamp      string `json:"timestamp"`
	ActionRequired bool   `json:"action_required"`
}

// Keywords that flag a summary as needing follow-up, per record kind.
// Matched once at record creation, never recomputed on read.
var actionTerms = map[Kind][]string{
	KindPlatform: {
		"compliance", "required", "prohibited", "no longer permitted",
		"deadline", "terminate", "suspension", "consent", "opt out",
	},
	KindPolicy: {
		"compliance", "mandatory", "regulation", "legislation",
		"enforcement", "deadline", "obligation", "prohibited", "penalty",
	},
}

func actionRequired(kind Kind, summary string) bool {
	lower := strings.ToLower(summary)
	for _, term := range actionTerms[kind] {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// NewRecord builds a record for a detected change. The id is time-derived,
// the timestamp RFC 3339 UTC.
func NewRecord(kind Kind, sourceName, url, title, summary string, now time.Time) Record {
	r := Record{
		ID:             now.UnixMilli(),
		URL:            url,
		Type:           kind,
		Title:          title,
		Summary:        summary,
		Timestamp:      now.UTC().Format(time.RFC3339),
		ActionRequired: actionRequired(kind, summary),
	}
	if kind == KindPolicy {
		r.Source = sourceName
	} else {
		r.Platform = sourceName
	}
	return r
}

// Log is an append-ordered, capacity-bounded sequence of records persisted
// as a single JSON file, newest first. Each append rewrites the whole file.
type Log struct {
	fs       afero.Fs
	path     string
	capacity int
}

func NewLog(path string, capacity int) *Log {
	return NewLogWithFS(afero.NewOsFs(), path, capacity)
}

func NewLogWithFS(fs afero.Fs, path string, capacity int) *Log {
	return &Log{fs: fs, path: path, capacity: capacity}
}

// Records returns the stored sequence, newest first. A missing file is "no
// updates yet"; a corrupt file resets to empty with a logged warning.
func (l *Log) Records() []Record {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("updatelog: %s unreadable, starting empty: %v", l.path, err)
		}
		return nil
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		log.Printf("updatelog: %s corrupt, starting empty: %v", l.path, err)
		return nil
	}
	return recs
}

// Append inserts rec at the head, trims to capacity and rewrites the file.
func (l *Log) Append(rec Record) error {
	recs := append([]Record{rec}, l.Records()...)
	if len(recs) > l.capacity {
		recs = recs[:l.capacity]
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := l.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("updatelog: failed to create %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("updatelog: failed to marshal %s: %w", l.path, err)
	}
	if err := afero.WriteFile(l.fs, l.path, data, 0o644); err != nil {
		return fmt.Errorf("updatelog: failed to write %s: %w", l.path, err)
	}
	return nil
}
