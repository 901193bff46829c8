package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one simulated fill.
type Entry struct {
	Time       string         `json:"time"`
	Symbol     string         `json:"symbol"`
	Side       string         `json:"side"`
	Qty        float64        `json:"qty"`
	Price      float64        `json:"price"`
	Fee        float64        `json:"fee"`
	Reward     float64        `json:"reward"`
	TotalValue float64        `json:"total_value"`
	Extra      map[string]any `json:"extra,omitempty"`
}

type DecisionEntry struct {
	Time       string             `json:"time"`
	Symbol     string             `json:"symbol"`
	Action     string             `json:"action"`
	Reason     string             `json:"reason"`
	Confidence float64            `json:"confidence"`
	Price      float64            `json:"price"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Degraded   bool               `json:"degraded,omitempty"`
}

// Journal appends NDJSON lines to one file per UTC day. A nil *Journal
// discards everything.
type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func New(dir string) *Journal {
	if dir == "" {
		dir = "logs"
	}
	return &Journal{dir: dir, now: time.Now}
}

func (j *Journal) Dir() string { return j.dir }

func (j *Journal) dailyFilepath(t time.Time) string {
	return filepath.Join(j.dir, t.Format("2006-01-02")+".txt")
}

func (j *Journal) decisionsFilepath(t time.Time) string {
	return filepath.Join(j.dir, "decisions", t.Format("2006-01-02")+".txt")
}

func (j *Journal) Append(e Entry) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now().UTC()
	e.Time = now.Format(time.RFC3339)
	return appendLine(j.dailyFilepath(now), e)
}

func (j *Journal) AppendDecision(e DecisionEntry) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now().UTC()
	e.Time = now.Format(time.RFC3339)
	return appendLine(j.decisionsFilepath(now), e)
}

func appendLine(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files last modified more than retentionDays
// ago and removes the originals. It returns the number of files compressed.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if j == nil || retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	n := 0
	err := filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// already compressed on an earlier run
		if _, err := os.Stat(gz); err == nil {
			return os.Remove(p)
		}
		if err := gzipFile(p, gz); err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		n++
		return os.Remove(p)
	})
	return n, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
