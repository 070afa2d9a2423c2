package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Octrafic/stepexec/internal/core/tester"
)

const historyFile = "history.jsonl"

// Record is one stored step result.
type Record struct {
	ID         string            `json:"id"`
	RecordedAt time.Time         `json:"recorded_at"`
	Operation  string            `json:"operation,omitempty"`
	Result     tester.StepResult `json:"result"`
}

// History is an append-only JSONL log of step results.
type History struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewHistory opens the history stored under dir, creating dir if needed.
func NewHistory(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &History{path: filepath.Join(dir, historyFile), now: time.Now}, nil
}

// Path returns the history file location.
func (h *History) Path() string {
	return h.path
}

// Append stores result and returns the saved record.
func (h *History) Append(operation string, result tester.StepResult) (Record, error) {
	record := Record{
		ID:         uuid.New().String(),
		RecordedAt: h.now().UTC(),
		Operation:  operation,
		Result:     result,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return Record{}, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return Record{}, fmt.Errorf("failed to write history file: %w", err)
	}

	return record, nil
}

// List returns stored records oldest first. A positive limit keeps only the
// most recent ones.
func (h *History) List(limit int) ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	records := []Record{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("failed to decode history line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}
