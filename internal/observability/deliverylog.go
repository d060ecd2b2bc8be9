// Package observability provides the delivery log and metrics for
// lace-notify. Routing activity is persisted as structured JSON Lines
// (JSONL) and metrics are derived on demand from the log.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Record is a single entry in the delivery log.
type Record struct {
	Time time.Time      `json:"time"`
	Type string         `json:"type"` // e.g. "event.received", "notify.delivered"
	Data map[string]any `json:"data,omitempty"`
}

// RecordFilter specifies criteria for reading records.
type RecordFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
}

// DeliveryLog defines the interface for writing and reading delivery records.
type DeliveryLog interface {
	Write(record Record) error
	LogEvent(recordType string, data map[string]any) error
	Read(filter RecordFilter) ([]Record, error)
	Close() error
}

// jsonlDeliveryLog implements DeliveryLog using append-only JSONL files.
type jsonlDeliveryLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLDeliveryLog creates a DeliveryLog backed by a JSONL file at the
// given path.
func NewJSONLDeliveryLog(path string) (DeliveryLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening delivery log: %w", err)
	}
	return &jsonlDeliveryLog{
		path: path,
		file: f,
	}, nil
}

// LogEvent records a typed entry stamped with the current time. It adapts
// the log to the orchestrator's logger interface.
func (l *jsonlDeliveryLog) LogEvent(recordType string, data map[string]any) error {
	return l.Write(Record{
		Time: time.Now().UTC(),
		Type: recordType,
		Data: data,
	})
}

// Write appends a JSON-encoded record followed by a newline to the log file.
func (l *jsonlDeliveryLog) Write(record Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// Read opens the log file for reading, scans line by line, decodes each
// record, and returns those matching the given filter.
func (l *jsonlDeliveryLog) Read(filter RecordFilter) ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening delivery log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			continue // skip malformed lines
		}

		if matchesRecordFilter(record, filter) {
			records = append(records, record)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning delivery log: %w", err)
	}

	return records, nil
}

// Close closes the underlying log file.
func (l *jsonlDeliveryLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing delivery log: %w", err)
	}
	return nil
}

// matchesRecordFilter checks whether a record satisfies all filter criteria.
func matchesRecordFilter(record Record, filter RecordFilter) bool {
	if filter.Since != nil && record.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && record.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && record.Type != filter.Type {
		return false
	}
	return true
}
