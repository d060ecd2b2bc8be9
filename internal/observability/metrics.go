package observability

import (
	"fmt"
	"time"
)

// DeliveryMetrics holds calculated metrics derived from the delivery log.
type DeliveryMetrics struct {
	EventsRouted    int            `json:"events_routed"`
	Delivered       int            `json:"delivered"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	DeliveredByKind map[string]int `json:"delivered_by_kind"`
	ByTarget        map[string]int `json:"by_target"`
	OldestRecord    *time.Time     `json:"oldest_record,omitempty"`
	NewestRecord    *time.Time     `json:"newest_record,omitempty"`
}

// MetricsCalculator derives delivery metrics from the delivery log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*DeliveryMetrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from a DeliveryLog.
type metricsCalculator struct {
	log DeliveryLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the given
// DeliveryLog.
func NewMetricsCalculator(log DeliveryLog) MetricsCalculator {
	return &metricsCalculator{log: log}
}

// Calculate reads all records since the given time and aggregates them into
// metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*DeliveryMetrics, error) {
	records, err := mc.log.Read(RecordFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading records for metrics: %w", err)
	}

	m := &DeliveryMetrics{
		DeliveredByKind: make(map[string]int),
		ByTarget:        make(map[string]int),
	}

	for i, record := range records {
		if i == 0 {
			t := record.Time
			m.OldestRecord = &t
		}
		t := record.Time
		m.NewestRecord = &t

		switch record.Type {
		case "event.received":
			m.EventsRouted++
		case "notify.delivered":
			m.Delivered++
			if kind, ok := record.Data["kind"].(string); ok {
				m.DeliveredByKind[kind]++
			}
			if target, ok := record.Data["target"].(string); ok {
				m.ByTarget[target]++
			}
		case "notify.skipped":
			m.Skipped++
			if target, ok := record.Data["target"].(string); ok {
				m.ByTarget[target]++
			}
		case "notify.failed":
			m.Failed++
			if target, ok := record.Data["target"].(string); ok {
				m.ByTarget[target]++
			}
		}
	}

	return m, nil
}
