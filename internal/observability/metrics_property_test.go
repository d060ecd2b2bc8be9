package observability

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestProperty_OutcomeCountsSum checks that every notify record lands in
// exactly one outcome bucket.
func TestProperty_OutcomeCountsSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
		types := []string{"event.received", "notify.delivered", "notify.skipped", "notify.failed"}

		n := rapid.IntRange(0, 50).Draw(t, "n")
		log := &fakeDeliveryLog{}
		notifyCount := 0
		for i := 0; i < n; i++ {
			recordType := rapid.SampledFrom(types).Draw(t, "type")
			if recordType != "event.received" {
				notifyCount++
			}
			log.records = append(log.records, Record{
				Time: base.Add(time.Duration(i) * time.Second),
				Type: recordType,
				Data: map[string]any{
					"target": rapid.SampledFrom([]string{"alice", "bob", "carol"}).Draw(t, "target"),
					"kind":   rapid.SampledFrom([]string{"completion", "assignment", "status_change", "note_added"}).Draw(t, "kind"),
				},
			})
		}

		m, err := NewMetricsCalculator(log).Calculate(time.Time{})
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		if got := m.Delivered + m.Skipped + m.Failed; got != notifyCount {
			t.Fatalf("outcome counts sum to %d, expected %d", got, notifyCount)
		}

		targetTotal := 0
		for _, c := range m.ByTarget {
			targetTotal += c
		}
		if targetTotal != notifyCount {
			t.Fatalf("target counts sum to %d, expected %d", targetTotal, notifyCount)
		}
	})
}
