package models

// NotificationKind categorizes what a notification is about.
type NotificationKind string

const (
	NotifyCompletion   NotificationKind = "completion"
	NotifyAssignment   NotificationKind = "assignment"
	NotifyStatusChange NotificationKind = "status_change"
	NotifyNoteAdded    NotificationKind = "note_added"
)

// DeliveryHint is an ordering hint for delivery scheduling. The router does
// not act on it; it is carried for downstream schedulers.
type DeliveryHint string

const (
	HintImmediate  DeliveryHint = "immediate"
	HintBackground DeliveryHint = "background"
)

// NotificationIntent is a decision to notify one agent about one change.
// Intents are consumed immediately by the formatter and router and are
// never persisted. Detail carries an informational reason for status_change
// intents that do not correspond to a literal status transition, such as
// being reassigned away from a task.
type NotificationIntent struct {
	Target    string           `json:"target"`
	Kind      NotificationKind `json:"kind"`
	TaskID    string           `json:"task_id"`
	TaskTitle string           `json:"task_title"`
	Hint      DeliveryHint     `json:"hint"`
	Detail    string           `json:"detail,omitempty"`
}

// Outcome is the result of one delivery attempt for one intent.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// RoutingResult records what happened to a single intent.
type RoutingResult struct {
	Intent  NotificationIntent `json:"intent"`
	Outcome Outcome            `json:"outcome"`
	Detail  string             `json:"detail,omitempty"`
}

// RoutingReport is the aggregate result of routing one lifecycle event.
// Results preserve classifier output order. Skipped and failed entries are
// informational; they are never fatal to the surrounding task operation.
type RoutingReport struct {
	Results []RoutingResult `json:"results"`
}

// Counts returns the number of delivered, skipped, and failed results.
func (r RoutingReport) Counts() (delivered, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeDelivered:
			delivered++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return delivered, skipped, failed
}
