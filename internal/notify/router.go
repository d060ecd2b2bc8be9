package notify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lace-ai/lace-notify/pkg/models"
)

// RecipientHandle is a resolved, deliverable recipient for one agent.
type RecipientHandle interface {
	Send(ctx context.Context, text string) error
}

// RecipientResolver maps an agent identity to a deliverable handle.
// A nil handle means the agent is currently unavailable (offline, disabled,
// or unknown); that is an expected condition, not an error.
type RecipientResolver interface {
	Resolve(identity string) RecipientHandle
}

// Router classifies a lifecycle event, formats a message per intent, and
// attempts delivery to each resolved recipient. Every intent gets at most
// one delivery attempt per call; retry policy belongs to the transport.
type Router interface {
	// Route returns a report with one result per intent, in classifier
	// output order. Unresolvable recipients are reported as skipped and
	// delivery errors as failed; neither aborts the remaining intents.
	Route(ctx context.Context, event models.TaskLifecycleEvent, previous *models.Task) models.RoutingReport
}

// dispatchRouter implements Router. With maxConcurrent > 1, intents are
// dispatched through a bounded errgroup; each worker records its outcome in
// its own result slot and never returns an error, so one failed delivery
// cannot cancel the others.
type dispatchRouter struct {
	classifier    EventClassifier
	resolver      RecipientResolver
	maxConcurrent int
}

// NewRouter creates a Router. maxConcurrent values below 2 select
// sequential dispatch, which keeps delivery completion order deterministic.
func NewRouter(classifier EventClassifier, resolver RecipientResolver, maxConcurrent int) Router {
	return &dispatchRouter{
		classifier:    classifier,
		resolver:      resolver,
		maxConcurrent: maxConcurrent,
	}
}

func (r *dispatchRouter) Route(ctx context.Context, event models.TaskLifecycleEvent, previous *models.Task) models.RoutingReport {
	intents := r.classifier.Classify(event, previous)
	results := make([]models.RoutingResult, len(intents))

	if r.maxConcurrent > 1 && len(intents) > 1 {
		var g errgroup.Group
		g.SetLimit(r.maxConcurrent)
		for i, intent := range intents {
			g.Go(func() error {
				results[i] = r.dispatch(ctx, intent, event)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors
	} else {
		for i, intent := range intents {
			results[i] = r.dispatch(ctx, intent, event)
		}
	}

	return models.RoutingReport{Results: results}
}

// dispatch resolves and delivers a single intent, capturing the outcome.
func (r *dispatchRouter) dispatch(ctx context.Context, intent models.NotificationIntent, event models.TaskLifecycleEvent) models.RoutingResult {
	handle := r.resolver.Resolve(intent.Target)
	if handle == nil {
		return models.RoutingResult{
			Intent:  intent,
			Outcome: models.OutcomeSkipped,
			Detail:  "recipient unavailable",
		}
	}

	text := FormatIntent(intent, event.Task, event.Actor)
	if err := handle.Send(ctx, text); err != nil {
		return models.RoutingResult{
			Intent:  intent,
			Outcome: models.OutcomeFailed,
			Detail:  err.Error(),
		}
	}

	return models.RoutingResult{Intent: intent, Outcome: models.OutcomeDelivered}
}
