// Package events handles event emission for lead verdict lifecycle
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for clover
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitVerdict emits the event for a completed duplicate check. Duplicate
// and clear leads get distinct event types so downstream campaign
// tooling can subscribe to just the clear ones.
func (e *Emitter) EmitVerdict(ctx context.Context, lead *models.StagedLead, verdict models.MatchVerdict) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitVerdict")
	defer span.End()

	eventType := EventTypeVerdictClear
	if verdict.IsDuplicate() {
		eventType = EventTypeVerdictDuplicate
	}

	event := &kafka.VerdictEvent{
		EventType:  string(eventType),
		TenantID:   lead.TenantID,
		LeadID:     lead.ID,
		ExternalID: lead.ExternalID,
		Verdict:    verdict,
	}

	if err := e.producer.PublishVerdictEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit verdict event")
		return err
	}

	return nil
}

// EmitVerdicts emits a batch of verdict events, one per checked lead.
func (e *Emitter) EmitVerdicts(ctx context.Context, events []*kafka.VerdictEvent) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitVerdicts")
	defer span.End()

	if err := e.producer.PublishVerdictEvents(ctx, events); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit verdict events batch")
		return err
	}
	return nil
}
