// Package processor handles incoming lead messages and drives the
// duplicate check pipeline: stage the lead, run the decision, persist
// the verdict, and emit the outcome event.
package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	leadrepo "github.com/Ramsey-B/clover/internal/repositories/lead"
	"github.com/Ramsey-B/clover/pkg/blocklist"
	"github.com/Ramsey-B/clover/pkg/decision"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/retry"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// blocklistTTL bounds how stale a tenant's cached block rules can get.
const blocklistTTL = 5 * time.Minute

// Collaborators are the external lookups the decision pipeline needs.
type Collaborators struct {
	Contacts  matching.ContactLookup
	Searcher  decision.EntitySearcher
	Assoc     decision.AssociationChecker
	Directory decision.DirectorySearcher
}

// LeadStore is the staged lead persistence the processor drives.
type LeadStore interface {
	Upsert(ctx context.Context, tenantID string, lead models.Lead) (*leadrepo.UpsertResult, error)
	SetStatus(ctx context.Context, tenantID, id, status string) error
	IncrementAttempts(ctx context.Context, tenantID, id string) (int, error)
	List(ctx context.Context, tenantID string, status *string, page, pageSize int) (*models.StagedLeadListResponse, error)
}

// VerdictStore persists check outcomes.
type VerdictStore interface {
	Create(ctx context.Context, tenantID, leadID string, verdict models.MatchVerdict) (*models.StoredVerdict, error)
}

// RuleStore loads the tenant's block rules for the decider cache.
type RuleStore interface {
	ListAll(ctx context.Context, tenantID string) ([]models.BlockRule, error)
}

// VerdictEmitter publishes the outcome event for a checked lead.
type VerdictEmitter interface {
	EmitVerdict(ctx context.Context, lead *models.StagedLead, verdict models.MatchVerdict) error
}

// Processor handles message processing for the lead check pipeline
type Processor struct {
	logger       ectologger.Logger
	leadRepo     LeadStore
	verdictRepo  VerdictStore
	ruleRepo     RuleStore
	emitter      VerdictEmitter
	ledger       retry.Ledger
	collab       Collaborators
	engineConfig matching.Config
	decideConfig decision.Config
	workerCount  int

	deciders sync.Map // key: tenantID -> *tenantDecider
}

type tenantDecider struct {
	decider *decision.Decider
	expires time.Time
}

// NewProcessor creates a new message processor
func NewProcessor(
	logger ectologger.Logger,
	leadRepo LeadStore,
	verdictRepo VerdictStore,
	ruleRepo RuleStore,
	emitter VerdictEmitter,
	ledger retry.Ledger,
	collab Collaborators,
	engineConfig matching.Config,
	decideConfig decision.Config,
	workerCount int,
) *Processor {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Processor{
		logger:       logger,
		leadRepo:     leadRepo,
		verdictRepo:  verdictRepo,
		ruleRepo:     ruleRepo,
		emitter:      emitter,
		ledger:       ledger,
		collab:       collab,
		engineConfig: engineConfig,
		decideConfig: decideConfig,
		workerCount:  workerCount,
	}
}

// ProcessMessage handles an incoming Kafka lead message
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessMessage")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"key":    msg.Key,
		"topic":  msg.Topic,
		"offset": msg.Offset,
	})

	if msg.LeadMessage == nil {
		if err := msg.ParseLeadMessage(); err != nil {
			log.WithError(err).Error("Failed to parse lead message")
			return err
		}
	}

	tenantID := msg.GetTenantID()
	if tenantID == "" {
		log.Error("Missing tenant_id in message")
		return nil // Skip message, don't retry
	}

	log = log.WithFields(map[string]any{
		"tenant_id":   tenantID,
		"external_id": msg.GetSourceID(),
	})

	result, err := p.leadRepo.Upsert(ctx, tenantID, msg.LeadMessage.ToLead())
	if err != nil {
		log.WithError(err).Error("Failed to stage lead")
		return err
	}

	staged := result.Lead
	if !result.IsChanged && staged.Status == models.StagedLeadStatusChecked {
		log.WithFields(map[string]any{"lead_id": staged.ID}).Debug("Lead unchanged and already checked, skipping")
		return nil
	}
	if !result.IsChanged && staged.Status == models.StagedLeadStatusFailed {
		log.WithFields(map[string]any{"lead_id": staged.ID}).Debug("Lead unchanged and previously exhausted, skipping")
		return nil
	}

	return p.CheckLead(ctx, staged)
}

// CheckLead runs the duplicate check for a staged lead and persists the
// outcome. A returned error means the message should be redelivered;
// permanent failures are absorbed after marking the lead failed.
func (p *Processor) CheckLead(ctx context.Context, staged *models.StagedLead) error {
	ctx, span := tracing.StartSpan(ctx, "processor.CheckLead")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": staged.TenantID,
		"lead_id":   staged.ID,
	})

	key := staged.TenantID + "|" + staged.ID

	decider, err := p.deciderFor(ctx, staged.TenantID)
	if err != nil {
		return p.recordFailure(ctx, staged, key, err, log)
	}

	verdict, err := decider.Decide(ctx, staged.Lead())
	if err != nil {
		if errors.Is(err, decision.ErrMalformedLead) {
			// No amount of retrying fixes a lead with no name and no
			// identity. Park it as failed.
			log.WithError(err).Warn("Lead is malformed, marking failed")
			p.ledger.Forget(key)
			if err := p.leadRepo.SetStatus(ctx, staged.TenantID, staged.ID, models.StagedLeadStatusFailed); err != nil {
				log.WithError(err).Error("Failed to mark malformed lead as failed")
			}
			return nil
		}
		return p.recordFailure(ctx, staged, key, err, log)
	}

	if _, err := p.verdictRepo.Create(ctx, staged.TenantID, staged.ID, verdict); err != nil {
		return p.recordFailure(ctx, staged, key, err, log)
	}

	if err := p.leadRepo.SetStatus(ctx, staged.TenantID, staged.ID, models.StagedLeadStatusChecked); err != nil {
		log.WithError(err).Error("Failed to mark lead as checked")
	}
	p.ledger.Forget(key)

	if err := p.emitter.EmitVerdict(ctx, staged, verdict); err != nil {
		// The verdict is persisted; losing the event is not worth
		// re-running the whole check.
		log.WithError(err).Error("Failed to emit verdict event")
	}

	log.WithFields(map[string]any{
		"kind":    verdict.Kind,
		"reasons": verdict.Reasons,
	}).Info("Lead checked")

	return nil
}

// CheckSync stages a lead and runs the duplicate check inline, for the
// synchronous HTTP path. Retry bookkeeping is skipped; the caller gets
// the error and decides what to do with it.
func (p *Processor) CheckSync(ctx context.Context, tenantID string, lead models.Lead) (*models.StagedLead, *models.MatchVerdict, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.CheckSync")
	defer span.End()

	result, err := p.leadRepo.Upsert(ctx, tenantID, lead)
	if err != nil {
		return nil, nil, err
	}
	staged := result.Lead

	decider, err := p.deciderFor(ctx, tenantID)
	if err != nil {
		return staged, nil, err
	}

	verdict, err := decider.Decide(ctx, staged.Lead())
	if err != nil {
		return staged, nil, err
	}

	if _, err := p.verdictRepo.Create(ctx, tenantID, staged.ID, verdict); err != nil {
		return staged, nil, err
	}
	if err := p.leadRepo.SetStatus(ctx, tenantID, staged.ID, models.StagedLeadStatusChecked); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to mark lead as checked")
	}
	p.ledger.Forget(tenantID + "|" + staged.ID)

	if err := p.emitter.EmitVerdict(ctx, staged, verdict); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to emit verdict event")
	}

	return staged, &verdict, nil
}

// recordFailure tracks a failed attempt. While the retry budget holds
// it returns the error so the message is redelivered; once exhausted it
// parks the lead as failed and absorbs the error.
func (p *Processor) recordFailure(ctx context.Context, staged *models.StagedLead, key string, cause error, log ectologger.Logger) error {
	attempts := p.ledger.Increment(key)
	if _, err := p.leadRepo.IncrementAttempts(ctx, staged.TenantID, staged.ID); err != nil {
		log.WithError(err).Error("Failed to persist attempt count")
	}

	if p.ledger.Exhausted(key) {
		log.WithError(cause).WithFields(map[string]any{"attempts": attempts}).Error("Lead check retries exhausted, marking failed")
		p.ledger.Forget(key)
		if err := p.leadRepo.SetStatus(ctx, staged.TenantID, staged.ID, models.StagedLeadStatusFailed); err != nil {
			log.WithError(err).Error("Failed to mark lead as failed")
		}
		return nil
	}

	log.WithError(cause).WithFields(map[string]any{"attempts": attempts}).Warn("Lead check failed, will retry")
	return cause
}

// deciderFor returns the decision pipeline for a tenant. The decider is
// cached so the identity lookup cache survives across messages; it is
// rebuilt when the block rules may have changed.
func (p *Processor) deciderFor(ctx context.Context, tenantID string) (*decision.Decider, error) {
	if cached, ok := p.deciders.Load(tenantID); ok {
		entry := cached.(*tenantDecider)
		if time.Now().Before(entry.expires) {
			return entry.decider, nil
		}
	}

	rules, err := p.ruleRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	filter := blocklist.FromRules(rules)
	scorer := matching.NewScorer()
	location := matching.NewLocationMatcher(scorer)
	engine := matching.NewEngine(scorer, location, p.engineConfig)
	identity := matching.NewIdentityMatcher(p.collab.Contacts)

	decider := decision.NewDecider(
		p.logger,
		filter,
		identity,
		engine,
		p.collab.Searcher,
		p.collab.Assoc,
		p.collab.Directory,
		p.decideConfig,
	)

	p.deciders.Store(tenantID, &tenantDecider{
		decider: decider,
		expires: time.Now().Add(blocklistTTL),
	})
	return decider, nil
}

// InvalidateTenant drops the cached decider so the next lead picks up
// fresh block rules. Called when rules are mutated through the API.
func (p *Processor) InvalidateTenant(tenantID string) {
	p.deciders.Delete(tenantID)
}

// ProcessPending re-checks staged leads left in pending, typically
// after a restart cut a batch short. Leads are fanned out to a fixed
// worker pool.
func (p *Processor) ProcessPending(ctx context.Context, tenantID string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessPending")
	defer span.End()

	status := models.StagedLeadStatusPending
	page := 1
	var pending []models.StagedLead
	for {
		resp, err := p.leadRepo.List(ctx, tenantID, &status, page, 100)
		if err != nil {
			return 0, err
		}
		pending = append(pending, resp.Items...)
		if len(resp.Items) < 100 {
			break
		}
		page++
	}

	if len(pending) == 0 {
		return 0, nil
	}

	jobs := make(chan *models.StagedLead)
	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lead := range jobs {
				if err := p.CheckLead(ctx, lead); err != nil {
					p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
						"lead_id": lead.ID,
					}).Warn("Pending lead re-check failed")
				}
			}
		}()
	}

	for i := range pending {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return i, ctx.Err()
		case jobs <- &pending[i]:
		}
	}
	close(jobs)
	wg.Wait()

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"count":     len(pending),
	}).Info("Re-checked pending leads")

	return len(pending), nil
}
