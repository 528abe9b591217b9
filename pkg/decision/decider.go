// Package decision orchestrates one duplicate check: blocklist, contact
// identity, entity matching, and the informational directory check.
package decision

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/blocklist"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ErrMalformedLead marks a lead with no name, email, or phone. Such a
// lead cannot be checked at all, which is different from a clean
// no-match.
var ErrMalformedLead = errors.New("lead has no property name, email, or phone")

// EntitySearcher finds candidate entities for a free-text query.
type EntitySearcher interface {
	SearchEntities(ctx context.Context, query string, limit int) ([]models.CandidateEntity, error)
}

// AssociationChecker reports whether a contact and an entity are linked
// in the CRM.
type AssociationChecker interface {
	Associated(ctx context.Context, contactID, entityID string) (bool, error)
}

// DirectorySearcher lists published directory properties for a country.
type DirectorySearcher interface {
	ListPublished(ctx context.Context, country string) ([]models.DirectoryProperty, error)
}

// Config tunes the orchestration around the match engine.
type Config struct {
	// QueryTokens is how many leading name tokens form the entity
	// search query.
	QueryTokens int
	// SearchLimit caps the candidates fetched per lead.
	SearchLimit int
	// DirectoryThreshold is the token set ratio above which a
	// directory property counts as the same listing.
	DirectoryThreshold float64
	// ExtendedTrail also runs the entity search after a contact hit,
	// so the verdict can carry the contact-entity association. Off by
	// default: the live path stops at the first duplicate signal.
	ExtendedTrail bool
}

// DefaultConfig returns the orchestration defaults.
func DefaultConfig() Config {
	return Config{
		QueryTokens:        3,
		SearchLimit:        20,
		DirectoryThreshold: 90,
	}
}

// Decider runs the duplicate check state machine. All collaborators are
// injected; the decider itself performs no I/O beyond them.
type Decider struct {
	logger    ectologger.Logger
	filter    *blocklist.Filter
	identity  *matching.IdentityMatcher
	engine    *matching.Engine
	scorer    *matching.Scorer
	location  *matching.LocationMatcher
	searcher  EntitySearcher
	assoc     AssociationChecker
	directory DirectorySearcher
	config    Config
}

// NewDecider creates a decider. assoc and directory may be nil; the
// corresponding checks are skipped.
func NewDecider(
	logger ectologger.Logger,
	filter *blocklist.Filter,
	identity *matching.IdentityMatcher,
	engine *matching.Engine,
	searcher EntitySearcher,
	assoc AssociationChecker,
	directory DirectorySearcher,
	config Config,
) *Decider {
	scorer := matching.NewScorer()
	return &Decider{
		logger:    logger,
		filter:    filter,
		identity:  identity,
		engine:    engine,
		scorer:    scorer,
		location:  matching.NewLocationMatcher(scorer),
		searcher:  searcher,
		assoc:     assoc,
		directory: directory,
		config:    config,
	}
}

// Decide runs the full check for one lead. The stages run in a fixed
// order and the first duplicate signal decides the verdict kind:
// blocked, then contact_exact, then entity_match, then none. A clean
// no-match is not an error; collaborator failures are.
func (d *Decider) Decide(ctx context.Context, lead models.Lead) (models.MatchVerdict, error) {
	ctx, span := tracing.StartSpan(ctx, "decision.Decider.Decide")
	defer span.End()

	log := d.logger.WithContext(ctx).WithFields(map[string]any{
		"lead_external_id": lead.ExternalID,
		"property_name":    lead.PropertyName,
	})

	if normalize.Text(lead.PropertyName) == "" && !lead.HasIdentity() {
		return models.MatchVerdict{}, ErrMalformedLead
	}

	verdict := models.MatchVerdict{Kind: models.MatchKindNone, Reasons: []string{}}

	if blocked, reason := d.filter.Check(lead.Email); blocked {
		log.WithFields(map[string]any{"block_reason": reason}).Info("Lead blocked by domain rules")
		verdict.Kind = models.MatchKindBlocked
		verdict.BlockRule = reason
		verdict.Reasons = append(verdict.Reasons, "domain_blocked:"+reason)
		return verdict, nil
	}

	identity, err := d.identity.Match(ctx, lead)
	if err != nil {
		return models.MatchVerdict{}, fmt.Errorf("contact lookup failed: %w", err)
	}

	if identity.Kind != matching.IdentityKindNone {
		verdict.Kind = models.MatchKindContactExact
		verdict.Contact = &models.ContactMatch{
			ContactID: identity.Contact.ID,
			Kind:      identity.Kind,
		}
		verdict.Reasons = append(verdict.Reasons, "contact_"+identity.Kind)

		if d.config.ExtendedTrail {
			if err := d.attachEntityMatch(ctx, lead, &verdict, identity.Contact.ID); err != nil {
				return models.MatchVerdict{}, err
			}
		}
		if err := d.attachDirectoryMatch(ctx, lead, &verdict); err != nil {
			log.WithError(err).Warn("Directory check failed")
		}
		return verdict, nil
	}

	if err := d.attachEntityMatch(ctx, lead, &verdict, ""); err != nil {
		return models.MatchVerdict{}, err
	}
	if verdict.Entity != nil {
		verdict.Kind = models.MatchKindEntityMatch
	}

	if err := d.attachDirectoryMatch(ctx, lead, &verdict); err != nil {
		log.WithError(err).Warn("Directory check failed")
	}

	log.WithFields(map[string]any{
		"kind":    verdict.Kind,
		"reasons": verdict.Reasons,
	}).Debug("Lead decision complete")

	return verdict, nil
}

// attachEntityMatch searches the CRM for candidate entities and, when
// the engine accepts one, fills the entity sub-record and reasons.
func (d *Decider) attachEntityMatch(ctx context.Context, lead models.Lead, verdict *models.MatchVerdict, contactID string) error {
	ctx, span := tracing.StartSpan(ctx, "decision.Decider.attachEntityMatch")
	defer span.End()

	query := normalize.SearchQuery(lead.PropertyName, d.config.QueryTokens)
	if query == "" {
		return nil
	}

	candidates, err := d.searcher.SearchEntities(ctx, query, d.config.SearchLimit)
	if err != nil {
		return fmt.Errorf("entity search failed: %w", err)
	}

	res := d.engine.Match(lead, candidates)
	if res.Best == nil {
		verdict.BestRejectedAt = res.BestRejected
		return nil
	}

	best := res.Best
	verdict.Entity = &models.EntityMatch{
		EntityID:      best.Candidate.ID,
		EntityName:    best.Candidate.Name,
		NameScore:     best.NameScore,
		CombinedScore: best.CombinedScore,
		Rule:          best.Rule,
		URLMatched:    best.URLMatched,
		CityMatched:   best.CityMatched,
	}
	verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("deal_score_%d", int(math.Round(best.NameScore))))

	if contactID != "" && d.assoc != nil {
		associated, err := d.assoc.Associated(ctx, contactID, best.Candidate.ID)
		if err != nil {
			d.logger.WithContext(ctx).WithError(err).Warn("Association check failed")
		} else {
			verdict.Entity.Associated = &associated
		}
	}

	return nil
}

// attachDirectoryMatch fuzzy-checks the lead against published
// directory properties. Informational only: it adds a sub-record and a
// reason but never changes the verdict kind.
func (d *Decider) attachDirectoryMatch(ctx context.Context, lead models.Lead, verdict *models.MatchVerdict) error {
	if d.directory == nil {
		return nil
	}
	name := normalize.Text(lead.PropertyName)
	if name == "" {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "decision.Decider.attachDirectoryMatch")
	defer span.End()

	properties, err := d.directory.ListPublished(ctx, lead.Country)
	if err != nil {
		return err
	}

	leadCountry := d.location.CanonicalCountry(lead.Country)
	var best *models.DirectoryMatch
	for _, p := range properties {
		if d.location.CanonicalCountry(p.Country) != leadCountry {
			continue
		}
		score := d.scorer.TokenSetRatio(name, normalize.Text(p.Name))
		if score < d.config.DirectoryThreshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &models.DirectoryMatch{PropertyID: p.ID, Name: p.Name, Score: score}
		}
	}

	if best != nil {
		verdict.Directory = best
		verdict.Reasons = append(verdict.Reasons, "directory_exists")
	}
	return nil
}
