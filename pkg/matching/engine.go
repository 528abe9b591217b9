// Package matching implements lead duplicate matching algorithms
package matching

import (
	"fmt"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
)

// Acceptance rules, in evaluation order
const (
	RuleURLExact           = "url_exact"
	RuleCombinedThreshold  = "combined_threshold"
	RuleStrongNameLocation = "strong_name_location"
	RuleMediumNameLocation = "medium_name_location"

	// Rejections
	RuleNoName         = "no_name"
	RuleShortNameGuard = "short_name_guard"
	RuleBelowThreshold = "below_threshold"
)

// Config contains the thresholds and weights of the match engine.
type Config struct {
	// CombinedAccept is the combined-score acceptance threshold.
	CombinedAccept float64
	// StrongName accepts on name score alone when the location agrees.
	StrongName float64
	// MediumNameLow..StrongName is the corroborated acceptance band.
	MediumNameLow    float64
	EnableMediumBand bool
	// ShortNameExact is the near-perfect name score above which a word
	// count mismatch demands URL or city corroboration.
	ShortNameExact float64
	// NameWeight scales the name score inside the combined score.
	NameWeight   float64
	CityBonus    float64
	CountryBonus float64
	Aggregate    Aggregate
	Location     LocationPolicy
}

// DefaultConfig returns the engine tuning used for live lead checks.
func DefaultConfig() Config {
	return Config{
		CombinedAccept:   90,
		StrongName:       92,
		MediumNameLow:    85,
		EnableMediumBand: true,
		ShortNameExact:   99.5,
		NameWeight:       0.6,
		CityBonus:        25,
		CountryBonus:     5,
		Aggregate:        AggregateAverage,
		Location:         PolicyConjunctive,
	}
}

// BulkScanConfig returns the more permissive tuning used for offline
// sweeps over the full CRM, where recall matters more than precision
// and every hit is reviewed by a human.
func BulkScanConfig() Config {
	cfg := DefaultConfig()
	cfg.Aggregate = AggregateMax
	cfg.EnableMediumBand = false
	cfg.Location = PolicyDisjunctive
	return cfg
}

// Evaluation is the scored outcome for one candidate entity.
type Evaluation struct {
	Candidate      models.CandidateEntity
	NameScore      float64
	CombinedScore  float64
	Accepted       bool
	Rule           string
	URLMatched     bool
	CityMatched    bool
	CountryMatched bool
	Details        map[string]any
}

// Engine evaluates candidate entities against a lead. It performs no
// I/O; callers supply the candidates.
type Engine struct {
	scorer   *Scorer
	location *LocationMatcher
	config   Config
}

// NewEngine creates a match engine
func NewEngine(scorer *Scorer, location *LocationMatcher, config Config) *Engine {
	return &Engine{
		scorer:   scorer,
		location: location,
		config:   config,
	}
}

// Config returns the engine's tuning.
func (e *Engine) Config() Config {
	return e.config
}

// EvaluateCandidate scores a single candidate against the lead.
//
// The cascade, in order: candidates without a usable name are skipped;
// a near-perfect name score with a word count mismatch is vetoed unless
// the URL or the city corroborates it; a booking URL slug match accepts
// outright; then the combined score, the strong name rule, and the
// medium band are tried in turn.
func (e *Engine) EvaluateCandidate(lead models.Lead, cand models.CandidateEntity) Evaluation {
	ev := Evaluation{Candidate: cand, Details: map[string]any{}}

	leadName := normalize.Text(lead.PropertyName)
	candName := normalize.Text(cand.Name)
	if candName == "" {
		ev.Rule = RuleNoName
		return ev
	}

	ev.NameScore = e.scorer.NameScore(leadName, candName, e.config.Aggregate)
	ev.Details["name_score"] = ev.NameScore

	leadSlug := normalize.BookingSlug(lead.BookingURL)
	candSlug := normalize.BookingSlug(cand.BookingURL)
	ev.URLMatched = leadSlug != "" && leadSlug == candSlug

	loc := e.location.Match(
		Location{Country: lead.Country, City: lead.City},
		Location{Country: cand.Country, City: cand.City, Address: cand.Address},
		e.config.Location,
	)
	ev.CityMatched = loc.CityMatched
	ev.CountryMatched = loc.CountryMatched
	ev.Details["location"] = loc.Details

	// A one-word name scoring near 100 against a multi-word name is
	// usually a generic word swallowed by the token set, e.g. "Oasis"
	// against "Oasis Rural". Demand independent corroboration.
	wordCountEqual := len(normalize.Tokens(lead.PropertyName)) == len(normalize.Tokens(cand.Name))
	if ev.NameScore >= e.config.ShortNameExact && !wordCountEqual {
		if !ev.URLMatched && !ev.CityMatched {
			ev.Rule = RuleShortNameGuard
			return ev
		}
		ev.Details["short_name_guard"] = "corroborated"
	}

	if ev.URLMatched {
		ev.CombinedScore = 100
		ev.Accepted = true
		ev.Rule = RuleURLExact
		return ev
	}

	combined := e.config.NameWeight * ev.NameScore
	if ev.CityMatched {
		combined += e.config.CityBonus
	}
	if ev.CountryMatched {
		combined += e.config.CountryBonus
	}
	if combined > 100 {
		combined = 100
	}
	ev.CombinedScore = combined
	ev.Details["combined_score"] = combined

	switch {
	case combined >= e.config.CombinedAccept:
		ev.Accepted = true
		ev.Rule = RuleCombinedThreshold
	case ev.NameScore >= e.config.StrongName && loc.OK:
		ev.Accepted = true
		ev.Rule = RuleStrongNameLocation
	case e.config.EnableMediumBand && ev.NameScore >= e.config.MediumNameLow && ev.NameScore < e.config.StrongName && loc.OK:
		ev.Accepted = true
		ev.Rule = RuleMediumNameLocation
	default:
		ev.Rule = RuleBelowThreshold
	}

	return ev
}

// Result is the outcome of evaluating a lead against a candidate set.
type Result struct {
	// Best is the accepted evaluation with the highest combined score,
	// nil when nothing was accepted. Ties keep the earlier candidate.
	Best *Evaluation
	// BestRejected is the highest name score among rejected candidates,
	// kept for diagnostics on no-match verdicts.
	BestRejected float64
	Evaluated    int
}

// Match evaluates every candidate and picks the best accepted one.
func (e *Engine) Match(lead models.Lead, candidates []models.CandidateEntity) Result {
	res := Result{}
	for _, cand := range candidates {
		ev := e.EvaluateCandidate(lead, cand)
		if ev.Rule == RuleNoName {
			continue
		}
		res.Evaluated++
		if ev.Accepted {
			if res.Best == nil || ev.CombinedScore > res.Best.CombinedScore {
				evCopy := ev
				res.Best = &evCopy
			}
		} else if ev.NameScore > res.BestRejected {
			res.BestRejected = ev.NameScore
		}
	}
	return res
}

// String implements fmt.Stringer for log output.
func (ev Evaluation) String() string {
	return fmt.Sprintf("candidate=%s rule=%s name=%.1f combined=%.1f accepted=%t", ev.Candidate.ID, ev.Rule, ev.NameScore, ev.CombinedScore, ev.Accepted)
}
