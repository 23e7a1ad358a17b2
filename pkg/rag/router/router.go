package router

import (
	"context"
	"sort"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/extractor"
	"manual-assistant-be/pkg/rag/classifier"
	"manual-assistant-be/pkg/store"
)

// Thresholds hold the score bands on the reranker's signed-logit scale
// (higher = more relevant, negative = likely irrelevant). Values came out of
// offline calibration against the score log, not from theory.
type Thresholds struct {
	HighConfidence   float64
	MediumConfidence float64
	MinRelevance     float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HighConfidence:   2.5,
		MediumConfidence: -1.0,
		MinRelevance:     -4.0,
	}
}

type OutcomeKind string

const (
	OutcomeAutoSelect OutcomeKind = "AUTO_SELECT"
	OutcomeConfirm    OutcomeKind = "CONFIRM"
	OutcomeAmbiguous  OutcomeKind = "AMBIGUOUS"
	OutcomeNoMatch    OutcomeKind = "NO_MATCH"
)

// Outcome is the result of one discovery pass. Candidate is set for
// AutoSelect and Confirm; Alternatives for Ambiguous.
type Outcome struct {
	Kind         OutcomeKind
	Candidate    *store.Candidate
	Alternatives []store.Candidate
}

// LibrarySearcher is the slice of the vector search service the router needs.
type LibrarySearcher interface {
	SearchLibrary(ctx context.Context, query string, topK int) ([]store.Candidate, error)
}

// SummaryProvider yields a structural summary for a candidate, or nil when
// none can be produced. Used only for classifier disambiguation.
type SummaryProvider interface {
	SummaryFor(candidate store.Candidate) *extractor.StructuralSummary
}

const maxAmbiguousCandidates = 3

// Router performs one discovery pass over the library collection and maps the
// top rerank score into a routing decision. It never mutates session state;
// the state machine owns transitions.
type Router struct {
	search      LibrarySearcher
	classifier  *classifier.Classifier
	summaries   SummaryProvider
	thresholds  Thresholds
	topK        int
	logger      logger.ILogger
	calibration logger.ILogger
}

// NewRouter builds a router. classifier and summaries may both be nil, in
// which case ambiguity is reported to the user instead of being resolved.
func NewRouter(
	search LibrarySearcher,
	cls *classifier.Classifier,
	summaries SummaryProvider,
	thresholds Thresholds,
	topK int,
	log logger.ILogger,
	calibration logger.ILogger,
) *Router {
	return &Router{
		search:      search,
		classifier:  cls,
		summaries:   summaries,
		thresholds:  thresholds,
		topK:        topK,
		logger:      log,
		calibration: calibration,
	}
}

// Discover routes a query to a manual. Search failures degrade to NoMatch:
// the user gets "no manual found", never an infrastructure error.
func (r *Router) Discover(ctx context.Context, query string) Outcome {
	candidates, err := r.search.SearchLibrary(ctx, query, r.topK)
	if err != nil {
		r.logger.Warn("ROUTER", "Library search failed, degrading to no-match", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return Outcome{Kind: OutcomeNoMatch}
	}
	if len(candidates) == 0 {
		return Outcome{Kind: OutcomeNoMatch}
	}

	// Stable sort keeps retrieval order for rerank ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RerankScore > candidates[j].RerankScore
	})

	r.logScores(query, candidates)

	top := candidates[0]
	switch {
	case top.RerankScore > r.thresholds.HighConfidence:
		return Outcome{Kind: OutcomeAutoSelect, Candidate: &top}

	case top.RerankScore > r.thresholds.MediumConfidence:
		return Outcome{Kind: OutcomeConfirm, Candidate: &top}

	default:
		// Top is weak. Several weak-but-plausible candidates (above the
		// relevance floor) still warrant disambiguation; one or zero do not.
		contenders := r.aboveFloor(candidates)
		if len(contenders) < 2 {
			return Outcome{Kind: OutcomeNoMatch}
		}
		if len(contenders) > maxAmbiguousCandidates {
			contenders = contenders[:maxAmbiguousCandidates]
		}
		return r.disambiguate(ctx, query, contenders)
	}
}

func (r *Router) aboveFloor(candidates []store.Candidate) []store.Candidate {
	var out []store.Candidate
	for _, c := range candidates {
		if c.RerankScore > r.thresholds.MinRelevance {
			out = append(out, c)
		}
	}
	return out
}

// disambiguate runs the structural classifier over the contenders when one is
// wired, collapsing the ambiguity to a single document where it can.
func (r *Router) disambiguate(ctx context.Context, query string, contenders []store.Candidate) Outcome {
	if r.classifier == nil || r.summaries == nil {
		return Outcome{Kind: OutcomeAmbiguous, Alternatives: contenders}
	}

	summaries := make(map[string]*extractor.StructuralSummary, len(contenders))
	for _, c := range contenders {
		summaries[c.DocumentID] = r.summaries.SummaryFor(c)
	}

	buckets := r.classifier.ClassifyCandidates(ctx, query, contenders, summaries)

	// Exactly one confident verdict wins outright; possibles only matter when
	// no single document stands out.
	if len(buckets.Confident) == 1 {
		return Outcome{Kind: OutcomeAutoSelect, Candidate: &buckets.Confident[0].Candidate}
	}

	viable := make([]store.Candidate, 0, maxAmbiguousCandidates)
	for _, cc := range buckets.Confident {
		viable = append(viable, cc.Candidate)
	}
	for _, cc := range buckets.Possible {
		viable = append(viable, cc.Candidate)
	}
	if len(viable) == 0 {
		return Outcome{Kind: OutcomeNoMatch}
	}
	if len(viable) > maxAmbiguousCandidates {
		viable = viable[:maxAmbiguousCandidates]
	}
	return Outcome{Kind: OutcomeAmbiguous, Alternatives: viable}
}

// logScores records the top rerank scores for offline threshold calibration.
func (r *Router) logScores(query string, candidates []store.Candidate) {
	if r.calibration == nil {
		return
	}
	limit := len(candidates)
	if limit > maxAmbiguousCandidates {
		limit = maxAmbiguousCandidates
	}
	for i := 0; i < limit; i++ {
		c := candidates[i]
		r.calibration.Info("CALIBRATION", "library score", map[string]interface{}{
			"query":        query,
			"document":     c.DisplayName,
			"rank":         i + 1,
			"rerank_score": c.RerankScore,
			"raw_score":    c.RelevanceScore,
		})
	}
}
