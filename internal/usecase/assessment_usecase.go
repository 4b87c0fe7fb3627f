package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/udaancredit/internal/domain"
)

// AssessInput is the input for assessing a single ledger.
type AssessInput struct {
	Ledger domain.Ledger
}

// AssessmentConfig tunes the assessment use case.
type AssessmentConfig struct {
	Policy           domain.RiskPolicy
	CacheTTL         time.Duration
	MaxLedgerRows    int
	BatchConcurrency int
}

// AssessmentUseCase runs ledgers through feature extraction and scoring.
type AssessmentUseCase struct {
	engine  *domain.ScoringEngine
	cache   AssessmentCache
	events  EventQueue
	metrics MetricsRecorder
	idGen   IDGenerator
	cfg     AssessmentConfig
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAssessmentUseCase creates a new AssessmentUseCase.
// cache, events and metrics are optional.
func NewAssessmentUseCase(
	cfg AssessmentConfig,
	idGen IDGenerator,
	cache AssessmentCache,
	events EventQueue,
	metrics MetricsRecorder,
	logger zerolog.Logger,
) (*AssessmentUseCase, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MaxLedgerRows <= 0 {
		cfg.MaxLedgerRows = domain.DefaultMaxLedgerRows
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = DefaultBatchConcurrency
	}

	return &AssessmentUseCase{
		engine:  domain.NewScoringEngine(cfg.Policy),
		cache:   cache,
		events:  events,
		metrics: metrics,
		idGen:   idGen,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Policy returns the risk policy assessments are classified with.
func (uc *AssessmentUseCase) Policy() domain.RiskPolicy {
	return uc.engine.Policy()
}

// Assess extracts features from the ledger, scores them and derives the
// loan recommendation. Identical ledgers reuse a cached assessment.
func (uc *AssessmentUseCase) Assess(ctx context.Context, input AssessInput) (*domain.Assessment, error) {
	if err := domain.ValidateLedgerSize(len(input.Ledger), uc.cfg.MaxLedgerRows); err != nil {
		return nil, err
	}

	fingerprint := domain.Fingerprint(input.Ledger)
	key := uc.cacheKey(fingerprint)

	if cached := uc.lookup(ctx, key); cached != nil {
		return cached, nil
	}

	start := uc.now()

	features := domain.ExtractFeatures(input.Ledger)
	eval, err := uc.engine.Evaluate(features)
	if err != nil {
		return nil, fmt.Errorf("evaluate features: %w", err)
	}

	assessment := &domain.Assessment{
		ID:            uc.idGen.Generate(),
		Fingerprint:   fingerprint,
		Policy:        uc.engine.Policy().Name,
		Features:      features,
		Score:         eval.Score,
		Risk:          eval.Risk,
		Breakdown:     eval.Breakdown,
		Loan:          domain.RecommendLoan(features, eval.Risk),
		Summary:       domain.SummarizeLedger(input.Ledger),
		DailyCashflow: domain.DailyCashflow(input.Ledger),
		CreatedAt:     start.UTC(),
	}

	if uc.metrics != nil {
		uc.metrics.ObserveAssessment(assessment.Risk, assessment.Score, uc.now().Sub(start))
	}

	uc.store(ctx, key, assessment)
	uc.publish(ctx, assessment)

	uc.logger.Debug().
		Str("assessment_id", assessment.ID).
		Int("score", int(assessment.Score)).
		Str("risk", string(assessment.Risk)).
		Int("rows", assessment.Summary.Rows).
		Msg("ledger assessed")

	return assessment, nil
}

// AssessBatch assesses independent ledgers concurrently. Results keep the
// input order.
func (uc *AssessmentUseCase) AssessBatch(ctx context.Context, inputs []AssessInput) ([]*domain.Assessment, error) {
	if err := domain.ValidateBatchSize(len(inputs)); err != nil {
		return nil, err
	}

	results := make([]*domain.Assessment, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.BatchConcurrency)

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := uc.Assess(gctx, input)
			if err != nil {
				return fmt.Errorf("ledger %d: %w", i, err)
			}
			results[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Score scores a feature set directly, without a ledger.
func (uc *AssessmentUseCase) Score(ctx context.Context, features domain.FeatureSet) (domain.Evaluation, error) {
	return uc.engine.Evaluate(features)
}

func (uc *AssessmentUseCase) cacheKey(fingerprint string) string {
	return uc.engine.Policy().Key() + ":" + fingerprint
}

func (uc *AssessmentUseCase) lookup(ctx context.Context, key string) *domain.Assessment {
	if uc.cache == nil {
		return nil
	}

	cached, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrAssessmentNotCached) {
			uc.logger.Warn().Err(err).Str("key", key).Msg("assessment cache lookup failed")
		}
		if uc.metrics != nil {
			uc.metrics.ObserveCache(false)
		}
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.ObserveCache(true)
	}
	cached.Cached = true

	return cached
}

func (uc *AssessmentUseCase) store(ctx context.Context, key string, a *domain.Assessment) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Set(ctx, key, a, uc.cfg.CacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("assessment cache store failed")
	}
}

func (uc *AssessmentUseCase) publish(ctx context.Context, a *domain.Assessment) {
	if uc.events == nil {
		return
	}

	event := domain.NewAssessmentCompletedEvent(uc.idGen.Generate(), a)
	if err := uc.events.Enqueue(ctx, event); err != nil {
		uc.logger.Warn().Err(err).Str("assessment_id", a.ID).Msg("failed to enqueue assessment event")
	}
}
