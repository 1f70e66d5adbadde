package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"formbox/internal/cache"
	"formbox/internal/model"
	"formbox/internal/repository"
	"formbox/internal/validation"
)

const (
	metadataVersion = "1.0"
	metadataSource  = "api"
)

// SubmissionService orchestrates validation, rate limiting, sanitization and
// persistence for form submissions, and serves the read paths.
type SubmissionService struct {
	repo      repository.SubmissionRepo
	draftRepo repository.DraftRepo
	guard     *SubmissionGuard
	engine    *validation.Engine
	stats     cache.StatsCache
	log       zerolog.Logger
	now       func() time.Time
}

func NewSubmissionService(
	repo repository.SubmissionRepo,
	draftRepo repository.DraftRepo,
	guard *SubmissionGuard,
	engine *validation.Engine,
	stats cache.StatsCache,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		repo:      repo,
		draftRepo: draftRepo,
		guard:     guard,
		engine:    engine,
		stats:     stats,
		log:       log,
		now:       time.Now,
	}
}

// SubmitForm validates, rate-limits, sanitizes and persists one submission,
// returning the new record's hex id. Validation and guard rejections
// short-circuit before any write.
func (s *SubmissionService) SubmitForm(ctx context.Context, req *model.SubmitFormRequest, clientIP, userAgent string) (string, error) {
	if err := s.engine.Validate(req.Questions, req.Answers); err != nil {
		return "", err
	}

	now := s.now()

	// One-shot submissions without a session skip the guard entirely.
	if req.SessionID != "" {
		if err := s.guard.CheckAllowed(ctx, req.SessionID, clientIP, now); err != nil {
			return "", err
		}
	}

	questions := validation.SanitizeQuestions(req.Questions)
	answers, _ := validation.Sanitize(req.Answers.Values).(map[string]any)

	metadata := make(map[string]any, len(req.Metadata)+4)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	// Service-owned keys always win over caller-supplied ones.
	metadata["version"] = metadataVersion
	metadata["source"] = metadataSource
	if clientIP != "" {
		metadata["ipAddress"] = clientIP
	}
	if req.ConvertedFromDraft {
		metadata["convertedFromDraft"] = true
	}

	submission := &model.FormSubmission{
		FormID:                req.FormID,
		Questions:             questions,
		Answers:               answers,
		UserEmail:             req.UserEmail,
		UserAgent:             userAgent,
		IPAddress:             clientIP,
		SubmittedAt:           now,
		SessionID:             req.SessionID,
		SubmissionAttempts:    1,
		LastSubmissionAttempt: now,
		Metadata:              metadata,
	}

	id, err := s.repo.Insert(ctx, submission)
	if err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}

	if req.ConvertedFromDraft && req.SessionID != "" {
		if _, err := s.draftRepo.DeleteBySession(ctx, req.SessionID); err != nil {
			// The submission already succeeded and is not rolled back; the
			// stale draft will expire on its own.
			s.log.Warn().Err(err).Str("sessionId", req.SessionID).Msg("failed to delete converted draft")
		}
	}

	s.invalidateStats(ctx, req.FormID)
	return id, nil
}

// ListSubmissions returns one page, newest first, plus the unpaginated total.
func (s *SubmissionService) ListSubmissions(ctx context.Context, query model.ListSubmissionsQuery) (*model.SubmissionPage, error) {
	if query.Limit < 1 || query.Limit > 100 {
		return nil, &validation.Error{Message: "limit must be between 1 and 100"}
	}
	if query.Offset < 0 {
		return nil, &validation.Error{Message: "offset must not be negative"}
	}

	submissions, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if submissions == nil {
		submissions = []*model.FormSubmission{}
	}
	return &model.SubmissionPage{
		Submissions: submissions,
		Total:       total,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*model.FormSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// MarkProcessed flags a submission for downstream consumers.
func (s *SubmissionService) MarkProcessed(ctx context.Context, id string) error {
	matched, err := s.repo.MarkProcessed(ctx, id, s.now())
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if !matched {
		return ErrSubmissionNotFound
	}
	return nil
}

// GetStatistics serves aggregate statistics, via the cache when warm.
func (s *SubmissionService) GetStatistics(ctx context.Context, formID string) (*model.SubmissionStats, error) {
	if s.stats != nil {
		cached, err := s.stats.Get(ctx, formID)
		if err != nil {
			s.log.Warn().Err(err).Msg("statistics cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.repo.Statistics(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("compute statistics: %w", err)
	}

	if s.stats != nil {
		if err := s.stats.Set(ctx, formID, stats); err != nil {
			s.log.Warn().Err(err).Msg("statistics cache write failed")
		}
	}
	return stats, nil
}

func (s *SubmissionService) invalidateStats(ctx context.Context, formID string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, formID); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate statistics cache")
	}
}
