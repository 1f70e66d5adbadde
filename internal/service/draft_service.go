package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"formbox/internal/model"
	"formbox/internal/repository"
	"formbox/internal/validation"
)

const (
	// DraftTTL is part of the draft contract, not configuration.
	DraftTTL = 7 * 24 * time.Hour

	minSessionIDLength = 10
)

// DraftService manages the lifecycle of transient draft submissions.
type DraftService struct {
	repo repository.DraftRepo
	log  zerolog.Logger
	now  func() time.Time
}

func NewDraftService(repo repository.DraftRepo, log zerolog.Logger) *DraftService {
	return &DraftService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// SaveDraft creates or fully overwrites the draft for the session and
// refreshes its expiry.
func (s *DraftService) SaveDraft(ctx context.Context, req *model.SaveDraftRequest, clientIP, userAgent string) (*model.DraftSubmission, error) {
	if err := checkSessionID(req.SessionID); err != nil {
		return nil, err
	}
	if req.CurrentStep < 0 {
		return nil, &validation.Error{Message: "currentStep must not be negative"}
	}

	now := s.now()

	answers := map[string]any{}
	if req.Answers.Values != nil {
		answers, _ = validation.Sanitize(req.Answers.Values).(map[string]any)
	}

	draft := &model.DraftSubmission{
		SessionID:    req.SessionID,
		FormID:       req.FormID,
		Answers:      answers,
		CurrentStep:  req.CurrentStep,
		LastModified: now,
		ExpiresAt:    now.Add(DraftTTL),
		UserAgent:    userAgent,
		IPAddress:    clientIP,
		Metadata:     deriveDraftMetadata(req.Answers),
	}

	if err := s.repo.Upsert(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// GetDraft returns the draft only while its expiry is strictly in the
// future; expired drafts are invisible even before the cleanup sweep.
func (s *DraftService) GetDraft(ctx context.Context, sessionID string) (*model.DraftSubmission, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}

	draft, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if draft == nil || !draft.ExpiresAt.After(s.now()) {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

func (s *DraftService) DeleteDraft(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if !deleted {
		return ErrDraftNotFound
	}
	return nil
}

// CleanupExpiredDrafts bulk-deletes every expired draft. Invoked on demand;
// scheduling belongs to an external collaborator.
func (s *DraftService) CleanupExpiredDrafts(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired drafts: %w", err)
	}
	if count > 0 {
		s.log.Info().Int64("deleted", count).Msg("purged expired drafts")
	}
	return count, nil
}

// GetDraftStatistics aggregates over non-expired drafts only.
func (s *DraftService) GetDraftStatistics(ctx context.Context, formID string) (*model.DraftStats, error) {
	stats, err := s.repo.Statistics(ctx, formID, s.now())
	if err != nil {
		return nil, fmt.Errorf("draft statistics: %w", err)
	}
	return stats, nil
}

// checkSessionID rejects malformed session ids as a validation failure,
// distinct from not-found.
func checkSessionID(sessionID string) error {
	if len(sessionID) < minSessionIDLength {
		return validation.Errorf("sessionId must be at least %d characters", minSessionIDLength)
	}
	return nil
}

// deriveDraftMetadata counts present, non-empty answers and records the last
// answered key in payload order.
func deriveDraftMetadata(answers model.AnswerMap) model.DraftMetadata {
	var meta model.DraftMetadata
	for _, key := range answers.Keys() {
		value := answers.Values[key]
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		meta.AnswerCount++
		meta.LastQuestionAnswered = key
	}
	return meta
}
