package service

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"formbox/internal/model"
)

// In-memory stand-ins for the mongo repositories, mirroring their contracts.

type fakeSubmissionRepo struct {
	submissions []*model.FormSubmission
	insertErr   error
	stats       *model.SubmissionStats
	statsCalls  int
}

func (f *fakeSubmissionRepo) Insert(_ context.Context, s *model.FormSubmission) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	s.ID = primitive.NewObjectID()
	f.submissions = append(f.submissions, s)
	return s.ID.Hex(), nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*model.FormSubmission, error) {
	for _, s := range f.submissions {
		if s.ID.Hex() == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSubmissionRepo) List(_ context.Context, query model.ListSubmissionsQuery) ([]*model.FormSubmission, int64, error) {
	var matched []*model.FormSubmission
	for _, s := range f.submissions {
		if query.FormID != "" && s.FormID != query.FormID {
			continue
		}
		if query.UserEmail != "" && s.UserEmail != query.UserEmail {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	total := int64(len(matched))
	if query.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[query.Offset:]
	if query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, total, nil
}

func (f *fakeSubmissionRepo) FindRecentBySession(_ context.Context, sessionID string, since time.Time) ([]*model.FormSubmission, error) {
	var recent []*model.FormSubmission
	for _, s := range f.submissions {
		if s.SessionID == sessionID && !s.LastSubmissionAttempt.Before(since) {
			recent = append(recent, s)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].LastSubmissionAttempt.After(recent[j].LastSubmissionAttempt)
	})
	return recent, nil
}

func (f *fakeSubmissionRepo) CountRecentByIP(_ context.Context, ipAddress string, since time.Time) (int64, error) {
	var count int64
	for _, s := range f.submissions {
		if s.Metadata["ipAddress"] == ipAddress && !s.SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionRepo) RegisterAttempt(_ context.Context, id string, at time.Time) error {
	for _, s := range f.submissions {
		if s.ID.Hex() == id {
			s.SubmissionAttempts++
			s.LastSubmissionAttempt = at
			return nil
		}
	}
	return nil
}

func (f *fakeSubmissionRepo) MarkProcessed(_ context.Context, id string, at time.Time) (bool, error) {
	for _, s := range f.submissions {
		if s.ID.Hex() == id {
			s.IsProcessed = true
			s.ProcessedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionRepo) Statistics(_ context.Context, formID string) (*model.SubmissionStats, error) {
	f.statsCalls++
	if f.stats != nil {
		return f.stats, nil
	}
	stats := &model.SubmissionStats{SubmissionsByDate: []model.DateCount{}}
	var questionSum int
	for _, s := range f.submissions {
		if formID != "" && s.FormID != formID {
			continue
		}
		stats.TotalSubmissions++
		questionSum += len(s.Questions)
	}
	if stats.TotalSubmissions > 0 {
		avg := float64(questionSum) / float64(stats.TotalSubmissions)
		stats.AverageQuestionsPerSubmission = float64(int(avg*100+0.5)) / 100
	}
	return stats, nil
}

type fakeDraftRepo struct {
	drafts    map[string]*model.DraftSubmission
	upsertErr error
	deleteErr error
	deleted   []string
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[string]*model.DraftSubmission)}
}

func (f *fakeDraftRepo) Upsert(_ context.Context, draft *model.DraftSubmission) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	clone := *draft
	f.drafts[draft.SessionID] = &clone
	return nil
}

func (f *fakeDraftRepo) GetBySession(_ context.Context, sessionID string) (*model.DraftSubmission, error) {
	draft, ok := f.drafts[sessionID]
	if !ok {
		return nil, nil
	}
	return draft, nil
}

func (f *fakeDraftRepo) DeleteBySession(_ context.Context, sessionID string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	_, ok := f.drafts[sessionID]
	if ok {
		delete(f.drafts, sessionID)
		f.deleted = append(f.deleted, sessionID)
	}
	return ok, nil
}

func (f *fakeDraftRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for id, draft := range f.drafts {
		if draft.ExpiresAt.Before(now) {
			delete(f.drafts, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeDraftRepo) Statistics(_ context.Context, formID string, now time.Time) (*model.DraftStats, error) {
	stats := &model.DraftStats{}
	var stepSum, answerSum int64
	for _, draft := range f.drafts {
		if formID != "" && draft.FormID != formID {
			continue
		}
		if !draft.ExpiresAt.After(now) {
			continue
		}
		stats.TotalDrafts++
		stepSum += int64(draft.CurrentStep)
		answerSum += int64(draft.Metadata.AnswerCount)
		modified := draft.LastModified
		if stats.OldestDraft == nil || modified.Before(*stats.OldestDraft) {
			m := modified
			stats.OldestDraft = &m
		}
		if stats.NewestDraft == nil || modified.After(*stats.NewestDraft) {
			m := modified
			stats.NewestDraft = &m
		}
	}
	if stats.TotalDrafts > 0 {
		stats.AverageStep = float64(stepSum) / float64(stats.TotalDrafts)
		stats.AverageAnswerCount = float64(answerSum) / float64(stats.TotalDrafts)
	}
	return stats, nil
}

type fakeStatsCache struct {
	entries    map[string]*model.SubmissionStats
	getCalls   int
	setCalls   int
	invalidate []string
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: make(map[string]*model.SubmissionStats)}
}

func (f *fakeStatsCache) Get(_ context.Context, formID string) (*model.SubmissionStats, error) {
	f.getCalls++
	return f.entries[formID], nil
}

func (f *fakeStatsCache) Set(_ context.Context, formID string, stats *model.SubmissionStats) error {
	f.setCalls++
	f.entries[formID] = stats
	return nil
}

func (f *fakeStatsCache) Invalidate(_ context.Context, formID string) error {
	f.invalidate = append(f.invalidate, formID)
	delete(f.entries, formID)
	delete(f.entries, "")
	return nil
}
