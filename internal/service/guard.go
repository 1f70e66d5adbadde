package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"formbox/internal/repository"
)

const (
	guardWindow        = 5 * time.Minute
	minAttemptInterval = 30 * time.Second
	maxSessionAttempts = 3
	maxIPSubmissions   = 10
)

// SubmissionGuard applies the rate-limit policy for new submission attempts.
// All state lives in the submission store and is read back per request; two
// racing requests can both pass, which is acceptable for abuse deterrence.
type SubmissionGuard struct {
	repo repository.SubmissionRepo
}

func NewSubmissionGuard(repo repository.SubmissionRepo) *SubmissionGuard {
	return &SubmissionGuard{repo: repo}
}

// CheckAllowed rejects attempts inside the per-session or per-IP throttle
// windows. When the session is allowed but has recent history, the attempt
// counter and timestamp on the most recent record are refreshed.
func (g *SubmissionGuard) CheckAllowed(ctx context.Context, sessionID, ipAddress string, now time.Time) error {
	windowStart := now.Add(-guardWindow)

	if sessionID != "" {
		recent, err := g.repo.FindRecentBySession(ctx, sessionID, windowStart)
		if err != nil {
			return fmt.Errorf("fetch recent submissions: %w", err)
		}
		if len(recent) > 0 {
			elapsed := now.Sub(recent[0].LastSubmissionAttempt)
			if elapsed < minAttemptInterval {
				wait := int(math.Ceil((minAttemptInterval - elapsed).Seconds()))
				return &RateLimitError{
					Message: fmt.Sprintf("please wait %d seconds before submitting again", wait),
				}
			}
			if len(recent) >= maxSessionAttempts {
				return &RateLimitError{
					Message: "too many submission attempts, please wait 5 minutes",
				}
			}
			if err := g.repo.RegisterAttempt(ctx, recent[0].ID.Hex(), now); err != nil {
				return fmt.Errorf("register attempt: %w", err)
			}
		}
	}

	if ipAddress != "" {
		count, err := g.repo.CountRecentByIP(ctx, ipAddress, windowStart)
		if err != nil {
			return fmt.Errorf("count submissions by ip: %w", err)
		}
		if count >= maxIPSubmissions {
			return &RateLimitError{
				Message: "too many submissions from this IP address, please try again later",
			}
		}
	}
	return nil
}
