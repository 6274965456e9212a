package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drawpile/listserver-go/internal/audit"
	apperrors "github.com/drawpile/listserver-go/internal/errors"
	"github.com/drawpile/listserver-go/internal/repository"
)

// checkSubmissionLimit rejects an announcement when the address already has
// more than rateLimit listings active within the session timeout. Unlisted
// listings still count.
func (s *DirectoryService) checkSubmissionLimit(ctx context.Context, repo repository.AnnouncementRepository, clientIP string, since time.Time) error {
	count, err := repo.CountByClientIPSince(ctx, clientIP, since)
	if err != nil {
		return apperrors.Database(err)
	}

	if count > s.rateLimit {
		log.Warn().
			Str("ip", clientIP).
			Int("count", count).
			Int("limit", s.rateLimit).
			Msg("announcement rate limit exceeded")
		audit.Log(audit.Event{
			Type:    audit.EventRateLimitExceed,
			IP:      clientIP,
			Details: map[string]interface{}{"count": count, "limit": s.rateLimit},
		})
		return apperrors.RateLimitExceeded(count)
	}

	return nil
}
