package service

import (
	"context"
	"time"

	"github.com/drawpile/listserver-go/internal/audit"
	apperrors "github.com/drawpile/listserver-go/internal/errors"
	"github.com/drawpile/listserver-go/internal/model"
	"github.com/drawpile/listserver-go/internal/repository"
	"github.com/drawpile/listserver-go/internal/util"
)

// authorize returns the live listing if key matches its update key. Expired
// and unlisted listings are reported as not found, same as unknown ids.
func (s *DirectoryService) authorize(
	ctx context.Context,
	repo repository.AnnouncementRepository,
	id int64,
	key string,
	since time.Time,
	clientIP string,
) (*model.Announcement, error) {
	announcement, err := repo.FindLive(ctx, id, since)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if announcement == nil {
		return nil, apperrors.NotFound()
	}

	if !util.ConstantTimeEqual(key, announcement.UpdateKey) {
		audit.Log(audit.Event{Type: audit.EventBadKey, ListingID: id, IP: clientIP})
		return nil, apperrors.BadKey()
	}

	return announcement, nil
}
