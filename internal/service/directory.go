package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/drawpile/listserver-go/internal/audit"
	"github.com/drawpile/listserver-go/internal/classifier"
	"github.com/drawpile/listserver-go/internal/config"
	"github.com/drawpile/listserver-go/internal/database"
	apperrors "github.com/drawpile/listserver-go/internal/errors"
	"github.com/drawpile/listserver-go/internal/model"
	"github.com/drawpile/listserver-go/internal/repository"
	"github.com/drawpile/listserver-go/internal/util"
)

// TxRunner runs a function inside a database transaction. *database.DB implements it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

type AnnounceResult struct {
	ID  int64  `json:"id"`
	Key string `json:"key"`
}

type DirectoryService struct {
	db         TxRunner
	repo       repository.AnnouncementRepository
	validator  *Validator
	classifier *classifier.Classifier
	ttl        time.Duration
	rateLimit  int
	now        func() time.Time
}

func NewDirectoryService(
	db TxRunner,
	repo repository.AnnouncementRepository,
	validator *Validator,
	classifier *classifier.Classifier,
	ttl time.Duration,
	rateLimit int,
) *DirectoryService {
	return &DirectoryService{
		db:         db,
		repo:       repo,
		validator:  validator,
		classifier: classifier,
		ttl:        ttl,
		rateLimit:  rateLimit,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// liveSince is the oldest last activity time a live listing can have.
func (s *DirectoryService) liveSince(now time.Time) time.Time {
	return now.Add(-s.ttl)
}

func (s *DirectoryService) List(ctx context.Context, filter model.ListAnnouncementsFilter) ([]model.Announcement, error) {
	announcements, err := s.repo.List(ctx, filter, s.liveSince(s.now()))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return announcements, nil
}

func (s *DirectoryService) Announce(ctx context.Context, req AnnounceRequest, clientIP string) (*AnnounceResult, error) {
	params, err := s.validator.Validate(req, clientIP)
	if err != nil {
		return nil, err
	}
	params.NSFM = (req.NSFM != nil && *req.NSFM) || s.classifier.IsSensitive(params.Title)

	now := s.now()
	since := s.liveSince(now)

	var created *model.Announcement
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		if err := s.checkSubmissionLimit(ctx, repo, clientIP, since); err != nil {
			return err
		}
		if err := s.checkDuplicate(ctx, repo, params, since); err != nil {
			return err
		}

		key, err := util.GenerateKey(config.UpdateKeyLength)
		if err != nil {
			return fmt.Errorf("generate update key: %w", err)
		}
		params.UpdateKey = key

		created, err = repo.Create(ctx, params, now)
		if errors.Is(err, repository.ErrDuplicateListing) {
			return apperrors.Duplicate()
		}
		if err != nil {
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeDuplicate {
			audit.Log(audit.Event{Type: audit.EventDuplicate, SessionID: params.SessionID, IP: clientIP})
		}
		return nil, err
	}

	audit.Log(audit.Event{
		Type:      audit.EventAnnounce,
		ListingID: created.ID,
		SessionID: created.SessionID,
		IP:        clientIP,
		Details: map[string]interface{}{
			"host": created.Host,
			"port": created.Port,
			"nsfm": created.NSFM,
		},
	})

	return &AnnounceResult{ID: created.ID, Key: created.UpdateKey}, nil
}

func (s *DirectoryService) checkDuplicate(ctx context.Context, repo repository.AnnouncementRepository, params model.CreateAnnouncementParams, since time.Time) error {
	released, err := repo.UnlistExpiredDuplicates(ctx, params.Host, params.Port, params.SessionID, since)
	if err != nil {
		return apperrors.Database(err)
	}
	if released > 0 {
		log.Debug().
			Str("sessionId", params.SessionID).
			Int64("count", released).
			Msg("unlisted expired duplicates")
	}

	count, err := repo.CountLiveDuplicates(ctx, params.Host, params.Port, params.SessionID, since)
	if err != nil {
		return apperrors.Database(err)
	}
	if count > 0 {
		return apperrors.Duplicate()
	}
	return nil
}

func (s *DirectoryService) Refresh(ctx context.Context, id int64, key string, req RefreshRequest, clientIP string) error {
	now := s.now()

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		current, err := s.authorize(ctx, repo, id, key, s.liveSince(now), clientIP)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateRefresh(&req); err != nil {
			return err
		}

		params := model.UpdateAnnouncementParams{
			Title:    req.Title,
			Users:    req.Users,
			Password: req.Password,
			Owner:    req.Owner,
		}
		if req.Title != nil || req.NSFM != nil {
			nsfm := s.sensitivity(current, req)
			params.NSFM = &nsfm
		}

		if err := repo.Update(ctx, id, params, now); err != nil {
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	audit.Log(audit.Event{Type: audit.EventRefresh, ListingID: id, IP: clientIP})
	return nil
}

// sensitivity recomputes the flag from the explicit value (or the stored one
// when absent) and the title the listing will carry after the update.
func (s *DirectoryService) sensitivity(current *model.Announcement, req RefreshRequest) bool {
	flag := current.NSFM
	if req.NSFM != nil {
		flag = *req.NSFM
	}
	title := current.Title
	if req.Title != nil {
		title = *req.Title
	}
	return flag || s.classifier.IsSensitive(title)
}

func (s *DirectoryService) Unlist(ctx context.Context, id int64, key string, clientIP string) error {
	now := s.now()

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.authorize(ctx, repo, id, key, s.liveSince(now), clientIP); err != nil {
			return err
		}
		if err := repo.Retire(ctx, id); err != nil {
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	audit.Log(audit.Event{Type: audit.EventUnlist, ListingID: id, IP: clientIP})
	return nil
}
