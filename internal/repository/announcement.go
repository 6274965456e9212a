package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/drawpile/listserver-go/internal/database"
	"github.com/drawpile/listserver-go/internal/model"
)

const (
	uniqueViolation   = "23505"
	liveListingIndex  = "sessions_live_listing_key"
	announcementQuery = `
		SELECT id, host, port, session_id, protocol, owner, title, users, password, nsfm,
			update_key, client_ip, started, last_active, unlisted
		FROM sessions`
)

// ErrDuplicateListing is returned by Create when another unretired row
// already holds the same host, port and session id.
var ErrDuplicateListing = errors.New("session already listed")

// AnnouncementRepository is the session registry. Liveness is always derived
// from the since argument: a row is live when it is not unlisted and was
// active at or after since.
type AnnouncementRepository interface {
	List(ctx context.Context, filter model.ListAnnouncementsFilter, since time.Time) ([]model.Announcement, error)
	FindLive(ctx context.Context, id int64, since time.Time) (*model.Announcement, error)
	Create(ctx context.Context, params model.CreateAnnouncementParams, now time.Time) (*model.Announcement, error)
	Update(ctx context.Context, id int64, params model.UpdateAnnouncementParams, now time.Time) error
	Retire(ctx context.Context, id int64) error
	CountByClientIPSince(ctx context.Context, clientIP string, since time.Time) (int, error)
	CountLiveDuplicates(ctx context.Context, host string, port int, sessionID string, since time.Time) (int, error)
	UnlistExpiredDuplicates(ctx context.Context, host string, port int, sessionID string, since time.Time) (int64, error)
	DeleteInactiveBefore(ctx context.Context, before time.Time) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AnnouncementRepository
}

type announcementRepo struct {
	db database.DBTX
}

func NewAnnouncementRepository(db *sqlx.DB) AnnouncementRepository {
	return &announcementRepo{db: db}
}

func (r *announcementRepo) WithTx(tx *sqlx.Tx) AnnouncementRepository {
	return &announcementRepo{db: tx}
}

func (r *announcementRepo) List(ctx context.Context, filter model.ListAnnouncementsFilter, since time.Time) ([]model.Announcement, error) {
	var b strings.Builder
	b.WriteString(announcementQuery)
	b.WriteString(` WHERE unlisted = false AND last_active >= $1`)
	args := []any{since}

	if filter.Protocol != "" {
		args = append(args, filter.Protocol)
		b.WriteString(` AND protocol = $` + strconv.Itoa(len(args)))
	}
	if filter.Title != "" {
		args = append(args, "%"+escapeLike(filter.Title)+"%")
		b.WriteString(` AND title ILIKE $` + strconv.Itoa(len(args)))
	}
	if !filter.IncludeSensitive {
		b.WriteString(` AND nsfm = false`)
	}
	b.WriteString(` ORDER BY title ASC, id ASC`)

	announcements := []model.Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, b.String(), args...); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *announcementRepo) FindLive(ctx context.Context, id int64, since time.Time) (*model.Announcement, error) {
	var a model.Announcement
	err := r.db.GetContext(ctx, &a, announcementQuery+`
		WHERE id = $1 AND unlisted = false AND last_active >= $2
	`, id, since)
	return HandleNotFound(&a, err)
}

func (r *announcementRepo) Create(ctx context.Context, params model.CreateAnnouncementParams, now time.Time) (*model.Announcement, error) {
	var a model.Announcement
	err := r.db.GetContext(ctx, &a, `
		INSERT INTO sessions (host, port, session_id, protocol, owner, title, users, password,
			nsfm, update_key, client_ip, started, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING *
	`, params.Host, params.Port, params.SessionID, params.Protocol, params.Owner, params.Title,
		params.Users, params.Password, params.NSFM, params.UpdateKey, params.ClientIP, now)
	if isLiveListingViolation(err) {
		return nil, ErrDuplicateListing
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepo) Update(ctx context.Context, id int64, params model.UpdateAnnouncementParams, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			last_active = GREATEST(last_active, $2),
			title = COALESCE($3, title),
			users = COALESCE($4, users),
			password = COALESCE($5, password),
			owner = COALESCE($6, owner),
			nsfm = COALESCE($7, nsfm)
		WHERE id = $1
	`, id, now, params.Title, params.Users, params.Password, params.Owner, params.NSFM)
	return err
}

func (r *announcementRepo) Retire(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET unlisted = true WHERE id = $1
	`, id)
	return err
}

// CountByClientIPSince counts unlisted rows too, so unlisting does not free up quota.
func (r *announcementRepo) CountByClientIPSince(ctx context.Context, clientIP string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(id) FROM sessions
		WHERE client_ip = $1 AND last_active >= $2
	`, clientIP, since)
	return count, err
}

func (r *announcementRepo) CountLiveDuplicates(ctx context.Context, host string, port int, sessionID string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(id) FROM sessions
		WHERE host = $1 AND port = $2 AND session_id = $3
		AND unlisted = false AND last_active >= $4
	`, host, port, sessionID, since)
	return count, err
}

// UnlistExpiredDuplicates releases the live listing index for rows that aged
// out without being unlisted. Such rows can no longer be refreshed or unlisted
// by their owner, so marking them changes nothing a client can observe.
func (r *announcementRepo) UnlistExpiredDuplicates(ctx context.Context, host string, port int, sessionID string, since time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET unlisted = true
		WHERE host = $1 AND port = $2 AND session_id = $3
		AND unlisted = false AND last_active < $4
	`, host, port, sessionID, since)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *announcementRepo) DeleteInactiveBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE last_active < $1
	`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func isLiveListingViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == liveListingIndex
}
