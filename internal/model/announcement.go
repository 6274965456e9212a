package model

import "time"

// Announcement is one listed session. UpdateKey never leaves the server
// except in the announce response.
type Announcement struct {
	ID         int64     `db:"id" json:"id"`
	Host       string    `db:"host" json:"host"`
	Port       int       `db:"port" json:"port"`
	SessionID  string    `db:"session_id" json:"sessionId"`
	Protocol   string    `db:"protocol" json:"protocol"`
	Owner      string    `db:"owner" json:"owner"`
	Title      string    `db:"title" json:"title"`
	Users      int       `db:"users" json:"users"`
	Password   bool      `db:"password" json:"password"`
	NSFM       bool      `db:"nsfm" json:"nsfm"`
	UpdateKey  string    `db:"update_key" json:"-"`
	ClientIP   string    `db:"client_ip" json:"-"`
	Started    time.Time `db:"started" json:"started"`
	LastActive time.Time `db:"last_active" json:"-"`
	Unlisted   bool      `db:"unlisted" json:"-"`
}

type CreateAnnouncementParams struct {
	Host      string
	Port      int
	SessionID string
	Protocol  string
	Owner     string
	Title     string
	Users     int
	Password  bool
	NSFM      bool
	UpdateKey string
	ClientIP  string
}

// UpdateAnnouncementParams holds a partial update. Nil fields are left unchanged.
type UpdateAnnouncementParams struct {
	Title    *string
	Users    *int
	Password *bool
	Owner    *string
	NSFM     *bool
}

type ListAnnouncementsFilter struct {
	Protocol         string
	Title            string
	IncludeSensitive bool
}
