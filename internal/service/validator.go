package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/drawpile/listserver-go/internal/config"
	apperrors "github.com/drawpile/listserver-go/internal/errors"
	"github.com/drawpile/listserver-go/internal/model"
	"github.com/drawpile/listserver-go/internal/util"
)

// AnnounceRequest is the body of POST /sessions. Pointer fields distinguish
// an absent property from a zero value.
type AnnounceRequest struct {
	SessionID *string         `json:"id"`
	Host      *string         `json:"host"`
	Port      json.RawMessage `json:"port"`
	Protocol  *string         `json:"protocol"`
	Owner     *string         `json:"owner"`
	Title     *string         `json:"title"`
	Users     *int            `json:"users"`
	Password  *bool           `json:"password"`
	NSFM      *bool           `json:"nsfm"`
}

// RefreshRequest is the body of PUT /sessions/{id}. Absent fields are left unchanged.
type RefreshRequest struct {
	Title    *string `json:"title"`
	Users    *int    `json:"users"`
	Password *bool   `json:"password"`
	Owner    *string `json:"owner"`
	NSFM     *bool   `json:"nsfm"`
}

// maxUsers is the largest user count the users column can store.
const maxUsers = math.MaxInt32

type Validator struct {
	allowPrivateIP bool
}

func NewValidator(allowPrivateIP bool) *Validator {
	return &Validator{allowPrivateIP: allowPrivateIP}
}

// Validate turns an announce request into insert parameters. The update key
// and the sensitivity flag are left for the caller to fill in.
func (v *Validator) Validate(req AnnounceRequest, clientIP string) (model.CreateAnnouncementParams, error) {
	var params model.CreateAnnouncementParams

	if req.SessionID == nil {
		return params, apperrors.MissingRequired("id")
	}
	sessionID := *req.SessionID
	if !util.IsValidSessionID(sessionID) {
		return params, apperrors.BadData("Invalid ID")
	}

	host := clientIP
	if req.Host != nil && strings.TrimSpace(*req.Host) != "" {
		host = strings.ToLower(strings.TrimSpace(*req.Host))
	}
	host, err := v.validateHost(host)
	if err != nil {
		return params, err
	}

	port, err := parsePort(req.Port)
	if err != nil {
		return params, err
	}

	if req.Protocol == nil {
		return params, apperrors.MissingRequired("protocol")
	}
	if req.Owner == nil {
		return params, apperrors.MissingRequired("owner")
	}
	if req.Users == nil {
		return params, apperrors.MissingRequired("users")
	}
	if !validUserCount(*req.Users) {
		return params, apperrors.BadData("Invalid user count")
	}

	params = model.CreateAnnouncementParams{
		Host:      host,
		Port:      port,
		SessionID: sessionID,
		Protocol:  strings.TrimSpace(*req.Protocol),
		Owner:     strings.TrimSpace(*req.Owner),
		Users:     *req.Users,
		ClientIP:  clientIP,
	}
	if req.Title != nil {
		params.Title = strings.TrimSpace(*req.Title)
	}
	if req.Password != nil {
		params.Password = *req.Password
	}

	return params, nil
}

// ValidateRefresh checks the optional fields of a refresh and trims strings in place.
func (v *Validator) ValidateRefresh(req *RefreshRequest) error {
	if req.Users != nil && !validUserCount(*req.Users) {
		return apperrors.BadData("Invalid user count")
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Owner != nil {
		owner := strings.TrimSpace(*req.Owner)
		req.Owner = &owner
	}
	return nil
}

func validUserCount(users int) bool {
	return users >= 0 && users <= maxUsers
}

// validateHost returns the host in the form it is stored. IP literals are
// canonicalized so one address always yields the same listing key.
func (v *Validator) validateHost(host string) (string, error) {
	if ip := util.ParseIP(host); ip != nil {
		if !v.allowPrivateIP && !util.IsPublicIP(ip) {
			return "", apperrors.LocalIP()
		}
		return ip.String(), nil
	}
	if !util.IsValidHostname(host) {
		return "", apperrors.BadData("Invalid host address")
	}
	return host, nil
}

// parsePort accepts a JSON number or a string of digits. An absent or null
// port selects the default.
func parsePort(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return config.DefaultSessionPort, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, apperrors.BadData("Invalid port number")
		}
		if text == "" || strings.TrimLeft(text, "0123456789") != "" {
			return 0, apperrors.BadData("Invalid port number")
		}
	} else {
		text = string(raw)
	}

	port, err := strconv.Atoi(text)
	if err != nil || port <= 0 || port >= 65536 {
		return 0, apperrors.BadData("Invalid port number")
	}
	return port, nil
}
