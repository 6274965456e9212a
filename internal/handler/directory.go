package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/drawpile/listserver-go/internal/config"
	apperrors "github.com/drawpile/listserver-go/internal/errors"
	"github.com/drawpile/listserver-go/internal/httputil"
	"github.com/drawpile/listserver-go/internal/middleware"
	"github.com/drawpile/listserver-go/internal/model"
	"github.com/drawpile/listserver-go/internal/service"
)

// Directory is implemented by *service.DirectoryService.
type Directory interface {
	List(ctx context.Context, filter model.ListAnnouncementsFilter) ([]model.Announcement, error)
	Announce(ctx context.Context, req service.AnnounceRequest, clientIP string) (*service.AnnounceResult, error)
	Refresh(ctx context.Context, id int64, key string, req service.RefreshRequest, clientIP string) error
	Unlist(ctx context.Context, id int64, key string, clientIP string) error
}

// ListingInfo describes this server on the root endpoint.
type ListingInfo struct {
	Name        string
	Description string
	Favicon     string
}

type DirectoryHandler struct {
	directory Directory
	info      ListingInfo
}

func NewDirectoryHandler(directory Directory, info ListingInfo) *DirectoryHandler {
	return &DirectoryHandler{
		directory: directory,
		info:      info,
	}
}

// Routes mounts the public API. writeMiddleware wraps only the routes that
// change listings.
func (h *DirectoryHandler) Routes(writeMiddleware ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Info)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)

		r.Group(func(r chi.Router) {
			r.Use(writeMiddleware...)
			r.Post("/", h.Announce)
			r.Put("/{id}", h.Refresh)
			r.Delete("/{id}", h.Unlist)
		})
	})

	return r
}

// GET /
func (h *DirectoryHandler) Info(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONP(w, r, http.StatusOK, map[string]any{
		"api_name":    config.APIName,
		"version":     config.APIVersion,
		"name":        h.info.Name,
		"description": h.info.Description,
		"favicon":     h.info.Favicon,
	})
}

// GET /sessions
func (h *DirectoryHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.ListAnnouncementsFilter{
		Protocol:         strings.TrimSpace(query.Get("protocol")),
		Title:            strings.TrimSpace(query.Get("title")),
		IncludeSensitive: parseSensitiveToggle(query),
	}

	announcements, err := h.directory.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	result := make([]map[string]any, 0, len(announcements))
	for _, a := range announcements {
		result = append(result, formatAnnouncement(a))
	}

	httputil.WriteJSONP(w, r, http.StatusOK, result)
}

// POST /sessions
func (h *DirectoryHandler) Announce(w http.ResponseWriter, r *http.Request) {
	var req service.AnnounceRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.directory.Announce(r.Context(), req, middleware.GetClientIP(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// PUT /sessions/{id}
func (h *DirectoryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := parseListingID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, apperrors.NotFound())
		return
	}

	var req service.RefreshRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, err)
		return
	}

	key := r.Header.Get(config.UpdateKeyHeader)
	if err := h.directory.Refresh(r.Context(), id, key, req, middleware.GetClientIP(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DELETE /sessions/{id}
func (h *DirectoryHandler) Unlist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseListingID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, apperrors.NotFound())
		return
	}

	key := r.Header.Get(config.UpdateKeyHeader)
	if err := h.directory.Unlist(r.Context(), id, key, middleware.GetClientIP(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseSensitiveToggle reads the nsfm parameter. A bare "nsfm=" counts as
// true so that old clients sending an empty value keep seeing everything.
func parseSensitiveToggle(query map[string][]string) bool {
	values, ok := query["nsfm"]
	if !ok || len(values) == 0 {
		return false
	}
	value := strings.TrimSpace(values[0])
	return value == "" || strings.EqualFold(value, "true")
}

func parseListingID(raw string) (int64, bool) {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeBody reads a JSON object into dst. Type mismatches are reported as
// bad data rather than bad JSON since the document itself parsed.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		if allowEmpty {
			return nil
		}
		return apperrors.BadJSON("Request body is empty")
	case errors.As(err, &maxBytesErr):
		return apperrors.TooLarge()
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return apperrors.BadData("Invalid " + typeErr.Field)
	default:
		return apperrors.BadJSON("Request body is not valid JSON")
	}
}
