package handler

import (
	"net/http"
	"time"

	"github.com/drawpile/listserver-go/internal/httputil"
	"github.com/drawpile/listserver-go/internal/model"
)

// startedLayout is the timestamp format clients parse for the started field.
const startedLayout = "2006-01-02 15:04:05"

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func formatStarted(t time.Time) string {
	return t.UTC().Format(startedLayout)
}

func formatAnnouncement(a model.Announcement) map[string]any {
	return map[string]any{
		"id":        a.ID,
		"host":      a.Host,
		"port":      a.Port,
		"sessionId": a.SessionID,
		"protocol":  a.Protocol,
		"owner":     a.Owner,
		"title":     a.Title,
		"users":     a.Users,
		"password":  a.Password,
		"nsfm":      a.NSFM,
		"started":   formatStarted(a.Started),
	}
}
