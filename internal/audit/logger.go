package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventAnnounce        EventType = "announce"
	EventRefresh         EventType = "refresh"
	EventUnlist          EventType = "unlist"
	EventBadKey          EventType = "bad_key"
	EventRateLimitExceed EventType = "rate_limit_exceeded"
	EventDuplicate       EventType = "duplicate"
	EventPurge           EventType = "purge"
)

type Event struct {
	Type      EventType
	ListingID int64
	SessionID string
	IP        string
	Details   map[string]interface{}
}

func Log(event Event) {
	logger := log.With().
		Str("audit", "listing").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.ListingID != 0 {
		logger = logger.With().Int64("listing_id", event.ListingID).Logger()
	}
	if event.SessionID != "" {
		logger = logger.With().Str("session_id", event.SessionID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("listing audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
