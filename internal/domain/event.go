package domain

import (
	"encoding/json"
	"time"
)

// SchemaVersion is the current version of the event schema contract.
// The cleaning pipeline drops rows that claim any other version.
const SchemaVersion = 1

// TimeLayout is the wire format for event_time: ISO-8601 with second
// precision and a literal "Z" suffix. time.Parse with this layout
// rejects numeric offsets, which is intentional.
const TimeLayout = "2006-01-02T15:04:05Z"

// DateLayout is the calendar-date form used for the event_date
// partition key.
const DateLayout = "2006-01-02"

// Event names form a closed enumeration.
const (
	EventSignup     = "signup"
	EventLogin      = "login"
	EventFeatureUse = "feature_use"
	EventPurchase   = "purchase"
	EventLogout     = "logout"
)

// Platforms form a closed enumeration.
const (
	PlatformWeb     = "web"
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

var allowedEventNames = map[string]struct{}{
	EventSignup:     {},
	EventLogin:      {},
	EventFeatureUse: {},
	EventPurchase:   {},
	EventLogout:     {},
}

var allowedPlatforms = map[string]struct{}{
	PlatformWeb:     {},
	PlatformIOS:     {},
	PlatformAndroid: {},
}

// ValidEventName reports whether name belongs to the closed event-name set.
func ValidEventName(name string) bool {
	_, ok := allowedEventNames[name]
	return ok
}

// ValidPlatform reports whether platform belongs to the closed platform set.
func ValidPlatform(platform string) bool {
	_, ok := allowedPlatforms[platform]
	return ok
}

// Event is the raw record produced by the simulator, one JSON object
// per line on the wire. Fields are deliberately loose: EventTime stays
// a string and UserID is a pointer so that defect injection and
// third-party sources can produce malformed values without breaking
// decoding. The cleaning pipeline is where strictness lives.
type Event struct {
	EventID       string          `json:"event_id"`
	EventName     string          `json:"event_name"`
	EventTime     string          `json:"event_time"`
	UserID        *int64          `json:"user_id"`
	SessionID     string          `json:"session_id"`
	Platform      string          `json:"platform"`
	SchemaVersion int             `json:"schema_version"`
	Properties    json.RawMessage `json:"properties"`
}

// CleanedRecord is the analytics-ready projection of a validated Event.
// EventTime preserves the original wire string for audit; EventTS is
// the parsed instant and EventDate its UTC calendar date, which is also
// the partition key for durable storage.
type CleanedRecord struct {
	EventID        string    `json:"event_id"`
	EventName      string    `json:"event_name"`
	EventTime      string    `json:"event_time"`
	EventTS        time.Time `json:"event_ts"`
	EventDate      string    `json:"event_date"`
	UserID         int64     `json:"user_id"`
	SessionID      string    `json:"session_id"`
	Platform       string    `json:"platform"`
	SchemaVersion  int       `json:"schema_version"`
	PropertiesJSON string    `json:"properties_json"`
}
