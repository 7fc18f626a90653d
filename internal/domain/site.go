package domain

import (
	"encoding/json"
	"time"
)

// Site log levels, lowest to highest
const (
	LogLevelDebug    = 10
	LogLevelInfo     = 20
	LogLevelWarning  = 30
	LogLevelError    = 40
	LogLevelCritical = 50
)

// SiteInfo holds per-host settings
type SiteInfo struct {
	Domain    string    `db:"domain" json:"domain"`
	Robots    string    `db:"robots" json:"robots"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ContactMessage is a message submitted through the public contact form
type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	IP        string    `db:"ip" json:"ip"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateContactMessageParams for inserting a contact message
type CreateContactMessageParams struct {
	Name    string
	Email   string
	Subject string
	Message string
	IP      string
}

// SiteLog is an application log entry kept in the data store
type SiteLog struct {
	ID        string          `db:"id" json:"id"`
	Level     int             `db:"level" json:"level"`
	Message   string          `db:"message" json:"message"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// CreateSiteLogParams for appending a site log entry
type CreateSiteLogParams struct {
	Level   int
	Message string
	Data    json.RawMessage
}

// LevelName returns a readable name for a site log level
func LevelName(level int) string {
	switch {
	case level >= LogLevelCritical:
		return "CRITICAL"
	case level >= LogLevelError:
		return "ERROR"
	case level >= LogLevelWarning:
		return "WARNING"
	case level >= LogLevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
