// Package calendar implements the external-calendar connection and
// synchronization engine: the connection state, the consent-window
// authorization flow, and the check/sync/disconnect orchestration around the
// calendar provider.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	// SessionsCalendarName is the reserved name of the calendar that holds
	// therapy sessions. A calendar whose description contains sessionsMarker
	// is also recognized, so users may rename the calendar itself.
	SessionsCalendarName = "Sesiones"
	sessionsMarker       = "lavenius-sync"

	// StorageKey identifies the persisted connection record.
	StorageKey = "lavenius-calendar-connection"
)

// CalendarInfo describes one calendar in the linked provider account.
type CalendarInfo struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
}

// SyncStatus is derived from the last successful connection check.
// SessionsCalendarID is non-empty exactly when HasSessionsCalendar is true.
type SyncStatus struct {
	HasToken            bool   `json:"hasToken"`
	HasSessionsCalendar bool   `json:"hasSessionsCalendar"`
	SessionsCalendarID  string `json:"sessionsCalendarId,omitempty"`
}

// AuthURLResponse carries the provider authorization URL and the opaque state
// token bound to this flow.
type AuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// SyncResult is the outcome of a remote synchronization.
type SyncResult struct {
	Message     string `json:"message"`
	SyncedCount int    `json:"syncedCount"`
}

// Service is the calendar provider collaborator. All operations are
// network-bound and fallible.
type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	AuthURL(ctx context.Context) (AuthURLResponse, error)
	Sync(ctx context.Context) (SyncResult, error)
	Disconnect(ctx context.Context) error
}

// StatusError is a provider failure carrying the transport status code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("calendar: provider returned status %d", e.Code)
	}
	return fmt.Sprintf("calendar: provider returned status %d: %s", e.Code, e.Message)
}

// IsNotLinked reports whether err is the expected "account not yet linked"
// outcome, carried as a 400 from the provider.
func IsNotLinked(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusBadRequest
}

// errMessage extracts the most specific human-readable message from err,
// falling back to a generic default.
func errMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
