package calendar

import (
	"context"
	"strings"

	"github.com/deruvodaniel/lavenius-platform/internal/observability/metrics"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// Checker queries the provider for the calendar list and derives the
// connection and sync status from it.
type Checker struct {
	manager *StateManager
	service Service
	store   StateStore
	metrics *metrics.CalendarMetrics
	logger  *logging.Logger
}

// NewChecker creates a connection checker. store and metrics may be nil.
func NewChecker(manager *StateManager, service Service, store StateStore, m *metrics.CalendarMetrics, logger *logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Checker{
		manager: manager,
		service: service,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// CheckConnection refreshes the connection state from the provider. At most
// one check runs at a time; concurrent calls observe the guard and return
// without any external call. Failures are absorbed — callers only see the
// resulting state.
func (c *Checker) CheckConnection(ctx context.Context) {
	if !c.manager.BeginCheck() {
		return
	}
	defer c.manager.EndCheck()

	calendars, err := c.service.ListCalendars(ctx)
	if err != nil {
		if IsNotLinked(err) {
			// Expected before the account is linked; not an operational error.
			c.metrics.ObserveCheck("not_linked")
		} else {
			c.logger.Error("calendar: connection check failed", "error", err)
			c.metrics.ObserveCheck("error")
		}
		c.manager.ResetDisconnected()
		c.persist(ctx)
		return
	}

	c.manager.ApplyCheck(calendars, deriveSyncStatus(calendars))
	c.metrics.ObserveCheck("ok")
	c.persist(ctx)
}

// deriveSyncStatus scans the list in order; the first calendar named after
// the sessions sentinel, or carrying the marker in its description, becomes
// the sessions calendar.
func deriveSyncStatus(calendars []CalendarInfo) SyncStatus {
	status := SyncStatus{HasToken: len(calendars) > 0}
	for _, cal := range calendars {
		if cal.Summary == SessionsCalendarName || strings.Contains(cal.Description, sessionsMarker) {
			status.HasSessionsCalendar = true
			status.SessionsCalendarID = cal.ID
			break
		}
	}
	return status
}

func (c *Checker) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, c.manager.Persisted()); err != nil {
		c.logger.Error("calendar: persist connection state", "error", err)
	}
}
