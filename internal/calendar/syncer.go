package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/deruvodaniel/lavenius-platform/internal/notify"
	"github.com/deruvodaniel/lavenius-platform/internal/observability/metrics"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// Syncer triggers a remote synchronization and refreshes the derived status
// afterwards; the sync may have created the sessions calendar server-side.
type Syncer struct {
	manager  *StateManager
	service  Service
	store    StateStore
	checker  *Checker
	notifier notify.Notifier
	metrics  *metrics.CalendarMetrics
	logger   *logging.Logger

	now func() time.Time
}

// NewSyncer creates a sync orchestrator. store and metrics may be nil.
func NewSyncer(manager *StateManager, service Service, store StateStore, checker *Checker, notifier notify.Notifier, m *metrics.CalendarMetrics, logger *logging.Logger) *Syncer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Syncer{
		manager:  manager,
		service:  service,
		store:    store,
		checker:  checker,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Sync performs one remote synchronization. Concurrent calls are not
// de-duplicated; the only callers are the auth flow and an explicit user
// action. Failure clears the in-flight flag and is returned to the caller.
func (s *Syncer) Sync(ctx context.Context) error {
	s.manager.BeginSync()
	started := s.now()

	result, err := s.service.Sync(ctx)
	if err != nil {
		s.manager.EndSync()
		s.metrics.ObserveSync("error", s.now().Sub(started).Seconds())
		s.notifier.Error(ctx, "Error al sincronizar", errMessage(err, "No se pudo sincronizar el calendario"))
		return fmt.Errorf("calendar: sync: %w", err)
	}

	description := result.Message
	if description == "" {
		description = fmt.Sprintf("%d citas sincronizadas", result.SyncedCount)
	}
	s.notifier.Success(ctx, "Calendario sincronizado", description)

	s.manager.SetConnected(true)
	s.manager.MarkSynced(s.now())
	s.manager.EndSync()
	s.metrics.ObserveSync("ok", s.now().Sub(started).Seconds())
	s.persist(ctx)

	// The sync may have created the sessions calendar; refresh SyncStatus.
	s.checker.CheckConnection(ctx)
	return nil
}

func (s *Syncer) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.manager.Persisted()); err != nil {
		s.logger.Error("calendar: persist connection state", "error", err)
	}
}
