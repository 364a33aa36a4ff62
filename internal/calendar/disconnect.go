package calendar

import (
	"context"
	"fmt"

	"github.com/deruvodaniel/lavenius-platform/internal/notify"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// Disconnector tears the connection down and resets the state.
type Disconnector struct {
	manager  *StateManager
	service  Service
	store    StateStore
	notifier notify.Notifier
	logger   *logging.Logger
}

// NewDisconnector creates a disconnect handler. store may be nil.
func NewDisconnector(manager *StateManager, service Service, store StateStore, notifier notify.Notifier, logger *logging.Logger) *Disconnector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Disconnector{
		manager:  manager,
		service:  service,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Disconnect asks the provider to drop the link. On failure the state is
// left completely unchanged; on success it returns to process-start defaults
// and the persisted record is removed.
func (d *Disconnector) Disconnect(ctx context.Context) error {
	if err := d.service.Disconnect(ctx); err != nil {
		d.notifier.Error(ctx, "Error al desconectar", errMessage(err, "No se pudo desconectar el calendario"))
		return fmt.Errorf("calendar: disconnect: %w", err)
	}

	d.notifier.Success(ctx, "Calendario desconectado", "La conexión con Google Calendar fue eliminada")
	d.manager.Reset()

	if d.store != nil {
		if err := d.store.Delete(ctx); err != nil {
			d.logger.Error("calendar: delete persisted connection state", "error", err)
		}
	}
	return nil
}
