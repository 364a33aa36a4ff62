package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deruvodaniel/lavenius-platform/internal/notify"
	"github.com/deruvodaniel/lavenius-platform/internal/observability/metrics"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

const (
	consentWindowWidth  = 500
	consentWindowHeight = 640

	defaultPollInterval = 500 * time.Millisecond
	defaultCloseGrace   = 2 * time.Second
	defaultFlowTimeout  = 5 * time.Minute
)

// Coordinator drives the consent-window authorization flow. Two independent
// signals can complete a flow — a success/error message from the OAuth
// callback, and the user closing the window — and they race. A single watcher
// goroutine selects over both, so exactly one of them performs the
// reconciliation work.
type Coordinator struct {
	manager  *StateManager
	service  Service
	checker  *Checker
	syncer   *Syncer
	bus      Bus
	launcher WindowLauncher
	notifier notify.Notifier
	metrics  *metrics.CalendarMetrics
	logger   *logging.Logger

	// Overridable in tests.
	PollInterval time.Duration
	CloseGrace   time.Duration
	FlowTimeout  time.Duration

	wg sync.WaitGroup
}

// NewCoordinator creates an auth flow coordinator. metrics may be nil.
func NewCoordinator(manager *StateManager, service Service, checker *Checker, syncer *Syncer, bus Bus, launcher WindowLauncher, notifier notify.Notifier, m *metrics.CalendarMetrics, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{
		manager:      manager,
		service:      service,
		checker:      checker,
		syncer:       syncer,
		bus:          bus,
		launcher:     launcher,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
		PollInterval: defaultPollInterval,
		CloseGrace:   defaultCloseGrace,
		FlowTimeout:  defaultFlowTimeout,
	}
}

// Connect starts the authorization flow: fetch the auth URL, open the consent
// window, and hand off to the completion watcher. It returns once the window
// is open; completion is reconciled asynchronously.
func (c *Coordinator) Connect(ctx context.Context) error {
	auth, err := c.service.AuthURL(ctx)
	if err != nil {
		c.metrics.ObserveAuthFlow("auth_url_error")
		c.notifier.Error(ctx, "Error al conectar el calendario", errMessage(err, "No se pudo iniciar la autorización"))
		return fmt.Errorf("calendar: fetch auth url: %w", err)
	}
	if auth.URL == "" {
		c.metrics.ObserveAuthFlow("empty_auth_url")
		c.notifier.Error(ctx, "Error al conectar el calendario", "No se pudo obtener la URL de autorización")
		return nil
	}

	win, err := c.launcher.Open(ctx, auth.URL, consentWindowWidth, consentWindowHeight)
	if err != nil {
		c.metrics.ObserveAuthFlow("window_blocked")
		c.notifier.Error(ctx, "Ventana emergente bloqueada", "Habilita las ventanas emergentes para conectar tu calendario")
		return nil
	}

	msgs, unsubscribe, err := c.bus.Subscribe(ctx)
	if err != nil {
		win.Close()
		c.metrics.ObserveAuthFlow("subscribe_error")
		c.notifier.Error(ctx, "Error al conectar el calendario", errMessage(err, "No se pudo iniciar la autorización"))
		return fmt.Errorf("calendar: subscribe for completion: %w", err)
	}

	c.notifier.Info(ctx, "Autorización en curso", "Completa la autorización de Google en la ventana abierta")

	// The watcher outlives the HTTP request that triggered the flow.
	flowCtx := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go c.watch(flowCtx, win, msgs, unsubscribe)
	return nil
}

// Wait blocks until any in-flight flow watcher has finished. Used on
// shutdown.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// watch resolves the race between the message channel and the polled
// window-closed check. Whichever fires first does the reconciliation; the
// ticker, the timer and the subscription are released on every path.
func (c *Coordinator) watch(ctx context.Context, win Window, msgs <-chan Message, unsubscribe func()) {
	defer c.wg.Done()
	defer unsubscribe()

	poll := time.NewTicker(c.PollInterval)
	defer poll.Stop()
	timeout := time.NewTimer(c.FlowTimeout)
	defer timeout.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if c.handleMessage(ctx, msg) {
				return
			}
		case <-poll.C:
			if !win.Closed() {
				continue
			}
			poll.Stop()
			c.afterWindowClosed(ctx, msgs, timeout.C)
			return
		case <-timeout.C:
			c.metrics.ObserveAuthFlow("timeout")
			c.logger.Warn("calendar: auth flow abandoned, releasing listeners")
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleMessage reacts to one inbound message. It reports whether the flow is
// resolved; unrecognized messages leave the flow pending.
func (c *Coordinator) handleMessage(ctx context.Context, msg Message) bool {
	switch msg.Type {
	case MessageAuthSuccess:
		c.metrics.ObserveAuthFlow("message_success")
		c.notifier.Success(ctx, "Calendario conectado", "Google Calendar se conectó correctamente")
		c.manager.SetConnected(true)
		c.reconcile(ctx)
		return true
	case MessageAuthError:
		c.metrics.ObserveAuthFlow("message_error")
		c.notifier.Error(ctx, "Error al conectar el calendario", fallbackDescription(msg.Error, "La autorización fue rechazada"))
		return true
	default:
		return false
	}
}

// afterWindowClosed waits a short grace so the provider backend can finish
// processing the callback, then reconciles — unless a message resolves the
// flow first, in which case the message wins and this path becomes a no-op.
func (c *Coordinator) afterWindowClosed(ctx context.Context, msgs <-chan Message, timeout <-chan time.Time) {
	grace := time.NewTimer(c.CloseGrace)
	defer grace.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			if c.handleMessage(ctx, msg) {
				return
			}
		case <-grace.C:
			c.metrics.ObserveAuthFlow("window_closed")
			c.reconcile(ctx)
			return
		case <-timeout:
			c.metrics.ObserveAuthFlow("timeout")
			return
		case <-ctx.Done():
			return
		}
	}
}

// reconcile runs the post-authorization check and, when the account still has
// no sessions calendar, chains a sync to create it.
func (c *Coordinator) reconcile(ctx context.Context) {
	c.checker.CheckConnection(ctx)
	if c.manager.Snapshot().SyncStatus.HasSessionsCalendar {
		return
	}
	if err := c.syncer.Sync(ctx); err != nil {
		// Already notified by the syncer; nothing upstream to re-raise to.
		c.logger.Error("calendar: chained sync after authorization failed", "error", err)
	}
}

func fallbackDescription(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
