// Package browser opens the OAuth consent window in a real Chrome instance
// and reports when the user closes it.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/deruvodaniel/lavenius-platform/internal/calendar"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// Launcher opens consent windows via chromedp.
type Launcher struct {
	logger *logging.Logger
}

// NewLauncher creates a chromedp-backed window launcher.
func NewLauncher(logger *logging.Logger) *Launcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Launcher{logger: logger}
}

// Open starts a visible browser window at url. The returned Window reports
// closed once the user dismisses the window (the browser context ends).
func (l *Launcher) Open(ctx context.Context, url string, width, height int) (calendar.Window, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", false),
		chromedp.Flag("app", url),
		chromedp.WindowSize(width, height),
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// Starting the browser is what fails when no display or binary exists;
	// surface that as the popup-blocked case.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: open consent window: %w", err)
	}

	l.logger.Info("browser: consent window opened", "width", width, "height", height)
	return &window{ctx: tabCtx, cancel: cancel}, nil
}

type window struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Closed reports whether the browser window is gone, either because the user
// closed it or because Close was called.
func (w *window) Closed() bool {
	select {
	case <-w.ctx.Done():
		return true
	default:
		return false
	}
}

// Close tears the window down.
func (w *window) Close() {
	w.cancel()
}

// DisabledLauncher refuses to open windows. Used on headless deployments
// where the consent flow must be completed from another device.
type DisabledLauncher struct{}

// Open always fails; the auth flow reports it as a blocked popup.
func (DisabledLauncher) Open(ctx context.Context, url string, width, height int) (calendar.Window, error) {
	return nil, fmt.Errorf("browser: consent window disabled")
}

var _ calendar.WindowLauncher = (*Launcher)(nil)
var _ calendar.WindowLauncher = DisabledLauncher{}
