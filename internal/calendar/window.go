package calendar

import "context"

// Window is an opened consent window. Closed reports whether the user has
// closed it; Close tears it down from our side.
type Window interface {
	Closed() bool
	Close()
}

// WindowLauncher opens a top-level browsing context at the authorization URL.
// Opening can fail (popup blocked, no browser available); the auth flow
// treats that as a terminal, user-visible outcome.
type WindowLauncher interface {
	Open(ctx context.Context, url string, width, height int) (Window, error)
}
