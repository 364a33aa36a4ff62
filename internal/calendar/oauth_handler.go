package calendar

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// CodeExchanger turns an OAuth callback code into a stored token. The direct
// Google client implements it; in gateway mode the gateway already did the
// exchange before redirecting here.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, state, code string) error
}

// OAuthHandler receives the provider redirect that ends the consent flow and
// turns it into a completion message on the bus. The page it renders runs in
// the consent window; the auth flow watcher picks the message up elsewhere.
type OAuthHandler struct {
	bus       Bus
	exchanger CodeExchanger
	logger    *logging.Logger
}

// NewOAuthHandler creates the callback handler. exchanger may be nil in
// gateway mode.
func NewOAuthHandler(bus Bus, exchanger CodeExchanger, logger *logging.Logger) *OAuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OAuthHandler{bus: bus, exchanger: exchanger, logger: logger}
}

// Routes returns the public callback routes.
func (h *OAuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/google/callback", h.HandleCallback)
	return r
}

// HandleCallback handles the browser redirect from the provider (or from the
// gateway). Three shapes are accepted: an OAuth error, a gateway status
// report, and a raw code+state pair for direct mode.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = errParam
		}
		h.publish(ctx, Message{Type: MessageAuthError, Error: desc})
		h.renderClosePage(w, "La autorización fue rechazada.")
		return
	}

	if status := q.Get("status"); status != "" {
		switch status {
		case "success":
			h.publish(ctx, Message{Type: MessageAuthSuccess})
			h.renderClosePage(w, "Autorización completada.")
		default:
			h.publish(ctx, Message{Type: MessageAuthError, Error: q.Get("message")})
			h.renderClosePage(w, "La autorización no pudo completarse.")
		}
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, `{"error": "missing code or status"}`, http.StatusBadRequest)
		return
	}
	if h.exchanger == nil {
		h.logger.Error("calendar: received oauth code but no exchanger configured")
		http.Error(w, `{"error": "direct authorization not supported"}`, http.StatusBadRequest)
		return
	}

	if err := h.exchanger.ExchangeCode(ctx, q.Get("state"), code); err != nil {
		h.logger.Error("calendar: code exchange failed", "error", err)
		h.publish(ctx, Message{Type: MessageAuthError, Error: errMessage(err, "No se pudo completar la autorización")})
		h.renderClosePage(w, "La autorización no pudo completarse.")
		return
	}

	h.publish(ctx, Message{Type: MessageAuthSuccess})
	h.renderClosePage(w, "Autorización completada.")
}

func (h *OAuthHandler) publish(ctx context.Context, msg Message) {
	if err := h.bus.Publish(ctx, msg); err != nil {
		h.logger.Error("calendar: publish completion message", "error", err)
	}
}

func (h *OAuthHandler) renderClosePage(w http.ResponseWriter, line string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html><html lang="es"><body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<p>` + line + `</p>
<p>Ya puedes cerrar esta ventana.</p>
</body></html>`))
}
