package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

// GoogleClient is the direct-mode Service implementation: it holds the OAuth
// token itself and talks to the Google Calendar API without a gateway.
type GoogleClient struct {
	oauth     *oauth2.Config
	tokenFile string
	http      *http.Client
	logger    *logging.Logger

	mu     sync.Mutex
	states map[string]time.Time
}

// NewGoogleClient creates a direct Google Calendar client. The token is kept
// at tokenFile with restricted permissions.
func NewGoogleClient(clientID, clientSecret, redirectURL, tokenFile string, logger *logging.Logger) (*GoogleClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("calendar: google client credentials required")
	}
	if tokenFile == "" {
		return nil, errors.New("calendar: google token file path required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GoogleClient{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				gcalendar.CalendarScope,
			},
			Endpoint: google.Endpoint,
		},
		tokenFile: tokenFile,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
		states:    make(map[string]time.Time),
	}, nil
}

// AuthURL builds the consent URL with a fresh state token. States expire
// after ten minutes, same as the provider's own authorization codes.
func (g *GoogleClient) AuthURL(ctx context.Context) (AuthURLResponse, error) {
	state := uuid.NewString()

	g.mu.Lock()
	g.states[state] = time.Now().Add(10 * time.Minute)
	for s, exp := range g.states {
		if time.Now().After(exp) {
			delete(g.states, s)
		}
	}
	g.mu.Unlock()

	authURL := g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return AuthURLResponse{URL: authURL, State: state}, nil
}

// ExchangeCode validates the callback state and trades the authorization code
// for a token, persisting it for later calls.
func (g *GoogleClient) ExchangeCode(ctx context.Context, state, code string) error {
	g.mu.Lock()
	exp, ok := g.states[state]
	delete(g.states, state)
	g.mu.Unlock()
	if !ok || time.Now().After(exp) {
		return errors.New("calendar: invalid or expired oauth state")
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("calendar: exchange authorization code: %w", err)
	}
	return g.saveToken(token)
}

// ListCalendars lists the account's calendars. A missing token is reported as
// the not-linked case so the checker treats it as an expected outcome.
func (g *GoogleClient) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	svc, err := g.calendarService(ctx)
	if err != nil {
		return nil, err
	}

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleErr(err)
	}

	calendars := make([]CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, CalendarInfo{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
			Primary:     item.Primary,
		})
	}
	return calendars, nil
}

// Sync makes sure the sessions calendar exists, creating it when missing.
func (g *GoogleClient) Sync(ctx context.Context) (SyncResult, error) {
	svc, err := g.calendarService(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return SyncResult{}, classifyGoogleErr(err)
	}
	for _, item := range list.Items {
		if item.Summary == SessionsCalendarName || strings.Contains(item.Description, sessionsMarker) {
			return SyncResult{Message: "El calendario de sesiones ya está sincronizado"}, nil
		}
	}

	created, err := svc.Calendars.Insert(&gcalendar.Calendar{
		Summary:     SessionsCalendarName,
		Description: "Sesiones de terapia (" + sessionsMarker + ")",
	}).Context(ctx).Do()
	if err != nil {
		return SyncResult{}, classifyGoogleErr(err)
	}

	g.logger.Info("calendar: created sessions calendar", "calendar_id", created.Id)
	return SyncResult{Message: "Calendario de sesiones creado", SyncedCount: 1}, nil
}

// Disconnect revokes the token with Google and forgets it locally.
func (g *GoogleClient) Disconnect(ctx context.Context) error {
	token, err := g.loadToken()
	if err != nil {
		return fmt.Errorf("calendar: no linked account: %w", err)
	}

	form := url.Values{"token": {token.AccessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("calendar: create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: revoke token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Message: "token revocation rejected"}
	}

	if err := os.Remove(g.tokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("calendar: remove stored token: %w", err)
	}
	return nil
}

func (g *GoogleClient) calendarService(ctx context.Context) (*gcalendar.Service, error) {
	token, err := g.loadToken()
	if err != nil {
		// No token yet is the expected "not linked" outcome.
		return nil, &StatusError{Code: http.StatusBadRequest, Message: "calendar account not linked"}
	}
	svc, err := gcalendar.NewService(ctx, option.WithTokenSource(g.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("calendar: create google service: %w", err)
	}
	return svc, nil
}

func (g *GoogleClient) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(g.tokenFile), 0o700); err != nil {
		return fmt.Errorf("calendar: create token directory: %w", err)
	}
	f, err := os.OpenFile(g.tokenFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("calendar: create token file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("calendar: encode token: %w", err)
	}
	return nil
}

func (g *GoogleClient) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(g.tokenFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("calendar: decode token: %w", err)
	}
	return &token, nil
}

func classifyGoogleErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &StatusError{Code: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("calendar: google api: %w", err)
}

var _ Service = (*GoogleClient)(nil)
