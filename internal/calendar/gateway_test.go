package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayListCalendars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/calendar/list", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calendars":[{"id":"primary","summary":"Personal","primary":true},{"id":"ses","summary":"Sesiones"}]}`))
	}))
	defer srv.Close()

	client, err := NewGatewayClient(srv.URL, "secret", nil)
	require.NoError(t, err)

	calendars, err := client.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 2)
	assert.Equal(t, "Sesiones", calendars[1].Summary)
	assert.True(t, calendars[0].Primary)
}

func TestGatewayNotLinked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"calendar account not linked"}`))
	}))
	defer srv.Close()

	client, err := NewGatewayClient(srv.URL, "", nil)
	require.NoError(t, err)

	_, err = client.ListCalendars(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotLinked(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "calendar account not linked", se.Message)
}

func TestGatewayServerErrorIsNotNotLinked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream timeout"}`))
	}))
	defer srv.Close()

	client, err := NewGatewayClient(srv.URL, "", nil)
	require.NoError(t, err)

	_, err = client.ListCalendars(context.Background())
	require.Error(t, err)
	assert.False(t, IsNotLinked(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "upstream timeout", se.Message)
}

func TestGatewayAuthURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/auth-url", r.URL.Path)
		_, _ = w.Write([]byte(`{"url":"https://accounts.google.com/o/oauth2/auth?state=abc","state":"abc"}`))
	}))
	defer srv.Close()

	client, err := NewGatewayClient(srv.URL, "", nil)
	require.NoError(t, err)

	auth, err := client.AuthURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", auth.State)
	assert.Contains(t, auth.URL, "accounts.google.com")
}

func TestGatewaySync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendar/sync", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"5 citas sincronizadas","syncedCount":5}`))
	}))
	defer srv.Close()

	client, err := NewGatewayClient(srv.URL, "", nil)
	require.NoError(t, err)

	result, err := client.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.SyncedCount)
	assert.Equal(t, "5 citas sincronizadas", result.Message)
}

func TestGatewayDisconnect(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendar/disconnect", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewGatewayClient(srv.URL, "", nil)
	require.NoError(t, err)

	require.NoError(t, client.Disconnect(context.Background()))
	assert.True(t, called)
}

func TestGatewayErrMessageFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance window\n"))
	}))
	defer srv.Close()

	client, err := NewGatewayClient(srv.URL, "", nil)
	require.NoError(t, err)

	_, err = client.ListCalendars(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "maintenance window", se.Message)
}

func TestNewGatewayClientRequiresBaseURL(t *testing.T) {
	_, err := NewGatewayClient("   ", "", nil)
	assert.Error(t, err)
}
