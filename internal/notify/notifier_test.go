package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

func TestLogNotifier_EmitsStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logging.NewWriter("info", "production", &buf))

	ctx := context.Background()
	n.Success(ctx, "Calendario conectado", "Google Calendar conectado correctamente")
	n.Error(ctx, "Error al sincronizar", "timeout")
	n.Info(ctx, "Autorización en curso", "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log entries, got %d: %q", len(lines), buf.String())
	}

	wantKinds := []string{"success", "error", "info"}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %d not JSON: %v", i, err)
		}
		if entry["kind"] != wantKinds[i] {
			t.Errorf("line %d kind = %v, want %s", i, entry["kind"], wantKinds[i])
		}
	}
}

type recordingNotifier struct {
	calls []string
}

func (r *recordingNotifier) Success(ctx context.Context, title, description string) {
	r.calls = append(r.calls, "success:"+title)
}

func (r *recordingNotifier) Error(ctx context.Context, title, description string) {
	r.calls = append(r.calls, "error:"+title)
}

func (r *recordingNotifier) Info(ctx context.Context, title, description string) {
	r.calls = append(r.calls, "info:"+title)
}

func TestMultiNotifier_FansOut(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	m := MultiNotifier{a, b}

	m.Success(context.Background(), "t", "d")
	m.Error(context.Background(), "t", "d")

	for _, r := range []*recordingNotifier{a, b} {
		if len(r.calls) != 2 {
			t.Fatalf("expected 2 calls, got %v", r.calls)
		}
		if r.calls[0] != "success:t" || r.calls[1] != "error:t" {
			t.Errorf("unexpected calls %v", r.calls)
		}
	}
}

func TestNewEmailNotifier_RequiresKeyAndRecipient(t *testing.T) {
	if n := NewEmailNotifier(EmailConfig{APIKey: "", To: "a@b.com"}, nil); n != nil {
		t.Error("expected nil notifier without API key")
	}
	if n := NewEmailNotifier(EmailConfig{APIKey: "sg-key", To: ""}, nil); n != nil {
		t.Error("expected nil notifier without recipient")
	}
	if n := NewEmailNotifier(EmailConfig{APIKey: "sg-key", To: "a@b.com", FromEmail: "no-reply@lavenius.com"}, nil); n == nil {
		t.Error("expected notifier with key and recipient")
	}
}
