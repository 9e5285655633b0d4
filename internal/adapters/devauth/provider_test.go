package devauth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/target/eventhub/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{
		UserID:    "dev-user",
		Email:     "dev@example.com",
		FirstName: "Dev",
		Groups:    []string{"organizers"},
	})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	url, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(url, "/auth/callback?") {
		t.Fatalf("unexpected authURL: %s", url)
	}
	if !strings.Contains(url, "state="+state) {
		t.Fatalf("authURL %s does not carry state %s", url, state)
	}
	if state == "" || nonce == "" || state == nonce {
		t.Fatal("state and nonce should be generated independently")
	}
	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.UserID != "dev-user" || id.Email != "dev@example.com" || id.FirstName != "Dev" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestProvider_BeginSignup(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	url, _, _, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/", Signup: true})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.Contains(url, "signup=1") {
		t.Fatalf("signup flag missing from %s", url)
	}
}

func TestProvider_ExchangeRefreshesExpiry(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com", SessionDuration: time.Hour})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prov.now = func() time.Time { return base }

	id, _ := prov.Exchange(context.Background(), ports.ExchangeInput{})
	if !id.ExpiresAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", id.ExpiresAt)
	}

	id.Groups = append(id.Groups, "mutated")
	again, _ := prov.Exchange(context.Background(), ports.ExchangeInput{})
	if len(again.Groups) != 0 {
		t.Fatalf("identity groups leaked between exchanges: %v", again.Groups)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	if _, err := NewProvider(Config{Email: "dev@example.com"}); err == nil {
		t.Fatal("expected error for missing UserID")
	}
	if _, err := NewProvider(Config{UserID: "dev-user"}); err == nil {
		t.Fatal("expected error for missing Email")
	}
}
