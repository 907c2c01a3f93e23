package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func issued(t *testing.T, c *SessionCookie, id string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := c.Issue(rec, id); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/ui/scene", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	return req
}

func TestSessionCookie_RoundTrip(t *testing.T) {
	c, err := NewSessionCookie("s3cret", time.Hour, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got, err := c.SessionID(issued(t, c, "abc-123"))
	if err != nil || got != "abc-123" {
		t.Fatalf("SessionID = %q, %v", got, err)
	}
}

func TestSessionCookie_Rejects(t *testing.T) {
	c, _ := NewSessionCookie("s3cret", time.Hour, false)
	other, _ := NewSessionCookie("different", time.Hour, false)

	if _, err := c.SessionID(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrNoSession) {
		t.Fatalf("missing cookie: got %v", err)
	}
	if _, err := c.SessionID(issued(t, other, "abc")); !errors.Is(err, ErrNoSession) {
		t.Fatalf("foreign signature: got %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	c.now = func() time.Time { return past }
	req := issued(t, c, "abc")
	c.now = time.Now
	if _, err := c.SessionID(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired token: got %v", err)
	}
}

func TestNewSessionCookie_RequiresSecret(t *testing.T) {
	if _, err := NewSessionCookie("  ", time.Hour, false); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}

func TestSelectLang(t *testing.T) {
	cases := []struct{ explicit, al, want string }{
		{"EN", "", "en"},
		{"fr", "en-US", "ko"},
		{"", "en-GB,en;q=0.8", "en"},
		{"", "ko-KR", "ko"},
		{"", "de-DE", "en"},
	}
	for _, tc := range cases {
		if got := selectLang(tc.explicit, tc.al, "en"); string(got) != tc.want {
			t.Errorf("selectLang(%q, %q) = %q, want %q", tc.explicit, tc.al, got, tc.want)
		}
	}
}
