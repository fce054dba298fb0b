package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newProvider(t *testing.T) *StaticProvider {
	t.Helper()
	p, err := NewStaticProvider("dono@loja.com.br", "segredo123", "0123456789abcdef")
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	return p
}

func sessionRequest(t *testing.T, rr *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSignInAndCurrentUser(t *testing.T) {
	p := newProvider(t)
	rr := httptest.NewRecorder()

	u, err := p.SignIn(rr, "Dono@loja.com.br ", "segredo123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if u.Email != "dono@loja.com.br" || u.ID == "" {
		t.Fatalf("unexpected user %+v", u)
	}

	got, ok := p.CurrentUser(sessionRequest(t, rr))
	if !ok {
		t.Fatalf("expected session to resolve")
	}
	if got.ID != u.ID {
		t.Fatalf("owner id must be stable: %q != %q", got.ID, u.ID)
	}
}

func TestSignInBadCredentials(t *testing.T) {
	p := newProvider(t)
	rr := httptest.NewRecorder()

	if _, err := p.SignIn(rr, "dono@loja.com.br", "errada"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := p.SignIn(rr, "outra@pessoa.com", "segredo123"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("failed sign-in must not set a session")
	}
}

func TestTamperedSessionRejected(t *testing.T) {
	p := newProvider(t)
	rr := httptest.NewRecorder()
	if _, err := p.SignIn(rr, "dono@loja.com.br", "segredo123"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		c.Value = strings.Replace(c.Value, ".", ".ff", 1)
		req.AddCookie(c)
	}
	if _, ok := p.CurrentUser(req); ok {
		t.Fatalf("tampered cookie must not resolve to a user")
	}
}

func TestSignOut(t *testing.T) {
	p := newProvider(t)
	rr := httptest.NewRecorder()
	p.SignOut(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expiring cookie, got %v", cookies)
	}
}

func TestNewStaticProviderValidation(t *testing.T) {
	if _, err := NewStaticProvider("", "pw", "0123456789abcdef"); err == nil {
		t.Fatalf("expected error for empty email")
	}
	if _, err := NewStaticProvider("a@b.c", "pw", "short"); err == nil {
		t.Fatalf("expected error for short secret")
	}
}
