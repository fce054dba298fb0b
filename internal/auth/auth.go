// Package auth is the identity provider boundary: sign in, sign out, current
// user. The rest of the application treats it as a black box; session
// validity is assumed for the duration of a page visit (no refresh, no
// expiry handling).
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const sessionCookie = "caixa_session"

// User is the authenticated operator. OwnerID attribution on transactions
// uses User.ID.
type User struct {
	ID    string
	Email string
}

var ErrBadCredentials = errors.New("invalid email or password")

// Provider is the identity provider contract.
type Provider interface {
	// SignIn validates credentials and establishes a session on w.
	SignIn(w http.ResponseWriter, email, password string) (User, error)
	// CurrentUser resolves the session carried by r, if any.
	CurrentUser(r *http.Request) (User, bool)
	// SignOut tears down the session on w.
	SignOut(w http.ResponseWriter)
}

// StaticProvider authenticates a single operator configured at process
// start and keeps the session in an HMAC-signed cookie.
type StaticProvider struct {
	email    string
	password string
	secret   []byte
}

var _ Provider = (*StaticProvider)(nil)

func NewStaticProvider(email, password, secret string) (*StaticProvider, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.New("operator email and password are required")
	}
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	return &StaticProvider{
		email:    strings.ToLower(strings.TrimSpace(email)),
		password: password,
		secret:   []byte(secret),
	}, nil
}

func (p *StaticProvider) user() User {
	// Deterministic id so attribution is stable across restarts
	return User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("caixa:"+p.email)).String(),
		Email: p.email,
	}
}

func (p *StaticProvider) SignIn(w http.ResponseWriter, email, password string) (User, error) {
	emailOK := strings.ToLower(strings.TrimSpace(email)) == p.email
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(p.password)) == 1
	if !emailOK || !passOK {
		return User{}, ErrBadCredentials
	}

	u := p.user()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    p.sign(u.Email),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return u, nil
}

func (p *StaticProvider) CurrentUser(r *http.Request) (User, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return User{}, false
	}
	email, ok := p.verify(c.Value)
	if !ok || email != p.email {
		return User{}, false
	}
	return p.user(), true
}

func (p *StaticProvider) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sign produces payload.signature with an HMAC-SHA256 over the payload.
func (p *StaticProvider) sign(email string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(email))
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil))
}

func (p *StaticProvider) verify(token string) (string, bool) {
	payload, sig, found := strings.Cut(token, ".")
	if !found {
		return "", false
	}
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(payload))
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}
	email, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	return string(email), true
}
