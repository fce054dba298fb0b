package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"caixa/internal/auth"
	"caixa/internal/core"
	"caixa/internal/ledger"
	"caixa/internal/memory"
	"caixa/internal/report"
)

const (
	testEmail    = "dono@loja.com.br"
	testPassword = "senha-super-secreta"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	units, err := core.NewUnitSet([]string{"Loja de Roupas", "Depósito de Bebidas"}, "Loja de Roupas")
	if err != nil {
		t.Fatalf("NewUnitSet() error = %v", err)
	}
	provider, err := auth.NewStaticProvider(testEmail, testPassword, testSecret)
	if err != nil {
		t.Fatalf("NewStaticProvider() error = %v", err)
	}
	svc := ledger.NewService(memory.New(), nil, units)
	s := NewServer(":0", svc, provider, report.NewPDFRenderer(), core.Money{Cents: 1000000})
	t.Cleanup(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
	})
	return s
}

func signIn(t *testing.T, s *Server) *http.Cookie {
	t.Helper()
	form := url.Values{"email": {testEmail}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no session cookie")
	}
	return cookies[0]
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func postForm(s *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return do(s, req)
}

func getWithCookie(s *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return do(s, req)
}

func TestIndexShowsLoginWhenAnonymous(t *testing.T) {
	s := newTestServer(t)
	rec := getWithCookie(s, "/", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Entrar") {
		t.Error("anonymous index does not show the login form")
	}
}

func TestIndexShowsDashboardWhenSignedIn(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)
	rec := getWithCookie(s, "/", cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, testEmail) {
		t.Error("dashboard does not show the operator email")
	}
	if !strings.Contains(body, "Nova movimentação") {
		t.Error("dashboard does not show the entry form")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	rec := postForm(s, "/login", url.Values{"email": {testEmail}, "password": {"errada"}}, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestPartialsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/ui/summary", "/ui/history", "/report.pdf"} {
		rec := getWithCookie(s, path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
		}
	}
	rec := postForm(s, "/transactions", url.Values{}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /transactions status = %d, want 401", rec.Code)
	}
}

func TestCreateTransactionAndSummary(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	rec := postForm(s, "/transactions", url.Values{
		"description": {"Venda balcão"},
		"amount":      {"100,00"},
		"kind":        {"inflow"},
		"method":      {"pix"},
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "transaction:created") {
		t.Errorf("HX-Trigger = %q, want transaction:created", trigger)
	}

	rec = postForm(s, "/transactions", url.Values{
		"description": {"Compra de gelo"},
		"amount":      {"40,00"},
		"kind":        {"outflow"},
		"method":      {"cash"},
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("create outflow status = %d", rec.Code)
	}

	rec = getWithCookie(s, "/ui/summary?period=today", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "R$ 100,00") {
		t.Errorf("summary missing inflow total: %s", body)
	}
	if !strings.Contains(body, "R$ 40,00") {
		t.Errorf("summary missing outflow total: %s", body)
	}
	if !strings.Contains(body, "R$ 60,00") {
		t.Errorf("summary missing net balance: %s", body)
	}
	// Only PIX received inflow, so the breakdown shows PIX alone
	if !strings.Contains(body, "PIX") {
		t.Errorf("summary missing PIX breakdown: %s", body)
	}
	if strings.Contains(body, "Dinheiro") {
		t.Errorf("outflow method leaked into breakdown: %s", body)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	tests := []struct {
		name string
		form url.Values
	}{
		{"bad amount", url.Values{"description": {"x"}, "amount": {"abc"}, "kind": {"inflow"}, "method": {"pix"}}},
		{"zero amount", url.Values{"description": {"x"}, "amount": {"0"}, "kind": {"inflow"}, "method": {"pix"}}},
		{"missing kind", url.Values{"description": {"x"}, "amount": {"10"}, "method": {"pix"}}},
		{"empty description", url.Values{"description": {"  "}, "amount": {"10"}, "kind": {"inflow"}, "method": {"pix"}}},
		{"unknown method", url.Values{"description": {"x"}, "amount": {"10"}, "kind": {"inflow"}, "method": {"cheque"}}},
		{"unknown unit", url.Values{"description": {"x"}, "amount": {"10"}, "kind": {"inflow"}, "method": {"pix"}, "unit": {"Padaria"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(s, "/transactions", tt.form, cookie)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	postForm(s, "/transactions", url.Values{
		"description": {"Venda"},
		"amount":      {"10,00"},
		"kind":        {"inflow"},
		"method":      {"pix"},
	}, cookie)

	rec := getWithCookie(s, "/ui/history?period=all", cookie)
	body := rec.Body.String()
	idx := strings.Index(body, `name="id" value="`)
	if idx < 0 {
		t.Fatalf("history has no delete form: %s", body)
	}
	rest := body[idx+len(`name="id" value="`):]
	id := rest[:strings.Index(rest, `"`)]

	rec = postForm(s, "/transactions/delete", url.Values{"id": {id}}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "transaction:deleted") {
		t.Errorf("HX-Trigger = %q, want transaction:deleted", trigger)
	}

	rec = getWithCookie(s, "/ui/history?period=all", cookie)
	if strings.Contains(rec.Body.String(), id) {
		t.Error("deleted transaction still listed")
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	rec := postForm(s, "/transactions/delete", url.Values{"id": {"nao-existe"}}, cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSummaryRejectsUnknownPeriod(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	rec := getWithCookie(s, "/ui/summary?period=week", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGoalUpdate(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	rec := postForm(s, "/goal", url.Values{"target": {"5000,00"}}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("goal status = %d", rec.Code)
	}
	if s.target().Cents != 500000 {
		t.Errorf("target = %d, want 500000", s.target().Cents)
	}

	rec = postForm(s, "/goal", url.Values{"target": {"abc"}}, cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid goal status = %d, want 422", rec.Code)
	}
	if s.target().Cents != 500000 {
		t.Error("invalid goal mutated the target")
	}
}

func TestReportPDF(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	postForm(s, "/transactions", url.Values{
		"description": {"Venda"},
		"amount":      {"10,00"},
		"kind":        {"inflow"},
		"method":      {"pix"},
	}, cookie)

	rec := getWithCookie(s, "/report.pdf?period=today", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("body is not a PDF document")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := getWithCookie(s, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	if rec := getWithCookie(s, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}
}

func TestSummaryCachePurgedOnCreate(t *testing.T) {
	s := newTestServer(t)
	cookie := signIn(t, s)

	// Prime the cache
	getWithCookie(s, "/ui/summary?period=today", cookie)

	postForm(s, "/transactions", url.Values{
		"description": {"Venda"},
		"amount":      {"25,00"},
		"kind":        {"inflow"},
		"method":      {"card"},
	}, cookie)

	rec := getWithCookie(s, "/ui/summary?period=today", cookie)
	if !strings.Contains(rec.Body.String(), "R$ 25,00") {
		t.Error("summary served stale cache after mutation")
	}
}
