package http

import (
	"log/slog"
	"net/http"

	"caixa/internal/core"
)

type methodOption struct {
	Value string
	Label string
}

// handleIndex renders the login form for anonymous visitors and the
// dashboard for the signed-in operator.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	user, ok := s.auth.CurrentUser(r)
	if !ok {
		s.renderLogin(w, r, "")
		return
	}

	units := s.svc.Units()
	methods := make([]methodOption, 0, 3)
	for _, m := range core.PaymentMethods() {
		methods = append(methods, methodOption{Value: string(m), Label: m.Label()})
	}

	data := struct {
		Email       string
		Units       []string
		DefaultUnit string
		Methods     []methodOption
		GoalTarget  string
	}{
		Email:       user.Email,
		Units:       units.Names(),
		DefaultUnit: units.Default(),
		Methods:     methods,
		GoalTarget:  formatReais(s.target().Cents),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	data := struct{ Error string }{Error: errMsg}
	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err, "template", "login.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleLogin establishes a session from the posted credentials. Failures
// re-render the form; the reason is never detailed beyond bad credentials.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderLogin(w, r, "Requisição inválida")
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	user, err := s.auth.SignIn(w, email, password)
	if err != nil {
		slog.WarnContext(r.Context(), "Sign-in rejected", "email", email)
		w.WriteHeader(http.StatusUnauthorized)
		s.renderLogin(w, r, "E-mail ou senha incorretos")
		return
	}

	slog.InfoContext(r.Context(), "Operator signed in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.auth.SignOut(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
