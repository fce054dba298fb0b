package http

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"caixa/internal/auth"
	"caixa/internal/core"
	"caixa/internal/ledger"
)

// handleCreateTransaction records a movement from the entry form and tells
// the dashboard to refresh its partials.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, user auth.User) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Requisição inválida").Write(w)
		return
	}

	amountStr := sanitizeInput(r.Form.Get("amount"))
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Valor inválido").Write(w)
		return
	}

	draft := core.Draft{
		Description: sanitizeInput(r.Form.Get("description")),
		Amount:      core.Money{Cents: cents},
		Kind:        core.Kind(sanitizeInput(r.Form.Get("kind"))),
		Method:      core.PaymentMethod(sanitizeInput(r.Form.Get("method"))),
		Unit:        sanitizeInput(r.Form.Get("unit")),
		Category:    sanitizeInput(r.Form.Get("category")),
		OwnerID:     user.ID,
	}

	// Validate up front so store failures and bad input get distinct
	// status codes.
	if err := draft.Validate(s.svc.Units()); err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()
	t, err := s.svc.Record(ctx, draft)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction insert error", "error", err, "description", draft.Description, "amount_cents", cents)
		InternalServerError("Erro ao salvar a movimentação").Write(w)
		return
	}

	s.purgeCaches()
	NewHTMXResponse().
		TriggerTransactionCreated(t.ID).
		TriggerFormReset().
		BodyHTML(`<div class="success">` + t.Kind.Label() + ` registrada: ` +
			template.HTMLEscapeString(t.Description) + ` (` + formatReais(t.Amount.Cents) + `)</div>`).
		Write(w)
}

// handleDeleteTransaction removes a movement by id.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, _ auth.User) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		w.Header().Set("Allow", "POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Requisição inválida").Write(w)
		return
	}
	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Identificador ausente").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()
	if err := s.svc.Delete(ctx, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			NotFoundError("Movimentação não encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Transaction delete error", "error", err, "id", id)
		InternalServerError("Erro ao excluir a movimentação").Write(w)
		return
	}

	s.purgeCaches()
	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		BodyHTML(`<div class="success">Movimentação excluída</div>`).
		Write(w)
}

// handleUpdateGoal replaces the monthly goal target. Zero or negative
// targets are rejected, matching the progress calculation's domain.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request, _ auth.User) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Requisição inválida").Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(sanitizeInput(r.Form.Get("target")))
	if err != nil || cents <= 0 {
		UnprocessableEntityError("Meta inválida").Write(w)
		return
	}

	s.setTarget(core.Money{Cents: cents})
	slog.InfoContext(r.Context(), "Goal target updated", "target_cents", cents)
	NewHTMXResponse().
		TriggerGoalUpdated().
		BodyHTML(`<div class="success">Meta atualizada: ` + formatReais(cents) + `</div>`).
		Write(w)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return "Descrição obrigatória"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Valor inválido"
	case errors.Is(err, core.ErrInvalidKind):
		return "Tipo de movimentação inválido"
	case errors.Is(err, core.ErrInvalidMethod):
		return "Forma de pagamento inválida"
	case errors.Is(err, core.ErrInvalidUnit):
		return "Estabelecimento inválido"
	default:
		return "Dados inválidos"
	}
}
