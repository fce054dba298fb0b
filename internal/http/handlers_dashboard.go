package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"caixa/internal/auth"
	"caixa/internal/core"
)

type methodRow struct {
	Label  string
	Amount string
	Width  int
}

type summaryView struct {
	Period       string
	PeriodLabel  string
	TotalInflow  string
	TotalOutflow string
	NetBalance   string
	NetNegative  bool
	ByMethod     []methodRow
	GoalPercent  string
	GoalWidth    int
	GoalRemain   string
	GoalTarget   string
}

// getSummary returns the aggregated summary for a period, consulting the
// cache first.
func (s *Server) getSummary(ctx context.Context, period core.Period) (core.Summary, error) {
	key := string(period)
	if data, found := s.summaryCache.Get(key); found {
		slog.DebugContext(ctx, "Summary cache hit", "period", period)
		return data, nil
	}

	records, err := s.snapshotForPeriod(ctx, period)
	if err != nil {
		return core.Summary{}, err
	}
	summary := core.Aggregate(records)
	s.summaryCache.Set(key, summary)
	return summary, nil
}

// getHistory returns the period's records in store order (created_at
// descending), consulting the cache first.
func (s *Server) getHistory(ctx context.Context, period core.Period) ([]core.Transaction, error) {
	key := string(period)
	if items, found := s.historyCache.Get(key); found {
		slog.DebugContext(ctx, "History cache hit", "period", period, "count", len(items))
		result := make([]core.Transaction, len(items))
		copy(result, items)
		return result, nil
	}

	records, err := s.snapshotForPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	s.historyCache.Set(key, records)
	return records, nil
}

// handleSummary renders the totals partial with the payment method
// breakdown and goal progress.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, _ auth.User) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	period, err := parsePeriodParam(r)
	if err != nil {
		BadRequestError("Período inválido").Write(w)
		return
	}

	summary, err := s.getSummary(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary error", "error", err, "period", period)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar o resumo</div>`))
		return
	}

	view := summaryView{
		Period:       string(period),
		PeriodLabel:  period.Label(),
		TotalInflow:  formatReais(summary.TotalInflow.Cents),
		TotalOutflow: formatReais(summary.TotalOutflow.Cents),
		NetBalance:   formatReais(summary.NetBalance.Cents),
		NetNegative:  summary.NetBalance.Cents < 0,
	}

	// Scale breakdown bars against the biggest slice
	var maxCents int64
	for _, m := range core.PaymentMethods() {
		if v, ok := summary.ByMethod[m]; ok && v.Cents > maxCents {
			maxCents = v.Cents
		}
	}
	for _, m := range core.PaymentMethods() {
		v, ok := summary.ByMethod[m]
		if !ok {
			continue
		}
		width := 0
		if maxCents > 0 {
			width = int((v.Cents*100 + maxCents/2) / maxCents)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		view.ByMethod = append(view.ByMethod, methodRow{Label: m.Label(), Amount: formatReais(v.Cents), Width: width})
	}

	target := s.target()
	if progress, err := core.GoalProgress(summary.TotalInflow, target); err == nil {
		view.GoalPercent = strconv.FormatFloat(progress.Percent, 'f', 1, 64)
		view.GoalWidth = int(progress.Percent)
		view.GoalRemain = formatReais(progress.Remaining.Cents)
		view.GoalTarget = formatReais(target.Cents)
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Saldo: ` + view.NetBalance + `</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "summary.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "summary.html", "period", period)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao renderizar o resumo</div>`))
	}
}

type historyItem struct {
	ID          string
	Date        string
	Description string
	KindLabel   string
	Method      string
	Unit        string
	Amount      string
	Outflow     bool
}

// handleHistory renders the movement list partial.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ auth.User) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	period, err := parsePeriodParam(r)
	if err != nil {
		BadRequestError("Período inválido").Write(w)
		return
	}

	records, err := s.getHistory(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "History error", "error", err, "period", period)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar o histórico</div>`))
		return
	}

	data := struct {
		Period      string
		PeriodLabel string
		Items       []historyItem
	}{Period: string(period), PeriodLabel: period.Label()}

	for _, t := range records {
		data.Items = append(data.Items, historyItem{
			ID:          t.ID,
			Date:        t.CreatedAt.Local().Format("02/01/2006 15:04"),
			Description: t.Description,
			KindLabel:   t.Kind.Label(),
			Method:      t.Method.Label(),
			Unit:        t.Unit,
			Amount:      formatReais(t.Amount.Cents),
			Outflow:     t.Kind == core.Outflow,
		})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">` + strconv.Itoa(len(data.Items)) + ` movimentações</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "history.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "history.html", "period", period)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao renderizar o histórico</div>`))
	}
}

// handleReport streams the period's movements as a PDF download.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, _ auth.User) {
	period, err := parsePeriodParam(r)
	if err != nil {
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}
	if s.renderer == nil {
		http.Error(w, "report rendering not configured", http.StatusServiceUnavailable)
		return
	}

	records, err := s.snapshotForPeriod(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report snapshot error", "error", err, "period", period)
		http.Error(w, "could not load records", http.StatusInternalServerError)
		return
	}

	rows := core.ProjectRows(records)
	totals := core.Aggregate(records)
	title := "Relatório - " + period.Label()

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	pdf, err := s.renderer.Render(ctx, title, rows, totals)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report render error", "error", err, "period", period)
		http.Error(w, "could not render report", http.StatusInternalServerError)
		return
	}

	filename := "relatorio-" + string(period) + "-" + time.Now().Format("2006-01-02") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	_, _ = w.Write(pdf)
}
