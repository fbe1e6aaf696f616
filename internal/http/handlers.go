package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"estoque/internal/core"
	"estoque/internal/log"
	"estoque/internal/services"
)

// envelope is the JSON body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// classify maps service errors to a status and a user facing message.
func classify(err error) (int, string) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, core.ErrInvalidID):
		return http.StatusBadRequest, "id inválido"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "registro não encontrado"
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, "formato da requisição inválido"
	default:
		return http.StatusInternalServerError, "erro interno, tente novamente"
	}
}

// respondError writes the JSON error envelope. Details of unexpected errors
// stay in the logs.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= 500 {
		log.FromContext(r.Context()).Fail(r.Context(), "Request failed", err, log.FieldPath, r.URL.Path)
	}
	writeJSON(w, status, envelope{Message: msg})
}

// respondUIError is respondError for htmx requests.
func (s *Server) respondUIError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= 500 {
		log.FromContext(r.Context()).Fail(r.Context(), "UI request failed", err, log.FieldPath, r.URL.Path)
	}
	ErrorResponse(status, msg).Write(w)
}

// render executes a template into a buffer so a failing template never
// leaves a half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).
			Fail(r.Context(), "Template execution failed", err, "template", name)
		http.Error(w, "erro ao renderizar a página", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) snapshot() (services.Snapshot, bool) {
	if s.dashboard == nil {
		return services.Snapshot{Dashboard: core.Aggregate(nil, nil), Panel: core.BuildPanel(nil, nil)}, false
	}
	return s.dashboard.Latest()
}

// dashboardView is the API shape of the chart data.
type dashboardView struct {
	core.Dashboard
	GeneratedAt *time.Time `json:"generated_at"`
}

func newDashboardView(snap services.Snapshot, ok bool) dashboardView {
	v := dashboardView{Dashboard: snap.Dashboard}
	if ok {
		v.GeneratedAt = &snap.GeneratedAt
	}
	return v
}

func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot()
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: newDashboardView(snap, ok)})
}

func (s *Server) handleDashboardRefreshAPI(w http.ResponseWriter, r *http.Request) {
	if s.dashboard == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Message: "painel indisponível"})
		return
	}
	snap, err := s.dashboard.Refresh(r.Context(), services.TriggerManual)
	if err != nil {
		prev, ok := s.dashboard.Latest()
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			Message: "falha ao atualizar; exibindo o último resultado",
			Data:    newDashboardView(prev, ok),
		})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "painel atualizado", Data: newDashboardView(snap, true)})
}

func (s *Server) handlePanelAPI(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.snapshot()
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: snap.Panel})
}

type overviewPage struct {
	Title       string
	Active      string
	Snapshot    services.Snapshot
	Ready       bool
	Unknown     string
	MonthWindow int
}

func (s *Server) overview(title, active string) overviewPage {
	snap, ok := s.snapshot()
	return overviewPage{
		Title:       title,
		Active:      active,
		Snapshot:    snap,
		Ready:       ok,
		Unknown:     core.UnidentifiedLabel,
		MonthWindow: core.MonthlyWindow,
	}
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "painel.html", s.overview("Painel", "painel"))
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "graficos.html", s.overview("Gráficos", "graficos"))
}
