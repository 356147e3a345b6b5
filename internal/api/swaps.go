package api

import (
	"net/http"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/swap"
	"github.com/go-chi/chi/v5"
)

func (s *Server) mountSwaps(r chi.Router) {
	r.Get("/", s.ListSwaps)
	r.Post("/{id}/approve", s.ApproveSwap)
	r.Post("/{id}/reject", s.RejectSwap)
}

func (s *Server) mountSwapConfigs(r chi.Router) {
	r.Get("/", s.ListSwapConfigs)
	r.Get("/{departmentId}", s.GetSwapConfig)
	r.Put("/{departmentId}", s.SaveSwapConfig)
	r.With(s.RequireConfirm).Delete("/{departmentId}", s.DeleteSwapConfig)
}

func (s *Server) ListSwaps(w http.ResponseWriter, r *http.Request) {
	var params ListSwapsParams
	bindings := append([]queryBinding{
		optional("status", &params.Status),
		optional("departmentId", &params.DepartmentID),
		optional("fromUserId", &params.FromUserID),
		optional("toUserId", &params.ToUserID),
		optional("sort", &params.Sort),
	}, params.PageParams.bindings()...)
	if err := bindQuery(r, bindings...); err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	page, err := s.swaps.List(r.Context(), identity(r).Scope(), swap.Filters{
		Status:       entity.SwapStatus(deref(params.Status)),
		DepartmentID: deref(params.DepartmentID),
		FromUserID:   deref(params.FromUserID),
		ToUserID:     deref(params.ToUserID),
		Page:         deref(params.Page),
		Limit:        deref(params.Limit),
		Sort:         deref(params.Sort),
	})
	if err != nil {
		s.httpError(w, err, "Failed to load swap requests")
		return
	}

	s.httpPage(w, page.Items, map[string]any{"meta": page.Meta, "counts": page.Counts})
}

type decisionBody struct {
	Message string `json:"message,omitempty"`
}

func (s *Server) ApproveSwap(w http.ResponseWriter, r *http.Request) {
	s.decideSwap(w, r, entity.SwapApproved)
}

func (s *Server) RejectSwap(w http.ResponseWriter, r *http.Request) {
	s.decideSwap(w, r, entity.SwapRejected)
}

func (s *Server) decideSwap(w http.ResponseWriter, r *http.Request, status entity.SwapStatus) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	var body decisionBody
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			s.httpError(w, err, "Invalid request body")
			return
		}
	}

	decide := s.swaps.Approve
	if status == entity.SwapRejected {
		decide = s.swaps.Reject
	}

	updated, err := decide(r.Context(), identity(r).Scope(), id, body.Message)
	if err != nil {
		s.httpError(w, err, "Failed to update swap request")
		return
	}

	s.afterMutation(r.Context(), string(status), gateway.SwapRequests, map[string]any{"id": id, "message": body.Message})
	s.httpMessage(w, http.StatusOK, "Swap request "+string(status), updated)
}

func (s *Server) ListSwapConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.deps.SwapConfigs.List(r.Context(), identity(r).Scope())
	if err != nil {
		s.httpError(w, err, "Failed to load swap configuration")
		return
	}

	s.httpResponse(w, http.StatusOK, nonNil(configs), "success")
}

func (s *Server) GetSwapConfig(w http.ResponseWriter, r *http.Request) {
	dept, err := pathParam(r, "departmentId")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	cfg, err := s.deps.SwapConfigs.Get(r.Context(), identity(r).Scope(), dept)
	if err != nil {
		s.httpError(w, err, "Failed to load swap configuration")
		return
	}

	s.httpResponse(w, http.StatusOK, cfg, "success")
}

func (s *Server) SaveSwapConfig(w http.ResponseWriter, r *http.Request) {
	dept, err := pathParam(r, "departmentId")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	var cfg entity.SwapConfig
	if err := decodeBody(r, &cfg); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}
	cfg.DepartmentID = dept

	saved, err := s.deps.SwapConfigs.Save(r.Context(), identity(r).Scope(), cfg)
	if err != nil {
		s.httpError(w, err, "Failed to save swap configuration")
		return
	}

	s.audit(r.Context(), "update", "swapConfigs", saved)
	s.httpMessage(w, http.StatusOK, "Swap configuration saved", saved)
}

func (s *Server) DeleteSwapConfig(w http.ResponseWriter, r *http.Request) {
	dept, err := pathParam(r, "departmentId")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	if err := s.deps.SwapConfigs.Delete(r.Context(), identity(r).Scope(), dept); err != nil {
		s.httpError(w, err, "Failed to delete swap configuration")
		return
	}

	s.audit(r.Context(), "delete", "swapConfigs", map[string]any{"departmentId": dept})
	s.httpMessage(w, http.StatusOK, "Swap configuration reset to defaults", nil)
}

func (s *Server) ListAudit(w http.ResponseWriter, r *http.Request) {
	var params AuditParams
	if err := bindQuery(r, optional("limit", &params.Limit)); err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	events, err := s.deps.Audit.List(r.Context(), deref(params.Limit))
	if err != nil {
		s.httpError(w, err, "Failed to load audit trail")
		return
	}

	s.httpResponse(w, http.StatusOK, nonNil(events), "success")
}
