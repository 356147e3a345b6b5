// Package swap covers the shift swap request workflow.
package swap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = "-createdAt"

	decisionPath = "swapRequests/isAproved/"
)

var ErrInvalidStatus = errors.New("status must be pending, approved or rejected")

type Filters struct {
	Status       entity.SwapStatus
	DepartmentID string
	FromUserID   string
	ToUserID     string
	Page         int
	Limit        int
	Sort         string
}

// Merge overlays the non-zero fields of next on f, the way successive filter
// changes accumulate on the list screen.
func (f Filters) Merge(next Filters) Filters {
	if next.Status != "" {
		f.Status = next.Status
	}
	if next.DepartmentID != "" {
		f.DepartmentID = next.DepartmentID
	}
	if next.FromUserID != "" {
		f.FromUserID = next.FromUserID
	}
	if next.ToUserID != "" {
		f.ToUserID = next.ToUserID
	}
	if next.Page > 0 {
		f.Page = next.Page
	}
	if next.Limit > 0 {
		f.Limit = next.Limit
	}
	if next.Sort != "" {
		f.Sort = next.Sort
	}
	return f
}

func (f Filters) withDefaults() Filters {
	return Filters{Page: DefaultPage, Limit: DefaultLimit, Sort: DefaultSort}.Merge(f)
}

func (f Filters) Validate() error {
	switch f.Status {
	case "", entity.SwapPending, entity.SwapApproved, entity.SwapRejected:
		return nil
	}
	return apperr.FieldErrors{"status": ErrInvalidStatus.Error()}
}

// Query applies defaults and pins restricted callers to their department.
func (f Filters) Query(scope policy.Scope) (gateway.Query, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	f = f.withDefaults()
	if !scope.Unrestricted() {
		f.DepartmentID = scope.DepartmentID
	}

	return gateway.Query{}.
		Add("status", string(f.Status)).
		Add("departmentId", f.DepartmentID).
		Add("fromUserId", f.FromUserID).
		Add("toUserId", f.ToUserID).
		Add("page", f.Page).
		Add("limit", f.Limit).
		Add("sort", f.Sort), nil
}

type Page struct {
	Items  []entity.SwapRequest      `json:"items"`
	Meta   entity.Meta               `json:"meta"`
	Counts map[entity.SwapStatus]int `json:"counts"`
}

type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context, scope policy.Scope, f Filters) (*Page, error) {
	q, err := f.Query(scope)
	if err != nil {
		return nil, err
	}

	resp, err := gateway.List[entity.SwapRequest](ctx, s.client, gateway.SwapRequests, q)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}

	items := resp.Data
	if items == nil {
		items = []entity.SwapRequest{}
	}

	f = f.withDefaults()
	meta := entity.Meta{
		Total:         resp.Total,
		TotalFiltered: resp.TotalFiltered,
		Page:          resp.Page,
		Limit:         resp.Limit,
	}
	if meta.Page == 0 {
		meta.Page = f.Page
	}
	if meta.Limit == 0 {
		meta.Limit = f.Limit
	}
	if meta.Total == 0 {
		meta.Total = len(items)
	}

	return &Page{Items: items, Meta: meta, Counts: CountByStatus(items)}, nil
}

func (s *Service) Approve(ctx context.Context, scope policy.Scope, id, message string) (*entity.SwapRequest, error) {
	return s.decide(ctx, scope, id, entity.SwapDecision{Status: entity.SwapApproved, Message: message})
}

func (s *Service) Reject(ctx context.Context, scope policy.Scope, id, message string) (*entity.SwapRequest, error) {
	return s.decide(ctx, scope, id, entity.SwapDecision{Status: entity.SwapRejected, Message: message})
}

// decide records the decision. Restricted callers may only decide requests
// of their own department.
func (s *Service) decide(ctx context.Context, scope policy.Scope, id string, d entity.SwapDecision) (*entity.SwapRequest, error) {
	if id == "" {
		return nil, apperr.FieldErrors{"id": "swap request id is required"}
	}
	if err := scope.Check(); err != nil {
		return nil, err
	}

	if !scope.Unrestricted() {
		req, err := gateway.Get[entity.SwapRequest](ctx, s.client, gateway.SwapRequests, id)
		if err != nil {
			return nil, err
		}
		if !scope.Allows(req.ScopeDepartment()) {
			return nil, policy.ErrNoAccess
		}
	}

	resp, err := gateway.Call[entity.SwapRequest](ctx, s.client, http.MethodPatch, decisionPath+url.PathEscape(id), nil, d)
	if err != nil {
		return nil, err
	}

	out := resp.Data
	if out.ID == "" {
		out.ID = id
	}
	if out.Status == "" {
		out.Status = d.Status
	}
	return &out, nil
}

func CountByStatus(items []entity.SwapRequest) map[entity.SwapStatus]int {
	counts := map[entity.SwapStatus]int{
		entity.SwapPending:  0,
		entity.SwapApproved: 0,
		entity.SwapRejected: 0,
	}
	for _, it := range items {
		counts[it.Status]++
	}
	return counts
}
