package schedule

import (
	"context"
	"fmt"
	"net/http"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
)

const bulkPath = "schedules/createMultiUser"

type Filters struct {
	StartDate       string
	EndDate         string
	DepartmentID    string
	SubDepartmentID string
	UserID          string
	ShiftID         string
	Page            int
	Limit           int
}

// Query pins restricted callers to their own department whatever they asked for.
func (f Filters) Query(scope policy.Scope) (gateway.Query, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	dept := f.DepartmentID
	if !scope.Unrestricted() {
		dept = scope.DepartmentID
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	return gateway.Query{}.
		Add("startDate", f.StartDate).
		Add("endDate", f.EndDate).
		Add("departmentId", dept).
		Add("subDepartmentId", f.SubDepartmentID).
		Add("userId", f.UserID).
		Add("shiftId", f.ShiftID).
		Add("page", page).
		Add("limit", limit).
		Add("isActive", true), nil
}

type Page struct {
	Items []entity.Schedule `json:"items"`
	Meta  entity.Meta       `json:"meta"`
}

type BulkResult struct {
	Message string            `json:"message,omitempty"`
	Created []entity.Schedule `json:"created"`
	Count   int               `json:"count"`
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

	resp, err := gateway.List[entity.Schedule](ctx, s.client, gateway.Schedules, q)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	items := policy.Visible(scope, resp.Data)
	meta := entity.Meta{
		Total:         resp.Total,
		TotalFiltered: resp.TotalFiltered,
		Page:          resp.Page,
		Limit:         resp.Limit,
	}
	if meta.Total == 0 {
		meta.Total = len(items)
	}
	return &Page{Items: items, Meta: meta}, nil
}

func (s *Service) Create(ctx context.Context, req entity.CreateScheduleRequest) (*gateway.Response[entity.Schedule], error) {
	return gateway.Create[entity.Schedule](ctx, s.client, gateway.Schedules, req)
}

// CreateMany sends the whole aggregate at once. Partial rejections are only
// visible through the returned count.
func (s *Service) CreateMany(ctx context.Context, req entity.BulkScheduleRequest) (*BulkResult, error) {
	resp, err := gateway.Call[[]entity.Schedule](ctx, s.client, http.MethodPost, bulkPath, nil, req)
	if err != nil {
		return nil, err
	}
	return &BulkResult{
		Message: resp.Message,
		Created: resp.Data,
		Count:   len(resp.Data),
	}, nil
}

func (s *Service) Update(ctx context.Context, id string, req entity.CreateScheduleRequest) (*gateway.Response[entity.Schedule], error) {
	return gateway.Update[entity.Schedule](ctx, s.client, gateway.Schedules, id, req)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := gateway.Delete(ctx, s.client, gateway.Schedules, id)
	return err
}
