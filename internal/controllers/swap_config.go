package controllers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/policy"
	"github.com/adamanr/shift_console/internal/swap"
	"github.com/jackc/pgx/v5"
)

var ErrSwapConfigNotFound = errors.New("swap config not found")

const swapConfigColumns = `id, department_id, swaps_enabled, requires_approval, min_advance_notice, max_swaps_per_month, created_at, updated_at`

type SwapConfigController struct {
	deps *Dependens
}

func NewSwapConfigController(deps *Dependens) *SwapConfigController {
	return &SwapConfigController{
		deps: deps,
	}
}

// List returns the stored configs the scope may see.
func (c *SwapConfigController) List(ctx context.Context, scope policy.Scope) ([]entity.SwapConfig, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	query := `SELECT ` + swapConfigColumns + ` FROM swap_configs ORDER BY department_id`
	args := []interface{}{}
	if !scope.Unrestricted() {
		query = `SELECT ` + swapConfigColumns + ` FROM swap_configs WHERE department_id = $1 ORDER BY department_id`
		args = append(args, scope.DepartmentID)
	}

	rows, err := c.deps.DB.Query(ctx, query, args...)
	if err != nil {
		c.deps.Logger.Error("Error querying swap configs", slog.String("error", err.Error()))
		return nil, err
	}
	defer rows.Close()

	configs, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.SwapConfig])
	if err != nil {
		c.deps.Logger.Error("Error collecting rows", slog.String("error", err.Error()))
		return nil, err
	}

	return configs, nil
}

// Get returns the department's config, or the defaults when none is stored.
func (c *SwapConfigController) Get(ctx context.Context, scope policy.Scope, departmentID string) (*entity.SwapConfig, error) {
	if !scope.Allows(departmentID) {
		return nil, policy.ErrNoAccess
	}

	query := `SELECT ` + swapConfigColumns + ` FROM swap_configs WHERE department_id = $1`

	rows, err := c.deps.DB.Query(ctx, query, departmentID)
	if err != nil {
		c.deps.Logger.Error("Error querying swap config", slog.String("error", err.Error()))
		return nil, err
	}
	defer rows.Close()

	cfg, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entity.SwapConfig])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			def := swap.DefaultConfig(departmentID)
			return &def, nil
		}

		c.deps.Logger.Error("Error collecting row", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// Save inserts or replaces the config of cfg.DepartmentID.
func (c *SwapConfigController) Save(ctx context.Context, scope policy.Scope, cfg entity.SwapConfig) (*entity.SwapConfig, error) {
	if err := swap.ValidateConfig(scope, cfg); err != nil {
		c.deps.Logger.Warn("Invalid swap config", slog.String("department_id", cfg.DepartmentID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now()
	query := `INSERT INTO swap_configs (department_id, swaps_enabled, requires_approval, min_advance_notice, max_swaps_per_month, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $6)
              ON CONFLICT (department_id) DO UPDATE
              SET swaps_enabled = EXCLUDED.swaps_enabled,
                  requires_approval = EXCLUDED.requires_approval,
                  min_advance_notice = EXCLUDED.min_advance_notice,
                  max_swaps_per_month = EXCLUDED.max_swaps_per_month,
                  updated_at = EXCLUDED.updated_at
              RETURNING id, created_at`

	if err := c.deps.DB.QueryRow(ctx, query,
		cfg.DepartmentID, cfg.SwapsEnabled, cfg.RequiresApproval, cfg.MinAdvanceNotice, cfg.MaxSwapsPerMonth, now,
	).Scan(&cfg.ID, &cfg.CreatedAt); err != nil {
		c.deps.Logger.Error("Error saving swap config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.UpdatedAt = now
	return &cfg, nil
}

func (c *SwapConfigController) Delete(ctx context.Context, scope policy.Scope, departmentID string) error {
	if !scope.Allows(departmentID) {
		return policy.ErrNoAccess
	}

	result, err := c.deps.DB.Exec(ctx, "DELETE FROM swap_configs WHERE department_id = $1", departmentID)
	if err != nil {
		c.deps.Logger.Error("Error deleting swap config", slog.String("error", err.Error()))
		return err
	}

	if result.RowsAffected() == 0 {
		c.deps.Logger.Warn("Swap config not found", slog.String("department_id", departmentID))
		return ErrSwapConfigNotFound
	}

	return nil
}
