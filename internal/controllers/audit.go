package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/jackc/pgx/v5"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

type AuditController struct {
	deps *Dependens
}

func NewAuditController(deps *Dependens) *AuditController {
	return &AuditController{
		deps: deps,
	}
}

// Record appends one event. details is stored as JSON.
func (c *AuditController) Record(ctx context.Context, actorID, action, resource string, details any) (*entity.AuditEvent, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		c.deps.Logger.Error("Error encoding audit details", slog.String("error", err.Error()))
		return nil, err
	}

	event := entity.AuditEvent{
		ActorID:   actorID,
		Action:    action,
		Resource:  resource,
		Details:   string(raw),
		CreatedAt: time.Now(),
	}

	query := `INSERT INTO audit_events (actor_id, action, resource, details, created_at)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING id`

	if err := c.deps.DB.QueryRow(ctx, query, event.ActorID, event.Action, event.Resource, event.Details, event.CreatedAt).Scan(&event.ID); err != nil {
		c.deps.Logger.Error("Error inserting audit event", slog.String("error", err.Error()))
		return nil, err
	}

	return &event, nil
}

// List returns the newest events first.
func (c *AuditController) List(ctx context.Context, limit int) ([]entity.AuditEvent, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}

	query := `SELECT id, actor_id, action, resource, details, created_at FROM audit_events ORDER BY created_at DESC LIMIT $1`

	rows, err := c.deps.DB.Query(ctx, query, limit)
	if err != nil {
		c.deps.Logger.Error("Error querying audit events", slog.String("error", err.Error()))
		return nil, err
	}
	defer rows.Close()

	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.AuditEvent])
	if err != nil {
		c.deps.Logger.Error("Error collecting rows", slog.String("error", err.Error()))
		return nil, err
	}

	return events, nil
}
