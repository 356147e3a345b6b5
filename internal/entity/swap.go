package entity

import "time"

type SwapStatus string

const (
	SwapPending  SwapStatus = "pending"
	SwapApproved SwapStatus = "approved"
	SwapRejected SwapStatus = "rejected"
)

type SwapRequest struct {
	ID                  string     `json:"_id"`
	Date                string     `json:"date"`
	FromUserID          RefID      `json:"fromUserId,omitempty"`
	ToUserID            RefID      `json:"toUserId,omitempty"`
	DepartmentID        RefID      `json:"departmentId,omitempty"`
	Requester           string     `json:"requester,omitempty"`
	RequesterDepartment string     `json:"requesterDepartment,omitempty"`
	TargetUser          string     `json:"targetUser,omitempty"`
	TargetDepartment    string     `json:"targetDepartment,omitempty"`
	FromShift           string     `json:"fromShift,omitempty"`
	ToShift             string     `json:"toShift,omitempty"`
	Reason              string     `json:"reason,omitempty"`
	Status              SwapStatus `json:"status"`
	Message             string     `json:"message,omitempty"`
	CreatedAt           string     `json:"createdAt,omitempty"`
}

func (s SwapRequest) ScopeDepartment() string {
	return string(s.DepartmentID)
}

type SwapDecision struct {
	Status  SwapStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// SwapConfig holds the per-department swap policy kept by the console.
type SwapConfig struct {
	ID               uint64    `json:"id" db:"id"`
	DepartmentID     string    `json:"departmentId" db:"department_id"`
	SwapsEnabled     bool      `json:"swapsEnabled" db:"swaps_enabled"`
	RequiresApproval bool      `json:"requiresApproval" db:"requires_approval"`
	MinAdvanceNotice int64     `json:"minAdvanceNotice" db:"min_advance_notice"`
	MaxSwapsPerMonth int64     `json:"maxSwapsPerMonth" db:"max_swaps_per_month"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

type AuditEvent struct {
	ID        uint64    `json:"id" db:"id"`
	ActorID   string    `json:"actorId" db:"actor_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details" db:"details"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
