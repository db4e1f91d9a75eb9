package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is an audit record of a user or system action.
type ActivityLog struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	UserID     *uuid.UUID     `json:"userId,omitempty" db:"user_id"`
	Username   string         `json:"username" db:"username"`
	Action     string         `json:"action" db:"action"`
	EntityType string         `json:"entityType" db:"entity_type"`
	EntityID   string         `json:"entityId" db:"entity_id"`
	Details    map[string]any `json:"details,omitempty" db:"details"`
	IPAddress  string         `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent  string         `json:"userAgent,omitempty" db:"user_agent"`
	Timestamp  time.Time      `json:"timestamp" db:"timestamp"`
}

// Well-known activity actions.
const (
	ActionOrderCreated       = "order_created"
	ActionOrderCancelled     = "order_cancelled"
	ActionOrderStatusUpdated = "order_status_updated"
	ActionProductCreated     = "product_created"
	ActionProductUpdated     = "product_updated"
	ActionProductDeleted     = "product_deleted"
	ActionCategoryCreated    = "category_created"
	ActionUserRegistered     = "user_registered"
	ActionLowStockAlert      = "low_stock_alert"
	ActionPendingReminder    = "pending_order_reminder"
)
