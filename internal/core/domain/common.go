package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// FieldChange records one modified attribute of an entity.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// AuditLogEntry is an append-only record of changes made to an entity.
type AuditLogEntry struct {
	AuditID    string        `json:"auditID"`
	EntityType string        `json:"entityType"`
	EntityID   string        `json:"entityID"`
	Action     string        `json:"action"`
	Changes    []FieldChange `json:"changes"`
	UserID     string        `json:"userID"`
	CreatedAt  time.Time     `json:"createdAt"`
}
