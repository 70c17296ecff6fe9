package domain

import "time"

// AuditAction names a change made to an identity record.
type AuditAction string

const (
	AuditRegistered AuditAction = "registered"
	AuditUpdated    AuditAction = "profile_updated"
	AuditDeleted    AuditAction = "deleted"
)

// AuditEvent records a mutation of an identity record. It never carries
// credential material.
type AuditEvent struct {
	UserID    string
	Role      Role
	Action    AuditAction
	Timestamp time.Time
	// Fields lists the stored field names an update touched.
	Fields []string
}
