package core

import (
	"time"

	"go.uber.org/zap"
)

// AuditLog is the permanent cross-entity action ledger, distinct from a
// workflow's own history. Append-only.
type AuditLog struct {
	ID         string
	ActorUID   string
	Action     string
	TargetType string
	TargetID   string
	Ts         int64
	IP         string
	UserAgent  string
	Meta       map[string]string
}

type AuditDB interface {
	InsertAuditLog(e *AuditLog) error
	GetAuditLogs(targetType, targetID string, limit, offset int) ([]*AuditLog, error) // newest first
}

// Audit records a state-changing action. It is called after the mutation
// succeeded; entries are strictly additive evidence, so a failure to
// write one is logged but never propagated.
func (c *CoreDB) Audit(actorUID, action, targetType, targetID, ip, userAgent string, meta map[string]string) {

	var err = c.AuditDB.InsertAuditLog(&AuditLog{
		ActorUID:   actorUID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Ts:         time.Now().Unix(),
		IP:         ip,
		UserAgent:  userAgent,
		Meta:       meta,
	})
	if err != nil {
		c.Logger.Error("could not write audit log entry",
			zap.String("action", action),
			zap.String("target", targetType+"/"+targetID),
			zap.Error(err))
	}
}
