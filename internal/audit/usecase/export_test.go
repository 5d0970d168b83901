package usecase

import "time"

// SetClock replaces the logger's clock.
func SetClock(logger AuditLogger, now func() time.Time) {
	logger.(*auditLogger).now = now
}
