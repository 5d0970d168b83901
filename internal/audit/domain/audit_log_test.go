package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAction_Valid(t *testing.T) {
	for _, a := range []Action{
		ActionCreate, ActionUpdate, ActionDelete, ActionView,
		ActionLogin, ActionLogout, ActionExecute, ActionBulkProcess,
	} {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, Action("DROP").Valid())
	assert.False(t, Action("").Valid())
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		level    RiskLevel
		valid    bool
		approval bool
	}{
		{level: RiskLow, valid: true},
		{level: RiskMedium, valid: true},
		{level: RiskHigh, valid: true, approval: true},
		{level: RiskCritical, valid: true, approval: true},
		{level: "SEVERE"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.level.Valid())
			assert.Equal(t, tt.approval, tt.level.RequiresApproval())
		})
	}

	assert.Equal(t, RiskMedium, RiskLow.AtLeast(RiskMedium))
	assert.Equal(t, RiskHigh, RiskHigh.AtLeast(RiskMedium))
	assert.Equal(t, RiskCritical, RiskCritical.AtLeast(RiskLow))
}

func TestAuditLogEntry_IsSigned(t *testing.T) {
	assert.True(t, (&AuditLogEntry{Signature: make([]byte, 32)}).IsSigned())
	assert.False(t, (&AuditLogEntry{Signature: make([]byte, 31)}).IsSigned())
	assert.False(t, (&AuditLogEntry{}).IsSigned())
}

func TestAuditLogFilter(t *testing.T) {
	t.Run("Normalize", func(t *testing.T) {
		assert.Equal(t, DefaultPageLimit, AuditLogFilter{}.Normalize().Limit)
		assert.Equal(t, MaxPageLimit, AuditLogFilter{Limit: 1000}.Normalize().Limit)
		assert.Equal(t, 20, AuditLogFilter{Limit: 20}.Normalize().Limit)
	})

	t.Run("Validate", func(t *testing.T) {
		now := time.Now()
		earlier := now.Add(-time.Hour)

		assert.NoError(t, AuditLogFilter{}.Validate())
		assert.NoError(t, AuditLogFilter{
			Action:        ActionDelete,
			RiskLevel:     RiskHigh,
			CreatedAtFrom: &earlier,
			CreatedAtTo:   &now,
		}.Validate())
		assert.NoError(t, AuditLogFilter{CreatedAtFrom: &now, CreatedAtTo: &now}.Validate())

		assert.Error(t, AuditLogFilter{Action: "DROP"}.Validate())
		assert.Error(t, AuditLogFilter{RiskLevel: "SEVERE"}.Validate())
		assert.Error(t, AuditLogFilter{Offset: -1}.Validate())
		assert.Error(t, AuditLogFilter{CreatedAtFrom: &now, CreatedAtTo: &earlier}.Validate())
	})
}
