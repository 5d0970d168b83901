// Package mocks provides testify mocks for the audit use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditUseCase "github.com/allisson/finvault/internal/audit/usecase"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAuditLogRepository is a mock of usecase.AuditLogRepository.
type MockAuditLogRepository struct {
	mock.Mock
}

// NewMockAuditLogRepository creates a mock that asserts its expectations on cleanup.
func NewMockAuditLogRepository(t cleanupT) *MockAuditLogRepository {
	m := &MockAuditLogRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditLogRepository) CreateSensitiveOperation(
	ctx context.Context,
	op *auditDomain.SensitiveOperation,
) error {
	return m.Called(ctx, op).Error(0)
}

func (m *MockAuditLogRepository) CreateEncryptionOperation(
	ctx context.Context,
	op *auditDomain.EncryptionOperation,
) error {
	return m.Called(ctx, op).Error(0)
}

func (m *MockAuditLogRepository) List(
	ctx context.Context,
	familyID string,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, familyID, filter)
	entries, _ := args.Get(0).([]*auditDomain.AuditLogEntry)
	return entries, args.Error(1)
}

func (m *MockAuditLogRepository) ListAfter(
	ctx context.Context,
	familyID string,
	afterID uuid.UUID,
	limit int,
) ([]*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, familyID, afterID, limit)
	entries, _ := args.Get(0).([]*auditDomain.AuditLogEntry)
	return entries, args.Error(1)
}

func (m *MockAuditLogRepository) GetSecurityDashboard(
	ctx context.Context,
	familyID string,
) (*auditDomain.SecurityDashboard, error) {
	args := m.Called(ctx, familyID)
	dashboard, _ := args.Get(0).(*auditDomain.SecurityDashboard)
	return dashboard, args.Error(1)
}

func (m *MockAuditLogRepository) ListPendingApprovals(
	ctx context.Context,
	familyID string,
) ([]*auditDomain.SensitiveOperation, error) {
	args := m.Called(ctx, familyID)
	ops, _ := args.Get(0).([]*auditDomain.SensitiveOperation)
	return ops, args.Error(1)
}

// MockAuditLogger is a mock of usecase.AuditLogger.
type MockAuditLogger struct {
	mock.Mock
}

// NewMockAuditLogger creates a mock that asserts its expectations on cleanup.
func NewMockAuditLogger(t cleanupT) *MockAuditLogger {
	m := &MockAuditLogger{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuditLogger) logResult(args mock.Arguments) (uuid.UUID, bool) {
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Bool(1)
}

func (m *MockAuditLogger) LogFinancialOperation(
	ctx context.Context,
	entry *auditDomain.AuditLogEntry,
) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, entry))
}

func (m *MockAuditLogger) LogTransaction(ctx context.Context, event auditUseCase.EntityEvent) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, event))
}

func (m *MockAuditLogger) LogBudget(ctx context.Context, event auditUseCase.EntityEvent) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, event))
}

func (m *MockAuditLogger) LogAccount(ctx context.Context, event auditUseCase.EntityEvent) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, event))
}

func (m *MockAuditLogger) LogRecurringTransaction(
	ctx context.Context,
	event auditUseCase.EntityEvent,
) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, event))
}

func (m *MockAuditLogger) LogRecurringTransactionExecution(
	ctx context.Context,
	execution auditUseCase.RecurringExecution,
) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, execution))
}

func (m *MockAuditLogger) LogBulkRecurringProcessing(
	ctx context.Context,
	run auditUseCase.BulkRecurringRun,
) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, run))
}

func (m *MockAuditLogger) LogSecurityEvent(
	ctx context.Context,
	event auditUseCase.SecurityEvent,
) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, event))
}

func (m *MockAuditLogger) LogAuthentication(
	ctx context.Context,
	event auditUseCase.AuthenticationEvent,
) (uuid.UUID, bool) {
	return m.logResult(m.Called(ctx, event))
}

func (m *MockAuditLogger) LogEncryptionOperation(ctx context.Context, op *auditDomain.EncryptionOperation) bool {
	return m.Called(ctx, op).Bool(0)
}

func (m *MockAuditLogger) GetAuditLogs(
	ctx context.Context,
	familyID string,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, familyID, filter)
	entries, _ := args.Get(0).([]*auditDomain.AuditLogEntry)
	return entries, args.Error(1)
}

func (m *MockAuditLogger) GetSecurityDashboard(
	ctx context.Context,
	familyID string,
) (*auditDomain.SecurityDashboard, error) {
	args := m.Called(ctx, familyID)
	dashboard, _ := args.Get(0).(*auditDomain.SecurityDashboard)
	return dashboard, args.Error(1)
}

func (m *MockAuditLogger) GetPendingApprovals(
	ctx context.Context,
	familyID string,
) ([]*auditDomain.SensitiveOperation, error) {
	args := m.Called(ctx, familyID)
	ops, _ := args.Get(0).([]*auditDomain.SensitiveOperation)
	return ops, args.Error(1)
}

func (m *MockAuditLogger) VerifyAuditLogs(
	ctx context.Context,
	familyID string,
) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, familyID)
	report, _ := args.Get(0).(*auditDomain.VerificationReport)
	return report, args.Error(1)
}
