// Package http provides the HTTP handlers of the audit trail: event intake for client
// services and the family read paths.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	"github.com/allisson/finvault/internal/audit/http/dto"
	auditUseCase "github.com/allisson/finvault/internal/audit/usecase"
	apperrors "github.com/allisson/finvault/internal/errors"
	"github.com/allisson/finvault/internal/httputil"
	customValidation "github.com/allisson/finvault/internal/validation"
)

// AuditHandler handles HTTP requests for a family's audit trail.
type AuditHandler struct {
	auditLogger auditUseCase.AuditLogger
	logger      *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(auditLogger auditUseCase.AuditLogger, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// ListAuditLogsHandler returns a family's audit entries, newest first.
// GET /v1/families/:family_id/audit-logs?action=&table_name=&risk_level=&created_at_from=&created_at_to=&offset=&limit=
func (h *AuditHandler) ListAuditLogsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	createdAtFrom, createdAtTo, err := httputil.ParseTimeRange(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := auditDomain.AuditLogFilter{
		Action:        auditDomain.Action(c.Query("action")),
		TableName:     c.Query("table_name"),
		RiskLevel:     auditDomain.RiskLevel(c.Query("risk_level")),
		CreatedAtFrom: createdAtFrom,
		CreatedAtTo:   createdAtTo,
		Offset:        offset,
		Limit:         limit,
	}

	entries, err := h.auditLogger.GetAuditLogs(c.Request.Context(), c.Param("family_id"), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogsToListResponse(entries))
}

// GetSecurityDashboardHandler returns a family's security summary. Families without
// activity get an all-zero summary.
// GET /v1/families/:family_id/security-dashboard
func (h *AuditHandler) GetSecurityDashboardHandler(c *gin.Context) {
	dashboard, err := h.auditLogger.GetSecurityDashboard(c.Request.Context(), c.Param("family_id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecurityDashboardToResponse(dashboard))
}

// ListPendingApprovalsHandler returns the family's sensitive operations awaiting approval.
// GET /v1/families/:family_id/pending-approvals
func (h *AuditHandler) ListPendingApprovalsHandler(c *gin.Context) {
	ops, err := h.auditLogger.GetPendingApprovals(c.Request.Context(), c.Param("family_id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPendingApprovalsToListResponse(ops))
}

// RecordAuditLogHandler records an event reported by a client service through the
// matching audit wrapper, which derives table, context and risk level. The caller's IP
// and user agent are attached to the entry where the event type carries them.
// POST /v1/families/:family_id/audit-logs
func (h *AuditHandler) RecordAuditLogHandler(c *gin.Context) {
	var req dto.RecordAuditLogRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	id, ok := h.dispatch(c, c.Param("family_id"), &req)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrPersistence, "audit log not recorded"), h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.RecordAuditLogResponse{ID: id.String()})
}

func (h *AuditHandler) dispatch(
	c *gin.Context,
	familyID string,
	req *dto.RecordAuditLogRequest,
) (uuid.UUID, bool) {
	ctx := c.Request.Context()
	ip := optionalString(c.ClientIP())
	userAgent := optionalString(c.Request.UserAgent())

	if req.IsEntityEvent() {
		event := auditUseCase.EntityEvent{
			FamilyID:  familyID,
			UserID:    req.UserID,
			Action:    auditDomain.Action(req.Action),
			RecordID:  req.RecordID,
			OldData:   req.OldData,
			NewData:   req.NewData,
			Amount:    req.Amount,
			IPAddress: ip,
			UserAgent: userAgent,
			Context:   req.Context,
		}
		switch req.Type {
		case dto.EventTransaction:
			return h.auditLogger.LogTransaction(ctx, event)
		case dto.EventBudget:
			return h.auditLogger.LogBudget(ctx, event)
		case dto.EventAccount:
			return h.auditLogger.LogAccount(ctx, event)
		default:
			return h.auditLogger.LogRecurringTransaction(ctx, event)
		}
	}

	switch req.Type {
	case dto.EventRecurringExecution:
		return h.auditLogger.LogRecurringTransactionExecution(ctx, auditUseCase.RecurringExecution{
			FamilyID:               familyID,
			UserID:                 req.UserID,
			RecurringTransactionID: req.RecurringTransactionID,
			TransactionID:          req.TransactionID,
			Amount:                 req.Amount,
			Success:                *req.Success,
			Error:                  req.Error,
		})
	case dto.EventBulkRecurring:
		return h.auditLogger.LogBulkRecurringProcessing(ctx, auditUseCase.BulkRecurringRun{
			FamilyID:  familyID,
			UserID:    req.UserID,
			Processed: req.Processed,
			Succeeded: req.Succeeded,
			Failed:    req.Failed,
		})
	case dto.EventSecurity:
		return h.auditLogger.LogSecurityEvent(ctx, auditUseCase.SecurityEvent{
			FamilyID:  familyID,
			UserID:    req.UserID,
			EventType: req.EventType,
			RiskLevel: auditDomain.RiskLevel(req.RiskLevel),
			Details:   req.Details,
			IPAddress: ip,
			UserAgent: userAgent,
		})
	default:
		return h.auditLogger.LogAuthentication(ctx, auditUseCase.AuthenticationEvent{
			FamilyID:  familyID,
			UserID:    req.UserID,
			Action:    auditDomain.Action(req.Action),
			Success:   *req.Success,
			Reason:    req.Reason,
			IPAddress: ip,
			UserAgent: userAgent,
		})
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
