// Package http provides the HTTP handlers that encrypt and decrypt a family's fields for
// client services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/finvault/internal/httputil"
	customValidation "github.com/allisson/finvault/internal/validation"
	"github.com/allisson/finvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/finvault/internal/vault/usecase"
)

// VaultHandler handles the family-scoped encrypt, decrypt and verify endpoints.
// Envelopes are returned and accepted in their storage form so callers persist them as is.
type VaultHandler struct {
	vaultUseCase vaultUseCase.VaultUseCase
	logger       *slog.Logger
}

// NewVaultHandler creates a new vault handler with required dependencies.
func NewVaultHandler(vault vaultUseCase.VaultUseCase, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{
		vaultUseCase: vault,
		logger:       logger,
	}
}

type validatable interface {
	Validate() error
}

// bind parses and validates the JSON body, writing the 400 or 422 response on failure.
func (h *VaultHandler) bind(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}

func (h *VaultHandler) actor(c *gin.Context, userID string) vaultUseCase.Actor {
	actor := vaultUseCase.Actor{
		FamilyID: c.Param("family_id"),
		UserID:   userID,
	}
	if ip := c.ClientIP(); ip != "" {
		actor.IPAddress = &ip
	}
	if ua := c.Request.UserAgent(); ua != "" {
		actor.UserAgent = &ua
	}
	return actor
}

// EncryptFinancialAmountHandler encrypts an amount with the family key.
// POST /v1/families/:family_id/financial-amounts/encrypt
func (h *VaultHandler) EncryptFinancialAmountHandler(c *gin.Context) {
	var req dto.EncryptFinancialAmountRequest
	if !h.bind(c, &req) {
		return
	}

	envelope, err := h.vaultUseCase.EncryptFinancialAmount(
		c.Request.Context(),
		h.actor(c, req.UserID),
		*req.Amount,
		req.Currency,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EnvelopeResponse{Envelope: envelope})
}

// DecryptFinancialAmountHandler decrypts an amount and verifies its checksum.
// POST /v1/families/:family_id/financial-amounts/decrypt
func (h *VaultHandler) DecryptFinancialAmountHandler(c *gin.Context) {
	var req dto.DecryptFinancialAmountRequest
	if !h.bind(c, &req) {
		return
	}

	record, err := h.vaultUseCase.DecryptFinancialAmount(c.Request.Context(), h.actor(c, req.UserID), req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapFinancialAmountToResponse(record))
}

// EncryptBankAccountHandler hashes the account numbers and encrypts the metadata.
// POST /v1/families/:family_id/bank-accounts/encrypt
func (h *VaultHandler) EncryptBankAccountHandler(c *gin.Context) {
	var req dto.EncryptBankAccountRequest
	if !h.bind(c, &req) {
		return
	}

	envelope, err := h.vaultUseCase.EncryptBankAccount(c.Request.Context(), h.actor(c, req.UserID), req.Credentials())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EnvelopeResponse{Envelope: envelope})
}

// DecryptBankAccountHandler returns the encrypted bank account metadata.
// POST /v1/families/:family_id/bank-accounts/decrypt
func (h *VaultHandler) DecryptBankAccountHandler(c *gin.Context) {
	var req dto.DecryptBankAccountRequest
	if !h.bind(c, &req) {
		return
	}

	data, err := h.vaultUseCase.DecryptBankAccount(c.Request.Context(), h.actor(c, req.UserID), req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.BankAccountResponse{Data: data})
}

// VerifyBankAccountHandler compares account numbers with the envelope's hashes. A
// mismatch is a 200 with match=false.
// POST /v1/families/:family_id/bank-accounts/verify
func (h *VaultHandler) VerifyBankAccountHandler(c *gin.Context) {
	var req dto.VerifyBankAccountRequest
	if !h.bind(c, &req) {
		return
	}

	match := h.vaultUseCase.VerifyBankAccountNumbers(
		c.Request.Context(),
		h.actor(c, req.UserID),
		req.AccountNumber,
		req.RoutingNumber,
		req.Envelope,
	)

	c.JSON(http.StatusOK, dto.MatchResponse{Match: match})
}

// EncryptUserPIIHandler encrypts a PII bundle with the family key.
// POST /v1/families/:family_id/pii/encrypt
func (h *VaultHandler) EncryptUserPIIHandler(c *gin.Context) {
	var req dto.EncryptUserPIIRequest
	if !h.bind(c, &req) {
		return
	}

	envelope, err := h.vaultUseCase.EncryptUserPII(c.Request.Context(), h.actor(c, req.UserID), req.PII)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EnvelopeResponse{Envelope: envelope})
}

// DecryptUserPIIHandler decrypts a PII bundle. Every successful read is audited.
// POST /v1/families/:family_id/pii/decrypt
func (h *VaultHandler) DecryptUserPIIHandler(c *gin.Context) {
	var req dto.DecryptUserPIIRequest
	if !h.bind(c, &req) {
		return
	}

	pii, err := h.vaultUseCase.DecryptUserPII(c.Request.Context(), h.actor(c, req.UserID), req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.PIIResponse{PII: pii})
}

// EncryptSensitiveDataHandler encrypts free text under the master key.
// POST /v1/families/:family_id/sensitive-data/encrypt
func (h *VaultHandler) EncryptSensitiveDataHandler(c *gin.Context) {
	var req dto.EncryptSensitiveDataRequest
	if !h.bind(c, &req) {
		return
	}

	blob, err := h.vaultUseCase.EncryptSensitiveData(c.Request.Context(), h.actor(c, req.UserID), req.Plaintext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EnvelopeResponse{Envelope: blob})
}

// DecryptSensitiveDataHandler decrypts free text encrypted under the master key.
// POST /v1/families/:family_id/sensitive-data/decrypt
func (h *VaultHandler) DecryptSensitiveDataHandler(c *gin.Context) {
	var req dto.DecryptBlobRequest
	if !h.bind(c, &req) {
		return
	}

	plaintext, err := h.vaultUseCase.DecryptSensitiveData(c.Request.Context(), h.actor(c, req.UserID), req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.SensitiveDataResponse{Plaintext: plaintext})
}

// EncryptAmountHandler encrypts a bare amount under the master key.
// POST /v1/families/:family_id/amounts/encrypt
func (h *VaultHandler) EncryptAmountHandler(c *gin.Context) {
	var req dto.EncryptAmountRequest
	if !h.bind(c, &req) {
		return
	}

	blob, err := h.vaultUseCase.EncryptAmount(c.Request.Context(), h.actor(c, req.UserID), *req.Amount)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EnvelopeResponse{Envelope: blob})
}

// DecryptAmountHandler decrypts a bare amount encrypted under the master key.
// POST /v1/families/:family_id/amounts/decrypt
func (h *VaultHandler) DecryptAmountHandler(c *gin.Context) {
	var req dto.DecryptBlobRequest
	if !h.bind(c, &req) {
		return
	}

	amount, err := h.vaultUseCase.DecryptAmount(c.Request.Context(), h.actor(c, req.UserID), req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AmountResponse{Amount: amount})
}

// HashHandler returns a salted one-way hash of the value.
// POST /v1/hashes
func (h *VaultHandler) HashHandler(c *gin.Context) {
	var req dto.HashRequest
	if !h.bind(c, &req) {
		return
	}

	hash, err := h.vaultUseCase.HashSensitiveData(c.Request.Context(), req.Data)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.HashResponse{Hash: hash})
}

// VerifyHashHandler compares a value with a stored hash in constant time.
// POST /v1/hashes/verify
func (h *VaultHandler) VerifyHashHandler(c *gin.Context) {
	var req dto.VerifyHashRequest
	if !h.bind(c, &req) {
		return
	}

	match := h.vaultUseCase.VerifySensitiveDataHash(c.Request.Context(), req.Data, req.Hash)
	c.JSON(http.StatusOK, dto.MatchResponse{Match: match})
}
