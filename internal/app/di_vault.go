package app

import (
	"fmt"
	"sync"

	vaultHTTP "github.com/allisson/finvault/internal/vault/http"
	vaultUseCase "github.com/allisson/finvault/internal/vault/usecase"
)

type vaultState struct {
	vaultUseCase vaultUseCase.VaultUseCase
	vaultHandler *vaultHTTP.VaultHandler

	vaultUseCaseInit sync.Once
	vaultHandlerInit sync.Once
}

// VaultUseCase returns the family vault use case. User salts are read through the
// migration profile repository.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	err := c.once(&c.vaultUseCaseInit, "vaultUseCase", func() error {
		encryption, err := c.EncryptionUseCase()
		if err != nil {
			return fmt.Errorf("failed to get encryption use case for vault: %w", err)
		}

		_, _, profiles, err := c.MigrationRepositories()
		if err != nil {
			return fmt.Errorf("failed to get profile repository for vault: %w", err)
		}

		auditLogger, err := c.AuditLogger()
		if err != nil {
			return fmt.Errorf("failed to get audit logger for vault: %w", err)
		}

		c.vaultUseCase = vaultUseCase.NewVaultUseCase(encryption, profiles, auditLogger, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.vaultUseCase, nil
}

// VaultHandler returns the family vault HTTP handler.
func (c *Container) VaultHandler() (*vaultHTTP.VaultHandler, error) {
	err := c.once(&c.vaultHandlerInit, "vaultHandler", func() error {
		vault, err := c.VaultUseCase()
		if err != nil {
			return fmt.Errorf("failed to get vault use case for vault handler: %w", err)
		}
		c.vaultHandler = vaultHTTP.NewVaultHandler(vault, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.vaultHandler, nil
}
