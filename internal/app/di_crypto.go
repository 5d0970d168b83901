package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	cryptoService "github.com/allisson/finvault/internal/crypto/service"
	cryptoUseCase "github.com/allisson/finvault/internal/crypto/usecase"
)

type cryptoState struct {
	masterKey         *cryptoDomain.MasterKey
	kmsService        cryptoService.KMSService
	aeadManager       cryptoService.AEADManager
	keyDeriver        cryptoService.KeyDeriver
	encryptionUseCase cryptoUseCase.EncryptionUseCase

	masterKeyInit         sync.Once
	kmsServiceInit        sync.Once
	aeadManagerInit       sync.Once
	keyDeriverInit        sync.Once
	encryptionUseCaseInit sync.Once
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyDeriver returns the PBKDF2 key deriver.
func (c *Container) KeyDeriver() cryptoService.KeyDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = cryptoService.NewKeyDeriver()
	})
	return c.keyDeriver
}

// MasterKey returns the master key loaded from ENCRYPTION_MASTER_KEY, unwrapped through
// the configured KMS when KMS_PROVIDER is set.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	err := c.once(&c.masterKeyInit, "masterKey", func() (err error) {
		c.masterKey, err = c.initMasterKey()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.masterKey, nil
}

// EncryptionUseCase returns the encryption use case, wrapped with metrics when enabled.
func (c *Container) EncryptionUseCase() (cryptoUseCase.EncryptionUseCase, error) {
	err := c.once(&c.encryptionUseCaseInit, "encryptionUseCase", func() (err error) {
		c.encryptionUseCase, err = c.initEncryptionUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.encryptionUseCase, nil
}

func (c *Container) initMasterKey() (*cryptoDomain.MasterKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if c.config.KMSProvider == "" {
		return cryptoDomain.LoadMasterKey(ctx, c.config.EncryptionMasterKey, nil)
	}

	keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper for %s: %w", c.config.KMSProvider, err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	return cryptoDomain.LoadMasterKey(ctx, c.config.EncryptionMasterKey, keeper)
}

func (c *Container) initEncryptionUseCase() (cryptoUseCase.EncryptionUseCase, error) {
	masterKey, err := c.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key for encryption use case: %w", err)
	}

	deriver := c.KeyDeriver()
	baseUseCase := cryptoUseCase.NewEncryptionUseCase(
		cryptoService.NewDetachedSealer(c.AEADManager()),
		deriver,
		cryptoService.NewPBKDF2Hasher(deriver),
		cryptoService.NewFamilyKeyService(masterKey),
		masterKey,
		cryptoDomain.Algorithm(c.config.EncryptionAlgorithm),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for encryption use case: %w", err)
		}
		return cryptoUseCase.NewEncryptionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
