package app

import (
	"fmt"

	tokenService "github.com/maisonhub/sentinel/internal/token/service"
	tokenUseCase "github.com/maisonhub/sentinel/internal/token/usecase"
)

// TokenService returns the capability token service instance.
func (c *Container) TokenService() (tokenUseCase.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// initTokenService creates the capability token service with its signer.
func (c *Container) initTokenService() (tokenUseCase.TokenService, error) {
	if c.config.TokenMasterSecret == "" {
		return nil, fmt.Errorf("TOKEN_MASTER_SECRET is required")
	}

	signer, err := tokenService.NewHMACSigner([]byte(c.config.TokenMasterSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}

	recorder, err := c.EventRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get event recorder for token service: %w", err)
	}

	return tokenUseCase.NewTokenUseCase(
		signer,
		c.Clock(),
		c.config.TokenDefaultTTL,
		recorder,
		c.Logger(),
	), nil
}
