package app

import (
	"fmt"

	deviceRepository "github.com/maisonhub/sentinel/internal/device/repository"
	deviceUseCase "github.com/maisonhub/sentinel/internal/device/usecase"
)

// DeviceRegistry returns the trusted device registry instance.
func (c *Container) DeviceRegistry() (deviceUseCase.Registry, error) {
	var err error
	c.deviceRegistryInit.Do(func() {
		c.deviceRegistry, err = c.initDeviceRegistry()
		if err != nil {
			c.initErrors["deviceRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deviceRegistry"]; exists {
		return nil, storedErr
	}
	return c.deviceRegistry, nil
}

// initDeviceRegistry creates the trusted device registry. The in-memory store
// answers trust checks; the SQL store, when configured, mirrors writes so the
// registry survives restarts.
func (c *Container) initDeviceRegistry() (deviceUseCase.Registry, error) {
	recorder, err := c.EventRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get event recorder for device registry: %w", err)
	}

	durable, err := c.initDeviceDurableRepository()
	if err != nil {
		return nil, err
	}

	return deviceUseCase.NewDeviceRegistryUseCase(
		deviceRepository.NewMemoryDeviceRepository(),
		durable,
		c.Clock(),
		recorder,
		c.Logger(),
	), nil
}

// initDeviceDurableRepository selects the SQL device repository for the
// configured driver. Returns nil when no durable store is configured.
func (c *Container) initDeviceDurableRepository() (deviceUseCase.DeviceRepository, error) {
	if !c.config.DBEnabled {
		return nil, nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for device repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return deviceRepository.NewMySQLDeviceRepository(db), nil
	case "postgres":
		return deviceRepository.NewPostgreSQLDeviceRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
