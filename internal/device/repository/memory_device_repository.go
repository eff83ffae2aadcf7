// Package repository provides data persistence implementations for trusted
// devices.
package repository

import (
	"context"
	"sync"

	"github.com/maisonhub/sentinel/internal/device/domain"
)

// MemoryDeviceRepository keeps the registry in process memory. It is the
// authoritative store for trust checks so the decision path never waits on
// the database.
type MemoryDeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]*domain.TrustedDevice
}

// NewMemoryDeviceRepository creates a new MemoryDeviceRepository
func NewMemoryDeviceRepository() *MemoryDeviceRepository {
	return &MemoryDeviceRepository{
		devices: make(map[string]*domain.TrustedDevice),
	}
}

func deviceKey(subjectID, deviceID string) string {
	return subjectID + "\x00" + deviceID
}

// Upsert inserts or replaces the record for the (subject, device) pair
func (r *MemoryDeviceRepository) Upsert(_ context.Context, device *domain.TrustedDevice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *device
	r.devices[deviceKey(device.SubjectID, device.DeviceID)] = &copied
	return nil
}

// Get retrieves the record for the (subject, device) pair
func (r *MemoryDeviceRepository) Get(_ context.Context, subjectID, deviceID string) (*domain.TrustedDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[deviceKey(subjectID, deviceID)]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	copied := *device
	return &copied, nil
}

// ListBySubject returns all records for a subject
func (r *MemoryDeviceRepository) ListBySubject(_ context.Context, subjectID string) ([]*domain.TrustedDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.TrustedDevice
	for _, device := range r.devices {
		if device.SubjectID == subjectID {
			copied := *device
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ListAll returns every record in the registry
func (r *MemoryDeviceRepository) ListAll(_ context.Context) ([]*domain.TrustedDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.TrustedDevice, 0, len(r.devices))
	for _, device := range r.devices {
		copied := *device
		result = append(result, &copied)
	}
	return result, nil
}
