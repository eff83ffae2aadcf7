package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/jellydator/validation"

	"github.com/maisonhub/sentinel/internal/clock"
	"github.com/maisonhub/sentinel/internal/device/domain"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
	apprules "github.com/maisonhub/sentinel/internal/validation"
)

const mirrorTimeout = 5 * time.Second

// deviceRegistryUseCase implements Registry. The primary repository
// (in-memory) serves every trust check; the optional durable repository is
// kept in sync on writes and reloaded on startup via WarmUp.
type deviceRegistryUseCase struct {
	primary  DeviceRepository
	durable  DeviceRepository
	clock    clock.Clock
	recorder eventUseCase.Recorder
	logger   *slog.Logger
}

// NewDeviceRegistryUseCase creates the trusted device registry. durable may
// be nil.
func NewDeviceRegistryUseCase(
	primary DeviceRepository,
	durable DeviceRepository,
	clk clock.Clock,
	recorder eventUseCase.Recorder,
	logger *slog.Logger,
) Registry {
	return &deviceRegistryUseCase{
		primary:  primary,
		durable:  durable,
		clock:    clk,
		recorder: recorder,
		logger:   logger,
	}
}

func validatePair(subjectID, deviceID string) error {
	if err := validation.Validate(subjectID, validation.Required, apprules.Identity); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "subject id: "+err.Error())
	}
	if err := validation.Validate(deviceID, validation.Required, apprules.Identity); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "device id: "+err.Error())
	}
	return nil
}

// Register upserts the pair as an active device in both stores.
func (u *deviceRegistryUseCase) Register(ctx context.Context, subjectID, deviceID, displayName, deviceKind string) (*domain.TrustedDevice, error) {
	if err := validatePair(subjectID, deviceID); err != nil {
		return nil, err
	}

	now := u.clock.Now()
	device, err := u.primary.Get(ctx, subjectID, deviceID)
	if err == nil {
		device.DisplayName = displayName
		device.DeviceKind = deviceKind
		device.IsActive = true
		device.Touch(now)
	} else {
		device = domain.NewTrustedDevice(subjectID, deviceID, displayName, deviceKind, now)
	}

	if err := u.primary.Upsert(ctx, device); err != nil {
		return nil, apperrors.Wrap(err, "failed to register device")
	}
	if u.durable != nil {
		if err := u.durable.Upsert(ctx, device); err != nil {
			return nil, apperrors.Wrap(err, "failed to persist device")
		}
	}

	u.recorder.Record(
		eventDomain.NewSecurityEvent(eventDomain.EventDeviceRegistered, eventDomain.SeverityInfo, now).
			WithSubject(subjectID).
			WithDevice(deviceID).
			WithDetails(map[string]any{"device_kind": deviceKind}),
	)
	return device, nil
}

// IsTrusted checks the primary store only. The last-seen refresh is written
// to the primary store synchronously and mirrored to the durable store in
// the background.
func (u *deviceRegistryUseCase) IsTrusted(ctx context.Context, subjectID, deviceID string) (bool, error) {
	if subjectID == "" || deviceID == "" {
		return false, nil
	}

	device, err := u.primary.Get(ctx, subjectID, deviceID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to check device trust")
	}
	if !device.IsActive {
		return false, nil
	}

	device.Touch(u.clock.Now())
	if err := u.primary.Upsert(ctx, device); err != nil {
		u.logger.Warn("failed to refresh device last seen",
			slog.String("subject_id", subjectID),
			slog.String("device_id", deviceID),
			slog.Any("error", err),
		)
	}
	u.mirror(device)

	return true, nil
}

// Deactivate soft-deletes the pair in both stores.
func (u *deviceRegistryUseCase) Deactivate(ctx context.Context, subjectID, deviceID string) error {
	if err := validatePair(subjectID, deviceID); err != nil {
		return err
	}

	device, err := u.primary.Get(ctx, subjectID, deviceID)
	if err != nil {
		return err
	}

	device.Deactivate()
	if err := u.primary.Upsert(ctx, device); err != nil {
		return apperrors.Wrap(err, "failed to deactivate device")
	}
	if u.durable != nil {
		if err := u.durable.Upsert(ctx, device); err != nil {
			return apperrors.Wrap(err, "failed to persist device deactivation")
		}
	}

	u.recorder.Record(
		eventDomain.NewSecurityEvent(eventDomain.EventDeviceDeactivated, eventDomain.SeverityInfo, u.clock.Now()).
			WithSubject(subjectID).
			WithDevice(deviceID),
	)
	return nil
}

// ListBySubject returns every registered device for the subject.
func (u *deviceRegistryUseCase) ListBySubject(ctx context.Context, subjectID string) ([]*domain.TrustedDevice, error) {
	if err := validation.Validate(subjectID, validation.Required, apprules.Identity); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "subject id: "+err.Error())
	}
	return u.primary.ListBySubject(ctx, subjectID)
}

// WarmUp loads all durable records into the primary store.
func (u *deviceRegistryUseCase) WarmUp(ctx context.Context) error {
	if u.durable == nil {
		return nil
	}

	devices, err := u.durable.ListAll(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to load trusted devices")
	}
	for _, device := range devices {
		if err := u.primary.Upsert(ctx, device); err != nil {
			return apperrors.Wrap(err, "failed to warm up trusted devices")
		}
	}

	u.logger.Info("trusted device registry loaded", slog.Int("devices", len(devices)))
	return nil
}

// mirror propagates a last-seen refresh to the durable store without making
// the trust check wait for it.
func (u *deviceRegistryUseCase) mirror(device *domain.TrustedDevice) {
	if u.durable == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()

		if err := u.durable.Upsert(ctx, device); err != nil {
			u.logger.Warn("failed to mirror device last seen",
				slog.String("subject_id", device.SubjectID),
				slog.String("device_id", device.DeviceID),
				slog.Any("error", err),
			)
		}
	}()
}
