package ingest

import (
	"context"
	"time"

	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/store"
)

// Service accepts inbound readings from any transport, validates them, and
// appends them to the history store. It does not evaluate thresholds; that
// happens on the polling side.
type Service struct {
	store   store.Store
	logger  *logging.Logger
	timeout time.Duration
}

// New constructs an ingest Service writing to st with the given store timeout.
func New(st store.Store, logger *logging.Logger, timeout time.Duration) *Service {
	return &Service{store: st, logger: logger, timeout: timeout}
}

// Ingest validates and stores one reading, returning the stored (possibly
// defaulted) record.
func (s *Service) Ingest(ctx context.Context, in ReadingInput) (models.Reading, error) {
	r, err := Validate(in, time.Now())
	if err != nil {
		return models.Reading{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Append(ctx, r); err != nil {
		s.logger.Errorf("Append failed for device %s: %v", r.DeviceID, err)
		return models.Reading{}, err
	}

	s.logger.Debugf("Stored reading: device=%s location=%s ts=%d", r.DeviceID, r.Location, r.Timestamp)
	return r, nil
}
