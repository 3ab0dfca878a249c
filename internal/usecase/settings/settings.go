package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository/blob"

	"github.com/wb-go/wbf/zlog"
)

// Store persists header customization per session namespace.
type Store struct {
	blobs  blobStore
	logger *zlog.Zerolog
}

func NewStore(blobs blobStore, logger *zlog.Zerolog) *Store {
	return &Store{
		blobs:  blobs,
		logger: logger,
	}
}

// Load never fails: a missing document yields the defaults, and so does any
// read or decode error. Fields absent from the stored document keep their
// default values.
func (s *Store) Load(ctx context.Context, namespace string) domain.HeaderSettings {
	data, err := s.blobs.Get(ctx, namespace, domain.KeyHeaderSettings)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn().
				Err(fmt.Errorf("%w: %v", ErrPersistenceReadFailed, err)).
				Str("session", namespace).
				Msg("Falling back to default header settings")
		}
		return domain.DefaultHeaderSettings()
	}

	settings := domain.DefaultHeaderSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		s.logger.Warn().
			Err(fmt.Errorf("%w: %v", ErrPersistenceReadFailed, err)).
			Str("session", namespace).
			Msg("Stored header settings are corrupt, using defaults")
		return domain.DefaultHeaderSettings()
	}
	return settings
}

func (s *Store) Save(ctx context.Context, namespace string, settings domain.HeaderSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceWriteFailed, err)
	}

	if err := s.blobs.Put(ctx, namespace, domain.KeyHeaderSettings, data); err != nil {
		s.logger.Error().Err(err).Str("session", namespace).Int("bytes", len(data)).Msg("Failed to save header settings")
		return fmt.Errorf("%w: %w", ErrPersistenceWriteFailed, err)
	}

	s.logger.Debug().Str("session", namespace).Int("bytes", len(data)).Msg("Header settings saved")
	return nil
}
