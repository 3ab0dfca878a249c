package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// Service gates form posts on their rule table and hands accepted ones to the
// submission transport.
type Service struct {
	forms     map[domain.FormID]domain.Form
	publisher submissionPublisher
	notifier  notifier
	logger    *zlog.Zerolog
}

func NewService(publisher submissionPublisher, notifier notifier, logger *zlog.Zerolog) *Service {
	return &Service{
		forms:     Forms,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Submit validates fields against the form's rules. A rejected form returns a
// *ValidationError and has no side effect besides the error notification.
func (s *Service) Submit(ctx context.Context, session string, id domain.FormID, fields map[string]string) (*domain.Submission, error) {
	f, ok := s.forms[id]
	if !ok {
		return nil, ErrUnknownForm
	}

	if valid, errs := ValidateForm(fields, f.Rules); !valid {
		msg := f.InvalidMessage
		if msg == "" {
			msg = errs[0].Message
		}
		s.notifier.Push(session, domain.NotifyError, msg)
		s.logger.Debug().Str("session", session).Str("form", string(id)).Int("errors", len(errs)).Msg("Form rejected")
		return nil, &ValidationError{Form: id, Fields: errs}
	}

	sub := &domain.Submission{
		ID:          uuid.New().String(),
		Session:     session,
		Form:        id,
		Fields:      sanitize(fields, f.Rules),
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, sub); err != nil {
		s.logger.Error().Err(err).Str("session", session).Str("form", string(id)).Msg("Failed to publish submission")
		s.notifier.Push(session, domain.NotifyError, "Terjadi kesalahan. Silakan coba lagi.")
		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	s.logger.Info().Str("session", session).Str("form", string(id)).Str("submission_id", sub.ID).Msg("Form submission accepted")
	return sub, nil
}

// CheckField validates a single field, as done on blur.
func (s *Service) CheckField(id domain.FormID, field, value string) (*domain.FieldError, error) {
	_, rule, err := Lookup(id, field)
	if err != nil {
		return nil, err
	}
	return ValidateField(value, rule), nil
}

// sanitize keeps declared, non-sensitive fields only, trimmed.
func sanitize(fields map[string]string, rules []domain.Rule) map[string]string {
	out := make(map[string]string, len(rules))
	for _, r := range rules {
		if r.Sensitive {
			continue
		}
		v, ok := fields[r.Field]
		if !ok {
			continue
		}
		if r.Checkbox {
			v = fmt.Sprint(IsChecked(v))
		}
		out[r.Field] = strings.TrimSpace(v)
	}
	return out
}
