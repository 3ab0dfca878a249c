package header

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/usecase/upload"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/wb-go/wbf/zlog"
)

// Service owns the unsaved header draft of each session. Drafts start from the
// persisted settings and are written back only on Apply and Reset. A draft left
// idle past the session limits is dropped and reloaded from storage on next use.
//
// Lock order: the upload coordinator's lock is taken before s.mu (delivery runs
// under it), so s.mu is never held while calling into the coordinator.
type Service struct {
	store    settingsStore
	uploads  uploadCoordinator
	notifier notifier
	validate *validator.Validate
	logger   *zlog.Zerolog

	mu     sync.Mutex
	drafts *expirable.LRU[string, *domain.HeaderSettings]
}

func NewService(store settingsStore, uploads uploadCoordinator, notifier notifier, limits domain.SessionLimits, logger *zlog.Zerolog) *Service {
	limits = limits.WithDefaults()
	return &Service{
		store:    store,
		uploads:  uploads,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
		drafts:   expirable.NewLRU[string, *domain.HeaderSettings](limits.MaxActive, nil, limits.IdleTTL),
	}
}

// draft must be called with s.mu held.
func (s *Service) draft(ctx context.Context, session string) *domain.HeaderSettings {
	d, ok := s.drafts.Get(session)
	if !ok {
		loaded := s.store.Load(ctx, session)
		d = &loaded
	}
	s.drafts.Add(session, d)
	return d
}

// Draft returns a copy of the session's current draft.
func (s *Service) Draft(ctx context.Context, session string) domain.HeaderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.draft(ctx, session)
}

// Applied returns what is persisted for the session, ignoring the draft.
func (s *Service) Applied(ctx context.Context, session string) domain.HeaderSettings {
	return s.store.Load(ctx, session)
}

// SetColor switches the background to a solid color, which also becomes the
// primary gradient color.
func (s *Service) SetColor(ctx context.Context, session, color string) (domain.HeaderSettings, error) {
	if err := s.validate.Var(color, "required,hexcolor"); err != nil {
		return domain.HeaderSettings{}, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draft(ctx, session)
	d.Background.Type = domain.BackgroundColor
	d.Background.Value = color
	d.Colors.Primary = color
	return *d, nil
}

func (s *Service) ResetColor(ctx context.Context, session string) domain.HeaderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draft(ctx, session)
	d.Background.Type = domain.BackgroundColor
	d.Background.Value = domain.DefaultPrimaryColor
	d.Colors.Primary = domain.DefaultPrimaryColor
	return *d
}

// Upload validates file synchronously and queues it for resizing. The draft is
// updated when the newest upload for the slot finishes. Rejections are pushed
// as error notifications and returned.
func (s *Service) Upload(ctx context.Context, session string, slot domain.Slot, file domain.SourceFile) (uint64, error) {
	if !slot.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}

	s.mu.Lock()
	s.draft(ctx, session)
	s.mu.Unlock()

	token, err := s.uploads.Submit(session, slot, file, s.deliver)
	if err != nil {
		s.notifier.Push(session, domain.NotifyError, UploadErrorMessage(err))
		return 0, err
	}
	return token, nil
}

// deliver runs under the coordinator lock.
func (s *Service) deliver(res upload.Result) {
	if res.Err != nil {
		s.logger.Warn().Err(res.Err).Str("session", res.Session).Str("slot", string(res.Slot)).Msg("Upload processing failed")
		s.notifier.Push(res.Session, domain.NotifyError, UploadErrorMessage(res.Err))
		return
	}

	dataURL := res.Image.DataURL()

	s.mu.Lock()
	d := s.draft(context.Background(), res.Session)
	msg := msgBackgroundReady
	switch res.Slot {
	case domain.SlotBackground:
		d.Background.Type = domain.BackgroundImage
		d.Background.ImageData = dataURL
	case domain.SlotLogo:
		d.Logo.Enabled = true
		d.Logo.ImageData = dataURL
		msg = msgLogoReady
	}
	s.mu.Unlock()

	s.logger.Info().
		Str("session", res.Session).
		Str("slot", string(res.Slot)).
		Int("width", res.Image.Width).
		Int("height", res.Image.Height).
		Int("bytes", len(res.Image.Data)).
		Msg("Header image updated")
	s.notifier.Push(res.Session, domain.NotifySuccess, msg)
}

// RemoveImage clears a slot and drops any upload still in flight for it.
func (s *Service) RemoveImage(ctx context.Context, session string, slot domain.Slot) (domain.HeaderSettings, error) {
	if !slot.Valid() {
		return domain.HeaderSettings{}, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}

	s.uploads.Supersede(session, slot)

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draft(ctx, session)
	switch slot {
	case domain.SlotBackground:
		d.Background.Type = domain.BackgroundColor
		d.Background.Value = d.Colors.Primary
		d.Background.ImageData = ""
	case domain.SlotLogo:
		d.Logo.Enabled = false
		d.Logo.ImageData = ""
	}
	return *d, nil
}

// Apply persists the draft. On failure the draft is kept so the user can retry.
func (s *Service) Apply(ctx context.Context, session string) (domain.HeaderSettings, error) {
	s.mu.Lock()
	snapshot := *s.draft(ctx, session)
	s.mu.Unlock()

	if err := s.store.Save(ctx, session, snapshot); err != nil {
		s.notifier.Push(session, domain.NotifyError, MsgSaveFailed)
		return snapshot, err
	}

	s.logger.Info().Str("session", session).Str("background", string(snapshot.Background.Type)).Bool("logo", snapshot.Logo.Enabled).Msg("Header settings applied")
	s.notifier.Push(session, domain.NotifySuccess, msgApplied)
	return snapshot, nil
}

// Reset restores the defaults in the draft and in storage.
func (s *Service) Reset(ctx context.Context, session string) (domain.HeaderSettings, error) {
	s.uploads.Supersede(session, domain.SlotBackground)
	s.uploads.Supersede(session, domain.SlotLogo)

	defaults := domain.DefaultHeaderSettings()

	s.mu.Lock()
	d := defaults
	s.drafts.Add(session, &d)
	s.mu.Unlock()

	if err := s.store.Save(ctx, session, defaults); err != nil {
		s.notifier.Push(session, domain.NotifyError, MsgSaveFailed)
		return defaults, err
	}

	s.logger.Info().Str("session", session).Msg("Header settings reset")
	s.notifier.Push(session, domain.NotifySuccess, msgReset)
	return defaults, nil
}

// Preview computes how a header renders the given settings.
func Preview(settings domain.HeaderSettings) domain.HeaderPreview {
	var p domain.HeaderPreview

	if settings.Background.Type == domain.BackgroundImage && settings.Background.ImageData != "" {
		p.Custom = true
		p.Background = "none"
		p.BackgroundImage = "url(" + settings.Background.ImageData + ")"
	} else {
		p.Background = fmt.Sprintf("linear-gradient(135deg, %s 0%%, %s 100%%)", settings.Colors.Primary, settings.Colors.Secondary)
		p.BackgroundImage = "none"
	}

	if settings.Logo.Enabled && settings.Logo.ImageData != "" {
		p.LogoVisible = true
		p.LogoSrc = settings.Logo.ImageData
	}
	return p
}
