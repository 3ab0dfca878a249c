package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository/blob"

	"github.com/wb-go/wbf/zlog"
)

const (
	msgSignedIn         = "Sign in successful!"
	msgSignInDone       = "Welcome to FoodMarket! (Demo completed)"
	msgSignupSaved      = "Basic information saved!"
	msgRegistered       = "Registration completed successfully!"
	msgRegisteredFollow = "Welcome to FoodMarket! Please sign in to continue."
	msgContactSent      = "Pesan Anda berhasil dikirim! Kami akan segera merespons."
	msgStoreFailed      = "Gagal menyimpan data. Storage mungkin penuh."
)

// maxInbox caps the stored contact messages per session; the oldest are dropped.
const maxInbox = 50

// Applier performs the side effects of accepted form submissions. Applies for
// the same session run one at a time, since each is a read-modify-write of the
// session's records.
type Applier struct {
	blobs    blobStore
	notifier notifier
	logger   *zlog.Zerolog
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewApplier(blobs blobStore, notifier notifier, logger *zlog.Zerolog) *Applier {
	return &Applier{
		blobs:    blobs,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		locks:    make(map[string]*sessionLock),
	}
}

// lock serializes work on one session. The returned func releases it; the
// entry is dropped once nobody holds or waits for it.
func (a *Applier) lock(session string) func() {
	a.mu.Lock()
	l, ok := a.locks[session]
	if !ok {
		l = &sessionLock{}
		a.locks[session] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, session)
		}
		a.mu.Unlock()
	}
}

func (a *Applier) Apply(ctx context.Context, sub *domain.Submission) error {
	unlock := a.lock(sub.Session)
	defer unlock()

	var err error
	switch sub.Form {
	case domain.FormSignIn:
		err = a.signIn(ctx, sub)
	case domain.FormSignUp:
		err = a.signUp(ctx, sub)
	case domain.FormAddress:
		err = a.address(ctx, sub)
	case domain.FormContact:
		err = a.contact(ctx, sub)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownForm, sub.Form)
	}

	if err != nil {
		if errors.Is(err, blob.ErrQuotaExceeded) {
			a.notifier.Push(sub.Session, domain.NotifyError, msgStoreFailed)
		}
		return err
	}

	a.logger.Info().Str("session", sub.Session).Str("form", string(sub.Form)).Str("submission_id", sub.ID).Msg("Submission applied")
	return nil
}

func (a *Applier) signIn(ctx context.Context, sub *domain.Submission) error {
	user := domain.CurrentUser{
		Email:     sub.Fields["email"],
		LoginTime: a.now(),
	}
	if err := a.put(ctx, sub.Session, domain.KeyCurrentUser, user); err != nil {
		return err
	}
	a.notifier.Push(sub.Session, domain.NotifySuccess, msgSignedIn)
	a.notifier.Push(sub.Session, domain.NotifyInfo, msgSignInDone)
	return nil
}

func (a *Applier) signUp(ctx context.Context, sub *domain.Submission) error {
	data := domain.SignupData{
		FullName: sub.Fields["fullName"],
		Email:    sub.Fields["email"],
		Step:     1,
	}
	if err := a.put(ctx, sub.Session, domain.KeySignupData, data); err != nil {
		return err
	}
	a.notifier.Push(sub.Session, domain.NotifySuccess, msgSignupSaved)
	return nil
}

// address completes the registration started by sign-up. A missing or corrupt
// first step is treated as empty.
func (a *Applier) address(ctx context.Context, sub *domain.Submission) error {
	var data domain.SignupData
	if err := a.get(ctx, sub.Session, domain.KeySignupData, &data); err != nil {
		a.logger.Warn().Err(err).Str("session", sub.Session).Msg("Signup data unreadable, starting fresh")
		data = domain.SignupData{}
	}

	now := a.now()
	data.PhoneNo = sub.Fields["phoneNo"]
	data.ShopName = sub.Fields["shopName"]
	data.Step = 2
	data.RegistrationComplete = true
	data.RegistrationTime = &now

	if err := a.put(ctx, sub.Session, domain.KeySignupData, data); err != nil {
		return err
	}
	user := domain.CurrentUser{
		Email:     data.Email,
		FullName:  data.FullName,
		LoginTime: now,
	}
	if err := a.put(ctx, sub.Session, domain.KeyCurrentUser, user); err != nil {
		return err
	}

	a.notifier.Push(sub.Session, domain.NotifySuccess, msgRegistered)
	a.notifier.Push(sub.Session, domain.NotifyInfo, msgRegisteredFollow)
	return nil
}

func (a *Applier) contact(ctx context.Context, sub *domain.Submission) error {
	var inbox []domain.ContactMessage
	if err := a.get(ctx, sub.Session, domain.KeyContactInbox, &inbox); err != nil {
		a.logger.Warn().Err(err).Str("session", sub.Session).Msg("Contact inbox unreadable, starting fresh")
		inbox = nil
	}

	inbox = append(inbox, domain.ContactMessage{
		ID:         sub.ID,
		Name:       sub.Fields["name"],
		Email:      sub.Fields["email"],
		Phone:      sub.Fields["phone"],
		Subject:    sub.Fields["subject"],
		Message:    sub.Fields["message"],
		ReceivedAt: a.now(),
	})
	if len(inbox) > maxInbox {
		inbox = inbox[len(inbox)-maxInbox:]
	}

	if err := a.put(ctx, sub.Session, domain.KeyContactInbox, inbox); err != nil {
		return err
	}
	a.notifier.Push(sub.Session, domain.NotifySuccess, msgContactSent)
	return nil
}

// get decodes key into v. A missing key leaves v untouched and is not an error.
func (a *Applier) get(ctx context.Context, namespace, key string, v any) error {
	raw, err := a.blobs.Get(ctx, namespace, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (a *Applier) put(ctx context.Context, namespace, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	if err := a.blobs.Put(ctx, namespace, key, raw); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStoreFailed, key, err)
	}
	return nil
}
