package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

type fakePublisher struct {
	mu   sync.Mutex
	subs []*domain.Submission
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, sub *domain.Submission) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subs = append(p.subs, sub)
	return nil
}

type pushed struct {
	session string
	kind    domain.NotificationKind
	message string
}

type fakeNotifier struct {
	mu    sync.Mutex
	items []pushed
}

func (n *fakeNotifier) Push(session string, kind domain.NotificationKind, message string) domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, pushed{session, kind, message})
	return domain.Notification{Kind: kind, Message: message}
}

func newTestService() (*Service, *fakePublisher, *fakeNotifier) {
	zlog.Init()
	pub := &fakePublisher{}
	notes := &fakeNotifier{}
	return NewService(pub, notes, &zlog.Logger), pub, notes
}

func TestSubmitPublishesSanitizedFields(t *testing.T) {
	svc, pub, notes := newTestService()

	sub, err := svc.Submit(context.Background(), "s1", domain.FormSignUp, map[string]string{
		"fullName": "  Ananda Fairus ",
		"email":    "ananda@example.com",
		"password": "secret123",
		"isAdmin":  "true",
	})
	require.NoError(t, err)

	require.Len(t, pub.subs, 1)
	assert.Equal(t, sub, pub.subs[0])
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "s1", sub.Session)
	assert.Equal(t, map[string]string{"fullName": "Ananda Fairus", "email": "ananda@example.com"}, sub.Fields)
	assert.Empty(t, notes.items)
}

func TestSubmitRejectedHasNoSideEffect(t *testing.T) {
	svc, pub, notes := newTestService()

	_, err := svc.Submit(context.Background(), "s1", domain.FormSignIn, map[string]string{
		"email":    "user@example",
		"password": "123",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	assert.Len(t, verr.Fields, 2)
	assert.Empty(t, pub.subs)

	require.Len(t, notes.items, 1)
	assert.Equal(t, domain.NotifyError, notes.items[0].kind)
	assert.Equal(t, "Please enter a valid email address", notes.items[0].message)
}

func TestSubmitContactInvalidUsesFormMessage(t *testing.T) {
	svc, _, notes := newTestService()

	_, err := svc.Submit(context.Background(), "s1", domain.FormContact, map[string]string{})
	require.Error(t, err)

	require.Len(t, notes.items, 1)
	assert.Equal(t, "Mohon perbaiki kesalahan pada form", notes.items[0].message)
}

func TestSubmitCheckboxIsNormalized(t *testing.T) {
	svc, pub, _ := newTestService()

	_, err := svc.Submit(context.Background(), "s1", domain.FormAddress, map[string]string{
		"phoneNo":  "08123456789",
		"shopName": "Warung Sari",
		"terms":    "on",
		"privacy":  "yes",
	})
	require.NoError(t, err)
	assert.Equal(t, "true", pub.subs[0].Fields["terms"])
	assert.Equal(t, "true", pub.subs[0].Fields["privacy"])
}

func TestSubmitUnknownForm(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Submit(context.Background(), "s1", "checkout", nil)
	assert.ErrorIs(t, err, ErrUnknownForm)
}

func TestSubmitPublishFailure(t *testing.T) {
	svc, pub, notes := newTestService()
	pub.err = errors.New("broker down")

	_, err := svc.Submit(context.Background(), "s1", domain.FormSignIn, map[string]string{
		"email":    "user@example.com",
		"password": "123456",
	})

	assert.ErrorIs(t, err, ErrPublishFailed)
	require.Len(t, notes.items, 1)
	assert.Equal(t, domain.NotifyError, notes.items[0].kind)
}

func TestCheckField(t *testing.T) {
	svc, _, _ := newTestService()

	fe, err := svc.CheckField(domain.FormAddress, "phoneNo", "1234")
	require.NoError(t, err)
	require.NotNil(t, fe)
	assert.Equal(t, "phoneNo", fe.Field)

	fe, err = svc.CheckField(domain.FormAddress, "phoneNo", "08123456789")
	require.NoError(t, err)
	assert.Nil(t, fe)
}
