package client

import (
	"context"
	"testing"

	"attendance_ms/domain"
	"attendance_ms/dtos/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMe struct {
	profile  *domain.Profile
	err      error
	gotToken string
	session  *Session
}

func (f *fakeMe) Me(context.Context) (*response.Me, error) {
	f.gotToken = f.session.Token()
	if f.err != nil {
		return nil, f.err
	}
	return &response.Me{Profile: f.profile}, nil
}

func TestSession_SignInAndOut(t *testing.T) {
	s := NewSession()
	me := &fakeMe{session: s, profile: &domain.Profile{ID: uuid.New(), Status: domain.StatusActive, Role: domain.RoleEmployee}}

	var events []Event
	unsubscribe := s.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, s.SignIn(context.Background(), me, "jwt"))
	assert.Equal(t, "jwt", me.gotToken)
	assert.Equal(t, "jwt", s.Token())
	assert.Equal(t, domain.AccessGranted, s.Admit(""))
	assert.Equal(t, domain.AccessForbidden, s.Admit(domain.RoleAdmin))

	s.SignOut()
	assert.Empty(t, s.Token())
	assert.Equal(t, domain.Unauthenticated{}, s.State())

	require.Len(t, events, 2)
	assert.Equal(t, SignedIn, events[0].Kind)
	assert.Equal(t, domain.Active{Role: domain.RoleEmployee}, events[0].State)
	assert.Equal(t, SignedOut, events[1].Kind)

	unsubscribe()
	s.SignOut()
	assert.Len(t, events, 2)
}

func TestSession_PendingUserIsRoutedToApproval(t *testing.T) {
	s := NewSession()
	me := &fakeMe{session: s, profile: &domain.Profile{Status: domain.StatusPending}}

	require.NoError(t, s.SignIn(context.Background(), me, "jwt"))
	assert.Equal(t, domain.AccessAwaitingApproval, s.Admit(""))
}

func TestSession_FailedSignInStaysSignedOut(t *testing.T) {
	s := NewSession()
	me := &fakeMe{session: s, err: &APIError{Status: 401, Code: response.CodeUnauthenticated}}
	called := false
	s.Subscribe(func(Event) { called = true })

	err := s.SignIn(context.Background(), me, "expired")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, s.Token())
	assert.Equal(t, domain.AccessSignIn, s.Admit(""))
	assert.False(t, called)
}
