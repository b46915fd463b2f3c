package client

import (
	"context"
	"sync"

	"attendance_ms/domain"
	"attendance_ms/dtos/response"
)

type EventKind int

const (
	SignedIn EventKind = iota
	SignedOut
)

type Event struct {
	Kind    EventKind
	State   domain.UserState
	Profile *domain.Profile
}

type MeFetcher interface {
	Me(ctx context.Context) (*response.Me, error)
}

// Session is the application's signed-in context. Components receive it
// explicitly and learn about sign in and sign out through Subscribe.
type Session struct {
	mu          sync.RWMutex
	token       string
	profile     *domain.Profile
	subscribers map[int]func(Event)
	nextID      int
}

func NewSession() *Session {
	return &Session{subscribers: map[int]func(Event){}}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) State() domain.UserState {
	return domain.StateOf(s.Profile())
}

// Admit routes the current user against a surface requiring role.
func (s *Session) Admit(role domain.Role) domain.Access {
	return domain.Admit(s.State(), role)
}

// SignIn stores token and loads the profile it belongs to. Pending and
// suspended users are signed in too; Admit decides where they may go. On
// failure the session is left signed out.
func (s *Session) SignIn(ctx context.Context, me MeFetcher, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	resp, err := me.Me(ctx)
	if err != nil {
		s.mu.Lock()
		s.token = ""
		s.profile = nil
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.profile = resp.Profile
	s.mu.Unlock()

	s.publish(Event{Kind: SignedIn, State: domain.StateOf(resp.Profile), Profile: resp.Profile})
	return nil
}

func (s *Session) SignOut() {
	s.mu.Lock()
	wasSignedIn := s.token != ""
	s.token = ""
	s.profile = nil
	s.mu.Unlock()

	if wasSignedIn {
		s.publish(Event{Kind: SignedOut, State: domain.Unauthenticated{}})
	}
}

// Subscribe registers fn for future events and returns a func that removes it.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Session) publish(e Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
