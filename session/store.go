package session

import (
	"sync"

	"github.com/jrsteele09/go-catalog-server/users"
)

type Status string

const (
	StatusIdle           Status = "idle"
	StatusChecking       Status = "checking"
	StatusAuthenticating Status = "authenticating"
)

// State is a point in time copy of the session
type State struct {
	User         *users.User
	Loading      bool // signup or login in flight
	CheckingAuth bool // profile check in flight
	Refreshing   bool // token refresh in flight
}

// Status reports a profile check or a token refresh as checking
func (s State) Status() Status {
	switch {
	case s.CheckingAuth, s.Refreshing:
		return StatusChecking
	case s.Loading:
		return StatusAuthenticating
	default:
		return StatusIdle
	}
}

func (s State) Authenticated() bool {
	return s.User != nil
}

// Store holds the session state and notifies subscribers after every change
type Store struct {
	state     State
	observers map[int]func(State)
	nextID    int
	lock      sync.Mutex
}

// NewStore starts in the checking state until the first profile check settles
func NewStore() *Store {
	return &Store{
		state:     State{CheckingAuth: true},
		observers: make(map[int]func(State)),
	}
}

func (s *Store) Snapshot() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.copyState()
}

// Subscribe registers fn to receive the state after each change
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) update(change func(*State)) {
	s.lock.Lock()
	change(&s.state)
	snapshot := s.copyState()
	observers := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.lock.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func (s *Store) setUser(user *users.User) {
	s.update(func(st *State) { st.User = user })
}

func (s *Store) copyState() State {
	state := s.state
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	return state
}
