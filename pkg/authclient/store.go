package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Store owns a State, seeded from Storage on construction. Every transition
// goes through Reduce; identity-bearing outcomes are written back to Storage.
type Store struct {
	mu        sync.Mutex
	state     State
	storage   Storage
	listeners map[int]func(State)
	nextID    int
}

func NewStore(storage Storage) (*Store, error) {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{storage: storage, listeners: make(map[int]func(State))}

	token, _, err := storage.Get(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	s.state.Token = token

	raw, ok, err := storage.Get(KeyUser)
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	if ok && raw != "" {
		var u User
		// a corrupt snapshot is dropped rather than failing startup
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.state.User = &u
		}
	}
	return s, nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and persists its effect. The in-memory state is updated
// even when persisting fails; the storage error is returned.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	err := s.persist(a, next)
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return err
}

// Subscribe registers fn to run after every dispatch. The returned func
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Teardown clears the persisted snapshot and resets the state.
func (s *Store) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.listeners = make(map[int]func(State))
	return s.clear()
}

func (s *Store) persist(a Action, next State) error {
	switch {
	case a.Phase == PhaseFulfilled && signsIn(a.Op):
		return s.save(next)
	case a.Op == OpLogout, a.Op == OpGetMe && a.Phase == PhaseRejected:
		return s.clear()
	}
	return nil
}

func (s *Store) save(st State) error {
	if err := s.storage.Set(KeyToken, st.Token); err != nil {
		return err
	}
	if st.User == nil {
		return s.storage.Delete(KeyUser)
	}
	data, err := json.Marshal(st.User)
	if err != nil {
		return err
	}
	return s.storage.Set(KeyUser, string(data))
}

func (s *Store) clear() error {
	return errors.Join(s.storage.Delete(KeyToken), s.storage.Delete(KeyUser))
}
