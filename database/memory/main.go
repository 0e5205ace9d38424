// Package memory is the ephemeral speech request store. Records live for
// the lifetime of the process.
package memory

import (
	"context"
	"sync"

	"introspeechdev/speech"
)

type Store struct {
	mu       sync.Mutex
	requests map[int64]*speech.SpeechRequest
	nextID   int64
}

func New() *Store {
	return &Store{
		requests: make(map[int64]*speech.SpeechRequest),
		nextID:   1,
	}
}

// CreateSpeechRequest stores form under the next id. Ids start at 1 and are
// never reused.
func (s *Store) CreateSpeechRequest(_ context.Context, form speech.FormData) (*speech.SpeechRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	request := &speech.SpeechRequest{ID: id, FormData: form}
	s.requests[id] = request
	return request.Clone(), nil
}

func (s *Store) UpdateSpeechRequest(_ context.Context, id int64, update speech.SpeechRequestUpdate) (*speech.SpeechRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.requests[id]
	if !ok {
		return nil, speech.ErrRequestNotFound
	}
	if err := update.Apply(existing); err != nil {
		return nil, err
	}
	return existing.Clone(), nil
}

func (s *Store) GetSpeechRequest(_ context.Context, id int64) (*speech.SpeechRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.requests[id]
	if !ok {
		return nil, speech.ErrRequestNotFound
	}
	return existing.Clone(), nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored requests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
