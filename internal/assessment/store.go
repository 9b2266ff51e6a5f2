package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const assessmentsCollection = "assessments"

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed assessment store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

func (s *firestoreStore) Save(ctx context.Context, a *Assessment) error {
	_, err := s.client.Collection(assessmentsCollection).Doc(a.ID).Set(ctx, a)
	return err
}

func (s *firestoreStore) Get(ctx context.Context, id string) (*Assessment, error) {
	doc, err := s.client.Collection(assessmentsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var a Assessment
	if err := doc.DataTo(&a); err != nil {
		return nil, fmt.Errorf("unmarshal assessment: %w", err)
	}
	a.ID = doc.Ref.ID
	return &a, nil
}

func (s *firestoreStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(assessmentsCollection).Doc(id).Delete(ctx)
	return err
}

func (s *firestoreStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	iter := s.client.Collection(assessmentsCollection).
		Where("created_at", "<", cutoff).
		Documents(ctx)
	defer iter.Stop()

	purged := 0
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return purged, nil
		}
		if err != nil {
			return purged, fmt.Errorf("iterate stale assessments: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return purged, fmt.Errorf("delete stale assessment %s: %w", doc.Ref.ID, err)
		}
		purged++
	}
}

type memoryStore struct {
	mu    sync.RWMutex
	items map[string]*Assessment
}

// NewMemoryStore returns an in-memory store intended for local development and tests.
func NewMemoryStore() Store {
	return &memoryStore{items: make(map[string]*Assessment)}
}

func (s *memoryStore) Save(_ context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *a
	copied.Questions = append([]Question(nil), a.Questions...)
	s.items[a.ID] = &copied
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	copied.Questions = append([]Question(nil), a.Questions...)
	return &copied, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *memoryStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, a := range s.items {
		if a.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			purged++
		}
	}
	return purged, nil
}
