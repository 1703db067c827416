package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"testing"

	"github.com/pkg/errors"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/repository"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"
)

// fakeTokenSource hands out a constant token.
type fakeTokenSource struct {
	token string
	err   error
}

func (f *fakeTokenSource) Token(_ context.Context, _ string) (string, error) {
	return f.token, f.err
}

// fakeGateway serves canned responses keyed by request path.
type fakeGateway struct {
	responses    map[string]json.RawMessage
	collections  map[string][]json.RawMessage
	batchResults map[string]service.BatchResult
	batchCalls   [][]service.BatchRequest
	queries      map[string]url.Values
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		responses:    make(map[string]json.RawMessage),
		collections:  make(map[string][]json.RawMessage),
		batchResults: make(map[string]service.BatchResult),
		queries:      make(map[string]url.Values),
	}
}

func (f *fakeGateway) Get(_ context.Context, _ string, path string, query url.Values) (json.RawMessage, error) {
	f.queries[path] = query
	body, ok := f.responses[path]
	if !ok {
		return nil, errors.Errorf("no canned response for %s", path)
	}

	return body, nil
}

func (f *fakeGateway) GetAll(_ context.Context, _ string, path string, query url.Values) ([]json.RawMessage, error) {
	f.queries[path] = query
	values, ok := f.collections[path]
	if !ok {
		return nil, errors.Errorf("no canned collection for %s", path)
	}

	return values, nil
}

func (f *fakeGateway) Batch(_ context.Context, _ string, requests []service.BatchRequest) (map[string]service.BatchResult, error) {
	f.batchCalls = append(f.batchCalls, requests)

	return f.batchResults, nil
}

// fakeContactRepo is an in-memory ContactRepository.
type fakeContactRepo struct {
	contacts map[uint]*entity.Contact
	nextID   uint
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[uint]*entity.Contact), nextID: 1}
}

func (r *fakeContactRepo) List(_ context.Context) ([]*entity.Contact, error) {
	contacts := make([]*entity.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		contacts = append(contacts, c)
	}

	return contacts, nil
}

func (r *fakeContactRepo) FindByID(_ context.Context, id uint) (*entity.Contact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	clone := *contact

	return &clone, nil
}

func (r *fakeContactRepo) Create(_ context.Context, contact *entity.Contact) error {
	contact.ID = r.nextID
	r.nextID++
	clone := *contact
	r.contacts[contact.ID] = &clone

	return nil
}

func (r *fakeContactRepo) CreateBatch(ctx context.Context, contacts []*entity.Contact) error {
	for _, contact := range contacts {
		if err := r.Create(ctx, contact); err != nil {
			return err
		}
	}

	return nil
}

func (r *fakeContactRepo) Update(_ context.Context, contact *entity.Contact) error {
	if _, ok := r.contacts[contact.ID]; !ok {
		return repository.ErrContactNotFound
	}
	clone := *contact
	r.contacts[contact.ID] = &clone

	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.contacts[id]; !ok {
		return repository.ErrContactNotFound
	}
	delete(r.contacts, id)

	return nil
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.DiscardHandler)
}
