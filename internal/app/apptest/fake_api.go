// Package apptest provides a call-counting Raindrop collaborator for tests.
package apptest

import (
	"context"
	"sync"

	"raindropmcp/internal/domain"
)

// FakeAPI records every call and answers from its fields. Set Err to make
// every call fail.
type FakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	args  map[string][]any

	Collections []domain.Collection
	Raindrops   []domain.Raindrop
	Tags        []domain.Tag
	Highlights  []domain.Highlight
	User        domain.User
	BulkResult  domain.BulkEditResult
	Err         error
	// BulkErr fails only BulkEditRaindrops.
	BulkErr error
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		BulkResult: domain.BulkEditResult{Result: true},
		User:       domain.User{ID: 1, FullName: "Test User", Email: "test@example.com"},
	}
}

func (f *FakeAPI) record(method string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
		f.args = make(map[string][]any)
	}
	f.calls[method]++
	f.args[method] = args
	return f.Err
}

// Calls returns how often method was invoked.
func (f *FakeAPI) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls counts every collaborator call.
func (f *FakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// LastArgs returns the arguments of the most recent call to method.
func (f *FakeAPI) LastArgs(method string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.args[method]
}

func (f *FakeAPI) ListCollections(context.Context) ([]domain.Collection, error) {
	if err := f.record("ListCollections"); err != nil {
		return nil, err
	}
	return f.Collections, nil
}

func (f *FakeAPI) GetCollection(_ context.Context, id int64) (*domain.Collection, error) {
	if err := f.record("GetCollection", id); err != nil {
		return nil, err
	}
	for _, c := range f.Collections {
		if c.ID == id {
			return &c, nil
		}
	}
	return &domain.Collection{ID: id, Title: "Collection"}, nil
}

func (f *FakeAPI) CreateCollection(_ context.Context, input domain.CollectionInput) (*domain.Collection, error) {
	if err := f.record("CreateCollection", input); err != nil {
		return nil, err
	}
	out := &domain.Collection{ID: 100}
	if input.Title != nil {
		out.Title = *input.Title
	}
	return out, nil
}

func (f *FakeAPI) UpdateCollection(_ context.Context, id int64, input domain.CollectionInput) (*domain.Collection, error) {
	if err := f.record("UpdateCollection", id, input); err != nil {
		return nil, err
	}
	out := &domain.Collection{ID: id}
	if input.Title != nil {
		out.Title = *input.Title
	}
	return out, nil
}

func (f *FakeAPI) DeleteCollection(_ context.Context, id int64) error {
	return f.record("DeleteCollection", id)
}

func (f *FakeAPI) SearchRaindrops(_ context.Context, params domain.SearchParams) (*domain.RaindropPage, error) {
	if err := f.record("SearchRaindrops", params); err != nil {
		return nil, err
	}
	return &domain.RaindropPage{Items: f.Raindrops, Count: len(f.Raindrops)}, nil
}

func (f *FakeAPI) GetRaindrop(_ context.Context, id int64) (*domain.Raindrop, error) {
	if err := f.record("GetRaindrop", id); err != nil {
		return nil, err
	}
	for _, r := range f.Raindrops {
		if r.ID == id {
			return &r, nil
		}
	}
	return &domain.Raindrop{ID: id, Title: "Bookmark"}, nil
}

func (f *FakeAPI) CreateRaindrop(_ context.Context, input domain.RaindropInput) (*domain.Raindrop, error) {
	if err := f.record("CreateRaindrop", input); err != nil {
		return nil, err
	}
	out := &domain.Raindrop{ID: 200, Collection: input.Collection, Tags: input.Tags}
	if input.Link != nil {
		out.Link = *input.Link
	}
	return out, nil
}

func (f *FakeAPI) UpdateRaindrop(_ context.Context, id int64, input domain.RaindropInput) (*domain.Raindrop, error) {
	if err := f.record("UpdateRaindrop", id, input); err != nil {
		return nil, err
	}
	return &domain.Raindrop{ID: id, Collection: input.Collection, Tags: input.Tags}, nil
}

func (f *FakeAPI) DeleteRaindrop(_ context.Context, id int64) error {
	return f.record("DeleteRaindrop", id)
}

func (f *FakeAPI) BulkEditRaindrops(_ context.Context, collectionID int64, edit domain.BulkEdit) (*domain.BulkEditResult, error) {
	if err := f.record("BulkEditRaindrops", collectionID, edit); err != nil {
		return nil, err
	}
	if f.BulkErr != nil {
		return nil, f.BulkErr
	}
	result := f.BulkResult
	return &result, nil
}

func (f *FakeAPI) ListTags(_ context.Context, collectionID int64) ([]domain.Tag, error) {
	if err := f.record("ListTags", collectionID); err != nil {
		return nil, err
	}
	return f.Tags, nil
}

func (f *FakeAPI) RenameTag(_ context.Context, collectionID int64, from, to string) error {
	return f.record("RenameTag", collectionID, from, to)
}

func (f *FakeAPI) MergeTags(_ context.Context, collectionID int64, names []string, to string) error {
	return f.record("MergeTags", collectionID, names, to)
}

func (f *FakeAPI) DeleteTags(_ context.Context, collectionID int64, names []string) error {
	return f.record("DeleteTags", collectionID, names)
}

func (f *FakeAPI) ListHighlights(_ context.Context, collectionID int64) ([]domain.Highlight, error) {
	if err := f.record("ListHighlights", collectionID); err != nil {
		return nil, err
	}
	return f.Highlights, nil
}

func (f *FakeAPI) CreateHighlight(_ context.Context, raindropID int64, input domain.HighlightInput) (*domain.Highlight, error) {
	if err := f.record("CreateHighlight", raindropID, input); err != nil {
		return nil, err
	}
	out := &domain.Highlight{ID: "h-new", RaindropID: raindropID}
	if input.Text != nil {
		out.Text = *input.Text
	}
	return out, nil
}

func (f *FakeAPI) UpdateHighlight(_ context.Context, id string, input domain.HighlightInput) (*domain.Highlight, error) {
	if err := f.record("UpdateHighlight", id, input); err != nil {
		return nil, err
	}
	return &domain.Highlight{ID: id}, nil
}

func (f *FakeAPI) DeleteHighlight(_ context.Context, id string) error {
	return f.record("DeleteHighlight", id)
}

func (f *FakeAPI) GetUser(context.Context) (*domain.User, error) {
	if err := f.record("GetUser"); err != nil {
		return nil, err
	}
	user := f.User
	return &user, nil
}

var _ domain.RaindropAPI = (*FakeAPI)(nil)

// StaticDiagnostics is a fixed domain.DiagnosticsProvider.
type StaticDiagnostics struct {
	Value domain.DiagnosticsSnapshot
}

func (s StaticDiagnostics) Snapshot(includeEnvironment bool) domain.DiagnosticsSnapshot {
	out := s.Value
	if includeEnvironment && out.Environment == nil {
		out.Environment = map[string]any{"raindrop.accessToken": "[redacted]"}
	}
	if !includeEnvironment {
		out.Environment = nil
	}
	return out
}
