package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Ref is the Raindrop `{"$id": n}` reference shape.
type Ref struct {
	ID int64 `json:"$id"`
}

type Collection struct {
	ID          int64     `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Count       int       `json:"count"`
	Public      bool      `json:"public"`
	View        string    `json:"view,omitempty"`
	Cover       []string  `json:"cover,omitempty"`
	Parent      *Ref      `json:"parent,omitempty"`
	Created     time.Time `json:"created,omitzero"`
	LastUpdate  time.Time `json:"lastUpdate,omitzero"`
}

// CollectionInput carries the mutable collection fields. Nil fields are not sent.
type CollectionInput struct {
	Title       *string `json:"title,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Highlight struct {
	ID         string    `json:"_id"`
	Text       string    `json:"text"`
	Note       string    `json:"note,omitempty"`
	Color      string    `json:"color,omitempty"`
	Created    time.Time `json:"created,omitzero"`
	RaindropID int64     `json:"raindropRef,omitempty"`
	Title      string    `json:"title,omitempty"`
	Link       string    `json:"link,omitempty"`
}

type HighlightInput struct {
	Text  *string `json:"text,omitempty"`
	Note  *string `json:"note,omitempty"`
	Color *string `json:"color,omitempty"`
}

type Raindrop struct {
	ID         int64       `json:"_id"`
	Link       string      `json:"link"`
	Title      string      `json:"title"`
	Excerpt    string      `json:"excerpt,omitempty"`
	Note       string      `json:"note,omitempty"`
	Type       string      `json:"type,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	Important  bool        `json:"important,omitempty"`
	Broken     bool        `json:"broken,omitempty"`
	Cover      string      `json:"cover,omitempty"`
	Domain     string      `json:"domain,omitempty"`
	Collection *Ref        `json:"collection,omitempty"`
	Highlights []Highlight `json:"highlights,omitempty"`
	Created    time.Time   `json:"created,omitzero"`
	LastUpdate time.Time   `json:"lastUpdate,omitzero"`
}

// CollectionID returns the owning collection or 0 when unknown.
func (r Raindrop) CollectionID() int64 {
	if r.Collection == nil {
		return 0
	}
	return r.Collection.ID
}

type RaindropInput struct {
	Link       *string  `json:"link,omitempty"`
	Title      *string  `json:"title,omitempty"`
	Excerpt    *string  `json:"excerpt,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Important  *bool    `json:"important,omitempty"`
	Collection *Ref     `json:"collection,omitempty"`
}

// MarshalJSON sends a non-nil empty Tags as [] so an update can clear tags.
func (in RaindropInput) MarshalJSON() ([]byte, error) {
	type plain RaindropInput
	return json.Marshal(struct {
		plain
		Tags *[]string `json:"tags,omitempty"`
	}{plain: plain(in), Tags: presentSlice(in.Tags)})
}

// SearchParams narrows a bookmark listing. Zero values mean "not set".
type SearchParams struct {
	CollectionID int64
	Search       string
	Tags         []string
	Important    bool
	Duplicates   bool
	Broken       bool
	Highlights   bool
	Domain       string
	Sort         string
	Page         int
	PerPage      int
}

type RaindropPage struct {
	Items []Raindrop `json:"items"`
	Count int        `json:"count"`
}

type Tag struct {
	Name  string `json:"_id"`
	Count int    `json:"count"`
}

// TagChange describes the outcome of a rename or merge.
type TagChange struct {
	CollectionID int64    `json:"collectionId"`
	From         []string `json:"from"`
	To           string   `json:"to"`
}

type MediaRef struct {
	Link string `json:"link"`
}

// BulkEdit is the batched mutation applied to many bookmarks at once.
type BulkEdit struct {
	IDs        []int64    `json:"ids,omitempty"`
	Important  *bool      `json:"important,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Media      []MediaRef `json:"media,omitempty"`
	Cover      *string    `json:"cover,omitempty"`
	Collection *Ref       `json:"collection,omitempty"`
	Nested     bool       `json:"-"`
}

// MarshalJSON keeps explicitly empty Tags and Media on the wire; nil means unset.
func (e BulkEdit) MarshalJSON() ([]byte, error) {
	type plain BulkEdit
	return json.Marshal(struct {
		plain
		Tags  *[]string   `json:"tags,omitempty"`
		Media *[]MediaRef `json:"media,omitempty"`
	}{plain: plain(e), Tags: presentSlice(e.Tags), Media: presentSlice(e.Media)})
}

func presentSlice[T any](s []T) *[]T {
	if s == nil {
		return nil
	}
	return &s
}

type BulkEditResult struct {
	Result       bool   `json:"result"`
	Modified     int    `json:"modified,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type User struct {
	ID       int64  `json:"_id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Pro      bool   `json:"pro"`
	Name     string `json:"name,omitempty"`
}

// Deleted is the canonical outcome of a terminal delete.
type Deleted struct {
	Deleted bool `json:"deleted"`
}

// RaindropAPI is the bookmarking collaborator consumed by the core.
type RaindropAPI interface {
	ListCollections(ctx context.Context) ([]Collection, error)
	GetCollection(ctx context.Context, id int64) (*Collection, error)
	CreateCollection(ctx context.Context, input CollectionInput) (*Collection, error)
	UpdateCollection(ctx context.Context, id int64, input CollectionInput) (*Collection, error)
	DeleteCollection(ctx context.Context, id int64) error

	SearchRaindrops(ctx context.Context, params SearchParams) (*RaindropPage, error)
	GetRaindrop(ctx context.Context, id int64) (*Raindrop, error)
	CreateRaindrop(ctx context.Context, input RaindropInput) (*Raindrop, error)
	UpdateRaindrop(ctx context.Context, id int64, input RaindropInput) (*Raindrop, error)
	DeleteRaindrop(ctx context.Context, id int64) error
	BulkEditRaindrops(ctx context.Context, collectionID int64, edit BulkEdit) (*BulkEditResult, error)

	ListTags(ctx context.Context, collectionID int64) ([]Tag, error)
	RenameTag(ctx context.Context, collectionID int64, from, to string) error
	MergeTags(ctx context.Context, collectionID int64, names []string, to string) error
	DeleteTags(ctx context.Context, collectionID int64, names []string) error

	ListHighlights(ctx context.Context, collectionID int64) ([]Highlight, error)
	CreateHighlight(ctx context.Context, raindropID int64, input HighlightInput) (*Highlight, error)
	UpdateHighlight(ctx context.Context, id string, input HighlightInput) (*Highlight, error)
	DeleteHighlight(ctx context.Context, id string) error

	GetUser(ctx context.Context) (*User, error)
}
