package core

import (
	"bytes"
	"encoding/json"
	"time"
)

// RichText is an opaque structured document. It is stored and returned
// verbatim and never interpreted.
type RichText = json.RawMessage

// Ref is a relation to another record. Until it is expanded only ID is set
// and it encodes as the bare id; once expanded Doc holds the referenced
// record and it encodes as the nested object.
type Ref[T any] struct {
	ID  string
	Doc *T
}

// RefTo returns an unexpanded reference.
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// Expanded reports whether the referenced record has been resolved.
func (r Ref[T]) Expanded() bool {
	return r.Doc != nil
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Doc != nil {
		return json.Marshal(r.Doc)
	}
	return json.Marshal(r.ID)
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref[T]{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		r.Doc = nil
		return json.Unmarshal(data, &r.ID)
	}

	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	doc := new(T)
	if err := json.Unmarshal(data, doc); err != nil {
		return err
	}
	r.ID = head.ID
	r.Doc = doc
	return nil
}

// Category groups posts. Slug is unique across categories.
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   RichText  `json:"content,omitempty"`
	Owner     Ref[User] `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post is a blog entry. Owner is always the user that created it.
type Post struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	Content    RichText        `json:"content,omitempty"`
	Categories []Ref[Category] `json:"categories"`
	Owner      Ref[User]       `json:"owner"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CategoryIDs returns the ids of every referenced category.
func (p *Post) CategoryIDs() []string {
	ids := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}

// CreatePostInput is the client-controlled part of a new post. It has no
// owner field: ownership is taken from the session.
type CreatePostInput struct {
	Title      string   `json:"title" validate:"required,max=255"`
	Slug       string   `json:"slug" validate:"required,max=255"`
	Content    RichText `json:"content,omitempty"`
	Categories []string `json:"categories,omitempty" validate:"dive,required"`
}

// CreateCategoryInput is the client-controlled part of a new category.
type CreateCategoryInput struct {
	Title   string   `json:"title" validate:"required,max=255"`
	Slug    string   `json:"slug" validate:"required,max=255"`
	Content RichText `json:"content,omitempty"`
}
