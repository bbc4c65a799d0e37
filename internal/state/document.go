package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"ScrapBoard/internal/geom"

	"github.com/google/uuid"
)

// Document is a whiteboard: a set of scraps keyed by ID. It is an immutable
// value; With and Without return modified copies, so a Document handed to an
// observer can never change underneath it. Scrap slices are shared between
// copies and must not be modified in place.
type Document struct {
	id     DocumentID
	scraps map[uuid.UUID]Scrap
}

// EmptyDocument returns a document without scraps.
func EmptyDocument(id DocumentID) Document {
	return Document{id: id}
}

// NewDocument builds a document from scraps, failing on duplicate IDs.
func NewDocument(id DocumentID, scraps ...Scrap) (Document, error) {
	d := Document{id: id, scraps: make(map[uuid.UUID]Scrap, len(scraps))}
	for _, s := range scraps {
		if _, exists := d.scraps[s.ID]; exists {
			return Document{}, fmt.Errorf("%w: %s", ErrDuplicateScrap, s.ID)
		}
		d.scraps[s.ID] = s
	}
	return d, nil
}

func (d Document) ID() DocumentID { return d.id }

func (d Document) Len() int { return len(d.scraps) }

func (d Document) Has(id uuid.UUID) bool {
	_, ok := d.scraps[id]
	return ok
}

func (d Document) Scrap(id uuid.UUID) (Scrap, bool) {
	s, ok := d.scraps[id]
	return s, ok
}

// Scraps returns the scraps bottom to top: by z, then by ID.
func (d Document) Scraps() []Scrap {
	out := make([]Scrap, 0, len(d.scraps))
	for _, s := range d.scraps {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frame.Z != out[j].Frame.Z {
			return out[i].Frame.Z < out[j].Frame.Z
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// With returns a copy of d containing s, replacing any scrap with the same ID.
func (d Document) With(s Scrap) Document {
	scraps := make(map[uuid.UUID]Scrap, len(d.scraps)+1)
	for k, v := range d.scraps {
		scraps[k] = v
	}
	scraps[s.ID] = s
	return Document{id: d.id, scraps: scraps}
}

// Without returns a copy of d lacking the scrap id.
func (d Document) Without(id uuid.UUID) Document {
	scraps := make(map[uuid.UUID]Scrap, len(d.scraps))
	for k, v := range d.scraps {
		if k != id {
			scraps[k] = v
		}
	}
	return Document{id: d.id, scraps: scraps}
}

// ScrapAt returns the top-most scrap whose frame contains p.
func (d Document) ScrapAt(p geom.Point) (Scrap, bool) {
	scraps := d.Scraps()
	for i := len(scraps) - 1; i >= 0; i-- {
		if scraps[i].Frame.Contains(p) {
			return scraps[i], true
		}
	}
	return Scrap{}, false
}

// Equal reports structural equality of two documents.
func (d Document) Equal(o Document) bool {
	if d.id != o.id || len(d.scraps) != len(o.scraps) {
		return false
	}
	for id, s := range d.scraps {
		other, ok := o.scraps[id]
		if !ok || !s.Equal(other) {
			return false
		}
	}
	return true
}

type documentJSON struct {
	ID     DocumentID `json:"id"`
	Scraps []Scrap    `json:"scraps"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentJSON{ID: d.id, Scraps: d.Scraps()})
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var v documentJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	doc, err := NewDocument(v.ID, v.Scraps...)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}
