package state

import (
	"fmt"

	"github.com/google/uuid"
)

// Signature is the wire discriminator of a command variant.
type Signature string

const (
	SignatureAddScrap         Signature = "AddScrapCommand"
	SignatureRemoveScrap      Signature = "RemoveScrapCommand"
	SignatureUpdateScrapFrame Signature = "UpdateScrapFrameCommand"
)

// Signatures lists every command variant. EncodeCommand and DecodeCommand
// handle exactly this set.
func Signatures() []Signature {
	return []Signature{SignatureAddScrap, SignatureRemoveScrap, SignatureUpdateScrapFrame}
}

// Command is an invertible document mutation. The set of implementations is
// closed: AddScrap, RemoveScrap and UpdateScrapFrame.
//
// Doo and Undo never modify their argument. On error they return it
// unchanged, so Undo(Doo(d)) equals d whenever Doo succeeds.
type Command interface {
	ID() uuid.UUID
	Signature() Signature
	Doo(Document) (Document, error)
	Undo(Document) (Document, error)

	command()
}

// AddScrap inserts a scrap.
type AddScrap struct {
	CommandID uuid.UUID
	Scrap     Scrap
}

func NewAddScrap(s Scrap) AddScrap {
	return AddScrap{CommandID: NewCommandID(), Scrap: s.Clone()}
}

func (c AddScrap) ID() uuid.UUID        { return c.CommandID }
func (c AddScrap) Signature() Signature { return SignatureAddScrap }
func (AddScrap) command()               {}

func (c AddScrap) Doo(d Document) (Document, error) {
	return insert(d, c.Scrap)
}

func (c AddScrap) Undo(d Document) (Document, error) {
	return remove(d, c.Scrap.ID)
}

// RemoveScrap deletes a scrap. Scrap holds the full scrap so that Undo can
// restore it.
type RemoveScrap struct {
	CommandID uuid.UUID
	Scrap     Scrap
}

func NewRemoveScrap(s Scrap) RemoveScrap {
	return RemoveScrap{CommandID: NewCommandID(), Scrap: s.Clone()}
}

func (c RemoveScrap) ID() uuid.UUID        { return c.CommandID }
func (c RemoveScrap) Signature() Signature { return SignatureRemoveScrap }
func (RemoveScrap) command()               {}

func (c RemoveScrap) Doo(d Document) (Document, error) {
	return remove(d, c.Scrap.ID)
}

func (c RemoveScrap) Undo(d Document) (Document, error) {
	return insert(d, c.Scrap)
}

// UpdateScrapFrame moves a scrap from one frame to another.
type UpdateScrapFrame struct {
	CommandID uuid.UUID
	ScrapID   uuid.UUID
	From      Frame
	To        Frame
}

func NewUpdateScrapFrame(scrapID uuid.UUID, from, to Frame) UpdateScrapFrame {
	return UpdateScrapFrame{CommandID: NewCommandID(), ScrapID: scrapID, From: from, To: to}
}

func (c UpdateScrapFrame) ID() uuid.UUID        { return c.CommandID }
func (c UpdateScrapFrame) Signature() Signature { return SignatureUpdateScrapFrame }
func (UpdateScrapFrame) command()               {}

func (c UpdateScrapFrame) Doo(d Document) (Document, error) {
	return setFrame(d, c.ScrapID, c.To)
}

func (c UpdateScrapFrame) Undo(d Document) (Document, error) {
	return setFrame(d, c.ScrapID, c.From)
}

func insert(d Document, s Scrap) (Document, error) {
	if d.Has(s.ID) {
		return d, fmt.Errorf("%w: %s", ErrDuplicateScrap, s.ID)
	}
	return d.With(s), nil
}

func remove(d Document, id uuid.UUID) (Document, error) {
	if !d.Has(id) {
		return d, fmt.Errorf("%w: %s", ErrMissingTarget, id)
	}
	return d.Without(id), nil
}

func setFrame(d Document, id uuid.UUID, f Frame) (Document, error) {
	s, ok := d.Scrap(id)
	if !ok {
		return d, fmt.Errorf("%w: %s", ErrMissingTarget, id)
	}
	s.Frame = f
	return d.With(s), nil
}
