package state

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type wireCommand struct {
	Signature Signature  `json:"signature"`
	CommandID uuid.UUID  `json:"command_id"`
	Scrap     *Scrap     `json:"scrap,omitempty"`
	ScrapID   *uuid.UUID `json:"scrap_id,omitempty"`
	FromFrame *Frame     `json:"from_frame,omitempty"`
	ToFrame   *Frame     `json:"to_frame,omitempty"`
}

// EncodeCommand renders c in its wire form.
func EncodeCommand(c Command) ([]byte, error) {
	w := wireCommand{Signature: c.Signature(), CommandID: c.ID()}
	switch c := c.(type) {
	case AddScrap:
		w.Scrap = &c.Scrap
	case RemoveScrap:
		w.Scrap = &c.Scrap
	case UpdateScrapFrame:
		w.ScrapID = &c.ScrapID
		w.FromFrame = &c.From
		w.ToFrame = &c.To
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownVariant, c)
	}
	return json.Marshal(w)
}

// DecodeCommand parses the wire form of a command. An absent or unknown
// signature fails with ErrUnknownVariant; a recognized signature with a
// missing or undecodable payload fails with ErrMalformedCommand.
func DecodeCommand(b []byte) (Command, error) {
	var probe struct {
		Signature *Signature `json:"signature"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if probe.Signature == nil {
		return nil, fmt.Errorf("%w: missing signature", ErrUnknownVariant)
	}

	switch *probe.Signature {
	case SignatureAddScrap, SignatureRemoveScrap, SignatureUpdateScrapFrame:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, *probe.Signature)
	}

	var w wireCommand
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if w.CommandID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing command_id", ErrMalformedCommand)
	}

	switch w.Signature {
	case SignatureAddScrap:
		if w.Scrap == nil {
			return nil, fmt.Errorf("%w: %s without scrap", ErrMalformedCommand, w.Signature)
		}
		return AddScrap{CommandID: w.CommandID, Scrap: *w.Scrap}, nil
	case SignatureRemoveScrap:
		if w.Scrap == nil {
			return nil, fmt.Errorf("%w: %s without scrap", ErrMalformedCommand, w.Signature)
		}
		return RemoveScrap{CommandID: w.CommandID, Scrap: *w.Scrap}, nil
	case SignatureUpdateScrapFrame:
		if w.ScrapID == nil {
			return nil, fmt.Errorf("%w: %s without scrap_id", ErrMalformedCommand, w.Signature)
		}
		from, to := DefaultFrame(), DefaultFrame()
		if w.FromFrame != nil {
			from = *w.FromFrame
		}
		if w.ToFrame != nil {
			to = *w.ToFrame
		}
		return UpdateScrapFrame{CommandID: w.CommandID, ScrapID: *w.ScrapID, From: from, To: to}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, w.Signature)
}

func (c AddScrap) MarshalJSON() ([]byte, error)         { return EncodeCommand(c) }
func (c RemoveScrap) MarshalJSON() ([]byte, error)      { return EncodeCommand(c) }
func (c UpdateScrapFrame) MarshalJSON() ([]byte, error) { return EncodeCommand(c) }
