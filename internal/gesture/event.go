// Package gesture turns raw pointer events into document commands.
//
// A Manipulator consumes the events of one gesture and yields at most one
// command. The Detector sits in front of the manipulators: it finds the scrap
// under the pointer, starts a manipulator per gesture and hands the resulting
// command to the store.
package gesture

import (
	"fmt"

	"ScrapBoard/internal/geom"

	"github.com/google/uuid"
)

// Kind is the type of a pointer event.
type Kind int

const (
	DragBegin Kind = iota + 1
	DragMove
	DragEnd
	Tap
	LongPress
)

var kindNames = map[Kind]string{
	DragBegin: "drag_begin",
	DragMove:  "drag_move",
	DragEnd:   "drag_end",
	Tap:       "tap",
	LongPress: "long_press",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown pointer event kind %q", s)
}

// IsDrag reports whether k belongs to a drag gesture.
func (k Kind) IsDrag() bool {
	return k == DragBegin || k == DragMove || k == DragEnd
}

// Event is a pointer event in document coordinates. Target optionally names
// the scrap under the pointer; when it is uuid.Nil the Detector hit-tests.
type Event struct {
	Kind    Kind
	Pointer geom.Point
	Target  uuid.UUID
}
