package connector

import (
	"wirecanvas/pkg/geometry"
)

// PointerKind is the phase of a pointer gesture.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	}
	return "unknown"
}

// Modifiers is a bit set of keyboard modifiers held during a pointer event.
type Modifiers uint8

const (
	ModAlt Modifiers = 1 << iota
	ModShift
	ModCtrl
)

// Has reports whether every modifier in m2 is set.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// HitTarget lets a host that does its own hit testing tell the controller what
// is under the pointer. Leave NodeID and ReconnectEdgeID empty for empty canvas.
type HitTarget struct {
	NodeID string
	// Side is set when the pointer is on a node's side handle.
	Side geometry.Side
	// ReconnectEdgeID marks a handle that moves an existing edge's end.
	ReconnectEdgeID string
	ReconnectEnd    EndRole
}

// PointerEvent is one pointer sample in screen coordinates.
type PointerEvent struct {
	Kind      PointerKind
	Screen    geometry.Point
	Modifiers Modifiers
	// Target is optional. When nil the controller hit tests on its own.
	Target *HitTarget
}

// GestureSource delivers pointer events to subscribers.
type GestureSource interface {
	Subscribe(fn func(PointerEvent)) (unsubscribe func())
}

// GestureBus is a synchronous GestureSource. Emit calls subscribers in
// subscription order on the caller's goroutine.
type GestureBus struct {
	subs  map[int]func(PointerEvent)
	order []int
	next  int
}

// NewGestureBus returns an empty bus.
func NewGestureBus() *GestureBus {
	return &GestureBus{subs: map[int]func(PointerEvent){}}
}

// Subscribe registers fn and returns a function that removes it again.
func (b *GestureBus) Subscribe(fn func(PointerEvent)) func() {
	id := b.next
	b.next++
	b.subs[id] = fn
	b.order = append(b.order, id)
	return func() {
		delete(b.subs, id)
		for i, sid := range b.order {
			if sid == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers ev to every subscriber.
func (b *GestureBus) Emit(ev PointerEvent) {
	for _, id := range append([]int(nil), b.order...) {
		if fn, ok := b.subs[id]; ok {
			fn(ev)
		}
	}
}
