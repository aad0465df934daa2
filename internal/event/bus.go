// Package event carries canonical map and layer events from the core to subscribers.
package event

import "sync"

// Topic groups related events.
type Topic string

const (
	TopicMap   Topic = "map"
	TopicLayer Topic = "layer"
)

// Name identifies an event within a topic.
type Name string

// Layer lifecycle events. Payload: *layer.Config.
// AddFailed follows a BeforeAdd whose layer could not be drawn.
const (
	BeforeAdd    Name = "beforeadd"
	AddFailed    Name = "addfailed"
	Added        Name = "added"
	BeforeRemove Name = "beforeremove"
	Removed      Name = "removed"
)

// Pointer events. Payload: *provider.PointerEvent.
const (
	Click      Name = "click"
	ShapeClick Name = "shapeclick"
	DblClick   Name = "dblclick"
	MouseDown  Name = "mousedown"
	MouseMove  Name = "mousemove"
	MouseOut   Name = "mouseout"
	MouseOver  Name = "mouseover"
	MouseUp    Name = "mouseup"
	RightClick Name = "rightclick"
)

// View events. Payload: gesture.ViewState.
const (
	PanStart        Name = "panstart"
	Panning         Name = "panning"
	PanEnd          Name = "panend"
	ZoomStart       Name = "zoomstart"
	Zooming         Name = "zooming"
	ZoomEnd         Name = "zoomend"
	ViewChangeStart Name = "viewchangestart"
	ViewChanging    Name = "viewchanging"
	ViewChangeEnd   Name = "viewchangeend"
)

// Names lists every event name per topic.
var Names = map[Topic][]Name{
	TopicMap: {
		Click, ShapeClick, DblClick, MouseDown, MouseMove, MouseOut, MouseOver, MouseUp, RightClick,
		PanStart, Panning, PanEnd, ZoomStart, Zooming, ZoomEnd,
		ViewChangeStart, ViewChanging, ViewChangeEnd,
	},
	TopicLayer: {BeforeAdd, AddFailed, Added, BeforeRemove, Removed},
}

// Event is one emitted occurrence.
type Event struct {
	Topic   Topic
	Name    Name
	Payload any
}

// Handler receives events synchronously on the emitting goroutine.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription uint64

type entry struct {
	id      Subscription
	topic   Topic
	name    Name
	handler Handler
}

// Bus delivers every event to its handlers in subscription order before Emit
// returns. Handlers run on the emitting goroutine.
type Bus struct {
	mu      sync.RWMutex
	next    Subscription
	entries []entry
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// On registers h for topic/name.
func (b *Bus) On(topic Topic, name Name, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.entries = append(b.entries, entry{id: b.next, topic: topic, name: name, handler: h})
	return b.next
}

// OnAll registers h for every name in Names.
func (b *Bus) OnAll(h Handler) []Subscription {
	var subs []Subscription
	for _, topic := range []Topic{TopicMap, TopicLayer} {
		for _, name := range Names[topic] {
			subs = append(subs, b.On(topic, name, h))
		}
	}
	return subs
}

// Off removes a handler. Removing an unknown subscription is a no-op.
func (b *Bus) Off(id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if e.id == id {
			b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
			return
		}
	}
}

// Emit delivers an event. Handlers added or removed while it runs take effect
// from the next Emit.
func (b *Bus) Emit(topic Topic, name Name, payload any) {
	ev := Event{Topic: topic, Name: name, Payload: payload}

	b.mu.RLock()
	var handlers []Handler
	for _, e := range b.entries {
		if e.topic == topic && e.name == name {
			handlers = append(handlers, e.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
