package impulse

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
)

type EventType uint8

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
	ON_DEGENERATE
)

type Event interface {
	Type() EventType
}

// CollisionEnterEvent is sent the first step a pair has contacts
type CollisionEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// DegenerateEvent is sent when the penetration of an overlapping pair could not be computed.
// The pair got no contact for that step.
type DegenerateEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e DegenerateEvent) Type() EventType { return ON_DEGENERATE }

type EventListener func(event Event)

type pairKey struct {
	bodyA, bodyB *actor.RigidBody
}

func (k pairKey) asleep() bool {
	return k.bodyA.IsSleeping() && k.bodyB.IsSleeping()
}

// pairState stamps a touching pair with the steps it started and was last seen touching
type pairState struct {
	since, seen uint64
}

// Events buffers the events of a Simulate call, and sends them to the listeners at its end
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event

	step  uint64
	pairs map[pairKey]pairState
	// sleeping is the last known sleep state of every body seen by a step
	sleeping map[*actor.RigidBody]bool
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
		pairs:     make(map[pairKey]pairState),
		sleeping:  make(map[*actor.RigidBody]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// key returns the key a pair is tracked under, whatever the order of its bodies
func (e *Events) key(bodyA, bodyB *actor.RigidBody) pairKey {
	swapped := pairKey{bodyA: bodyB, bodyB: bodyA}
	if _, ok := e.pairs[swapped]; ok {
		return swapped
	}
	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

// recordCollisions stamps the pairs of the committed manifolds as touching during the current step
func (e *Events) recordCollisions(manifolds []*constraint.ContactManifold) {
	for _, m := range manifolds {
		key := e.key(m.BodyA, m.BodyB)
		state, ok := e.pairs[key]
		if !ok {
			state.since = e.step
		}
		state.seen = e.step
		e.pairs[key] = state
	}
}

func (e *Events) emitDegenerate(bodyA, bodyB *actor.RigidBody) {
	e.buffer = append(e.buffer, DegenerateEvent{BodyA: bodyA, BodyB: bodyB})
}

// processCollisionEvents closes the current step: the pairs stamped during it are entering or staying,
// the others are leaving. A pair of sleeping bodies has no manifold but still touches: it is kept, silently.
func (e *Events) processCollisionEvents() {
	for key, state := range e.pairs {
		switch {
		case state.seen != e.step && key.asleep():
			state.seen = e.step
			e.pairs[key] = state
		case state.seen != e.step:
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: key.bodyA, BodyB: key.bodyB})
			delete(e.pairs, key)
		case key.asleep():
		case state.since == e.step:
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: key.bodyA, BodyB: key.bodyB})
		default:
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: key.bodyA, BodyB: key.bodyB})
		}
	}

	e.step++
}

// processSleepEvents reports the bodies whose sleep state changed since the previous step.
// A body seen for the first time only has its state recorded.
func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		asleep := body.IsSleeping()
		was, known := e.sleeping[body]
		e.sleeping[body] = asleep

		switch {
		case !known || was == asleep:
		case asleep:
			e.buffer = append(e.buffer, SleepEvent{Body: body})
		default:
			e.buffer = append(e.buffer, WakeEvent{Body: body})
		}
	}
}

// forget drops the tracking of a removed body, without sending any event
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleeping, body)
	for key := range e.pairs {
		if key.bodyA == body || key.bodyB == body {
			delete(e.pairs, key)
		}
	}
}

// flush sends the buffered events in order, then empties the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	clear(e.buffer)
	e.buffer = e.buffer[:0]
}
