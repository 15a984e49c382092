package impulse

import (
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

// committedManifold records a single contact manifold between a and b into a fresh manager
func committedManifold(a, b *actor.RigidBody) []*constraint.ContactManifold {
	manager := constraint.NewContactManager()
	manifold := manager.NewManifold(a, b)
	manifold.SetBasis(mgl32.Vec3{1, 0, 0})
	manifold.AddContact(manager.NewContact())
	manager.Commit(manifold)

	return manager.Manifolds()
}

func newCapturedEvents(eventTypes ...EventType) (*Events, *eventCapture) {
	events := NewEvents()
	capture := &eventCapture{}
	for _, eventType := range eventTypes {
		events.Subscribe(eventType, capture.capture)
	}

	return &events, capture
}

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(COLLISION_ENTER, capture.capture)
	events.Subscribe(COLLISION_ENTER, capture.capture)

	assert.Len(t, events.listeners[COLLISION_ENTER], 2)
	assert.Empty(t, events.listeners[COLLISION_EXIT])
}

func TestEvents_PairOrder(t *testing.T) {
	events, capture := newCapturedEvents(COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT)
	a := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	b := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	c := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	events.recordCollisions(committedManifold(a, b))
	events.processCollisionEvents()
	events.flush()
	require.Len(t, capture.events, 1)
	assert.Equal(t, COLLISION_ENTER, capture.events[0].Type())

	// the broad phase may report the bodies in the other order
	capture.reset()
	events.recordCollisions(committedManifold(b, a))
	events.recordCollisions(committedManifold(a, c))
	events.processCollisionEvents()
	events.flush()

	require.Len(t, capture.events, 2)
	assert.True(t, capture.hasEventType(COLLISION_STAY))
	assert.True(t, capture.hasEventType(COLLISION_ENTER))
	assert.False(t, capture.hasEventType(COLLISION_EXIT))
	assert.Len(t, events.pairs, 2)
}

func TestEvents_CollisionLifecycle(t *testing.T) {
	events, capture := newCapturedEvents(COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT)
	a := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	b := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	steps := []struct {
		name     string
		touching bool
		expected EventType
	}{
		{"enter", true, COLLISION_ENTER},
		{"stay", true, COLLISION_STAY},
		{"exit", false, COLLISION_EXIT},
		{"enter again", true, COLLISION_ENTER},
	}

	for _, step := range steps {
		capture.reset()
		if step.touching {
			events.recordCollisions(committedManifold(a, b))
		}
		events.processCollisionEvents()
		events.flush()

		require.Len(t, capture.events, 1, step.name)
		assert.Equal(t, step.expected, capture.events[0].Type(), step.name)
	}

	capture.reset()
	events.processCollisionEvents()
	events.flush()
	events.processCollisionEvents()
	events.flush()
	assert.Len(t, capture.events, 1, "a single exit, then nothing")
}

func TestEvents_SleepingPairIsQuiet(t *testing.T) {
	events, capture := newCapturedEvents(COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT)
	a := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	b := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	events.recordCollisions(committedManifold(a, b))
	events.processCollisionEvents()
	events.flush()
	require.True(t, capture.hasEventType(COLLISION_ENTER))

	// both asleep: no manifold anymore, but the pair is still in contact
	a.Sleep()
	b.Sleep()
	capture.reset()
	for i := 0; i < 3; i++ {
		events.processCollisionEvents()
		events.flush()
	}
	assert.Empty(t, capture.events)

	a.WakeUp()
	events.processCollisionEvents()
	events.flush()
	assert.True(t, capture.hasEventType(COLLISION_EXIT))
}

func TestEvents_SleepAndWake(t *testing.T) {
	events, capture := newCapturedEvents(ON_SLEEP, ON_WAKE)
	body := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	bodies := []*actor.RigidBody{body}

	// first sight only records the state
	events.processSleepEvents(bodies)
	events.flush()
	assert.Empty(t, capture.events)

	body.Sleep()
	events.processSleepEvents(bodies)
	events.processSleepEvents(bodies)
	events.flush()
	require.Len(t, capture.events, 1)
	assert.Same(t, body, capture.events[0].(SleepEvent).Body)

	capture.reset()
	body.WakeUp()
	events.processSleepEvents(bodies)
	events.flush()
	require.Len(t, capture.events, 1)
	assert.Equal(t, ON_WAKE, capture.events[0].Type())
}

func TestEvents_Forget(t *testing.T) {
	events, capture := newCapturedEvents(COLLISION_EXIT)
	a := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	b := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	events.recordCollisions(committedManifold(a, b))
	events.processCollisionEvents()
	events.processSleepEvents([]*actor.RigidBody{a, b})
	events.flush()

	events.forget(a)
	assert.NotContains(t, events.sleeping, a)
	assert.Empty(t, events.pairs)

	events.processCollisionEvents()
	events.flush()
	assert.Empty(t, capture.events, "a removed body sends no exit")
}

func TestEvents_Degenerate(t *testing.T) {
	events, capture := newCapturedEvents(ON_DEGENERATE)
	a := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	b := createTestBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	events.emitDegenerate(a, b)
	events.flush()

	require.Len(t, capture.events, 1)
	event := capture.events[0].(DegenerateEvent)
	assert.Same(t, a, event.BodyA)
	assert.Same(t, b, event.BodyB)

	events.flush()
	assert.Len(t, capture.events, 1, "flush clears the buffer")
}
