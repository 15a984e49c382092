// Package impulse is a rigid-body physics engine for convex shapes.
//
// A Physics instance owns the registered bodies and global forces, and advances them with
// a fixed timestep: forces are integrated into velocities, contacts are detected with
// GJK and EPA, then resolved by a sequential impulse velocity solver followed by
// a positional correction pass.
package impulse

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/collision"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/epa"
	"github.com/akmonengine/impulse/gjk"
)

type Option func(p *Physics)

// WithSolver appends a pass run on the contact manifolds after the velocity and location solvers
func WithSolver(solver constraint.Solver) Option {
	return func(p *Physics) {
		p.solvers = append(p.solvers, solver)
	}
}

// WithLogger sets the logger of the diagnostics, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(p *Physics) {
		p.logger = logger
	}
}

type Physics struct {
	// mu guards the registry, the pause flag and the time settings.
	// The step itself runs on a snapshot of the registry.
	mu              sync.Mutex
	dynamicBodies   []*actor.RigidBody
	kinematicBodies []*actor.RigidBody
	forces          []actor.GlobalForce
	removed         []*actor.RigidBody
	paused          bool

	settings    Settings
	accumulator float32

	grid     *SpatialGrid
	manager  *constraint.ContactManager
	detector *collision.Detector
	solvers  []constraint.Solver

	Events Events
	logger *slog.Logger

	// step scratch
	bodies       []*actor.RigidBody
	dynamicCount int
	stepForces   []actor.GlobalForce
	pairs        []Pair
	forgotten    []*actor.RigidBody
	rayCaster    gjk.RayCaster
	queryGJK     gjk.GJK
	queryEPA     epa.EPA
	queryBodies  []*actor.RigidBody
}

// New creates a Physics instance. Invalid settings are replaced by their default,
// and a non-zero gravity is registered as the first global force.
func New(settings Settings, options ...Option) *Physics {
	settings.Validate()

	p := &Physics{
		settings: settings,
		grid:     NewSpatialGrid(settings.GridCellSize, settings.GridCellCount),
		manager:  constraint.NewContactManager(),
		detector: collision.NewDetector(),
		solvers: []constraint.Solver{
			&constraint.VelocitySolver{
				Iterations:           settings.VelocityIterations,
				RestitutionThreshold: settings.RestitutionThreshold,
			},
			&constraint.LocationSolver{
				Iterations: settings.LocationIterations,
				Slop:       settings.LocationSlop,
				Factor:     settings.LocationFactor,
			},
		},
		Events: NewEvents(),
		logger: slog.Default(),
	}
	for _, option := range options {
		option(p)
	}

	p.detector.OnDegenerate = func(a, b *actor.RigidBody) {
		p.logger.Debug("penetration failed, pair skipped",
			slog.Any("bodyA", a.Context()),
			slog.Any("bodyB", b.Context()),
		)
		p.Events.emitDegenerate(a, b)
	}

	if gravity := settings.gravity(); gravity.LenSqr() > 0 {
		p.AddGlobalForce(actor.NewGravity(gravity))
	}

	return p
}

func (p *Physics) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.settings
}

// AddRigidBody registers a body. It returns false if the body is nil or already registered.
func (p *Physics) AddRigidBody(body *actor.RigidBody) bool {
	if body == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.Contains(p.dynamicBodies, body) || slices.Contains(p.kinematicBodies, body) {
		p.logger.Debug("body already registered", slog.Any("body", body.Context()))
		return false
	}

	if body.IsKinematic() {
		p.kinematicBodies = append(p.kinematicBodies, body)
	} else {
		p.dynamicBodies = append(p.dynamicBodies, body)
	}
	p.removed = slices.DeleteFunc(p.removed, func(b *actor.RigidBody) bool { return b == body })

	return true
}

// RemoveRigidBody unregisters a body. It returns false if the body was not registered.
func (p *Physics) RemoveRigidBody(body *actor.RigidBody) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := slices.Index(p.dynamicBodies, body); i >= 0 {
		p.dynamicBodies = slices.Delete(p.dynamicBodies, i, i+1)
	} else if i := slices.Index(p.kinematicBodies, body); i >= 0 {
		p.kinematicBodies = slices.Delete(p.kinematicBodies, i, i+1)
	} else {
		p.logger.Debug("body not registered", slog.Any("body", body.Context()))
		return false
	}
	p.removed = append(p.removed, body)

	return true
}

// AddGlobalForce registers a force applied to every dynamic body at each step.
// Forces are compared by identity: register pointers.
func (p *Physics) AddGlobalForce(force actor.GlobalForce) bool {
	if force == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.Contains(p.forces, force) {
		p.logger.Debug("global force already registered")
		return false
	}
	p.forces = append(p.forces, force)

	return true
}

func (p *Physics) RemoveGlobalForce(force actor.GlobalForce) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := slices.Index(p.forces, force)
	if i < 0 {
		p.logger.Debug("global force not registered")
		return false
	}
	p.forces = slices.Delete(p.forces, i, i+1)

	return true
}

// Pause stops Simulate from running steps; the time given meanwhile is not accumulated
func (p *Physics) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paused = true
}

func (p *Physics) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paused = false
}

func (p *Physics) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.paused
}

// SetTimeScale slows down (< 1) or speeds up (> 1) the simulation. Negative values are ignored.
func (p *Physics) SetTimeScale(scale float32) {
	if scale < 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.settings.TimeScale = scale
}

func (p *Physics) SetFixedTimestep(timestep float32) {
	if timestep <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.settings.FixedTimestep = timestep
}

// ContactManifolds returns the manifolds of the last step. They are only valid until the next step.
func (p *Physics) ContactManifolds() []*constraint.ContactManifold {
	return p.manager.Manifolds()
}

// Simulate advances the simulation by deltaTime seconds, scaled by the time scale,
// running as many fixed steps as the accumulated time allows. Events are sent at the end.
// It returns the number of steps run.
//
// Simulate must not be called concurrently with itself or with the queries.
func (p *Physics) Simulate(deltaTime float32) int {
	p.mu.Lock()
	if p.paused || deltaTime <= 0 {
		p.mu.Unlock()
		return 0
	}
	timestep := p.settings.FixedTimestep
	maxSteps := p.settings.MaxStepsPerFrame
	p.accumulator += deltaTime * p.settings.TimeScale
	p.mu.Unlock()

	steps := 0
	for p.accumulator >= timestep {
		if steps == maxSteps {
			dropped := p.accumulator
			p.accumulator = 0
			p.logger.Warn("simulation is late, time dropped",
				slog.Int("steps", steps),
				slog.Float64("dropped", float64(dropped)),
			)
			break
		}

		p.step(timestep)
		p.accumulator -= timestep
		steps++
	}

	p.Events.flush()

	return steps
}

// snapshot copies the registry for one step
func (p *Physics) snapshot() {
	p.mu.Lock()
	defer p.mu.Unlock()

	// bodies whose type changed since their registration move to the other set
	for i := 0; i < len(p.dynamicBodies); {
		if body := p.dynamicBodies[i]; body.IsKinematic() {
			p.kinematicBodies = append(p.kinematicBodies, body)
			p.dynamicBodies = slices.Delete(p.dynamicBodies, i, i+1)
			continue
		}
		i++
	}
	for i := 0; i < len(p.kinematicBodies); {
		if body := p.kinematicBodies[i]; !body.IsKinematic() {
			p.dynamicBodies = append(p.dynamicBodies, body)
			p.kinematicBodies = slices.Delete(p.kinematicBodies, i, i+1)
			continue
		}
		i++
	}

	p.bodies = append(p.bodies[:0], p.dynamicBodies...)
	p.dynamicCount = len(p.dynamicBodies)
	p.bodies = append(p.bodies, p.kinematicBodies...)
	p.stepForces = append(p.stepForces[:0], p.forces...)
	p.forgotten = append(p.forgotten[:0], p.removed...)
	p.removed = p.removed[:0]
}

func (p *Physics) step(dt float32) {
	p.snapshot()
	for _, body := range p.forgotten {
		p.Events.forget(body)
	}
	dynamicCount := p.dynamicCount

	// Phase 1: forces and velocities
	for _, force := range p.stepForces {
		for _, body := range p.bodies[:dynamicCount] {
			force.Apply(body)
		}
	}
	for _, body := range p.bodies {
		body.Integrate(dt)
	}

	// Phase 2: broad phase then narrow phase
	p.manager.Reset()
	p.grid.Clear()
	for i, body := range p.bodies {
		p.grid.Insert(i, body)
	}
	p.grid.SortCells()
	p.pairs = p.grid.FindPairs(p.bodies, p.pairs)

	for _, pair := range p.pairs {
		p.detector.Detect(pair.BodyA, pair.BodyB, p.manager)
	}
	manifolds := p.manager.Manifolds()
	wakeTouched(manifolds)

	// Phase 3: solvers
	for _, solver := range p.solvers {
		solver.Solve(manifolds, dt)
	}

	// Phase 4: positions, then sleep
	for _, body := range p.bodies {
		body.UpdatePositionAndRotation(dt)
	}
	for _, body := range p.bodies[:dynamicCount] {
		body.UpdateSleep(dt, p.settings.SleepLinearThreshold, p.settings.SleepAngularThreshold, p.settings.SleepTimeout)
	}

	p.Events.recordCollisions(manifolds)
	p.Events.processCollisionEvents()
	p.Events.processSleepEvents(p.bodies)
}

// wakeTouched wakes the sleeping bodies in contact with an active body
func wakeTouched(manifolds []*constraint.ContactManifold) {
	for _, m := range manifolds {
		if m.BodyA.IsSleeping() && m.BodyB.IsActive() {
			m.BodyA.WakeUp()
		}
		if m.BodyB.IsSleeping() && m.BodyA.IsActive() {
			m.BodyB.WakeUp()
		}
	}
}
