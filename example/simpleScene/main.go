package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
)

// SetupScene creates a kinematic ground and a tilted cube falling on it
func SetupScene(physics *impulse.Physics) (*actor.RigidBody, *actor.RigidBody) {
	ground := actor.NewRigidBody(
		actor.NewTransform(),
		actor.NewBox(mgl32.Vec3{20, 0.5, 20}),
		actor.BodyTypeKinematic,
		1.0,
	)
	physics.AddRigidBody(ground)

	cubeShape := actor.NewBox(mgl32.Vec3{1.5, 1.5, 1.5})
	material := actor.DefaultMaterial()
	material.Restitution = 0.4
	cubeShape.SetMaterial(material)

	cube := actor.NewRigidBody(
		actor.NewTransformAt(mgl32.Vec3{-5, 5, -5}, mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 0, 1})),
		cubeShape,
		actor.BodyTypeDynamic,
		1.0,
	)
	cube.SetContext("cube")
	physics.AddRigidBody(cube)

	return ground, cube
}

func main() {
	settingsPath := flag.String("settings", "", "path to a .toml or .yaml settings file")
	frames := flag.Int("frames", 300, "number of rendered frames to simulate")
	verbose := flag.Bool("v", false, "log every frame")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	settings := impulse.DefaultSettings()
	if *settingsPath != "" {
		loaded, err := impulse.LoadSettings(*settingsPath)
		if err != nil {
			logger.Error("cannot load settings", "error", err)
			os.Exit(1)
		}
		settings = loaded
	}

	physics := impulse.New(settings, impulse.WithLogger(logger))
	_, cube := SetupScene(physics)

	physics.Events.Subscribe(impulse.COLLISION_ENTER, func(event impulse.Event) {
		e := event.(impulse.CollisionEnterEvent)
		logger.Info("collision enter", "a", e.BodyA.Context(), "b", e.BodyB.Context())
	})
	physics.Events.Subscribe(impulse.ON_SLEEP, func(event impulse.Event) {
		logger.Info("body asleep", "body", event.(impulse.SleepEvent).Body.Context())
	})

	// rendering runs at 60 fps, the simulation at its own fixed timestep
	const frameTime = float32(1.0 / 60.0)
	for frame := 0; frame < *frames; frame++ {
		steps := physics.Simulate(frameTime)

		logger.Debug("frame",
			"frame", frame,
			"steps", steps,
			"location", cube.Location(),
			"velocity", cube.LinearVelocity(),
			"angular", cube.AngularVelocity(),
			"manifolds", len(physics.ContactManifolds()),
		)
	}

	hit, ok := physics.Raycast(mgl32.Vec3{-5, 20, -5}, mgl32.Vec3{0, -1, 0}, 100, impulse.AllGroups)
	if ok {
		logger.Info("raycast down", "body", hit.Body.Context(), "point", hit.Point, "distance", hit.Distance)
	}

	logger.Info("done", "location", cube.Location(), "sleeping", cube.IsSleeping())
}
