package actor

// Material holds the surface response of a shape
type Material struct {
	Density     float32 // kg/m³, read by NewRigidBody and SetDensity
	Restitution float32 // 0= no rebound, 1= perfect restitution

	StaticFriction  float32
	DynamicFriction float32
}

// DefaultMaterial is assigned by the shape constructors
func DefaultMaterial() Material {
	return Material{
		Density:         1.0,
		Restitution:     0.0,
		StaticFriction:  0.6,
		DynamicFriction: 0.4,
	}
}
