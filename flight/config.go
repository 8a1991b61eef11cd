package flight

// Config holds the aircraft's physical and handling parameters. It is fixed
// at construction; tuning variants live in the profile package as data, not
// as forked code paths.
type Config struct {
	Mass      float64 `mapstructure:"mass"`      // kg
	Gravity   float64 `mapstructure:"gravity"`   // m/s²
	MaxThrust float64 `mapstructure:"maxThrust"` // N

	LiftCoefficient float64 `mapstructure:"liftCoefficient"`
	DragCoefficient float64 `mapstructure:"dragCoefficient"`
	LiftFactor      float64 `mapstructure:"liftFactor"`

	StallSpeed float64 `mapstructure:"stallSpeed"` // m/s
	StallAngle float64 `mapstructure:"stallAngle"` // rad, max nose-up attitude
	MaxBank    float64 `mapstructure:"maxBank"`    // rad

	// BankTimeConstant is the first-order lag of bank toward the roll
	// command, in seconds. The per-tick blend is 1-exp(-dt/tau) so handling
	// does not change with tick rate.
	BankTimeConstant float64 `mapstructure:"bankTimeConstant"`

	TurnFactor       float64 `mapstructure:"turnFactor"`       // yaw rate per (rad bank · m/s)
	AdverseYawFactor float64 `mapstructure:"adverseYawFactor"` // yaw rate per unit roll input
	YawSensitivity   float64 `mapstructure:"yawSensitivity"`   // rad/s at full rudder
	PitchSensitivity float64 `mapstructure:"pitchSensitivity"` // rad/s at full elevator
	RollCoupling     float64 `mapstructure:"rollCoupling"`     // reported roll rate per rad bank

	StallPitchBias  float64 `mapstructure:"stallPitchBias"`  // rad/s nose-down at full stall depth
	StallRollJitter float64 `mapstructure:"stallRollJitter"` // rad/s of random roll in a stall
	LiftAssist      float64 `mapstructure:"liftAssist"`      // arcade climb boost, fraction of thrust accel

	// VelocityDamping and AngularDamping are continuous rates (1/s),
	// applied as exp(-rate*dt).
	VelocityDamping float64 `mapstructure:"velocityDamping"`
	AngularDamping  float64 `mapstructure:"angularDamping"`

	// DistanceScale stretches integrated motion into world units. Tuning
	// constant, not a unit conversion.
	DistanceScale float64 `mapstructure:"distanceScale"`

	SafetyMargin    float64 `mapstructure:"safetyMargin"`    // crash when below terrain + margin
	CrashRestOffset float64 `mapstructure:"crashRestOffset"` // resting height of a wreck above terrain
}

// DefaultConfig returns the baseline handling model. Values reproduce the
// 60 Hz feel of the original tuning: a 200 ms bank time constant equals the
// old 0.08-per-tick blend at 60 ticks/s.
func DefaultConfig() Config {
	return Config{
		Mass:      1200,
		Gravity:   9.81,
		MaxThrust: 42000,

		LiftCoefficient: 0.9,
		DragCoefficient: 0.004,
		LiftFactor:      0.0045,

		StallSpeed: 50,
		StallAngle: 0.62,
		MaxBank:    0.9,

		BankTimeConstant: 0.2,

		TurnFactor:       0.011,
		AdverseYawFactor: -0.07,
		YawSensitivity:   0.55,
		PitchSensitivity: 0.95,
		RollCoupling:     0.35,

		StallPitchBias:  0.5,
		StallRollJitter: 0.25,
		LiftAssist:      0.28,

		VelocityDamping: 0.3,
		AngularDamping:  3.7,

		DistanceScale: 1.0,

		SafetyMargin:    2.0,
		CrashRestOffset: 1.2,
	}
}
