// Package profile collapses the tuning variants of the flight model and
// camera into named data profiles, with optional file overrides read
// through viper.
package profile

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kestrelsim/kestrel/camera"
	"github.com/kestrelsim/kestrel/flight"
)

// Profile is a complete tuning set for one aircraft/camera pairing.
type Profile struct {
	Name   string        `mapstructure:"name"`
	Flight flight.Config `mapstructure:"flight"`
	Camera camera.Config `mapstructure:"camera"`
}

// Trainer is the forgiving baseline tuning.
func Trainer() Profile {
	return Profile{
		Name:   "trainer",
		Flight: flight.DefaultConfig(),
		Camera: camera.DefaultConfig(),
	}
}

// Stunt is the aggressive tuning: steeper banks, faster response, a closer
// and snappier camera.
func Stunt() Profile {
	f := flight.DefaultConfig()
	f.MaxBank = 1.2
	f.BankTimeConstant = 0.12
	f.PitchSensitivity = 1.4
	f.YawSensitivity = 0.8
	f.TurnFactor = 0.014
	f.StallSpeed = 55
	f.MaxThrust = 52000

	c := camera.DefaultConfig()
	c.FollowDistance = 14
	c.FollowHeight = 5.5
	c.SmoothTimeConstant = 0.09

	return Profile{Name: "stunt", Flight: f, Camera: c}
}

// Builtin returns a built-in profile by name.
func Builtin(name string) (Profile, bool) {
	switch name {
	case "", "trainer":
		return Trainer(), true
	case "stunt":
		return Stunt(), true
	default:
		return Profile{}, false
	}
}

// Load resolves a built-in profile and, when configDir is non-empty, merges
// overrides from a kestrel.yaml found there. Only keys present in the file
// replace the built-in values; a missing file is not an error.
func Load(name, configDir string) (Profile, error) {
	p, ok := Builtin(name)
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	if configDir == "" {
		return p, nil
	}

	v := viper.New()
	v.SetConfigName("kestrel")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return p, nil
		}
		return Profile{}, fmt.Errorf("error reading config file: %w", err)
	}
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, fmt.Errorf("error decoding config file: %w", err)
	}
	if err := Validate(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate rejects tunings the simulation cannot run on.
func Validate(p Profile) error {
	f := p.Flight
	switch {
	case f.Mass <= 0:
		return fmt.Errorf("profile %s: mass must be positive", p.Name)
	case f.MaxBank <= 0:
		return fmt.Errorf("profile %s: maxBank must be positive", p.Name)
	case f.StallSpeed <= 0:
		return fmt.Errorf("profile %s: stallSpeed must be positive", p.Name)
	case f.BankTimeConstant <= 0:
		return fmt.Errorf("profile %s: bankTimeConstant must be positive", p.Name)
	}
	c := p.Camera
	switch {
	case c.SmoothTimeConstant <= 0:
		return fmt.Errorf("profile %s: smoothTimeConstant must be positive", p.Name)
	case c.ApproachDuration <= 0 || c.OrbitDuration <= 0 || c.PullbackDuration <= 0:
		return fmt.Errorf("profile %s: crash phase durations must be positive", p.Name)
	}
	return nil
}
