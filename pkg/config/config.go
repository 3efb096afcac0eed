// YAML configuration for the armctl host
//
// Loads and validates the host configuration: the DH chain, joint limits,
// the IK solver and its link parameters, controller gains, loop timing, and
// telemetry/log settings. Validation is fail-fast; a config that loads is a
// config the host can run.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"armctl-go/pkg/errors"
)

// RowConfig describes one DH table row. Angles are degrees.
type RowConfig struct {
	A        float64 `yaml:"a"`
	AlphaDeg float64 `yaml:"alpha_deg"`
	D        float64 `yaml:"d"`
	ThetaDeg float64 `yaml:"theta_deg"`

	// Type is "fixed", "revolute" or "prismatic".
	Type string `yaml:"type"`

	// Joint is the joint index for non-fixed rows.
	Joint int `yaml:"joint"`
}

// JointConfig describes one joint's limits. Revolute limits are degrees.
type JointConfig struct {
	Type   string   `yaml:"type"`
	MinDeg *float64 `yaml:"min_deg,omitempty"`
	MaxDeg *float64 `yaml:"max_deg,omitempty"`
}

// ArmConfig describes the kinematic chain.
type ArmConfig struct {
	Rows    []RowConfig   `yaml:"rows"`
	Joints  []JointConfig `yaml:"joints"`
	Damping float64       `yaml:"damping,omitempty"`
}

// IKConfig selects and parameterizes the IK solver.
type IKConfig struct {
	Solver      string    `yaml:"solver"`
	LinkLengths []float64 `yaml:"link_lengths"`
}

// ControllerConfig holds the task-space PID parameters.
type ControllerConfig struct {
	Kp []float64 `yaml:"kp"`
	Ki []float64 `yaml:"ki"`
	Kd []float64 `yaml:"kd"`

	OrthonormInterval int     `yaml:"orthonorm_interval,omitempty"`
	VelocityEpsilon   float64 `yaml:"velocity_epsilon,omitempty"`

	// AngularUnit is "deg" (default) or "rad".
	AngularUnit string `yaml:"angular_unit,omitempty"`

	// AngularFrame is "world" (default) or "tool".
	AngularFrame string `yaml:"angular_frame,omitempty"`
}

// LoopConfig holds control-loop timing.
type LoopConfig struct {
	Dt float64 `yaml:"dt"`
}

// TelemetryConfig holds the telemetry server settings. An empty address
// disables the server.
type TelemetryConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Config is the root host configuration.
type Config struct {
	Arm        ArmConfig        `yaml:"arm"`
	IK         IKConfig         `yaml:"ik"`
	Controller ControllerConfig `yaml:"controller"`
	Loop       LoopConfig       `yaml:"loop"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Log        LogConfig        `yaml:"log"`
}

// DefaultLoopDt is the control period used when the config omits loop.dt.
const DefaultLoopDt = 0.05

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParam, fmt.Sprintf("unable to read %s", path))
	}
	return Parse(data)
}

// Parse parses and validates config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParam, "invalid YAML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for structural errors. Chain-level
// constraints (joint index ranges, type agreement) are re-checked by the
// kinematics constructors; this catches everything expressible without
// building the chain.
func (c *Config) Validate() error {
	if len(c.Arm.Rows) == 0 {
		return errors.ConfigChainError("arm.rows must not be empty")
	}
	if len(c.Arm.Joints) == 0 {
		return errors.ConfigChainError("arm.joints must not be empty")
	}
	for i, row := range c.Arm.Rows {
		switch row.Type {
		case "fixed":
		case "revolute", "prismatic":
			if row.Joint < 0 || row.Joint >= len(c.Arm.Joints) {
				return errors.ConfigChainError(fmt.Sprintf(
					"arm.rows[%d] references joint %d, want [0, %d)", i, row.Joint, len(c.Arm.Joints)))
			}
		default:
			return errors.ConfigParamError(fmt.Sprintf("arm.rows[%d].type", i),
				fmt.Sprintf("unknown type %q", row.Type))
		}
	}
	for i, j := range c.Arm.Joints {
		if j.Type != "revolute" && j.Type != "prismatic" {
			return errors.ConfigParamError(fmt.Sprintf("arm.joints[%d].type", i),
				fmt.Sprintf("unknown type %q", j.Type))
		}
		if (j.MinDeg == nil) != (j.MaxDeg == nil) {
			return errors.ConfigParamError(fmt.Sprintf("arm.joints[%d]", i),
				"min_deg and max_deg must be set together")
		}
		if j.MinDeg != nil && *j.MinDeg > *j.MaxDeg {
			return errors.ConfigParamError(fmt.Sprintf("arm.joints[%d]", i),
				"min_deg must not exceed max_deg")
		}
	}
	if c.Arm.Damping < 0 {
		return errors.ConfigParamError("arm.damping", "must be non-negative")
	}

	if c.IK.Solver != "" && len(c.IK.LinkLengths) == 0 {
		return errors.ConfigParamError("ik.link_lengths", "required when a solver is configured")
	}

	for _, gains := range [][]float64{c.Controller.Kp, c.Controller.Ki, c.Controller.Kd} {
		if len(gains) != 0 && len(gains) != 6 {
			return errors.ConfigLengthError("controller gains", 6, len(gains))
		}
	}
	switch c.Controller.AngularUnit {
	case "", "deg", "rad":
	default:
		return errors.ConfigParamError("controller.angular_unit",
			fmt.Sprintf("unknown unit %q, want deg or rad", c.Controller.AngularUnit))
	}
	switch c.Controller.AngularFrame {
	case "", "world", "tool":
	default:
		return errors.ConfigParamError("controller.angular_frame",
			fmt.Sprintf("unknown frame %q, want world or tool", c.Controller.AngularFrame))
	}
	if c.Controller.OrthonormInterval < 0 {
		return errors.ConfigParamError("controller.orthonorm_interval", "must be non-negative")
	}
	if c.Controller.VelocityEpsilon < 0 {
		return errors.ConfigParamError("controller.velocity_epsilon", "must be non-negative")
	}

	if c.Loop.Dt < 0 {
		return errors.ConfigParamError("loop.dt", "must be non-negative")
	}
	return nil
}

// LoopDt returns the control period, applying the default.
func (c *Config) LoopDt() float64 {
	if c.Loop.Dt == 0 {
		return DefaultLoopDt
	}
	return c.Loop.Dt
}
