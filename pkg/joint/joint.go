// Per-joint state with unit-safe setters and limits
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package joint models the state of a single manipulator joint.
package joint

import (
	"fmt"
	"math"
)

// Type is the mechanical classification of a joint.
type Type int

const (
	// Revolute joints rotate about their frame z-axis; positions are radians.
	Revolute Type = iota
	// Prismatic joints translate along their frame z-axis; positions are
	// model length units.
	Prismatic
)

// String returns the joint type name.
func (t Type) String() string {
	switch t {
	case Revolute:
		return "revolute"
	case Prismatic:
		return "prismatic"
	default:
		return "unknown"
	}
}

// Joint holds the state and physical constraints of a single joint.
//
// It acts as a safety wrapper: commanded positions are clamped to the
// configured hardware limits, and the degree-based setters internalize
// user-facing units into radians. All stored values are internal units
// (radians for revolute, length units for prismatic).
type Joint struct {
	typ      Type
	position float64
	velocity float64

	limitMin  float64
	limitMax  float64
	hasLimits bool
}

// New creates an unlimited joint at zero position and velocity.
func New(t Type) Joint {
	return Joint{typ: t}
}

// NewWithLimits creates a joint with position limits in internal units
// (radians for revolute joints, length units for prismatic joints).
func NewWithLimits(t Type, min, max float64) Joint {
	return Joint{typ: t, limitMin: min, limitMax: max, hasLimits: true}
}

// NewRevoluteDeg creates a revolute joint with limits given in degrees.
func NewRevoluteDeg(minDeg, maxDeg float64) Joint {
	return NewWithLimits(Revolute, minDeg*math.Pi/180, maxDeg*math.Pi/180)
}

// Type returns the joint's mechanical classification.
func (j *Joint) Type() Type {
	return j.typ
}

// Position returns the current joint position in internal units.
func (j *Joint) Position() float64 {
	return j.position
}

// Velocity returns the current joint velocity in internal units per second.
func (j *Joint) Velocity() float64 {
	return j.velocity
}

// Limits returns the position limits and whether any are configured.
func (j *Joint) Limits() (min, max float64, ok bool) {
	return j.limitMin, j.limitMax, j.hasLimits
}

// SetPosition sets the joint position in internal units, clamping to the
// configured limits.
func (j *Joint) SetPosition(pos float64) {
	j.position = j.clamp(pos)
}

// SetPositionDeg sets a revolute joint position from degrees. For prismatic
// joints the value is interpreted as length units unchanged.
func (j *Joint) SetPositionDeg(pos float64) {
	if j.typ == Revolute {
		pos *= math.Pi / 180
	}
	j.SetPosition(pos)
}

// SetVelocity sets the joint velocity in internal units per second.
func (j *Joint) SetVelocity(vel float64) {
	j.velocity = vel
}

// SetVelocityDeg sets a revolute joint velocity from degrees per second. For
// prismatic joints the value is interpreted as length units per second.
func (j *Joint) SetVelocityDeg(vel float64) {
	if j.typ == Revolute {
		vel *= math.Pi / 180
	}
	j.velocity = vel
}

func (j *Joint) clamp(pos float64) float64 {
	if !j.hasLimits {
		return pos
	}
	if pos < j.limitMin {
		return j.limitMin
	}
	if pos > j.limitMax {
		return j.limitMax
	}
	return pos
}

// String returns a human-readable description of the joint state.
func (j *Joint) String() string {
	var desc string
	switch j.typ {
	case Revolute:
		desc = fmt.Sprintf("revolute pos=%.3frad (%.2fdeg) vel=%.3frad/s",
			j.position, j.position*180/math.Pi, j.velocity)
	default:
		desc = fmt.Sprintf("prismatic pos=%.4f vel=%.4f/s", j.position, j.velocity)
	}
	if j.hasLimits {
		desc += fmt.Sprintf(" limits=[%.3f, %.3f]", j.limitMin, j.limitMax)
	}
	return desc
}
