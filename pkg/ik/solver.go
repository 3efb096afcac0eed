// Closed-form inverse kinematics for the 6R spherical-wrist arm
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package ik provides inverse-kinematics solvers for serial manipulators.
package ik

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"armctl-go/pkg/errors"
)

// Solver is the interface all inverse-kinematics solvers implement.
//
// SolveIK computes joint angles (radians) reaching the target position
// (x, y, z) with orientation r. The number and meaning of the link-length
// parameters is solver-specific; a wrong count is a configuration error
// raised before any computation.
type Solver interface {
	SolveIK(x, y, z float64, r mgl64.Mat3, linkLengths []float64) ([]float64, error)

	// Name returns the solver's registry name.
	Name() string
}

// SphericalWristSolver is the closed-form solver for a 6R arm with a
// spherical wrist. It requires exactly 5 link parameters:
//
//	l1  base height (shoulder z offset)
//	l2  upper-arm length
//	l3  forearm length
//	l4  wrist-to-flange offset (along the wrist roll axis)
//	l5  flange-to-tool offset (along the approach axis)
//
// Joint zero is the posture with the upper arm horizontal, the forearm and
// flange offset vertical, and the tool offset horizontal: the tool sits at
// height l1 + l3 + l5.
//
// Position and orientation decouple at the wrist center, obtained by
// stripping the flange and tool offsets from the target position. Only the
// positive-root branch of the elbow sine (one elbow configuration) and the
// positive-root branch of the wrist bend are returned.
type SphericalWristSolver struct{}

// Name returns the solver's registry name.
func (SphericalWristSolver) Name() string { return "spherical_wrist" }

// SolveIK solves the closed-form inverse kinematics.
//
// Error conditions: a wrist center farther than l2+l3 from the shoulder is a
// workspace error; any non-finite intermediate angle is a degenerate
// orientation error. Both are recoverable typed failures, never panics.
func (SphericalWristSolver) SolveIK(x, y, z float64, r mgl64.Mat3, linkLengths []float64) ([]float64, error) {
	if len(linkLengths) != 5 {
		return nil, errors.ConfigLengthError("spherical wrist link parameters", 5, len(linkLengths))
	}

	l1 := linkLengths[0]
	l2 := linkLengths[1]
	l3 := linkLengths[2]
	l4 := linkLengths[3]
	l5 := linkLengths[4]

	// Wrist center: strip the flange offset (rotation column 1, the wrist
	// roll axis) and the tool offset (column 2, the approach axis) from the
	// target position.
	wx := x - l4*r.At(0, 1) - l5*r.At(0, 2)
	wy := y - l4*r.At(1, 1) - l5*r.At(1, 2)
	wz := z - l4*r.At(2, 1) - l5*r.At(2, 2)

	theta1 := math.Atan2(wy, wx)

	// Planar 2R geometry in the radial/height plane of the wrist center.
	radial := math.Hypot(wx, wy)
	height := wz - l1

	cosElbow := (radial*radial + height*height - l2*l2 - l3*l3) / (2 * l2 * l3)
	if math.Abs(cosElbow) > 1 {
		return nil, errors.WorkspaceError(fmt.Sprintf("theta3 complex (cos=%.4f)", cosElbow))
	}
	sinElbow := math.Sqrt(1 - cosElbow*cosElbow)
	elbow := math.Atan2(sinElbow, cosElbow)
	shoulder := math.Atan2(height, radial) - math.Atan2(l3*sinElbow, l2+l3*cosElbow)

	// Map the planar angles back to joint values: joint zero holds the upper
	// arm horizontal and the forearm vertical, a quarter turn at the elbow.
	theta2 := -shoulder
	theta3 := math.Pi/2 - elbow

	if !isFinite(theta1) || !isFinite(theta2) || !isFinite(theta3) {
		return nil, errors.DegenerateOrientationError("base joints complex")
	}

	// Wrist rotation left over after removing the solved base and elbow
	// orientation: g = Rz(theta4) * Ry(-theta5) * Rz(theta6), a ZYZ-style
	// Euler decomposition.
	g := mgl64.Rotate3DY(-(theta2 + theta3)).
		Mul3(mgl64.Rotate3DZ(-theta1)).
		Mul3(r).
		Mul3(mgl64.Rotate3DX(-math.Pi / 2))

	sinTheta5 := math.Hypot(g.At(0, 2), g.At(1, 2))
	theta5 := math.Atan2(sinTheta5, g.At(2, 2))

	var theta4, theta6 float64
	switch {
	case sinTheta5 > 1e-9:
		theta4 = math.Atan2(-g.At(1, 2), -g.At(0, 2))
		theta6 = math.Atan2(-g.At(2, 1), g.At(2, 0))
	case g.At(2, 2) > 0:
		// Straight wrist: the roll axes align and only theta4+theta6 is
		// determined; fold the whole roll into theta6.
		theta6 = math.Atan2(g.At(1, 0), g.At(0, 0))
	default:
		// Fully folded wrist: theta4-theta6 is determined.
		theta6 = -math.Atan2(-g.At(1, 0), -g.At(0, 0))
	}

	thetas := []float64{theta1, theta2, theta3, theta4, theta5, theta6}
	for i, v := range thetas {
		if !isFinite(v) {
			return nil, errors.DegenerateOrientationError(fmt.Sprintf("joint angle %d is not finite", i+1))
		}
	}
	return thetas, nil
}

// NewFromName creates a solver by registry name.
func NewFromName(name string) (Solver, error) {
	switch name {
	case "spherical_wrist", "":
		return SphericalWristSolver{}, nil
	default:
		return nil, errors.ConfigParamError("ik.solver", fmt.Sprintf("unknown solver %q", name))
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
