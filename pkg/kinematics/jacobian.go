// Geometric Jacobian and damped pseudo-inverse
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"armctl-go/pkg/errors"
	"armctl-go/pkg/joint"
)

// DefaultDamping is the default pseudo-inverse damping factor (lambda).
const DefaultDamping = 1e-4

// Jacobian builds the 6xJ geometric Jacobian at the current joint state.
// For every joint-bearing row i, column jointIndex is
// (z_i x (p_end - p_i), z_i) for revolute joints and (z_i, 0) for prismatic
// joints, where z_i and p_i come from the cumulative pose of frame i and
// p_end from the last frame. Fixed rows contribute no column.
func (t *DHTable) Jacobian(joints []joint.Joint) *mat.Dense {
	t.checkJoints(joints)
	poses := t.AllPoses(joints)
	pEnd := poses[len(poses)-1].Position

	jac := mat.NewDense(6, t.numJoints, nil)
	for i, row := range t.rows {
		if row.frameType == FrameFixed {
			continue
		}
		pose := poses[i]
		z := pose.ZAxis()

		var linear, angular r3.Vector
		switch joints[row.jointIndex].Type() {
		case joint.Revolute:
			linear = z.Cross(pEnd.Sub(pose.Position))
			angular = z
		case joint.Prismatic:
			linear = z
		}

		col := row.jointIndex
		jac.Set(0, col, linear.X)
		jac.Set(1, col, linear.Y)
		jac.Set(2, col, linear.Z)
		jac.Set(3, col, angular.X)
		jac.Set(4, col, angular.Y)
		jac.Set(5, col, angular.Z)
	}
	return jac
}

// DampedPseudoInverse computes the damped Moore-Penrose pseudo-inverse of a
// 6xJ Jacobian. A lambda <= 0 selects DefaultDamping.
//
// The variant is chosen so that the smaller matrix is the one inverted:
//   - J >= 6 (redundant or fully actuated): right inverse
//     Jt * (J*Jt + lambda^2*I6)^-1, minimizing joint velocity norm.
//   - J < 6 (under-actuated): left inverse
//     (Jt*J + lambda^2*IJ)^-1 * Jt, minimizing task-space error norm.
//
// Damping keeps the inner matrix invertible at kinematic singularities. If
// inversion still fails (e.g. a non-finite Jacobian), the Jx6 zero matrix is
// returned together with a degeneracy warning; callers must treat an
// all-zero pseudo-inverse as "no safe motion command available".
func DampedPseudoInverse(jac *mat.Dense, lambda float64) (*mat.Dense, error) {
	rows, cols := jac.Dims()
	if rows != 6 {
		panic("kinematics: geometric Jacobian must have 6 rows")
	}
	if lambda <= 0 {
		lambda = DefaultDamping
	}
	l2 := lambda * lambda

	if !isFinite(jac) {
		return mat.NewDense(cols, 6, nil), errors.DegeneratePinvError("non-finite Jacobian")
	}

	jt := mat.DenseCopyOf(jac.T())

	if cols >= 6 {
		// Right pseudo-inverse: Jt * (J*Jt + l2*I)^-1
		var inner mat.Dense
		inner.Mul(jac, jt)
		for i := 0; i < 6; i++ {
			inner.Set(i, i, inner.At(i, i)+l2)
		}
		var inv mat.Dense
		if err := inv.Inverse(&inner); err != nil || !isFinite(&inv) {
			return mat.NewDense(cols, 6, nil), errors.DegeneratePinvError("right inverse failed")
		}
		var out mat.Dense
		out.Mul(jt, &inv)
		return &out, nil
	}

	// Left pseudo-inverse: (Jt*J + l2*I)^-1 * Jt
	var inner mat.Dense
	inner.Mul(jt, jac)
	for i := 0; i < cols; i++ {
		inner.Set(i, i, inner.At(i, i)+l2)
	}
	var inv mat.Dense
	if err := inv.Inverse(&inner); err != nil || !isFinite(&inv) {
		return mat.NewDense(cols, 6, nil), errors.DegeneratePinvError("left inverse failed")
	}
	var out mat.Dense
	out.Mul(&inv, jt)
	return &out, nil
}

// isFinite reports whether every matrix entry is finite.
func isFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
