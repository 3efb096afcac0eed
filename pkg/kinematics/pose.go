// Pose representation and Euler conversions
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package kinematics implements the Denavit-Hartenberg chain engine: frame
// transforms, pose extraction, the geometric Jacobian and its damped
// pseudo-inverse.
package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Pose is a rigid-body pose: a position and an orthonormal rotation matrix.
//
// Pose itself does not enforce orthonormality; rotations produced by chain
// composition are orthonormal by construction, and rotations integrated
// incrementally are periodically re-projected by the controller (see
// Orthonormalize).
type Pose struct {
	Position r3.Vector
	Rotation mgl64.Mat3
}

// IdentityPose returns the pose at the origin with identity rotation.
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.Ident3()}
}

// PoseFromHomogeneous extracts position and rotation from a 4x4 homogeneous
// transform.
func PoseFromHomogeneous(m mgl64.Mat4) Pose {
	return Pose{
		Position: r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)},
		Rotation: m.Mat3(),
	}
}

// Homogeneous returns the pose as a 4x4 homogeneous transform.
func (p Pose) Homogeneous() mgl64.Mat4 {
	m := p.Rotation.Mat4()
	m.Set(0, 3, p.Position.X)
	m.Set(1, 3, p.Position.Y)
	m.Set(2, 3, p.Position.Z)
	return m
}

// XAxis returns the x-axis of this frame.
func (p Pose) XAxis() r3.Vector { return ColVector(p.Rotation, 0) }

// YAxis returns the y-axis of this frame.
func (p Pose) YAxis() r3.Vector { return ColVector(p.Rotation, 1) }

// ZAxis returns the z-axis of this frame (the joint axis direction).
func (p Pose) ZAxis() r3.Vector { return ColVector(p.Rotation, 2) }

// ColVector returns column col of a rotation matrix as a vector.
func ColVector(m mgl64.Mat3, col int) r3.Vector {
	v := m.Col(col)
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// EulerZYX builds a rotation matrix from yaw (about Z), pitch (about Y) and
// roll (about X), composed as Rz * Ry * Rx. Angles are radians.
func EulerZYX(yaw, pitch, roll float64) mgl64.Mat3 {
	return mgl64.Rotate3DZ(yaw).Mul3(mgl64.Rotate3DY(pitch)).Mul3(mgl64.Rotate3DX(roll))
}

// PoseFromComponents creates a pose from a position and ZYX Euler angles.
func PoseFromComponents(x, y, z, yaw, pitch, roll float64) Pose {
	return Pose{
		Position: r3.Vector{X: x, Y: y, Z: z},
		Rotation: EulerZYX(yaw, pitch, roll),
	}
}
