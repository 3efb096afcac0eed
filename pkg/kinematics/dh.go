// Denavit-Hartenberg rows, tables and chain composition
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"armctl-go/pkg/errors"
	"armctl-go/pkg/joint"
)

// FrameType classifies a DH row.
type FrameType int

const (
	// FrameFixed rows carry constant parameters only (e.g. an end-effector
	// offset); they contribute no Jacobian column.
	FrameFixed FrameType = iota
	// FrameRevolute rows add the referenced joint's position to theta.
	FrameRevolute
	// FramePrismatic rows add the referenced joint's position to d.
	FramePrismatic
)

// String returns the frame type name.
func (t FrameType) String() string {
	switch t {
	case FrameFixed:
		return "fixed"
	case FrameRevolute:
		return "revolute"
	case FramePrismatic:
		return "prismatic"
	default:
		return "unknown"
	}
}

// DHRow holds the Denavit-Hartenberg parameters of one frame.
//
// Parameters are immutable after construction. Only the effective transform
// changes per evaluation, derived from the referenced joint's current state;
// exactly one of {theta, d} carries the joint variable, depending on the
// joint type.
type DHRow struct {
	a     float64
	alpha float64 // radians
	d     float64
	theta float64 // radians

	frameType  FrameType
	jointIndex int // -1 for fixed frames
}

// NewFixedRow creates a fixed frame row. Angles are degrees, matching the
// usual DH table notation.
func NewFixedRow(a, alphaDeg, d, thetaDeg float64) DHRow {
	return DHRow{
		a:          a,
		alpha:      alphaDeg * math.Pi / 180,
		d:          d,
		theta:      thetaDeg * math.Pi / 180,
		frameType:  FrameFixed,
		jointIndex: -1,
	}
}

// NewJointRow creates a joint-bearing row referencing joints[jointIndex].
// Angles are degrees.
func NewJointRow(a, alphaDeg, d, thetaDeg float64, t FrameType, jointIndex int) DHRow {
	return DHRow{
		a:          a,
		alpha:      alphaDeg * math.Pi / 180,
		d:          d,
		theta:      thetaDeg * math.Pi / 180,
		frameType:  t,
		jointIndex: jointIndex,
	}
}

// Type returns the frame classification.
func (r DHRow) Type() FrameType { return r.frameType }

// JointIndex returns the referenced joint index, or -1 for fixed frames.
func (r DHRow) JointIndex() int { return r.jointIndex }

// Transform computes the row's homogeneous transform for the current joint
// state, decomposed as Translate(a,0,0) * RotX(alpha) * Translate(0,0,d) *
// RotZ(theta). Fixed rows use the stored constants unmodified.
func (r DHRow) Transform(joints []joint.Joint) mgl64.Mat4 {
	d, theta := r.d, r.theta
	if r.frameType != FrameFixed {
		// An out-of-range index is a construction bug, not runtime input.
		j := &joints[r.jointIndex]
		switch j.Type() {
		case joint.Revolute:
			theta += j.Position()
		case joint.Prismatic:
			d += j.Position()
		}
	}
	return mgl64.Translate3D(r.a, 0, 0).
		Mul4(mgl64.HomogRotate3DX(r.alpha)).
		Mul4(mgl64.Translate3D(0, 0, d)).
		Mul4(mgl64.HomogRotate3DZ(theta))
}

// String returns a human-readable description of the row.
func (r DHRow) String() string {
	kind := r.frameType.String()
	if r.frameType != FrameFixed {
		kind = fmt.Sprintf("%s joint %d", kind, r.jointIndex)
	}
	return fmt.Sprintf("%s | a=%.2f alpha=%.2fdeg d=%.2f theta=%.2fdeg",
		kind, r.a, r.alpha*180/math.Pi, r.d, r.theta*180/math.Pi)
}

// DHTable is an ordered kinematic chain of DH frames, evaluated in row order
// from base to tip. A table with F rows describes a chain with exactly
// numJoints movable joints (F >= numJoints; extra rows are fixed frames).
type DHTable struct {
	rows      []DHRow
	numJoints int
}

// NewDHTable validates and builds a chain. The chain must contain at least
// one frame, and every joint-bearing row must reference a joint index in
// [0, numJoints).
func NewDHTable(rows []DHRow, numJoints int) (*DHTable, error) {
	if len(rows) == 0 {
		return nil, errors.ConfigChainError("chain must contain at least one frame")
	}
	if numJoints <= 0 {
		return nil, errors.ConfigChainError(fmt.Sprintf("chain must have at least one joint, got %d", numJoints))
	}
	if numJoints > len(rows) {
		return nil, errors.ConfigChainError(
			fmt.Sprintf("chain has %d joints but only %d frames", numJoints, len(rows)))
	}
	for i, r := range rows {
		if r.frameType == FrameFixed {
			continue
		}
		if r.jointIndex < 0 || r.jointIndex >= numJoints {
			return nil, errors.ConfigChainError(
				fmt.Sprintf("row %d references joint %d, want [0, %d)", i, r.jointIndex, numJoints))
		}
	}
	return &DHTable{rows: rows, numJoints: numJoints}, nil
}

// NumFrames returns the number of frames F in the chain.
func (t *DHTable) NumFrames() int { return len(t.rows) }

// NumJoints returns the number of movable joints J.
func (t *DHTable) NumJoints() int { return t.numJoints }

// Rows returns the chain's rows in base-to-tip order.
func (t *DHTable) Rows() []DHRow { return t.rows }

// checkJoints asserts the joint slice matches the chain. A mismatch here is
// an internal wiring bug; the Arm validates external input lengths.
func (t *DHTable) checkJoints(joints []joint.Joint) {
	if len(joints) != t.numJoints {
		panic(fmt.Sprintf("kinematics: joint state length %d does not match chain joint count %d",
			len(joints), t.numJoints))
	}
}

// Transform computes the homogeneous transform over the row range [j, i) by
// multiplying each row's transform in chain order. Panics on an invalid
// range: indices are internal invariants, not external input.
func (t *DHTable) Transform(j, i int, joints []joint.Joint) mgl64.Mat4 {
	t.checkJoints(joints)
	if j < 0 || j >= i || i > len(t.rows) {
		panic(fmt.Sprintf("kinematics: invalid frame range: require 0 <= j < i <= %d, got j=%d, i=%d",
			len(t.rows), j, i))
	}
	m := mgl64.Ident4()
	for f := j; f < i; f++ {
		m = m.Mul4(t.rows[f].Transform(joints))
	}
	return m
}

// PoseBetween returns the pose of frame i-1 relative to frame j-1 (exclusive
// upper index convention, matching Transform).
func (t *DHTable) PoseBetween(j, i int, joints []joint.Joint) Pose {
	return PoseFromHomogeneous(t.Transform(j, i, joints))
}

// FramePose returns the pose of frame i relative to the base.
func (t *DHTable) FramePose(i int, joints []joint.Joint) Pose {
	return t.PoseBetween(0, i+1, joints)
}

// EndEffectorPose returns the pose of the last frame relative to the base.
func (t *DHTable) EndEffectorPose(joints []joint.Joint) Pose {
	return t.FramePose(len(t.rows)-1, joints)
}

// AllPoses returns the pose of every frame relative to the base, computed
// with a single cumulative product (O(F) matrix multiplies).
func (t *DHTable) AllPoses(joints []joint.Joint) []Pose {
	t.checkJoints(joints)
	poses := make([]Pose, len(t.rows))
	m := mgl64.Ident4()
	for i := range t.rows {
		m = m.Mul4(t.rows[i].Transform(joints))
		poses[i] = PoseFromHomogeneous(m)
	}
	return poses
}

// Describe returns a human-readable dump of the chain and the current joint
// values, one row per frame.
func (t *DHTable) Describe(joints []joint.Joint) string {
	var sb strings.Builder
	sb.WriteString("================ DH TABLE ================\n")
	for i, r := range t.rows {
		fmt.Fprintf(&sb, "frame %d: %s", i, r.String())
		if r.frameType != FrameFixed {
			fmt.Fprintf(&sb, " | %s", joints[r.jointIndex].String())
		}
		sb.WriteString("\n")
	}
	sb.WriteString("==========================================")
	return sb.String()
}
