// Serial manipulator model with cached differential kinematics
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package arm binds a kinematic chain, joint state and an IK solver into a
// single manipulator model with cached Jacobian and pseudo-inverse.
package arm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"armctl-go/pkg/errors"
	"armctl-go/pkg/ik"
	"armctl-go/pkg/joint"
	"armctl-go/pkg/kinematics"
	"armctl-go/pkg/log"
	"armctl-go/pkg/metrics"
)

// Arm is a serial manipulator: a DH chain, the state of its joints, and an
// optional closed-form IK solver.
//
// The geometric Jacobian and its damped pseudo-inverse are cached and only
// recomputed after a joint position change. Arm is not safe for concurrent
// use; the host drives it from a single control loop.
type Arm struct {
	table       *kinematics.DHTable
	joints      []joint.Joint
	solver      ik.Solver
	linkLengths []float64
	damping     float64
	logger      *log.Logger
	metrics     *metrics.ArmMetrics

	jacobian *mat.Dense
	pinv     *mat.Dense
	pinvWarn error
	dirty    bool
}

// New creates an arm from a validated chain and matching joint state. The
// solver and linkLengths may be nil/empty for arms used only in forward mode.
func New(table *kinematics.DHTable, joints []joint.Joint, solver ik.Solver, linkLengths []float64, logger *log.Logger) (*Arm, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if len(joints) != table.NumJoints() {
		return nil, errors.ConfigLengthError("joint state", table.NumJoints(), len(joints))
	}
	for _, row := range table.Rows() {
		if row.Type() == kinematics.FrameFixed {
			continue
		}
		jt := joints[row.JointIndex()].Type()
		if (row.Type() == kinematics.FrameRevolute) != (jt == joint.Revolute) {
			return nil, errors.ConfigChainError(
				"row " + row.String() + " does not match joint type " + jt.String())
		}
	}
	return &Arm{
		table:       table,
		joints:      joints,
		solver:      solver,
		linkLengths: linkLengths,
		damping:     kinematics.DefaultDamping,
		logger:      logger,
		dirty:       true,
	}, nil
}

// AttachMetrics wires a metrics sink into the arm. IK solve outcomes are
// recorded per error code.
func (a *Arm) AttachMetrics(m *metrics.ArmMetrics) {
	a.metrics = m
}

// NumJoints returns the number of movable joints.
func (a *Arm) NumJoints() int { return a.table.NumJoints() }

// Table returns the underlying DH chain.
func (a *Arm) Table() *kinematics.DHTable { return a.table }

// Damping returns the pseudo-inverse damping factor.
func (a *Arm) Damping() float64 { return a.damping }

// SetDamping sets the pseudo-inverse damping factor (lambda).
func (a *Arm) SetDamping(lambda float64) error {
	if lambda <= 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return errors.ConfigParamError("damping", "must be a positive finite value")
	}
	a.damping = lambda
	a.dirty = true
	return nil
}

// Joints returns a copy of the current joint state.
func (a *Arm) Joints() []joint.Joint {
	out := make([]joint.Joint, len(a.joints))
	copy(out, a.joints)
	return out
}

// JointPositions returns the joint positions in internal units.
func (a *Arm) JointPositions() []float64 {
	out := make([]float64, len(a.joints))
	for i := range a.joints {
		out[i] = a.joints[i].Position()
	}
	return out
}

// JointVelocities returns the joint velocities in internal units per second.
func (a *Arm) JointVelocities() []float64 {
	out := make([]float64, len(a.joints))
	for i := range a.joints {
		out[i] = a.joints[i].Velocity()
	}
	return out
}

// SetJointPositions sets all joint positions in internal units. Positions
// are clamped to the per-joint limits.
func (a *Arm) SetJointPositions(pos []float64) error {
	if len(pos) != len(a.joints) {
		return errors.ConfigLengthError("joint positions", len(a.joints), len(pos))
	}
	for i := range a.joints {
		a.joints[i].SetPosition(pos[i])
	}
	a.dirty = true
	return nil
}

// SetJointPositionsDeg sets all joint positions with revolute values given in
// degrees.
func (a *Arm) SetJointPositionsDeg(pos []float64) error {
	if len(pos) != len(a.joints) {
		return errors.ConfigLengthError("joint positions", len(a.joints), len(pos))
	}
	for i := range a.joints {
		a.joints[i].SetPositionDeg(pos[i])
	}
	a.dirty = true
	return nil
}

// SetJointVelocities sets all joint velocities in internal units per second.
// Velocities do not affect the chain geometry, so the cache stays valid.
func (a *Arm) SetJointVelocities(vel []float64) error {
	if len(vel) != len(a.joints) {
		return errors.ConfigLengthError("joint velocities", len(a.joints), len(vel))
	}
	for i := range a.joints {
		a.joints[i].SetVelocity(vel[i])
	}
	return nil
}

// SetJointVelocitiesDeg sets all joint velocities with revolute values given
// in degrees per second.
func (a *Arm) SetJointVelocitiesDeg(vel []float64) error {
	if len(vel) != len(a.joints) {
		return errors.ConfigLengthError("joint velocities", len(a.joints), len(vel))
	}
	for i := range a.joints {
		a.joints[i].SetVelocityDeg(vel[i])
	}
	return nil
}

// Update recomputes the Jacobian and damped pseudo-inverse if the joint
// positions changed since the last computation. A degeneracy warning is
// returned when the pseudo-inverse fell back to the all-zero matrix; the
// arm remains usable and the warning repeats until the state changes.
func (a *Arm) Update() error {
	if !a.dirty {
		return a.pinvWarn
	}
	a.jacobian = a.table.Jacobian(a.joints)
	a.pinv, a.pinvWarn = kinematics.DampedPseudoInverse(a.jacobian, a.damping)
	a.dirty = false
	if a.pinvWarn != nil {
		a.logger.Warn("pseudo-inverse degenerate, commanding zero motion", "err", a.pinvWarn)
	}
	return a.pinvWarn
}

// Jacobian returns the cached 6xJ geometric Jacobian, recomputing if needed.
func (a *Arm) Jacobian() *mat.Dense {
	a.Update()
	return a.jacobian
}

// PseudoInverse returns the cached Jx6 damped pseudo-inverse, recomputing if
// needed. At a degenerate state this is the all-zero matrix.
func (a *Arm) PseudoInverse() *mat.Dense {
	a.Update()
	return a.pinv
}

// EndEffectorPose returns the pose of the tool frame relative to the base.
func (a *Arm) EndEffectorPose() kinematics.Pose {
	return a.table.EndEffectorPose(a.joints)
}

// FramePose returns the pose of chain frame i relative to the base.
func (a *Arm) FramePose(i int) kinematics.Pose {
	return a.table.FramePose(i, a.joints)
}

// AllPoses returns every frame pose relative to the base.
func (a *Arm) AllPoses() []kinematics.Pose {
	return a.table.AllPoses(a.joints)
}

// SolveIK computes joint angles reaching the given position and ZYX Euler
// orientation (radians). The arm state is not modified; apply the result
// with SetJointPositions if desired.
func (a *Arm) SolveIK(x, y, z, yaw, pitch, roll float64) ([]float64, error) {
	return a.SolveIKFromPose(kinematics.PoseFromComponents(x, y, z, yaw, pitch, roll))
}

// SolveIKFromPose computes joint angles reaching the given pose.
func (a *Arm) SolveIKFromPose(p kinematics.Pose) ([]float64, error) {
	if a.solver == nil {
		return nil, errors.RuntimeError("no IK solver configured")
	}
	angles, err := a.solver.SolveIK(p.Position.X, p.Position.Y, p.Position.Z, p.Rotation, a.linkLengths)
	if a.metrics != nil {
		a.metrics.RecordIKResult(string(errors.CodeOf(err)))
	}
	if err != nil {
		a.logger.Debug("IK solve failed", "err", err)
	}
	return angles, err
}

// Step applies a 6-vector task-space velocity (vx, vy, vz, wx, wy, wz) for
// one time step: joint velocities become pinv * v and positions integrate by
// Euler. At a degenerate state the joints are commanded to zero velocity and
// the degeneracy warning is returned.
func (a *Arm) Step(taskVel []float64, dt float64) error {
	if len(taskVel) != 6 {
		return errors.ConfigLengthError("task-space velocity", 6, len(taskVel))
	}
	if dt <= 0 || math.IsNaN(dt) {
		return errors.ConfigParamError("dt", "must be positive")
	}
	warn := a.Update()

	v := mat.NewVecDense(6, taskVel)
	var qd mat.VecDense
	qd.MulVec(a.pinv, v)

	for i := range a.joints {
		a.joints[i].SetVelocity(qd.AtVec(i))
		a.joints[i].SetPosition(a.joints[i].Position() + qd.AtVec(i)*dt)
	}
	a.dirty = true
	return warn
}

// Describe returns a human-readable dump of the chain and joint state.
func (a *Arm) Describe() string {
	return a.table.Describe(a.joints)
}
