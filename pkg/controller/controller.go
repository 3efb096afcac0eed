// Task-space PID velocity controller with hold/track modes
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package controller implements the task-space PID velocity controller with
// the hold/track reference state machine.
package controller

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"armctl-go/pkg/arm"
	"armctl-go/pkg/errors"
	"armctl-go/pkg/kinematics"
	"armctl-go/pkg/log"
	"armctl-go/pkg/metrics"
)

// AngularUnit selects the unit of the angular half of commanded task-space
// velocities.
type AngularUnit int

const (
	// Degrees interprets commanded angular velocity as degrees per second.
	Degrees AngularUnit = iota
	// Radians interprets commanded angular velocity as radians per second.
	Radians
)

// AngularFrame selects the frame the commanded angular velocity is expressed
// in.
type AngularFrame int

const (
	// WorldFrame angular velocities are applied as-is.
	WorldFrame AngularFrame = iota
	// EndEffectorFrame angular velocities are rotated into the world frame by
	// the current end-effector rotation before use.
	EndEffectorFrame
)

const (
	// DefaultOrthonormInterval is the tracking-cycle period of the reference
	// rotation re-orthonormalization.
	DefaultOrthonormInterval = 50
	// DefaultVelocityEpsilon is the commanded-speed threshold below which the
	// controller holds the last reference pose.
	DefaultVelocityEpsilon = 1e-4
)

// Config holds the controller gains and mode parameters. The six gain slots
// are (x, y, z, rx, ry, rz).
type Config struct {
	Kp [6]float64
	Ki [6]float64
	Kd [6]float64

	// OrthonormInterval is the number of tracking cycles between reference
	// rotation re-orthonormalizations. Zero selects the default.
	OrthonormInterval int

	// VelocityEpsilon is the commanded-speed threshold for the hold/track
	// transition. Zero selects the default.
	VelocityEpsilon float64

	AngularUnit  AngularUnit
	AngularFrame AngularFrame
}

// DefaultConfig returns a conservative proportional-only configuration.
func DefaultConfig() Config {
	cfg := Config{
		OrthonormInterval: DefaultOrthonormInterval,
		VelocityEpsilon:   DefaultVelocityEpsilon,
	}
	for i := range cfg.Kp {
		cfg.Kp[i] = 1
	}
	return cfg
}

// TaskSpacePID drives an arm's joint velocities from a commanded task-space
// velocity.
//
// Two modes: while the commanded speed stays below VelocityEpsilon the
// controller holds the reference pose captured at the transition; otherwise
// it integrates the reference forward by the commanded velocity and adds the
// command as feedforward. Mode transitions reset the PID state so stale
// integral windup never kicks the arm.
//
// Not safe for concurrent use; Compute is called from the single control
// loop.
type TaskSpacePID struct {
	cfg     Config
	logger  *log.Logger
	metrics *metrics.ArmMetrics

	integral   [6]float64
	prevErr    [6]float64
	hasPrevErr bool

	xRef r3.Vector
	rRef mgl64.Mat3

	holding     bool
	trackCycles int
	initialized bool
}

// New creates a controller. Gains must be finite and non-negative.
func New(cfg Config, logger *log.Logger) (*TaskSpacePID, error) {
	if logger == nil {
		logger = log.Discard()
	}
	for i := 0; i < 6; i++ {
		for _, g := range []float64{cfg.Kp[i], cfg.Ki[i], cfg.Kd[i]} {
			if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
				return nil, errors.ConfigParamError("controller gains",
					"must be finite and non-negative")
			}
		}
	}
	if cfg.OrthonormInterval < 0 {
		return nil, errors.ConfigParamError("orthonorm_interval", "must be non-negative")
	}
	if cfg.OrthonormInterval == 0 {
		cfg.OrthonormInterval = DefaultOrthonormInterval
	}
	if cfg.VelocityEpsilon < 0 {
		return nil, errors.ConfigParamError("velocity_epsilon", "must be non-negative")
	}
	if cfg.VelocityEpsilon == 0 {
		cfg.VelocityEpsilon = DefaultVelocityEpsilon
	}
	return &TaskSpacePID{
		cfg:    cfg,
		logger: logger,
		rRef:   mgl64.Ident3(),
	}, nil
}

// AttachMetrics wires a metrics sink into the controller.
func (c *TaskSpacePID) AttachMetrics(m *metrics.ArmMetrics) {
	c.metrics = m
}

// Holding reports whether the controller is in hold mode.
func (c *TaskSpacePID) Holding() bool { return c.holding }

// Reference returns the current reference pose.
func (c *TaskSpacePID) Reference() kinematics.Pose {
	return kinematics.Pose{Position: c.xRef, Rotation: c.rRef}
}

// Reset clears all controller state. The next Compute re-captures the
// reference from the arm's current pose.
func (c *TaskSpacePID) Reset() {
	c.integral = [6]float64{}
	c.prevErr = [6]float64{}
	c.hasPrevErr = false
	c.holding = false
	c.trackCycles = 0
	c.initialized = false
}

// resetPID clears the integral and derivative state on a mode transition.
func (c *TaskSpacePID) resetPID() {
	c.integral = [6]float64{}
	c.prevErr = [6]float64{}
	c.hasPrevErr = false
}

// Compute runs one controller cycle and returns the joint velocity command.
//
// taskVel is the commanded task-space velocity (vx, vy, vz, wx, wy, wz) with
// the angular half in the configured unit and frame. A degeneracy warning is
// returned alongside an all-zero command when the arm's pseudo-inverse is
// unusable; the reference state still advances.
func (c *TaskSpacePID) Compute(a *arm.Arm, taskVel []float64, dt float64) ([]float64, error) {
	if len(taskVel) != 6 {
		return nil, errors.ConfigLengthError("task-space velocity", 6, len(taskVel))
	}
	if dt <= 0 || math.IsNaN(dt) {
		return nil, errors.ConfigParamError("dt", "must be positive")
	}

	current := a.EndEffectorPose()
	if !c.initialized {
		c.xRef = current.Position
		c.rRef = current.Rotation
		c.initialized = true
	}

	v := c.convertCommand(taskVel, current.Rotation)
	linSpeed := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	angSpeed := math.Sqrt(v[3]*v[3] + v[4]*v[4] + v[5]*v[5])

	var feedforward [6]float64
	if linSpeed < c.cfg.VelocityEpsilon && angSpeed < c.cfg.VelocityEpsilon {
		if !c.holding {
			c.holding = true
			c.xRef = current.Position
			c.rRef = current.Rotation
			c.resetPID()
			c.logger.Info("entering hold mode",
				"x", c.xRef.X, "y", c.xRef.Y, "z", c.xRef.Z)
			if c.metrics != nil {
				c.metrics.ModeTransitions.Inc(metrics.Labels{"to": "holding"})
			}
		}
	} else {
		if c.holding {
			c.holding = false
			c.xRef = current.Position
			c.rRef = current.Rotation
			c.resetPID()
			c.logger.Info("entering tracking mode", "linear", linSpeed, "angular", angSpeed)
			if c.metrics != nil {
				c.metrics.ModeTransitions.Inc(metrics.Labels{"to": "tracking"})
			}
		}
		c.xRef = c.xRef.Add(r3.Vector{X: v[0], Y: v[1], Z: v[2]}.Mul(dt))
		c.rRef = integrateRotation(c.rRef, r3.Vector{X: v[3], Y: v[4], Z: v[5]}, dt)
		c.trackCycles++
		if c.trackCycles%c.cfg.OrthonormInterval == 0 {
			c.rRef = kinematics.Orthonormalize(c.rRef)
			if c.metrics != nil {
				c.metrics.OrthonormEvents.Inc(nil)
			}
		}
		feedforward = v
	}

	e := taskError(current, c.xRef, c.rRef)

	var u [6]float64
	for i := 0; i < 6; i++ {
		c.integral[i] += e[i] * dt
		deriv := 0.0
		if c.hasPrevErr {
			deriv = (e[i] - c.prevErr[i]) / dt
		}
		u[i] = feedforward[i] + c.cfg.Kp[i]*e[i] + c.cfg.Ki[i]*c.integral[i] + c.cfg.Kd[i]*deriv
	}
	c.prevErr = e
	c.hasPrevErr = true

	warn := a.Update()
	uVec := mat.NewVecDense(6, u[:])
	var qd mat.VecDense
	qd.MulVec(a.PseudoInverse(), uVec)

	out := make([]float64, a.NumJoints())
	for i := range out {
		out[i] = qd.AtVec(i)
	}

	if c.metrics != nil {
		c.metrics.RecordCycle(c.holding)
		ePos := math.Sqrt(e[0]*e[0] + e[1]*e[1] + e[2]*e[2])
		eRot := math.Sqrt(e[3]*e[3] + e[4]*e[4] + e[5]*e[5])
		c.metrics.RecordErrors(ePos, eRot)
		if warn != nil {
			c.metrics.DegeneratePinv.Inc(nil)
		}
	}
	return out, warn
}

// convertCommand internalizes the commanded velocity: angular degrees to
// radians and end-effector frame to world frame, per configuration.
func (c *TaskSpacePID) convertCommand(taskVel []float64, rCur mgl64.Mat3) [6]float64 {
	var v [6]float64
	copy(v[:], taskVel)
	if c.cfg.AngularUnit == Degrees {
		for i := 3; i < 6; i++ {
			v[i] *= math.Pi / 180
		}
	}
	if c.cfg.AngularFrame == EndEffectorFrame {
		w := mgl64.Vec3{v[3], v[4], v[5]}
		w = rCur.Mul3x1(w)
		v[3], v[4], v[5] = w.X(), w.Y(), w.Z()
	}
	return v
}

// integrateRotation advances a rotation by angular velocity w over dt using
// the small-angle update R' = (I + [w]x * dt) * R. The result drifts from
// orthonormality; callers re-project periodically.
func integrateRotation(r mgl64.Mat3, w r3.Vector, dt float64) mgl64.Mat3 {
	a := mgl64.Ident3()
	a.Set(0, 1, -w.Z*dt)
	a.Set(0, 2, w.Y*dt)
	a.Set(1, 0, w.Z*dt)
	a.Set(1, 2, -w.X*dt)
	a.Set(2, 0, -w.Y*dt)
	a.Set(2, 1, w.X*dt)
	return a.Mul3(r)
}

// taskError computes the 6-vector task-space error between the current pose
// and the reference. The orientation part is half the sum of cross products
// of matching frame axes, a small-angle approximation of the rotation error.
func taskError(current kinematics.Pose, xRef r3.Vector, rRef mgl64.Mat3) [6]float64 {
	var e [6]float64
	e[0] = xRef.X - current.Position.X
	e[1] = xRef.Y - current.Position.Y
	e[2] = xRef.Z - current.Position.Z

	var eRot r3.Vector
	for col := 0; col < 3; col++ {
		axisCur := kinematics.ColVector(current.Rotation, col)
		axisRef := kinematics.ColVector(rRef, col)
		eRot = eRot.Add(axisCur.Cross(axisRef))
	}
	eRot = eRot.Mul(0.5)
	e[3], e[4], e[5] = eRot.X, eRot.Y, eRot.Z
	return e
}
