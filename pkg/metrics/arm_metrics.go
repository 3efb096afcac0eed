// Arm-specific metrics definitions
//
// Defines all metrics for the armctl host: control-loop counters, task-space
// error gauges, IK solver failures and numerical-degeneracy events.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	goruntime "runtime"
	"time"
)

// ArmMetrics holds all armctl-specific metrics
type ArmMetrics struct {
	// Control loop
	ControlCycles    *Counter
	ModeTransitions  *Counter
	OrthonormEvents  *Counter
	LoopDuration     *Histogram
	PositionError    *Gauge
	OrientationError *Gauge
	HoldingMode      *Gauge

	// Kinematics
	JointPosition  *Gauge
	JointVelocity  *Gauge
	ToolPosition   *Gauge
	DegeneratePinv *Counter

	// IK solver
	IKSolves   *Counter
	IKFailures *Counter

	// System
	GoGoroutines *Gauge
	GoMemoryHeap *Gauge

	startTime time.Time
	registry  *Registry
}

// NewArmMetrics creates and registers all armctl metrics
func NewArmMetrics() *ArmMetrics {
	am := &ArmMetrics{
		startTime: time.Now(),
		registry:  NewRegistry(),
	}

	am.ControlCycles = NewCounter("armctl_control_cycles_total",
		"Total controller cycles by mode")
	am.ModeTransitions = NewCounter("armctl_mode_transitions_total",
		"Total hold/track mode transitions")
	am.OrthonormEvents = NewCounter("armctl_orthonorm_events_total",
		"Total reference rotation re-orthonormalizations")
	am.LoopDuration = NewHistogram("armctl_loop_duration_seconds",
		"Control loop cycle duration", DefaultBuckets())
	am.PositionError = NewGauge("armctl_position_error",
		"Task-space position error norm")
	am.OrientationError = NewGauge("armctl_orientation_error",
		"Task-space orientation error norm")
	am.HoldingMode = NewGauge("armctl_holding",
		"Controller mode (1=holding, 0=tracking)")

	am.JointPosition = NewGauge("armctl_joint_position",
		"Joint position in internal units")
	am.JointVelocity = NewGauge("armctl_joint_velocity",
		"Joint velocity in internal units per second")
	am.ToolPosition = NewGauge("armctl_tool_position",
		"End-effector position per axis")
	am.DegeneratePinv = NewCounter("armctl_degenerate_pinv_total",
		"Pseudo-inverse computations that fell back to zero motion")

	am.IKSolves = NewCounter("armctl_ik_solves_total",
		"Total successful IK solves")
	am.IKFailures = NewCounter("armctl_ik_failures_total",
		"Total IK failures by error code")

	am.GoGoroutines = NewGauge("armctl_go_goroutines",
		"Number of active goroutines")
	am.GoMemoryHeap = NewGauge("armctl_go_memory_heap_bytes",
		"Go heap memory in use")

	for _, m := range []Metric{
		am.ControlCycles, am.ModeTransitions, am.OrthonormEvents, am.LoopDuration,
		am.PositionError, am.OrientationError, am.HoldingMode,
		am.JointPosition, am.JointVelocity, am.ToolPosition,
		am.DegeneratePinv,
		am.IKSolves, am.IKFailures,
		am.GoGoroutines, am.GoMemoryHeap,
	} {
		am.registry.MustRegister(m)
	}
	return am
}

// RecordCycle records one controller cycle in the given mode
func (am *ArmMetrics) RecordCycle(holding bool) {
	mode := "tracking"
	holdingVal := 0.0
	if holding {
		mode = "holding"
		holdingVal = 1
	}
	am.ControlCycles.Inc(Labels{"mode": mode})
	am.HoldingMode.Set(nil, holdingVal)
}

// RecordErrors records the current task-space error norms
func (am *ArmMetrics) RecordErrors(position, orientation float64) {
	am.PositionError.Set(nil, position)
	am.OrientationError.Set(nil, orientation)
}

// RecordIKResult records an IK solve outcome. code is empty on success.
func (am *ArmMetrics) RecordIKResult(code string) {
	if code == "" {
		am.IKSolves.Inc(nil)
		return
	}
	am.IKFailures.Inc(Labels{"code": code})
}

// SetJointState updates per-joint position and velocity gauges
func (am *ArmMetrics) SetJointState(index int, position, velocity float64) {
	label := Labels{"joint": fmt.Sprintf("j%d", index)}
	am.JointPosition.Set(label, position)
	am.JointVelocity.Set(label, velocity)
}

// SetToolPosition updates the end-effector position gauges
func (am *ArmMetrics) SetToolPosition(x, y, z float64) {
	am.ToolPosition.Set(Labels{"axis": "x"}, x)
	am.ToolPosition.Set(Labels{"axis": "y"}, y)
	am.ToolPosition.Set(Labels{"axis": "z"}, z)
}

// UpdateSystemMetrics updates Go runtime metrics
func (am *ArmMetrics) UpdateSystemMetrics() {
	var m goruntime.MemStats
	goruntime.ReadMemStats(&m)
	am.GoGoroutines.Set(nil, float64(goruntime.NumGoroutine()))
	am.GoMemoryHeap.Set(nil, float64(m.HeapAlloc))
}

// Gather returns all metrics in Prometheus text format
func (am *ArmMetrics) Gather() string {
	am.UpdateSystemMetrics()
	return am.registry.Gather()
}

// Registry returns the internal registry
func (am *ArmMetrics) Registry() *Registry {
	return am.registry
}
