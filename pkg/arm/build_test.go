// Unit tests for config-driven arm construction
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package arm

import (
	"math"
	"testing"

	"armctl-go/pkg/config"
	"armctl-go/pkg/log"
)

const testYAML = `
arm:
  rows:
    - {a: 0, alpha_deg: 0, d: 9, theta_deg: 0, type: revolute, joint: 0}
    - {a: 0, alpha_deg: -90, d: 0, theta_deg: 0, type: revolute, joint: 1}
    - {a: 34, alpha_deg: 0, d: 0, theta_deg: 0, type: revolute, joint: 2}
    - {a: 0, alpha_deg: 90, d: 32, theta_deg: 0, type: revolute, joint: 3}
    - {a: 0, alpha_deg: 90, d: 0, theta_deg: 0, type: revolute, joint: 4}
    - {a: 0, alpha_deg: -90, d: 15, theta_deg: 0, type: revolute, joint: 5}
    - {a: 0, alpha_deg: 90, d: 15, theta_deg: 0, type: fixed}
  joints:
    - {type: revolute, min_deg: -180, max_deg: 180}
    - {type: revolute}
    - {type: revolute}
    - {type: revolute}
    - {type: revolute}
    - {type: revolute}
ik:
  solver: spherical_wrist
  link_lengths: [9, 34, 32, 15, 15]
`

// TestNewFromConfig tests the full config-to-arm build path.
func TestNewFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(testYAML))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	a, err := NewFromConfig(cfg, log.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if a.NumJoints() != 6 {
		t.Fatalf("expected 6 joints, got %d", a.NumJoints())
	}

	// Zero configuration of the reference geometry.
	pose := a.EndEffectorPose()
	if math.Abs(pose.Position.Z-56) > 1e-9 {
		t.Errorf("expected end-effector z=56, got %v", pose.Position.Z)
	}

	// The configured limits clamp joint 0 to [-180, 180] degrees.
	if err := a.SetJointPositionsDeg([]float64{270, 0, 0, 0, 0, 0}); err != nil {
		t.Fatalf("SetJointPositionsDeg: %v", err)
	}
	if got := a.JointPositions()[0]; math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("expected joint 0 clamped to pi, got %v", got)
	}

	// The configured solver round-trips a reachable pose.
	if err := a.SetJointPositions([]float64{0.3, -0.4, 0.5, 0.2, 0.4, -0.3}); err != nil {
		t.Fatalf("SetJointPositions: %v", err)
	}
	target := a.EndEffectorPose()
	angles, err := a.SolveIKFromPose(target)
	if err != nil {
		t.Fatalf("SolveIKFromPose: %v", err)
	}
	if err := a.SetJointPositions(angles); err != nil {
		t.Fatalf("SetJointPositions: %v", err)
	}
	if a.EndEffectorPose().Position.Sub(target.Position).Norm() > 1e-6 {
		t.Error("config-built arm failed the IK round trip")
	}
}
