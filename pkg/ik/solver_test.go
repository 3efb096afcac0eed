// Unit tests for the closed-form IK solver
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package ik

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"armctl-go/pkg/errors"
	"armctl-go/pkg/joint"
	"armctl-go/pkg/kinematics"
)

// sixAxisChain builds the 6R spherical-wrist test arm matching link
// parameters [9, 34, 32, 15, 15].
func sixAxisChain(t *testing.T) (*kinematics.DHTable, []joint.Joint) {
	t.Helper()
	rows := []kinematics.DHRow{
		kinematics.NewJointRow(0, 0, 9, 0, kinematics.FrameRevolute, 0),
		kinematics.NewJointRow(0, -90, 0, 0, kinematics.FrameRevolute, 1),
		kinematics.NewJointRow(34, 0, 0, 0, kinematics.FrameRevolute, 2),
		kinematics.NewJointRow(0, 90, 32, 0, kinematics.FrameRevolute, 3),
		kinematics.NewJointRow(0, 90, 0, 0, kinematics.FrameRevolute, 4),
		kinematics.NewJointRow(0, -90, 15, 0, kinematics.FrameRevolute, 5),
		kinematics.NewFixedRow(0, 90, 15, 0),
	}
	table, err := kinematics.NewDHTable(rows, 6)
	if err != nil {
		t.Fatalf("NewDHTable: %v", err)
	}
	joints := make([]joint.Joint, 6)
	for i := range joints {
		joints[i] = joint.New(joint.Revolute)
	}
	return table, joints
}

var testLinkLengths = []float64{9, 34, 32, 15, 15}

// TestSolveRoundTrip tests that the solved joint angles reproduce the
// forward-kinematics target pose. The solver commits to one elbow branch, so
// the angles themselves may differ from the seed; the resulting pose must not.
func TestSolveRoundTrip(t *testing.T) {
	table, joints := sixAxisChain(t)
	solver := SphericalWristSolver{}

	seeds := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{0.3, -0.4, 0.5, 0.2, 0.4, -0.3},
		{-0.6, 0.3, 0.8, -0.5, 0.7, 0.9},
		{1.1, -0.2, 0.4, 0.6, 0.5, -1.2},
		// Straight wrist: theta5 = 0 leaves only the combined roll
		// theta4+theta6 observable in the pose.
		{0.4, -0.3, 0.2, 0.7, 0, 0.3},
	}

	for si, seed := range seeds {
		for i := range joints {
			joints[i].SetPosition(seed[i])
		}
		target := table.EndEffectorPose(joints)

		angles, err := solver.SolveIK(target.Position.X, target.Position.Y, target.Position.Z,
			target.Rotation, testLinkLengths)
		if err != nil {
			t.Fatalf("seed %d: SolveIK: %v", si, err)
		}
		if len(angles) != 6 {
			t.Fatalf("seed %d: expected 6 angles, got %d", si, len(angles))
		}

		for i := range joints {
			joints[i].SetPosition(angles[i])
		}
		got := table.EndEffectorPose(joints)

		if got.Position.Sub(target.Position).Norm() > 1e-6 {
			t.Errorf("seed %d: position mismatch: got %+v want %+v", si, got.Position, target.Position)
		}
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				if math.Abs(got.Rotation.At(row, col)-target.Rotation.At(row, col)) > 1e-6 {
					t.Errorf("seed %d: rotation mismatch at (%d,%d): %v vs %v",
						si, row, col, got.Rotation.At(row, col), target.Rotation.At(row, col))
				}
			}
		}
	}
}

// TestSolveOutOfWorkspace tests rejection of targets beyond the arm's reach.
func TestSolveOutOfWorkspace(t *testing.T) {
	solver := SphericalWristSolver{}
	_, err := solver.SolveIK(500, 0, 0, mgl64.Ident3(), testLinkLengths)
	if err == nil {
		t.Fatal("expected workspace error, got nil")
	}
	if !errors.IsWorkspace(err) {
		t.Errorf("expected workspace error, got %v", err)
	}
}

// TestSolveLinkLengthCount tests the parameter-count validation.
func TestSolveLinkLengthCount(t *testing.T) {
	solver := SphericalWristSolver{}
	for _, n := range []int{0, 4, 6} {
		_, err := solver.SolveIK(10, 0, 40, mgl64.Ident3(), make([]float64, n))
		if err == nil {
			t.Fatalf("%d link lengths: expected error, got nil", n)
		}
		if !errors.IsConfig(err) {
			t.Errorf("%d link lengths: expected configuration error, got %v", n, err)
		}
	}
}

// TestNewFromName tests solver registry lookup.
func TestNewFromName(t *testing.T) {
	s, err := NewFromName("spherical_wrist")
	if err != nil {
		t.Fatalf("NewFromName: %v", err)
	}
	if s.Name() != "spherical_wrist" {
		t.Errorf("unexpected name %q", s.Name())
	}

	if _, err := NewFromName("elbow_up_9000"); err == nil || !errors.IsConfig(err) {
		t.Errorf("expected configuration error for unknown solver, got %v", err)
	}
}
