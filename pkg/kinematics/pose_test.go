// Unit tests for pose handling
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// TestEulerZYX tests the yaw-pitch-roll composition against known rotations.
func TestEulerZYX(t *testing.T) {
	// Pure yaw of 90 degrees maps the x-axis onto the y-axis.
	r := EulerZYX(math.Pi/2, 0, 0)
	x := ColVector(r, 0)
	if x.Sub(r3.Vector{X: 0, Y: 1, Z: 0}).Norm() > 1e-12 {
		t.Errorf("yaw pi/2: x-axis = %+v, want (0,1,0)", x)
	}

	// Pure roll of 90 degrees maps the y-axis onto the z-axis.
	r = EulerZYX(0, 0, math.Pi/2)
	y := ColVector(r, 1)
	if y.Sub(r3.Vector{X: 0, Y: 0, Z: 1}).Norm() > 1e-12 {
		t.Errorf("roll pi/2: y-axis = %+v, want (0,0,1)", y)
	}

	// Any composition stays orthonormal.
	r = EulerZYX(0.7, -0.4, 1.3)
	if drift := OrthonormalityDrift(r); drift > 1e-12 {
		t.Errorf("expected orthonormal rotation, drift %v", drift)
	}
}

// TestHomogeneousRoundTrip tests Pose <-> homogeneous matrix conversion.
func TestHomogeneousRoundTrip(t *testing.T) {
	p := PoseFromComponents(1.5, -2.0, 3.25, 0.3, -0.6, 0.9)
	q := PoseFromHomogeneous(p.Homogeneous())

	if p.Position.Sub(q.Position).Norm() > 1e-12 {
		t.Errorf("position mismatch: %+v vs %+v", p.Position, q.Position)
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if math.Abs(p.Rotation.At(row, col)-q.Rotation.At(row, col)) > 1e-12 {
				t.Errorf("rotation mismatch at (%d,%d)", row, col)
			}
		}
	}

	// Bottom row of the homogeneous form stays (0,0,0,1).
	m := p.Homogeneous()
	for col := 0; col < 3; col++ {
		if m.At(3, col) != 0 {
			t.Errorf("expected 0 at (3,%d), got %v", col, m.At(3, col))
		}
	}
	if m.At(3, 3) != 1 {
		t.Errorf("expected 1 at (3,3), got %v", m.At(3, 3))
	}
}

// TestAxisAccessors tests that axis accessors return rotation columns.
func TestAxisAccessors(t *testing.T) {
	p := IdentityPose()
	if p.XAxis().Sub(r3.Vector{X: 1}).Norm() > 1e-12 ||
		p.YAxis().Sub(r3.Vector{Y: 1}).Norm() > 1e-12 ||
		p.ZAxis().Sub(r3.Vector{Z: 1}).Norm() > 1e-12 {
		t.Error("identity pose axes should be the standard basis")
	}
}

// TestOrthonormalize tests the SVD projection back onto SO(3).
func TestOrthonormalize(t *testing.T) {
	r := EulerZYX(0.4, 0.8, -0.2)

	// Perturb every entry to simulate integration drift.
	drifted := r
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			drifted.Set(row, col, drifted.At(row, col)+1e-3*float64(row-col))
		}
	}
	before := OrthonormalityDrift(drifted)
	if before < 1e-6 {
		t.Fatalf("expected measurable drift, got %v", before)
	}

	fixed := Orthonormalize(drifted)
	after := OrthonormalityDrift(fixed)
	if after > 1e-12 {
		t.Errorf("expected drift removed, got %v", after)
	}

	// The projection should stay close to the perturbed matrix.
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if math.Abs(fixed.At(row, col)-drifted.At(row, col)) > 1e-2 {
				t.Errorf("projection moved too far at (%d,%d)", row, col)
			}
		}
	}
}

// TestOrthonormalizeIdentity tests that an already-orthonormal matrix is a
// fixed point of the projection.
func TestOrthonormalizeIdentity(t *testing.T) {
	r := mgl64.Ident3()
	fixed := Orthonormalize(r)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if math.Abs(fixed.At(row, col)-r.At(row, col)) > 1e-12 {
				t.Errorf("identity not preserved at (%d,%d)", row, col)
			}
		}
	}
}
