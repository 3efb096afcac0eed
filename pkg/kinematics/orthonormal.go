// SVD re-orthonormalization of rotation matrices
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Orthonormalize projects a rotation matrix back onto the orthonormal group
// via the SVD projection R = U*Vt. Incremental small-angle integration
// accumulates drift away from orthonormality; the controller applies this
// projection periodically to counter it.
func Orthonormalize(r mgl64.Mat3) mgl64.Mat3 {
	dense := mat.NewDense(3, 3, nil)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			dense.Set(row, col, r.At(row, col))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(dense, mat.SVDThin) {
		// Factorization only fails on non-finite input; leave the caller's
		// matrix untouched in that case.
		return r
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var proj mat.Dense
	proj.Mul(&u, v.T())

	out := mgl64.Ident3()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out.Set(row, col, proj.At(row, col))
		}
	}
	return out
}

// OrthonormalityDrift returns the Frobenius norm of Rt*R - I, a measure of
// how far a matrix has drifted from orthonormality.
func OrthonormalityDrift(r mgl64.Mat3) float64 {
	rtr := r.Transpose().Mul3(r)
	sum := 0.0
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			v := rtr.At(row, col)
			if row == col {
				v -= 1
			}
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}
