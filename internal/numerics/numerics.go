// Package numerics provides the small set of matrix helpers the task
// engine and solver driver need: a Moore-Penrose pseudoinverse and a
// damped-least-squares (DLS) inverse, both SVD-based.
//
// These mirror the templated pinv/dls helpers in the original
// reference implementation's hiqp_utils.h, which built on Eigen's
// JacobiSVD; here they build on gonum's SVD.
package numerics

import "gonum.org/v1/gonum/mat"

// Pinv returns the Moore-Penrose pseudoinverse of a via SVD, zeroing
// singular values below a tolerance relative to the largest one.
func Pinv(a mat.Matrix) *mat.Dense {
	var svd mat.SVD
	ok := svd.Factorize(a, mat.SVDThin)
	if !ok {
		r, c := a.Dims()
		return mat.NewDense(c, r, nil)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	r, c := a.Dims()
	tol := epsilon(sv) * float64(maxInt(r, c)) * maxAbs(sv)

	k := minInt(r, c)
	sInv := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		if sv[i] > tol {
			sInv.Set(i, i, 1/sv[i])
		}
	}

	var vs mat.Dense
	vs.Mul(&v, sInv)
	var out mat.Dense
	out.Mul(&vs, u.T())
	return &out
}

// DLS returns the damped-least-squares inverse of a:
//
//	a square          -> Pinv(a)
//	a wide (r < c)    -> pinv([a; eta*I_c]) * [I_r; 0]
//	a tall (r > c)    -> a itself is already left-invertible; callers
//	                     should use Pinv directly (no damping needed).
//
// This follows the original's dls<Derived>(a, eta) template, which
// only damps the underdetermined (wide) case and falls back to a
// plain pseudoinverse otherwise.
func DLS(a mat.Matrix, eta float64) *mat.Dense {
	r, c := a.Dims()
	if r >= c {
		return Pinv(a)
	}

	aExt := mat.NewDense(r+c, c, nil)
	aExt.Slice(0, r, 0, c).(*mat.Dense).Copy(a)
	damp := aExt.Slice(r, r+c, 0, c).(*mat.Dense)
	for i := 0; i < c; i++ {
		damp.Set(i, i, eta)
	}

	pinvExt := Pinv(aExt)
	// pinvExt is c x (r+c); take its first r columns.
	out := mat.NewDense(c, r, nil)
	out.Copy(pinvExt.Slice(0, c, 0, r))
	return out
}

// NullSpaceProjector returns I - Pinv(a)*a, the projector onto the
// null space of a (n x n, n = a's column count).
func NullSpaceProjector(a mat.Matrix) *mat.Dense {
	_, c := a.Dims()
	pa := Pinv(a)
	var paa mat.Dense
	paa.Mul(pa, a)
	out := mat.NewDense(c, c, nil)
	for i := 0; i < c; i++ {
		out.Set(i, i, 1)
	}
	out.Sub(out, &paa)
	return out
}

func epsilon(sv []float64) float64 {
	return 2.220446049250313e-16
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if x < 0 {
			x = -x
		}
		if x > m {
			m = x
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
