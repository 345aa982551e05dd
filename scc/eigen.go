/*
 * eigen.go, part of goDFTB.
 *
 * Copyright 2023 Diego Martinez
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package scc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//Status codes reported by DenseEigensolver. Zero means success, anything else is
//handed to the driver unchanged and becomes a NumericalError.
const (
	diagOK         = 0
	diagFailed     = 1
	diagBadOverlap = 2
)

// DenseEigensolver solves the generalized symmetric eigenproblem by Loewdin
// orthogonalization: H' = X H X with X = S^(-1/2), then a dense symmetric
// eigendecomposition of H', and back-transformation of the vectors. The
// transformation matrix is cached and reused while the overlap stays the same,
// since the overlap does not change during an SCC run.
type DenseEigensolver struct {
	sInvSqrt *mat.Dense
	cachedS  *mat.SymDense
}

//loewdinX returns S^(-1/2) from the eigendecomposition of the overlap:
//S = U diag(s) U^T gives S^(-1/2) = U diag(1/sqrt(s)) U^T. Fails on a
//non-positive eigenvalue, which means the basis is linearly dependent.
func loewdinX(overlap *mat.SymDense) (*mat.Dense, bool) {
	n := overlap.SymmetricDim()
	var eigsym mat.EigenSym
	if ok := eigsym.Factorize(overlap, true); !ok {
		return nil, false
	}
	vals := eigsym.Values(nil)
	var ev mat.Dense
	eigsym.VectorsTo(&ev)
	for i, v := range vals {
		if v <= 0 {
			return nil, false
		}
		vals[i] = 1.0 / math.Sqrt(v)
	}
	x := mat.NewDense(n, n, nil)
	x.Mul(&ev, mat.NewDiagDense(n, vals))
	x.Mul(x, ev.T())
	return x, true
}

// Diagonalize returns the ascending eigenvalues and eigenvectors of
// H c = e S c. Status diagBadOverlap flags a non-positive-definite overlap,
// diagFailed a failed eigendecomposition of the transformed Hamiltonian.
func (D *DenseEigensolver) Diagonalize(ham, overlap *mat.SymDense) ([]float64, *mat.Dense, int) {
	n := ham.SymmetricDim()
	if D.sInvSqrt == nil || D.cachedS != overlap {
		x, ok := loewdinX(overlap)
		if !ok {
			return nil, nil, diagBadOverlap
		}
		D.sInvSqrt = x
		D.cachedS = overlap
	}
	var hp mat.Dense
	hp.Mul(D.sInvSqrt, ham)
	hp.Mul(&hp, D.sInvSqrt)
	//hp is symmetric up to roundoff; symmetrize explicitly so NewSymDense sees
	//consistent triangles.
	hpSym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			hpSym.SetSym(i, j, 0.5*(hp.At(i, j)+hp.At(j, i)))
		}
	}
	var eigsym mat.EigenSym
	if ok := eigsym.Factorize(hpSym, true); !ok {
		return nil, nil, diagFailed
	}
	evals := eigsym.Values(nil)
	var ev mat.Dense
	eigsym.VectorsTo(&ev)
	evecs := mat.NewDense(n, n, nil)
	evecs.Mul(D.sInvSqrt, &ev)
	return evals, evecs, diagOK
}
