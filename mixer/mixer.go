/*
 * mixer.go, part of goDFTB.
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

/*Package mixer implements charge-mixing schemes accelerating the SCC fixed-point
iteration. All mixers work on the compressed (one value per equivalence class)
representation handed over by the scc driver, keep their history across Mix calls,
and drop it on Reset. Given the same call sequence they are deterministic.*/
package mixer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Error is the concrete dftb.Error of this package. All mixing errors are critical.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string { return err.message }

// Critical returns true.
func (err Error) Critical() bool { return true }

// Decorate adds the dec string to the decoration slice of the error and returns
// the resulting slice. An empty dec is not added.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Linear is simple fractional charge mixing: next = trial + a*residual. Slow but
// unconditionally well-behaved, and the fallback step of the Anderson mixer.
type Linear struct {
	a float64
	n int
}

// NewLinear returns a Linear mixer with mixing fraction a, which must lie in
// (0, 1].
func NewLinear(a float64) (*Linear, error) {
	if a <= 0 || a > 1 {
		return nil, Error{fmt.Sprintf("Mixing fraction %g out of (0,1]", a), []string{"NewLinear"}}
	}
	return &Linear{a: a}, nil
}

// Reset prepares the mixer for vectors of length n. Linear keeps no history.
func (M *Linear) Reset(n int) { M.n = n }

// Mix returns trial + a*residual.
func (M *Linear) Mix(trial, residual []float64) ([]float64, error) {
	if len(trial) != M.n || len(residual) != M.n {
		return nil, Error{fmt.Sprintf("Got vectors of lengths %d and %d, reset for %d", len(trial), len(residual), M.n), []string{"Linear.Mix"}}
	}
	next := make([]float64, M.n)
	copy(next, trial)
	floats.AddScaled(next, M.a, residual)
	return next, nil
}

// Anderson is a quasi-Newton (DIIS-type) mixer: it keeps a bounded history of
// trial/residual pairs, finds the residual-norm-minimizing linear combination by
// solving the usual bordered B-matrix system, and takes a damped step from the
// extrapolated trial. With fewer than two history entries, or when the B system
// is singular, it degrades to a plain linear step.
type Anderson struct {
	a      float64 //damping of the extrapolated residual
	depth  int     //history bound
	n      int
	trials [][]float64
	resids [][]float64
}

// NewAnderson returns an Anderson mixer with damping fraction a in (0,1] and the
// given history depth (at least 2).
func NewAnderson(a float64, depth int) (*Anderson, error) {
	if a <= 0 || a > 1 {
		return nil, Error{fmt.Sprintf("Mixing fraction %g out of (0,1]", a), []string{"NewAnderson"}}
	}
	if depth < 2 {
		return nil, Error{fmt.Sprintf("History depth %d, want at least 2", depth), []string{"NewAnderson"}}
	}
	return &Anderson{a: a, depth: depth}, nil
}

// Reset drops the history and prepares the mixer for vectors of length n. It
// must be called before every SCC run.
func (M *Anderson) Reset(n int) {
	M.n = n
	M.trials = M.trials[:0]
	M.resids = M.resids[:0]
}

//bMatrix builds the bordered overlap system of the stored residuals: B(i,j) =
//<r_i, r_j> for the history entries, a border of -1, and zero in the corner.
func (M *Anderson) bMatrix() *mat.Dense {
	h := len(M.resids)
	B := mat.NewDense(h+1, h+1, nil)
	for i := 0; i < h; i++ {
		B.Set(i, h, -1)
		B.Set(h, i, -1)
		for j := 0; j < h; j++ {
			B.Set(i, j, floats.Dot(M.resids[i], M.resids[j]))
		}
	}
	return B
}

// Mix stores the pair, extrapolates over the history and returns the next trial.
func (M *Anderson) Mix(trial, residual []float64) ([]float64, error) {
	if len(trial) != M.n || len(residual) != M.n {
		return nil, Error{fmt.Sprintf("Got vectors of lengths %d and %d, reset for %d", len(trial), len(residual), M.n), []string{"Anderson.Mix"}}
	}
	t := make([]float64, M.n)
	r := make([]float64, M.n)
	copy(t, trial)
	copy(r, residual)
	M.trials = append(M.trials, t)
	M.resids = append(M.resids, r)
	if len(M.trials) > M.depth {
		M.trials = M.trials[1:]
		M.resids = M.resids[1:]
	}
	next := make([]float64, M.n)
	h := len(M.trials)
	if h < 2 {
		copy(next, trial)
		floats.AddScaled(next, M.a, residual)
		return next, nil
	}
	rhs := mat.NewVecDense(h+1, nil)
	rhs.SetVec(h, -1)
	var lu mat.LU
	lu.Factorize(M.bMatrix())
	var coefs mat.VecDense
	if err := lu.SolveVecTo(&coefs, false, rhs); err != nil {
		//singular history; fall back to the plain step
		copy(next, trial)
		floats.AddScaled(next, M.a, residual)
		return next, nil
	}
	for i := 0; i < h; i++ {
		c := coefs.AtVec(i)
		floats.AddScaled(next, c, M.trials[i])
		floats.AddScaled(next, c*M.a, M.resids[i])
	}
	return next, nil
}
