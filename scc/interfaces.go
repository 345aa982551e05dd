/*
 * interfaces.go, part of goDFTB.
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
	dftb "github.com/diegomartinez2/dftbplus"
	"gonum.org/v1/gonum/mat"
)

// Eigenstates holds the solution of one spin channel's eigenproblem: ascending
// eigenvalues, the corresponding eigenvectors as columns, and the occupation of
// each state.
type Eigenstates struct {
	Evals []float64
	Evecs *mat.Dense
	Occ   []float64
}

// Eigensolver solves the generalized symmetric eigenproblem H c = e S c for one
// spin channel. This allows to plug in different dense or iterative solvers.
type Eigensolver interface {

	//Diagonalize returns the ascending eigenvalues and the matching eigenvectors
	//(as columns) of the problem defined by ham and overlap. A nonzero status
	//signals failure; the driver treats it as fatal and aborts the run.
	Diagonalize(ham, overlap *mat.SymDense) (evals []float64, evecs *mat.Dense, status int)
}

// SpinorStates holds the solution of the doubled non-collinear eigenproblem:
// ascending eigenvalues, the complex two-component eigenvectors as columns, and
// the occupation of each spinor state.
type SpinorStates struct {
	Evals []float64
	Evecs *mat.CDense
	Occ   []float64
}

// SpinorEigensolver solves the doubled non-collinear eigenproblem. A
// four-channel run requires its eigensolver to implement this interface in
// addition to Eigensolver; the magnetization shifts can not be folded into a
// real symmetric Hamiltonian, so the solver receives them separately and builds
// the spinor Hamiltonian itself.
type SpinorEigensolver interface {

	//DiagonalizeSpinor returns the ascending eigenvalues and spinor
	//eigenvectors of the non-collinear problem defined by the static
	//Hamiltonian h0, the overlap, and the four per-orbital potential shift
	//channels v (charge, then the three magnetization components). A nonzero
	//status signals failure and aborts the run.
	DiagonalizeSpinor(h0, overlap *mat.SymDense, v [][]float64) (evals []float64, evecs *mat.CDense, status int)
}

// PopulationAnalyzer derives orbital-resolved spin populations from eigenstates.
type PopulationAnalyzer interface {

	//Populations returns the orbital-resolved populations, in the up/down
	//representation with the given number of spin channels, from the solved
	//eigenstates of every channel and the overlap matrix.
	Populations(sols []Eigenstates, overlap *mat.SymDense, layout *dftb.OrbitalLayout, spins int) (*dftb.ChargeVector, error)
}

// SpinorPopulationAnalyzer derives the four Pauli-component populations from
// spinor eigenstates. A four-channel run requires its population analyzer to
// implement this interface in addition to PopulationAnalyzer.
type SpinorPopulationAnalyzer interface {

	//SpinorPopulations returns the orbital-resolved populations, one channel
	//per Pauli component, from the solved spinor eigenstates and the overlap
	//matrix.
	SpinorPopulations(sol SpinorStates, overlap *mat.SymDense, layout *dftb.OrbitalLayout) (*dftb.ChargeVector, error)
}

// ElectrostaticShifter builds the long-range electrostatic contribution to the
// potential shift from the net charge distribution.
type ElectrostaticShifter interface {

	//Shift returns the shell-resolved electrostatic potential shift caused by
	//the single-channel shell-resolved charge distribution q. The returned
	//vector is congruent with q.
	Shift(q *dftb.ChargeVector) (*dftb.ShiftVector, error)
}

// Mixer is a stateful update scheme accelerating the fixed-point iteration. It
// retains history across Mix calls within one SCC run and must be re-initialized
// through Reset before every run.
type Mixer interface {

	//Reset drops any accumulated history and prepares the mixer for vectors of
	//length n.
	Reset(n int)

	//Mix returns the next trial vector from the current trial and the residual
	//(output minus input) in the same compressed representation.
	Mix(trial, residual []float64) ([]float64, error)
}

// Tracer receives one append-only record per finished iteration. Implementations
// must not retain or mutate red, which is owned by the driver.
type Tracer interface {
	WNext(iter int, residual, energy float64, red []float64) error
}

// NullShifter is an ElectrostaticShifter that returns an all-zero shift. It serves
// spin-only model systems and tests.
type NullShifter struct{}

// Shift returns a zeroed shift vector congruent with q.
func (NullShifter) Shift(q *dftb.ChargeVector) (*dftb.ShiftVector, error) {
	if q == nil {
		return nil, Error{string(dftb.ErrNilData), []string{"NullShifter.Shift"}, true}
	}
	return dftb.MakeChargeVector(q.Rows(), q.NAtoms(), q.Spins())
}
