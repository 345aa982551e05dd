/*
 * charges.go, part of goDFTB.
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

//charges.go contains the spin-resolved charge and shift containers. A ChargeVector
//owns one flat buffer plus a (rows, atoms, spins) descriptor, with the spin axis
//trailing: each spin channel is one contiguous block, and within a channel each
//atom owns a fixed-size block of rows (shells or orbitals, padded to the layout's
//maximum). The flat layout is what lets the basis transforms in spin.go run
//in place over a single stride for any leading shape.

package dftb

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ChargeVector holds spin-resolved values indexed by (row, atom, spin channel),
// where a row is a shell or an orbital of the atom depending on context. The
// number of spin channels must be positive; the meaningful counts are 1
// (pure charge), 2 (charge+magnetization or up/down), 3 (magnetization
// components only) and 4 (full non-collinear).
type ChargeVector struct {
	data  []float64
	rows  int
	atoms int
	spins int
}

// ShiftVector represents Hamiltonian potential corrections. It has exactly the
// shape and invariants of a ChargeVector.
type ShiftVector = ChargeVector

// MakeChargeVector returns a zeroed ChargeVector with the given shape.
func MakeChargeVector(rows, atoms, spins int) (*ChargeVector, error) {
	if rows <= 0 || atoms <= 0 || spins <= 0 {
		return nil, CError{fmt.Sprintf("Non-positive shape (%d,%d,%d)", rows, atoms, spins), []string{"MakeChargeVector"}}
	}
	Q := new(ChargeVector)
	Q.rows = rows
	Q.atoms = atoms
	Q.spins = spins
	Q.data = make([]float64, rows*atoms*spins)
	return Q, nil
}

// MakeShellVector returns a zeroed shell-resolved vector for the given layout.
func MakeShellVector(L *OrbitalLayout, spins int) (*ChargeVector, error) {
	if L == nil {
		return nil, CError{string(ErrNilData), []string{"MakeShellVector"}}
	}
	Q, err := MakeChargeVector(L.MaxShells(), L.NAtoms(), spins)
	if err != nil {
		return nil, errDecorate(err, "MakeShellVector")
	}
	return Q, nil
}

// MakeOrbitalVector returns a zeroed orbital-resolved vector for the given layout.
func MakeOrbitalVector(L *OrbitalLayout, spins int) (*ChargeVector, error) {
	if L == nil {
		return nil, CError{string(ErrNilData), []string{"MakeOrbitalVector"}}
	}
	Q, err := MakeChargeVector(L.MaxOrbitals(), L.NAtoms(), spins)
	if err != nil {
		return nil, errDecorate(err, "MakeOrbitalVector")
	}
	return Q, nil
}

// Rows returns the number of rows (shells or orbitals) per atom block.
func (Q *ChargeVector) Rows() int { return Q.rows }

// NAtoms returns the number of atom blocks.
func (Q *ChargeVector) NAtoms() int { return Q.atoms }

// Spins returns the number of spin channels.
func (Q *ChargeVector) Spins() int { return Q.spins }

// Len returns the total number of stored values.
func (Q *ChargeVector) Len() int { return len(Q.data) }

//index computes the flat offset of (row, atom, spin). It panics, with the offending
//indexes, on out-of-range access: this is a fundamental function in the sense of the
//package preamble.
func (Q *ChargeVector) index(row, atom, spin int) int {
	if row < 0 || row >= Q.rows || atom < 0 || atom >= Q.atoms || spin < 0 || spin >= Q.spins {
		panic(PanicMsg(fmt.Sprintf("dftb: index (row %d, atom %d, spin %d) out of range for shape (%d,%d,%d)", row, atom, spin, Q.rows, Q.atoms, Q.spins)))
	}
	return spin*Q.rows*Q.atoms + atom*Q.rows + row
}

// At returns the value at (row, atom, spin). Panics if out of range.
func (Q *ChargeVector) At(row, atom, spin int) float64 {
	return Q.data[Q.index(row, atom, spin)]
}

// Set stores v at (row, atom, spin). Panics if out of range.
func (Q *ChargeVector) Set(row, atom, spin int, v float64) {
	Q.data[Q.index(row, atom, spin)] = v
}

// Raw returns the backing slice, spin channel by spin channel, atom blocks
// contiguous within a channel. Mutating it mutates the vector.
func (Q *ChargeVector) Raw() []float64 {
	return Q.data
}

// Channel returns the contiguous slice holding the given spin channel.
// Mutating it mutates the vector. Panics if out of range.
func (Q *ChargeVector) Channel(spin int) []float64 {
	if spin < 0 || spin >= Q.spins {
		panic(PanicMsg(fmt.Sprintf("dftb: spin channel %d out of range, have %d", spin, Q.spins)))
	}
	lead := Q.rows * Q.atoms
	return Q.data[spin*lead : (spin+1)*lead]
}

// Channels returns a view of n consecutive spin channels of Q starting at channel
// start, as a ChargeVector sharing Q's storage. Mutating the view mutates Q.
// Panics if the range is out of bounds.
func (Q *ChargeVector) Channels(start, n int) *ChargeVector {
	if start < 0 || n <= 0 || start+n > Q.spins {
		panic(PanicMsg(fmt.Sprintf("dftb: channel range [%d,%d) out of bounds, have %d channels", start, start+n, Q.spins)))
	}
	lead := Q.rows * Q.atoms
	V := new(ChargeVector)
	V.rows = Q.rows
	V.atoms = Q.atoms
	V.spins = n
	V.data = Q.data[start*lead : (start+n)*lead]
	return V
}

// AtomBlock returns the contiguous slice holding the given atom's rows in the given
// spin channel. Mutating it mutates the vector. Panics if out of range.
func (Q *ChargeVector) AtomBlock(atom, spin int) []float64 {
	i := Q.index(0, atom, spin)
	return Q.data[i : i+Q.rows]
}

// Congruent reports whether P has exactly the shape of Q.
func (Q *ChargeVector) Congruent(P *ChargeVector) bool {
	return P != nil && Q.rows == P.rows && Q.atoms == P.atoms && Q.spins == P.spins
}

// Zero sets every value to zero.
func (Q *ChargeVector) Zero() {
	for i := range Q.data {
		Q.data[i] = 0
	}
}

// Copy returns a new ChargeVector with the same shape and values as Q.
func (Q *ChargeVector) Copy() *ChargeVector {
	if Q == nil {
		panic(PanicMsg("dftb: attempted to copy a nil ChargeVector"))
	}
	N := new(ChargeVector)
	N.rows = Q.rows
	N.atoms = Q.atoms
	N.spins = Q.spins
	N.data = make([]float64, len(Q.data))
	copy(N.data, Q.data)
	return N
}

// CopyFrom overwrites Q with the values of P. Panics if the shapes differ.
func (Q *ChargeVector) CopyFrom(P *ChargeVector) {
	if !Q.Congruent(P) {
		panic(ErrShapeChange)
	}
	copy(Q.data, P.data)
}

// AddScaled adds a*P to Q element-wise. Panics if the shapes differ.
func (Q *ChargeVector) AddScaled(a float64, P *ChargeVector) {
	if !Q.Congruent(P) {
		panic(ErrShapeChange)
	}
	floats.AddScaled(Q.data, a, P.data)
}

// Scale multiplies every value of Q by a.
func (Q *ChargeVector) Scale(a float64) {
	floats.Scale(a, Q.data)
}

// MaxDiff returns the maximum absolute element-wise difference between Q and P.
// Panics if the shapes differ.
func (Q *ChargeVector) MaxDiff(P *ChargeVector) float64 {
	if !Q.Congruent(P) {
		panic(ErrShapeChange)
	}
	return maxAbsDiff(Q.data, P.data)
}

//maxAbsDiff is shared with the compressed-representation residual in the scc driver,
//which works on bare slices.
func maxAbsDiff(a, b []float64) float64 {
	r := 0.0
	for i, v := range a {
		d := math.Abs(v - b[i])
		if d > r {
			r = d
		}
	}
	return r
}

// MaxAbsDiff returns the maximum absolute element-wise difference between the
// slices a and b, which must have the same length.
func MaxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrShapeChange)
	}
	return maxAbsDiff(a, b)
}
