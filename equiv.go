/*
 * equiv.go, part of goDFTB.
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

//equiv.go partitions the (orbital, atom, spin channel) slots of the charge
//self-consistency problem into symmetry equivalence classes. All orbitals of one
//shell of one atom are constrained to carry the same charge, so the mixer and the
//convergence test only need one representative value per class instead of the full
//per-orbital vector.

package dftb

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// EquivalenceMap assigns a positive class id to every meaningful (orbital, atom,
// spin channel) slot of an orbital-resolved ChargeVector. Padding slots beyond an
// atom's actual orbital count keep id 0. Ids are never reused: within the first
// spin channel they grow monotonically shell by shell, atom by atom, and every
// further channel repeats the first channel's pattern offset by the running
// maximum id, so equal orbitals in different channels always belong to
// different classes.
type EquivalenceMap struct {
	ids      []int
	rows     int
	atoms    int
	spins    int
	nClasses int
}

// MakeEquivalenceMap builds the equivalence classes for the given layout and spin
// channel count. The channel count must be 1, 2 or 4.
func MakeEquivalenceMap(L *OrbitalLayout, spins int) (*EquivalenceMap, error) {
	if L == nil {
		return nil, CError{string(ErrNilData), []string{"MakeEquivalenceMap"}}
	}
	if spins != 1 && spins != 2 && spins != 4 {
		return nil, CError{fmt.Sprintf("Got %d spin channels, want 1, 2 or 4", spins), []string{"MakeEquivalenceMap"}}
	}
	E := new(EquivalenceMap)
	E.rows = L.MaxOrbitals()
	E.atoms = L.NAtoms()
	E.spins = spins
	E.ids = make([]int, E.rows*E.atoms*spins)
	lead := E.rows * E.atoms
	id := 0
	for a := 0; a < E.atoms; a++ {
		sp := L.SpeciesOf(a)
		prev := -1
		for o := 0; o < sp.NOrbitals(); o++ {
			if sp.orbShell[o] != prev {
				id++
				prev = sp.orbShell[o]
			}
			E.ids[a*E.rows+o] = id
		}
	}
	for s := 1; s < spins; s++ {
		offset := slices.Max(E.ids[:s*lead])
		for i := 0; i < lead; i++ {
			if E.ids[i] != 0 {
				E.ids[s*lead+i] = E.ids[i] + offset
			}
		}
	}
	E.nClasses = slices.Max(E.ids)
	return E, nil
}

// ID returns the class id of the given slot, or 0 for a padding slot.
// Panics if out of range.
func (E *EquivalenceMap) ID(orb, atom, spin int) int {
	if orb < 0 || orb >= E.rows || atom < 0 || atom >= E.atoms || spin < 0 || spin >= E.spins {
		panic(PanicMsg(fmt.Sprintf("dftb: equivalence slot (orb %d, atom %d, spin %d) out of range for shape (%d,%d,%d)", orb, atom, spin, E.rows, E.atoms, E.spins)))
	}
	return E.ids[spin*E.rows*E.atoms+atom*E.rows+orb]
}

// NClasses returns the number of equivalence classes, which is the length of the
// compressed representation.
func (E *EquivalenceMap) NClasses() int { return E.nClasses }

// Rows returns the orbital rows per atom block of the mapped vectors.
func (E *EquivalenceMap) Rows() int { return E.rows }

// NAtoms returns the number of atom blocks of the mapped vectors.
func (E *EquivalenceMap) NAtoms() int { return E.atoms }

// Spins returns the number of spin channels of the mapped vectors.
func (E *EquivalenceMap) Spins() int { return E.spins }

//congruent reports whether Q has the shape this map was built for.
func (E *EquivalenceMap) congruent(Q *ChargeVector) bool {
	return Q != nil && Q.Rows() == E.rows && Q.NAtoms() == E.atoms && Q.Spins() == E.spins
}

// Compress gathers one representative value per class from the orbital-resolved
// vector Q into dst, which must have length NClasses (a nil dst is allocated).
// The representative is the value of the class' first slot in storage order. It
// returns dst, or an error on a shape mismatch.
func (E *EquivalenceMap) Compress(Q *ChargeVector, dst []float64) ([]float64, error) {
	if !E.congruent(Q) {
		return nil, CError{string(ErrShapeChange), []string{"Compress"}}
	}
	if dst == nil {
		dst = make([]float64, E.nClasses)
	}
	if len(dst) != E.nClasses {
		return nil, CError{fmt.Sprintf("Compressed vector has length %d, want %d", len(dst), E.nClasses), []string{"Compress"}}
	}
	taken := make([]bool, E.nClasses)
	raw := Q.Raw()
	for i, id := range E.ids {
		if id > 0 && !taken[id-1] {
			dst[id-1] = raw[i]
			taken[id-1] = true
		}
	}
	return dst, nil
}

// Expand scatters the compressed values red back to every slot of their class in
// the orbital-resolved vector Q. Padding slots are left untouched. It returns an
// error on a shape or length mismatch.
func (E *EquivalenceMap) Expand(red []float64, Q *ChargeVector) error {
	if !E.congruent(Q) {
		return CError{string(ErrShapeChange), []string{"Expand"}}
	}
	if len(red) != E.nClasses {
		return CError{fmt.Sprintf("Compressed vector has length %d, want %d", len(red), E.nClasses), []string{"Expand"}}
	}
	raw := Q.Raw()
	for i, id := range E.ids {
		if id > 0 {
			raw[i] = red[id-1]
		}
	}
	return nil
}
