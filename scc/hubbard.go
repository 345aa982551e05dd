/*
 * hubbard.go, part of goDFTB.
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
	"fmt"

	dftb "github.com/diegomartinez2/dftbplus"
	matrix "github.com/skelterjohn/go.matrix"
)

// HubbardShifter is an on-site second-order ElectrostaticShifter: the shift on
// shell l of an atom is sum_l' U[l,l'] (q[l'] - qref[l']) over the shells of the
// same atom, with U the per-species Hubbard matrix. It covers molecular models
// where the long-range tail is neglected; periodic electrostatics need an
// external shifter.
type HubbardShifter struct {
	layout *dftb.OrbitalLayout
	u      []*matrix.DenseMatrix //per species, shell x shell
	qref   *dftb.ChargeVector    //single-channel reference (neutral-atom) shell charges
}

// MakeHubbardShifter builds a HubbardShifter from the per-species row-major
// Hubbard matrices and the reference shell charges of the neutral atoms. qref
// must be single-channel and shell-shaped for the layout.
func MakeHubbardShifter(layout *dftb.OrbitalLayout, u [][]float64, qref *dftb.ChargeVector) (*HubbardShifter, error) {
	if layout == nil || u == nil || qref == nil {
		return nil, Error{string(dftb.ErrNilData), []string{"MakeHubbardShifter"}, true}
	}
	if len(u) != layout.NSpecies() {
		return nil, Error{fmt.Sprintf("%d Hubbard matrices given for %d species", len(u), layout.NSpecies()), []string{"MakeHubbardShifter"}, true}
	}
	if qref.Spins() != 1 || qref.Rows() != layout.MaxShells() || qref.NAtoms() != layout.NAtoms() {
		return nil, Error{string(dftb.ErrShapeChange), []string{"MakeHubbardShifter"}, true}
	}
	H := new(HubbardShifter)
	H.layout = layout
	H.qref = qref.Copy()
	H.u = make([]*matrix.DenseMatrix, len(u))
	for si, us := range u {
		nsh := 0
		for a := 0; a < layout.NAtoms(); a++ {
			if layout.SpeciesIndex(a) == si {
				nsh = layout.SpeciesOf(a).NShells()
				break
			}
		}
		if nsh == 0 { //species unused by any atom; take the square root of the data length
			for nsh*nsh < len(us) {
				nsh++
			}
		}
		if len(us) != nsh*nsh {
			return nil, Error{fmt.Sprintf("Species %d: %d Hubbard constants given, %d shells", si, len(us), nsh), []string{"MakeHubbardShifter"}, true}
		}
		H.u[si] = matrix.MakeDenseMatrix(us, nsh, nsh)
	}
	return H, nil
}

// Shift returns the shell-resolved on-site electrostatic shift caused by the
// single-channel charge distribution q.
func (H *HubbardShifter) Shift(q *dftb.ChargeVector) (*dftb.ShiftVector, error) {
	if q == nil {
		return nil, Error{string(dftb.ErrNilData), []string{"HubbardShifter.Shift"}, true}
	}
	if !q.Congruent(H.qref) {
		return nil, Error{string(dftb.ErrShapeChange), []string{"HubbardShifter.Shift"}, true}
	}
	v, err := dftb.MakeShellVector(H.layout, 1)
	if err != nil {
		return nil, err
	}
	for a := 0; a < H.layout.NAtoms(); a++ {
		u := H.u[H.layout.SpeciesIndex(a)]
		nsh := H.layout.SpeciesOf(a).NShells()
		for l1 := 0; l1 < nsh; l1++ {
			acc := 0.0
			for l2 := 0; l2 < nsh; l2++ {
				acc += u.Get(l1, l2) * (q.At(l2, a, 0) - H.qref.At(l2, a, 0))
			}
			v.Set(l1, a, 0, acc)
		}
	}
	return v, nil
}
