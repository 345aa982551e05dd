/*
 * shift.go, part of goDFTB.
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

//shift.go builds the spin contribution to the Hamiltonian potential shift from
//shell-resolved spin densities and the per-species shell-coupling constants W.

package dftb

import (
	"fmt"
	"runtime"
	"sync"
)

//spinShiftAtom contracts the coupling constants of one atom with its shell
//charges, for every spin channel of q. Writes only to the atom's own blocks
//of shift, so atoms can run concurrently with no reduction step.
func spinShiftAtom(q, shift *ChargeVector, sp *Species, atom int) {
	nsh := sp.NShells()
	for s := 0; s < q.Spins(); s++ {
		qb := q.AtomBlock(atom, s)
		vb := shift.AtomBlock(atom, s)
		for l1 := 0; l1 < nsh; l1++ {
			acc := 0.0
			for l2 := 0; l2 < nsh; l2++ {
				acc += sp.w.Get(l1, l2) * qb[l2]
			}
			vb[l1] += acc
		}
	}
}

// BuildSpinShift computes the spin contribution to the potential shift from the
// shell-resolved spin density q: shift[l,atom,s] += W[l,l']*q[l',atom,s] for every
// ordered shell pair of each atom's species and every channel of q. The caller
// must pass only magnetization-type channels, i.e. q carries 1 (collinear) or 3
// (non-collinear) channels; handing in the pure-charge channel would put a spin
// potential on it, so that count is rejected. The shift is accumulated into a new
// vector congruent with q. Work is split over atoms across the available CPUs;
// since every atom writes only its own blocks the result is identical to the
// sequential one.
func BuildSpinShift(q *ChargeVector, L *OrbitalLayout) (*ShiftVector, error) {
	if q == nil || L == nil {
		return nil, CError{string(ErrNilData), []string{"BuildSpinShift"}}
	}
	if q.Spins() != 1 && q.Spins() != 3 {
		return nil, CError{fmt.Sprintf("Got %d spin channels, want the 1 or 3 magnetization components", q.Spins()), []string{"BuildSpinShift"}}
	}
	if q.Rows() != L.MaxShells() || q.NAtoms() != L.NAtoms() {
		return nil, CError{string(ErrShapeChange), []string{"BuildSpinShift"}}
	}
	shift, err := MakeChargeVector(q.Rows(), q.NAtoms(), q.Spins())
	if err != nil {
		return nil, errDecorate(err, "BuildSpinShift")
	}
	natoms := L.NAtoms()
	workers := runtime.GOMAXPROCS(-1)
	if workers > natoms {
		workers = natoms
	}
	if workers <= 1 {
		for a := 0; a < natoms; a++ {
			spinShiftAtom(q, shift, L.SpeciesOf(a), a)
		}
		return shift, nil
	}
	chunk := natoms / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if w == workers-1 {
			end = natoms
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for a := start; a < end; a++ {
				spinShiftAtom(q, shift, L.SpeciesOf(a), a)
			}
		}(start, end)
	}
	wg.Wait()
	return shift, nil
}
