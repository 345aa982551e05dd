/*
 * energy.go, part of goDFTB.
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

//energy.go evaluates the spin contribution to the total energy as the dot product
//of shell-resolved spin densities with the corresponding potential shifts. The
//formulas are only correct if the pure-charge entries of the shift are zero,
//which BuildSpinShift guarantees through its channel contract.

package dftb

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

//checkEnergySpins enforces the channel contract of the energy evaluator: the
//charge-plus-magnetization counts 2 (collinear) through 4 (non-collinear). Note
//that this differs on purpose from the contracts of the basis transforms and of
//BuildSpinShift, which count channels under other conventions.
func checkEnergySpins(spins int) error {
	if spins <= 1 || spins >= 5 {
		return CError{fmt.Sprintf("Got %d spin channels, want 2, 3 or 4", spins), []string{"checkEnergySpins"}}
	}
	return nil
}

// SpinEnergyTotal returns the total spin energy, the element-wise dot product of
// the shell-resolved density q with the shift v over all shells, atoms and spin
// channels. Both vectors must be congruent and carry 2 to 4 channels.
func SpinEnergyTotal(q *ChargeVector, v *ShiftVector) (float64, error) {
	if q == nil || v == nil {
		return 0, CError{string(ErrNilData), []string{"SpinEnergyTotal"}}
	}
	if err := checkEnergySpins(q.Spins()); err != nil {
		return 0, errDecorate(err, "SpinEnergyTotal")
	}
	if !q.Congruent(v) {
		return 0, CError{string(ErrShapeChange), []string{"SpinEnergyTotal"}}
	}
	return floats.Dot(q.Raw(), v.Raw()), nil
}

// SpinEnergyAtoms returns the atom-resolved spin energies, the dot product of q
// with v summed over the shell and spin axes only, one value per atom. Both
// vectors must be congruent and carry 2 to 4 channels.
func SpinEnergyAtoms(q *ChargeVector, v *ShiftVector) ([]float64, error) {
	if q == nil || v == nil {
		return nil, CError{string(ErrNilData), []string{"SpinEnergyAtoms"}}
	}
	if err := checkEnergySpins(q.Spins()); err != nil {
		return nil, errDecorate(err, "SpinEnergyAtoms")
	}
	if !q.Congruent(v) {
		return nil, CError{string(ErrShapeChange), []string{"SpinEnergyAtoms"}}
	}
	energies := make([]float64, q.NAtoms())
	for s := 0; s < q.Spins(); s++ {
		for a := 0; a < q.NAtoms(); a++ {
			energies[a] += floats.Dot(q.AtomBlock(a, s), v.AtomBlock(a, s))
		}
	}
	return energies, nil
}
