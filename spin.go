/*
 * spin.go, part of goDFTB.
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

//spin.go contains the conversions between the two spin representations used in the
//library: charge/magnetization (q, m), in which mixing and convergence testing are
//done because it is better conditioned, and up/down, which the eigensolver and the
//population analysis consume. Both conversions run in place over the flat buffer of
//a ChargeVector, so they cover any leading shape (shells, orbitals, or anything
//else per atom) with a single body.

package dftb

import "fmt"

//checkTransformSpins enforces the cardinality contract of the basis transforms.
//Note that this contract, {1,2,4}, is specific to the transforms: the spin shift
//builder and the spin energy evaluator count channels under different conventions
//and carry their own checks.
func checkTransformSpins(spins int) {
	if spins != 1 && spins != 2 && spins != 4 {
		panic(PanicMsg(fmt.Sprintf("dftb: basis transform got %d spin channels, want 1, 2 or 4", spins)))
	}
}

// ToUpDown converts Q from the charge/magnetization to the up/down representation,
// in place: (q, m) -> (0.5*(q+m), 0.5*(q-m)). With one channel (closed shell)
// and with four channels (non-collinear components, which downstream consumers
// take as stored) the conversion is an identity. Panics if the channel count is
// not 1, 2 or 4.
func (Q *ChargeVector) ToUpDown() {
	checkTransformSpins(Q.spins)
	if Q.spins != 2 {
		return
	}
	lead := Q.rows * Q.atoms
	for i := 0; i < lead; i++ {
		m := Q.data[lead+i]
		Q.data[i] = 0.5 * (Q.data[i] + m)
		Q.data[lead+i] = Q.data[i] - m
	}
}

// ToChargeMag converts Q from the up/down to the charge/magnetization
// representation, in place: (up, down) -> (up+down, up-down). It is the exact
// inverse of ToUpDown for two channels, and an identity for one and four.
// Panics if the channel count is not 1, 2 or 4.
func (Q *ChargeVector) ToChargeMag() {
	checkTransformSpins(Q.spins)
	if Q.spins != 2 {
		return
	}
	lead := Q.rows * Q.atoms
	for i := 0; i < lead; i++ {
		down := Q.data[lead+i]
		Q.data[i] = Q.data[i] + down
		Q.data[lead+i] = Q.data[i] - 2*down
	}
}
