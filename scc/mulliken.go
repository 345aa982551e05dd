/*
 * mulliken.go, part of goDFTB.
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
	"gonum.org/v1/gonum/mat"
)

// MullikenAnalyzer is the default PopulationAnalyzer: gross Mulliken populations
// per orbital, q_mu = sum_k occ_k C_mu_k (S C)_mu_k, one spin channel per solved
// eigenproblem. It covers the closed-shell and collinear cases; a non-collinear
// treatment needs an external analyzer.
type MullikenAnalyzer struct{}

// Populations returns the orbital-resolved Mulliken populations in the up/down
// representation. spins must be 1 or 2 and match len(sols).
func (MullikenAnalyzer) Populations(sols []Eigenstates, overlap *mat.SymDense, layout *dftb.OrbitalLayout, spins int) (*dftb.ChargeVector, error) {
	if sols == nil || overlap == nil || layout == nil {
		return nil, Error{string(dftb.ErrNilData), []string{"MullikenAnalyzer.Populations"}, true}
	}
	if spins != 1 && spins != 2 {
		return nil, Error{fmt.Sprintf("Mulliken analysis implemented for 1 or 2 spin channels, got %d", spins), []string{"MullikenAnalyzer.Populations"}, true}
	}
	if len(sols) != spins {
		return nil, Error{fmt.Sprintf("%d eigenproblem solutions given for %d spin channels", len(sols), spins), []string{"MullikenAnalyzer.Populations"}, true}
	}
	norb := layout.NOrbitals()
	q, err := dftb.MakeOrbitalVector(layout, spins)
	if err != nil {
		return nil, err
	}
	var sc mat.Dense
	for s, sol := range sols {
		if sol.Evecs == nil || len(sol.Occ) == 0 {
			return nil, Error{fmt.Sprintf("Spin channel %d has no solved eigenstates", s), []string{"MullikenAnalyzer.Populations"}, true}
		}
		sc.Mul(overlap, sol.Evecs)
		for a := 0; a < layout.NAtoms(); a++ {
			off := layout.OrbitalOffset(a)
			no := layout.SpeciesOf(a).NOrbitals()
			for o := 0; o < no; o++ {
				mu := off + o
				if mu >= norb {
					panic(dftb.PanicMsg(fmt.Sprintf("dftb: orbital %d of atom %d beyond basis size %d", o, a, norb)))
				}
				acc := 0.0
				for k, occ := range sol.Occ {
					if occ == 0 {
						continue
					}
					acc += occ * sol.Evecs.At(mu, k) * sc.At(mu, k)
				}
				q.Set(o, a, s, acc)
			}
		}
	}
	return q, nil
}

//fillAufbau distributes nel electrons over the states of one channel in ascending
//energy order, at most maxocc per state, fractionally in the last one. The states
//come ordered from the eigensolver, so the filling is deterministic.
func fillAufbau(nstates int, nel, maxocc float64) []float64 {
	occ := make([]float64, nstates)
	left := nel
	for i := 0; i < nstates && left > 0; i++ {
		if left >= maxocc {
			occ[i] = maxocc
			left -= maxocc
		} else {
			occ[i] = left
			left = 0
		}
	}
	return occ
}
