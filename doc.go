/*
 * doc.go, part of goDFTB.
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

/*Package dftb is the main package of the goDFTB library. It provides the static
data model (chemical species, basis/orbital layout) and the spin-resolved kernels
of a self-consistent-charge (SCC) tight-binding total-energy engine.


	**goDFTB capabilities**

    Spin-resolved charge bookkeeping with one, two or four spin channels,
	in either the charge/magnetization or the up/down representation,
	with exact in-place conversion between the two.

    Symmetry-based compression of the charge self-consistency problem
	through orbital equivalence classes, so mixing and convergence testing
	operate on one representative value per class.

    Shell-resolved spin contributions to the Hamiltonian shift from
	per-species shell-coupling constants, with a deterministic
	atom-parallel build.

    Total and atom-resolved spin-energy contributions.

    The scc subpackage drives the self-consistency loop proper,
	delegating diagonalization, population analysis, electrostatics and
	charge mixing to external collaborators behind small interfaces.
	Default dense-algebra implementations of those collaborators are
	provided.

    The mixer subpackage implements linear and Anderson (DIIS-like)
	convergence acceleration.

    The ctrace subpackage writes compressed, append-only per-iteration
	charge traces, and the sccplot subpackage turns them into convergence
	plots.

All quantities are in atomic units unless stated otherwise.
*/
package dftb
