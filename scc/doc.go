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

/*Package scc drives the self-consistent-charge fixed-point iteration of goDFTB.

Each iteration builds the potential shift (electrostatic plus spin part), hands the
shifted Hamiltonian of every collinear spin channel to an Eigensolver, derives new
populations through a PopulationAnalyzer, and feeds the difference between output
and input charges, compressed through the orbital equivalence classes, to a
stateful Mixer. Mixing and the convergence test run in the charge/magnetization
representation; the eigensolver and the population analysis consume up/down.

Diagonalization, population analysis, electrostatics and mixing sit behind small
interfaces so external implementations (threaded or distributed solvers, Ewald
electrostatics, other mixing schemes) can be swapped in. Defaults good for dense
problems are provided here and in the mixer package.

Given the same initial charges and deterministic collaborators, the sequence of
iterates is bit-reproducible.
*/
package scc
