/*
 * dftb.go, part of goDFTB.
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

package dftb

import (
	"fmt"
	"math"

	matrix "github.com/skelterjohn/go.matrix"
)

/**Note: Several functions here panic instead of returning errors. This is because they are
 * "fundamental" functions: if something goes wrong in them the program is way-most likely
 * wrong and should crash. Most panics are related to calling a method on a nil object or
 * accessing out-of-bounds shells/orbitals. Constructors, in contrast, return errors.**/

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

// Species holds the static per-element data of the model: the angular momentum of
// each shell of its basis, and the shell x shell spin-coupling constants W.
type Species struct {
	Name     string
	angMom   []int
	orbShell []int //shell index of every orbital of the species
	w        *matrix.DenseMatrix
}

// MakeSpecies builds a Species from its name, the angular momentum of each shell and
// the row-major shell x shell spin-coupling constants w. It returns an error if no
// shells are given, if w has the wrong length, or if w is not symmetric.
func MakeSpecies(name string, angmom []int, w []float64) (*Species, error) {
	if angmom == nil || w == nil {
		return nil, CError{"Supplied nil data for species " + name, []string{"MakeSpecies"}}
	}
	nsh := len(angmom)
	if nsh == 0 {
		return nil, CError{"Species " + name + " has no shells", []string{"MakeSpecies"}}
	}
	if len(w) != nsh*nsh {
		return nil, CError{fmt.Sprintf("Species %s: %d coupling constants given, %d shells declared", name, len(w), nsh), []string{"MakeSpecies"}}
	}
	S := new(Species)
	S.Name = name
	S.angMom = make([]int, nsh)
	copy(S.angMom, angmom)
	S.w = matrix.MakeDenseMatrix(w, nsh, nsh)
	for i := 0; i < nsh; i++ {
		if angmom[i] < 0 {
			return nil, CError{fmt.Sprintf("Species %s: negative angular momentum in shell %d", name, i), []string{"MakeSpecies"}}
		}
		for j := 0; j < i; j++ {
			if math.Abs(S.w.Get(i, j)-S.w.Get(j, i)) > appzero {
				return nil, CError{fmt.Sprintf("Species %s: spin-coupling matrix not symmetric at (%d,%d)", name, i, j), []string{"MakeSpecies"}}
			}
		}
	}
	for sh, l := range S.angMom {
		for m := 0; m < 2*l+1; m++ {
			S.orbShell = append(S.orbShell, sh)
		}
	}
	return S, nil
}

// NShells returns the number of shells in the species' basis.
func (S *Species) NShells() int {
	return len(S.angMom)
}

// NOrbitals returns the number of orbitals in the species' basis.
func (S *Species) NOrbitals() int {
	return len(S.orbShell)
}

// AngMom returns the angular momentum of the given shell. Panics if out of range.
func (S *Species) AngMom(shell int) int {
	if shell < 0 || shell >= len(S.angMom) {
		panic(PanicMsg(fmt.Sprintf("dftb: shell %d out of range for species %s", shell, S.Name)))
	}
	return S.angMom[shell]
}

// ShellOfOrbital returns the shell to which the given orbital of the species
// belongs. Panics if out of range.
func (S *Species) ShellOfOrbital(orb int) int {
	if orb < 0 || orb >= len(S.orbShell) {
		panic(PanicMsg(fmt.Sprintf("dftb: orbital %d out of range for species %s", orb, S.Name)))
	}
	return S.orbShell[orb]
}

// SpinCoupling returns the coupling constant W between the two given shells of
// the species. Panics if either shell is out of range.
func (S *Species) SpinCoupling(sh1, sh2 int) float64 {
	if sh1 < 0 || sh1 >= len(S.angMom) || sh2 < 0 || sh2 >= len(S.angMom) {
		panic(PanicMsg(fmt.Sprintf("dftb: shell pair (%d,%d) out of range for species %s", sh1, sh2, S.Name)))
	}
	return S.w.Get(sh1, sh2)
}

// W returns the shell x shell spin-coupling matrix of the species. The matrix is
// shared, not copied, and is read-only by convention.
func (S *Species) W() *matrix.DenseMatrix {
	return S.w
}

/*****OrbitalLayout type*****/

// OrbitalLayout maps the atoms of a geometry onto the basis: which species sits on
// each atom, how orbitals group into shells, and where each atom's block starts in
// the global orbital numbering. It is immutable for the lifetime of a run.
type OrbitalLayout struct {
	species     []*Species
	atomSpecies []int
	orbOffset   []int //first global orbital of each atom
	mShell      int
	mOrb        int
	nOrb        int
}

// MakeOrbitalLayout builds an OrbitalLayout from the species table and the species
// index assigned to each atom. It returns an error on nil or empty input or on an
// out-of-range species index.
func MakeOrbitalLayout(species []*Species, atomSpecies []int) (*OrbitalLayout, error) {
	if species == nil || atomSpecies == nil {
		return nil, CError{"Supplied nil species data", []string{"MakeOrbitalLayout"}}
	}
	if len(species) == 0 || len(atomSpecies) == 0 {
		return nil, CError{"Supplied empty species data", []string{"MakeOrbitalLayout"}}
	}
	L := new(OrbitalLayout)
	L.species = species
	L.atomSpecies = make([]int, len(atomSpecies))
	copy(L.atomSpecies, atomSpecies)
	for _, S := range species {
		if S == nil {
			return nil, CError{"Supplied nil species", []string{"MakeOrbitalLayout"}}
		}
		if S.NShells() > L.mShell {
			L.mShell = S.NShells()
		}
		if S.NOrbitals() > L.mOrb {
			L.mOrb = S.NOrbitals()
		}
	}
	L.orbOffset = make([]int, len(atomSpecies))
	for i, si := range atomSpecies {
		if si < 0 || si >= len(species) {
			return nil, CError{fmt.Sprintf("Species index %d of atom %d out of range", si, i), []string{"MakeOrbitalLayout"}}
		}
		L.orbOffset[i] = L.nOrb
		L.nOrb += species[si].NOrbitals()
	}
	return L, nil
}

// NAtoms returns the number of atoms in the layout.
func (L *OrbitalLayout) NAtoms() int {
	return len(L.atomSpecies)
}

// NSpecies returns the number of species in the layout.
func (L *OrbitalLayout) NSpecies() int {
	return len(L.species)
}

// NOrbitals returns the total number of orbitals over all atoms.
func (L *OrbitalLayout) NOrbitals() int {
	return L.nOrb
}

// MaxShells returns the largest shell count over all species. Per-atom shell blocks
// in spin-resolved arrays are padded to this size.
func (L *OrbitalLayout) MaxShells() int {
	return L.mShell
}

// MaxOrbitals returns the largest orbital count over all species. Per-atom orbital
// blocks in spin-resolved arrays are padded to this size.
func (L *OrbitalLayout) MaxOrbitals() int {
	return L.mOrb
}

// SpeciesOf returns the Species sitting on the given atom. Panics if out of range.
func (L *OrbitalLayout) SpeciesOf(atom int) *Species {
	if atom < 0 || atom >= len(L.atomSpecies) {
		panic(PanicMsg(fmt.Sprintf("dftb: atom %d out of range", atom)))
	}
	return L.species[L.atomSpecies[atom]]
}

// SpeciesIndex returns the index in the species table of the species sitting on
// the given atom. Panics if out of range.
func (L *OrbitalLayout) SpeciesIndex(atom int) int {
	if atom < 0 || atom >= len(L.atomSpecies) {
		panic(PanicMsg(fmt.Sprintf("dftb: atom %d out of range", atom)))
	}
	return L.atomSpecies[atom]
}

// OrbitalOffset returns the global index of the first orbital of the given atom.
// Panics if out of range.
func (L *OrbitalLayout) OrbitalOffset(atom int) int {
	if atom < 0 || atom >= len(L.atomSpecies) {
		panic(PanicMsg(fmt.Sprintf("dftb: atom %d out of range", atom)))
	}
	return L.orbOffset[atom]
}

// ShellCharges accumulates the orbital-resolved charges q into the shell-resolved
// vector dst, for every spin channel. dst must be shell-shaped for this layout and
// carry the same number of spin channels as q; it is zeroed first.
func (L *OrbitalLayout) ShellCharges(q *ChargeVector, dst *ChargeVector) error {
	if q == nil || dst == nil {
		return CError{string(ErrNilData), []string{"ShellCharges"}}
	}
	if q.Rows() != L.mOrb || dst.Rows() != L.mShell || q.NAtoms() != L.NAtoms() || dst.NAtoms() != L.NAtoms() || q.Spins() != dst.Spins() {
		return CError{string(ErrShapeChange), []string{"ShellCharges"}}
	}
	dst.Zero()
	for s := 0; s < q.Spins(); s++ {
		for a := 0; a < L.NAtoms(); a++ {
			sp := L.SpeciesOf(a)
			for o := 0; o < sp.NOrbitals(); o++ {
				sh := sp.orbShell[o]
				dst.Set(sh, a, s, dst.At(sh, a, s)+q.At(o, a, s))
			}
		}
	}
	return nil
}

// OrbitalShifts expands the shell-resolved shift v, spin channel spin, into one
// value per global orbital, written to dst (length NOrbitals). Used when applying
// potential shifts to the Hamiltonian.
func (L *OrbitalLayout) OrbitalShifts(v *ShiftVector, spin int, dst []float64) error {
	if v == nil || dst == nil {
		return CError{string(ErrNilData), []string{"OrbitalShifts"}}
	}
	if v.Rows() != L.mShell || v.NAtoms() != L.NAtoms() || len(dst) != L.nOrb || spin < 0 || spin >= v.Spins() {
		return CError{string(ErrShapeChange), []string{"OrbitalShifts"}}
	}
	for a := 0; a < L.NAtoms(); a++ {
		sp := L.SpeciesOf(a)
		off := L.orbOffset[a]
		for o := 0; o < sp.NOrbitals(); o++ {
			dst[off+o] = v.At(sp.orbShell[o], a, spin)
		}
	}
	return nil
}
