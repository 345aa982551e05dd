/*
 * dftb_test.go, part of goDFTB.
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
	"testing"
)

const testEps = 1e-12

//a species with an s and a p shell, and the coupling constants of nitrogen-like
//parametrizations.
func spSpecies(Te *testing.T) *Species {
	S, err := MakeSpecies("N", []int{0, 1}, []float64{-0.03, -0.025, -0.025, -0.023})
	if err != nil {
		Te.Fatal(err)
	}
	return S
}

func sSpecies(Te *testing.T) *Species {
	S, err := MakeSpecies("H", []int{0}, []float64{-0.07})
	if err != nil {
		Te.Fatal(err)
	}
	return S
}

func TestMakeSpecies(Te *testing.T) {
	S := spSpecies(Te)
	if S.NShells() != 2 || S.NOrbitals() != 4 {
		Te.Errorf("sp species has %d shells and %d orbitals", S.NShells(), S.NOrbitals())
	}
	if S.ShellOfOrbital(0) != 0 || S.ShellOfOrbital(1) != 1 || S.ShellOfOrbital(3) != 1 {
		Te.Error("wrong shell assignment for the sp orbitals")
	}
	if S.SpinCoupling(0, 1) != -0.025 {
		Te.Error("wrong coupling constant:", S.SpinCoupling(0, 1))
	}
	//an asymmetric W must be rejected
	_, err := MakeSpecies("bad", []int{0, 1}, []float64{-0.03, -0.025, -0.020, -0.023})
	if err == nil {
		Te.Error("asymmetric coupling matrix accepted")
	}
	fmt.Println("species built:", S.Name, S.NShells(), "shells")
}

func TestSpinTransformRoundTrip(Te *testing.T) {
	Q, err := MakeChargeVector(1, 1, 2)
	if err != nil {
		Te.Fatal(err)
	}
	Q.Set(0, 0, 0, 2.0) //q
	Q.Set(0, 0, 1, 0.4) //m
	Q.ToUpDown()
	if math.Abs(Q.At(0, 0, 0)-1.2) > testEps || math.Abs(Q.At(0, 0, 1)-0.8) > testEps {
		Te.Errorf("up/down conversion gave (%g, %g), want (1.2, 0.8)", Q.At(0, 0, 0), Q.At(0, 0, 1))
	}
	Q.ToChargeMag()
	if math.Abs(Q.At(0, 0, 0)-2.0) > testEps || math.Abs(Q.At(0, 0, 1)-0.4) > testEps {
		Te.Errorf("round trip gave (%g, %g), want (2.0, 0.4)", Q.At(0, 0, 0), Q.At(0, 0, 1))
	}
}

func TestSpinTransformIdentity(Te *testing.T) {
	for _, ns := range []int{1, 4} {
		Q, err := MakeChargeVector(2, 3, ns)
		if err != nil {
			Te.Fatal(err)
		}
		for i := range Q.Raw() {
			Q.Raw()[i] = float64(i) * 0.1
		}
		ref := Q.Copy()
		Q.ToUpDown()
		if Q.MaxDiff(ref) != 0 {
			Te.Errorf("ToUpDown not an identity for %d channels", ns)
		}
		Q.ToChargeMag()
		if Q.MaxDiff(ref) != 0 {
			Te.Errorf("ToChargeMag not an identity for %d channels", ns)
		}
	}
	//3 channels have no defined basis transform
	defer func() {
		if recover() == nil {
			Te.Error("3-channel basis transform did not panic")
		}
	}()
	Q, _ := MakeChargeVector(1, 1, 3)
	Q.ToUpDown()
}

func TestBuildSpinShift(Te *testing.T) {
	S := spSpecies(Te)
	L, err := MakeOrbitalLayout([]*Species{S}, []int{0})
	if err != nil {
		Te.Fatal(err)
	}
	q, err := MakeShellVector(L, 1)
	if err != nil {
		Te.Fatal(err)
	}
	q.Set(0, 0, 0, 0.1)
	q.Set(1, 0, 0, -0.05)
	v, err := BuildSpinShift(q, L)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(v.At(0, 0, 0)-(-0.00175)) > testEps || math.Abs(v.At(1, 0, 0)-(-0.00135)) > testEps {
		Te.Errorf("spin shift (%g, %g), want (-0.00175, -0.00135)", v.At(0, 0, 0), v.At(1, 0, 0))
	}
	//the pure-charge channel must never reach the builder
	q2, _ := MakeShellVector(L, 2)
	if _, err := BuildSpinShift(q2, L); err == nil {
		Te.Error("2-channel input accepted by the spin shift builder")
	}
	fmt.Println("spin shift:", v.Raw())
}

//BuildSpinShift splits its atoms over goroutines; many atoms of two species
//exercise the chunked path against the sequential formula.
func TestBuildSpinShiftManyAtoms(Te *testing.T) {
	sp := spSpecies(Te)
	s := sSpecies(Te)
	natoms := 37
	as := make([]int, natoms)
	for i := range as {
		as[i] = i % 2
	}
	L, err := MakeOrbitalLayout([]*Species{sp, s}, as)
	if err != nil {
		Te.Fatal(err)
	}
	q, _ := MakeShellVector(L, 3)
	for i := range q.Raw() {
		q.Raw()[i] = math.Sin(float64(i))
	}
	v, err := BuildSpinShift(q, L)
	if err != nil {
		Te.Fatal(err)
	}
	for s2 := 0; s2 < 3; s2++ {
		for a := 0; a < natoms; a++ {
			spa := L.SpeciesOf(a)
			for l1 := 0; l1 < spa.NShells(); l1++ {
				want := 0.0
				for l2 := 0; l2 < spa.NShells(); l2++ {
					want += spa.SpinCoupling(l1, l2) * q.At(l2, a, s2)
				}
				if math.Abs(v.At(l1, a, s2)-want) > testEps {
					Te.Fatalf("shift (%d,%d,%d) = %g, want %g", l1, a, s2, v.At(l1, a, s2), want)
				}
			}
		}
	}
}

func TestEquivalenceMap(Te *testing.T) {
	//two one-orbital atoms, two spin channels: the second channel repeats the
	//first one's pattern offset by its maximum id.
	s := sSpecies(Te)
	L, err := MakeOrbitalLayout([]*Species{s}, []int{0, 0})
	if err != nil {
		Te.Fatal(err)
	}
	E, err := MakeEquivalenceMap(L, 2)
	if err != nil {
		Te.Fatal(err)
	}
	want := [][3]int{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0, 1, 1}}
	for i, w := range want {
		if E.ID(w[0], w[1], w[2]) != i+1 {
			Te.Errorf("slot %v has id %d, want %d", w, E.ID(w[0], w[1], w[2]), i+1)
		}
	}
	if E.NClasses() != 4 {
		Te.Error("wrong class count:", E.NClasses())
	}
	//four channels repeat the same pattern, each offset by the running maximum
	E4, err := MakeEquivalenceMap(L, 4)
	if err != nil {
		Te.Fatal(err)
	}
	id := 0
	for s := 0; s < 4; s++ {
		for a := 0; a < 2; a++ {
			id++
			if E4.ID(0, a, s) != id {
				Te.Errorf("slot (0,%d,%d) has id %d, want %d", a, s, E4.ID(0, a, s), id)
			}
		}
	}
	if E4.NClasses() != 8 {
		Te.Error("wrong four-channel class count:", E4.NClasses())
	}
	if _, err := MakeEquivalenceMap(L, 3); err == nil {
		Te.Error("3-channel equivalence map accepted")
	}
}

func TestEquivalencePadding(Te *testing.T) {
	//mixed species: the s-only atom leaves padding slots, which keep id 0 and
	//survive Expand untouched.
	sp := spSpecies(Te)
	s := sSpecies(Te)
	L, err := MakeOrbitalLayout([]*Species{sp, s}, []int{0, 1})
	if err != nil {
		Te.Fatal(err)
	}
	E, err := MakeEquivalenceMap(L, 1)
	if err != nil {
		Te.Fatal(err)
	}
	//atom 0: s shell id 1, p shell id 2 on three orbitals; atom 1: id 3
	if E.ID(0, 0, 0) != 1 || E.ID(1, 0, 0) != 2 || E.ID(3, 0, 0) != 2 || E.ID(0, 1, 0) != 3 {
		Te.Error("wrong shell class ids")
	}
	for o := 1; o < 4; o++ {
		if E.ID(o, 1, 0) != 0 {
			Te.Error("padding slot carries a class id")
		}
	}
	if E.NClasses() != 3 {
		Te.Fatal("wrong class count:", E.NClasses())
	}
	Q, _ := MakeOrbitalVector(L, 1)
	Q.Set(0, 0, 0, 1.5)
	for o := 1; o < 4; o++ {
		Q.Set(o, 0, 0, 0.9)
	}
	Q.Set(0, 1, 0, 1.1)
	Q.Set(1, 1, 0, 42) //padding, must survive
	red, err := E.Compress(Q, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if red[0] != 1.5 || red[1] != 0.9 || red[2] != 1.1 {
		Te.Error("wrong compressed representation:", red)
	}
	red[1] = 0.7
	if err := E.Expand(red, Q); err != nil {
		Te.Fatal(err)
	}
	for o := 1; o < 4; o++ {
		if Q.At(o, 0, 0) != 0.7 {
			Te.Error("class value not scattered to orbital", o)
		}
	}
	if Q.At(1, 1, 0) != 42 {
		Te.Error("padding slot overwritten by Expand")
	}
}

func TestShellAndOrbitalMapping(Te *testing.T) {
	sp := spSpecies(Te)
	s := sSpecies(Te)
	L, err := MakeOrbitalLayout([]*Species{sp, s}, []int{0, 1})
	if err != nil {
		Te.Fatal(err)
	}
	if L.NOrbitals() != 5 || L.MaxShells() != 2 || L.MaxOrbitals() != 4 {
		Te.Fatal("wrong layout dimensions")
	}
	q, _ := MakeOrbitalVector(L, 1)
	q.Set(0, 0, 0, 1.2)
	for o := 1; o < 4; o++ {
		q.Set(o, 0, 0, 0.5)
	}
	q.Set(0, 1, 0, 0.9)
	sh, _ := MakeShellVector(L, 1)
	if err := L.ShellCharges(q, sh); err != nil {
		Te.Fatal(err)
	}
	if math.Abs(sh.At(0, 0, 0)-1.2) > testEps || math.Abs(sh.At(1, 0, 0)-1.5) > testEps || math.Abs(sh.At(0, 1, 0)-0.9) > testEps {
		Te.Error("wrong shell charges:", sh.Raw())
	}
	v, _ := MakeShellVector(L, 1)
	v.Set(0, 0, 0, -0.1)
	v.Set(1, 0, 0, 0.3)
	v.Set(0, 1, 0, 0.2)
	dst := make([]float64, L.NOrbitals())
	if err := L.OrbitalShifts(v, 0, dst); err != nil {
		Te.Fatal(err)
	}
	want := []float64{-0.1, 0.3, 0.3, 0.3, 0.2}
	for i, w := range want {
		if math.Abs(dst[i]-w) > testEps {
			Te.Errorf("orbital shift %d = %g, want %g", i, dst[i], w)
		}
	}
}

func TestSpinEnergy(Te *testing.T) {
	q, err := MakeChargeVector(2, 3, 2)
	if err != nil {
		Te.Fatal(err)
	}
	v, _ := MakeChargeVector(2, 3, 2)
	for i := range q.Raw() {
		q.Raw()[i] = 0.1 * float64(i+1)
		v.Raw()[i] = -0.01 * float64(i)
	}
	tot, err := SpinEnergyTotal(q, v)
	if err != nil {
		Te.Fatal(err)
	}
	atoms, err := SpinEnergyAtoms(q, v)
	if err != nil {
		Te.Fatal(err)
	}
	sum := 0.0
	for _, e := range atoms {
		sum += e
	}
	if math.Abs(tot-sum) > testEps {
		Te.Errorf("atom energies sum to %g, total is %g", sum, tot)
	}
	//a single channel has no spin energy to evaluate
	q1, _ := MakeChargeVector(2, 3, 1)
	if _, err := SpinEnergyTotal(q1, q1); err == nil {
		Te.Error("single-channel spin energy accepted")
	}
	fmt.Println("spin energy:", tot, "atoms:", atoms)
}

func TestChargeVectorViews(Te *testing.T) {
	Q, err := MakeChargeVector(2, 2, 2)
	if err != nil {
		Te.Fatal(err)
	}
	for i := range Q.Raw() {
		Q.Raw()[i] = float64(i)
	}
	//a channel view shares storage
	V := Q.Channels(1, 1)
	if V.Spins() != 1 || V.At(0, 0, 0) != Q.At(0, 0, 1) {
		Te.Error("channel view does not alias the parent")
	}
	V.Set(1, 1, 0, -5)
	if Q.At(1, 1, 1) != -5 {
		Te.Error("write through the view not visible in the parent")
	}
	b := Q.AtomBlock(1, 0)
	if len(b) != 2 || b[0] != Q.At(0, 1, 0) {
		Te.Error("wrong atom block")
	}
	P := Q.Copy()
	P.AddScaled(2, Q)
	if P.At(0, 0, 1) != 3*Q.At(0, 0, 1) {
		Te.Error("AddScaled broken")
	}
	if Q.MaxDiff(P) != 2*floatsMax(Q.Raw()) {
		Te.Error("MaxDiff disagrees with AddScaled")
	}
}

func floatsMax(a []float64) float64 {
	r := a[0]
	for _, v := range a {
		if v > r {
			r = v
		}
	}
	return r
}
