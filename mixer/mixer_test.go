/*
 * mixer_test.go, part of goDFTB.
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

package mixer

import (
	"fmt"
	"math"
	"testing"
)

func TestLinear(Te *testing.T) {
	if _, err := NewLinear(0); err == nil {
		Te.Error("zero mixing fraction accepted")
	}
	if _, err := NewLinear(1.5); err == nil {
		Te.Error("mixing fraction above 1 accepted")
	}
	M, err := NewLinear(0.5)
	if err != nil {
		Te.Fatal(err)
	}
	M.Reset(2)
	next, err := M.Mix([]float64{1, 2}, []float64{0.5, -0.5})
	if err != nil {
		Te.Fatal(err)
	}
	if next[0] != 1.25 || next[1] != 1.75 {
		Te.Error("wrong linear step:", next)
	}
	if _, err := M.Mix([]float64{1}, []float64{1}); err == nil {
		Te.Error("wrong vector length accepted")
	}
}

func TestAndersonFirstStep(Te *testing.T) {
	if _, err := NewAnderson(0.5, 1); err == nil {
		Te.Error("history depth below 2 accepted")
	}
	M, err := NewAnderson(0.5, 3)
	if err != nil {
		Te.Fatal(err)
	}
	M.Reset(2)
	//with a single history entry the step is plain linear mixing
	next, err := M.Mix([]float64{1, 2}, []float64{0.5, -0.5})
	if err != nil {
		Te.Fatal(err)
	}
	if next[0] != 1.25 || next[1] != 1.75 {
		Te.Error("wrong first step:", next)
	}
}

//For a residual that is linear in the trial, two history entries determine the
//root exactly, so the second Anderson step lands on the fixed point.
func TestAndersonLinearResidual(Te *testing.T) {
	target := []float64{0.3, -0.7}
	resid := func(x []float64) []float64 {
		r := make([]float64, len(x))
		for i := range x {
			r[i] = 0.5 * (target[i] - x[i])
		}
		return r
	}
	M, err := NewAnderson(1.0, 4)
	if err != nil {
		Te.Fatal(err)
	}
	M.Reset(2)
	x := []float64{0, 0}
	for k := 0; k < 2; k++ {
		x, err = M.Mix(x, resid(x))
		if err != nil {
			Te.Fatal(err)
		}
	}
	for i := range x {
		if math.Abs(x[i]-target[i]) > 1e-12 {
			Te.Fatal("second step missed the root:", x)
		}
	}
	fmt.Println("extrapolated trial:", x)
}

func TestAndersonSingularFallback(Te *testing.T) {
	M, err := NewAnderson(0.5, 3)
	if err != nil {
		Te.Fatal(err)
	}
	M.Reset(2)
	//identical trial/residual pairs make the history singular; the mixer must
	//degrade to the linear step instead of failing
	if _, err := M.Mix([]float64{1, 1}, []float64{0.2, 0.2}); err != nil {
		Te.Fatal(err)
	}
	next, err := M.Mix([]float64{1, 1}, []float64{0.2, 0.2})
	if err != nil {
		Te.Fatal(err)
	}
	if next[0] != 1.1 || next[1] != 1.1 {
		Te.Error("wrong fallback step:", next)
	}
}

func TestAndersonReset(Te *testing.T) {
	M, err := NewAnderson(1.0, 2)
	if err != nil {
		Te.Fatal(err)
	}
	M.Reset(1)
	if _, err := M.Mix([]float64{1}, []float64{1}); err != nil {
		Te.Fatal(err)
	}
	M.Reset(1)
	if len(M.trials) != 0 || len(M.resids) != 0 {
		Te.Error("Reset kept the history")
	}
	//after a reset the first step is linear again
	next, err := M.Mix([]float64{2}, []float64{-1})
	if err != nil {
		Te.Fatal(err)
	}
	if next[0] != 1 {
		Te.Error("wrong step after reset:", next)
	}
}
