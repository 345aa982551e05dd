/*
 * plot_test.go, part of goDFTB.
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

package sccplot

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/diegomartinez2/dftbplus/ctrace"
)

func TestResiduals(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "residuals.png")
	res := []float64{0.5, 0.1, 0.02, 0.004, 8e-4}
	if err := Residuals(res, name); err != nil {
		Te.Fatal(err)
	}
	fi, err := os.Stat(name)
	if err != nil || fi.Size() == 0 {
		Te.Error("no residual plot written")
	}
	if err := Residuals(nil, name); err == nil {
		Te.Error("nil data accepted")
	}
	//all-zero residuals leave nothing to put on a log axis
	if err := Residuals([]float64{0, 0}, name); err == nil {
		Te.Error("non-positive residuals accepted")
	}
	fmt.Println("wrote", name)
}

func TestEnergies(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "energies.png")
	if err := Energies([]float64{-0.5, -0.52, -0.521}, name); err != nil {
		Te.Fatal(err)
	}
	fi, err := os.Stat(name)
	if err != nil || fi.Size() == 0 {
		Te.Error("no energy plot written")
	}
	if err := Energies(nil, name); err == nil {
		Te.Error("nil data accepted")
	}
}

func TestFromTrace(Te *testing.T) {
	dir := Te.TempDir()
	trc := filepath.Join(dir, "run.trc.zst")
	W, err := ctrace.NewWriter(trc, 2)
	if err != nil {
		Te.Fatal(err)
	}
	for i, r := range []float64{0.3, 0.05, 0.001} {
		if err := W.WNext(i+1, r, -0.5, []float64{1 - r, 1 + r}); err != nil {
			Te.Fatal(err)
		}
	}
	W.Close()
	name := filepath.Join(dir, "run.png")
	if err := FromTrace(trc, name); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(name); err != nil {
		Te.Error("no plot written from the trace")
	}
	if err := FromTrace(filepath.Join(dir, "absent.trc.zst"), name); err == nil {
		Te.Error("a missing trace accepted")
	}
}
