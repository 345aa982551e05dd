/*
 * plot.go, part of goDFTB.
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

/*Package sccplot draws convergence plots from SCC runs and their charge traces.
Output file names are always explicit arguments.*/
package sccplot

import (
	"fmt"
	"image/color"

	"github.com/diegomartinez2/dftbplus/ctrace"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Residuals plots the residual of each iteration on a logarithmic axis and saves
// the plot as a PNG file with the given name.
func Residuals(res []float64, filename string) error {
	if res == nil {
		return fmt.Errorf("sccplot: given nil data")
	}
	pts := make(plotter.XYs, 0, len(res))
	for i, r := range res {
		if r <= 0 { //a zero residual can not go on a log axis
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i + 1), Y: r})
	}
	if len(pts) == 0 {
		return fmt.Errorf("sccplot: no positive residuals to plot")
	}
	p := plot.New()
	p.Title.Text = "SCC convergence"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Residual"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 255, A: 255}
	p.Add(line)
	return p.Save(4*vg.Inch, 4*vg.Inch, filename)
}

// Energies plots the spin energy of each iteration and saves the plot as a PNG
// file with the given name.
func Energies(energies []float64, filename string) error {
	if energies == nil {
		return fmt.Errorf("sccplot: given nil data")
	}
	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i + 1)
		pts[i].Y = e
	}
	p := plot.New()
	p.Title.Text = "Spin energy"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "E (Ha)"
	p.Add(plotter.NewGrid())
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 255, A: 255}
	p.Add(line)
	return p.Save(4*vg.Inch, 4*vg.Inch, filename)
}

// FromTrace reads a whole charge trace and plots its residuals into the PNG file
// plotname.
func FromTrace(tracename, plotname string) error {
	R, err := ctrace.NewReader(tracename)
	if err != nil {
		return err
	}
	defer R.Close()
	var res []float64
	for {
		F, err := R.Next()
		if err != nil {
			if ctrace.IsLastFrame(err) {
				break
			}
			return err
		}
		res = append(res, F.Residual)
	}
	return Residuals(res, plotname)
}
