/*
 * errors.go, part of goDFTB.
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
)

//errDecorate decorates err with the caller's name, keeping its type when it
//already implements dftb.Error, and wrapping it into a critical Error when it
//comes from an external collaborator that does not.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(dftb.Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return Error{err.Error(), []string{caller}, true}
}

// Error is the concrete dftb.Error of this package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate adds the dec string to the decoration slice of the error and returns
// the resulting slice. An empty dec is not added.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

// ConvergenceError reports that the loop exhausted its iteration budget with the
// residual still above tolerance. It is the only non-critical error of the
// package: the driver retains the last available charges, and the caller decides
// whether to accept the non-converged result.
type ConvergenceError struct {
	Residual   float64 //the residual of the last iteration
	Iterations int     //how many iterations ran
	deco       []string
}

func (err *ConvergenceError) Error() string {
	return fmt.Sprintf("scc: not converged after %d iterations, residual %g", err.Iterations, err.Residual)
}

// Critical returns false: a non-converged run still carries usable charges.
func (err *ConvergenceError) Critical() bool { return false }

// Decorate adds the dec string to the decoration slice of the error and returns
// the resulting slice. An empty dec is not added.
func (err *ConvergenceError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// NumericalError reports an eigensolver failure. It is critical: the loop aborts
// immediately, with no further mixing, and no result is usable.
type NumericalError struct {
	Status int //the solver's status code
	Spin   int //the spin channel being diagonalized
	Iter   int //the iteration in which the failure happened
	deco   []string
}

func (err *NumericalError) Error() string {
	return fmt.Sprintf("scc: eigensolver failed with status %d on spin channel %d in iteration %d", err.Status, err.Spin, err.Iter)
}

// Critical returns true.
func (err *NumericalError) Critical() bool { return true }

// Decorate adds the dec string to the decoration slice of the error and returns
// the resulting slice. An empty dec is not added.
func (err *NumericalError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}
