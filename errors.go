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

package dftb

import "fmt"

//This error predates the "wrapping" error system of Go (i.e. the "%w" directive and the errors package).
//It is kept because the Decorate mechanism gives a cheap call-stack trail without changing the error's type.

// Error is the interface for errors that all packages in this library implement. The Decorate
// method allows to add and retrieve info from the error without changing its type or wrapping
// it around something else.
type Error interface {
	Error() string
	Critical() bool
	Decorate(string) []string //Adds information when passing the error up. Each call returns the current "decoration" slice of strings. If passed an empty string, it only returns the current value, without adding anything.
	//The decorate slice should contain a list of functions in the calling stack plus, for each function, any relevant information, in the format "FunctionName: Extra info".
}

// CError is the concrete Error used by the dftb package. All CError are critical.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds the dec string to the decoration slice of the error, and returns
// the resulting slice. An empty dec is not added.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical reports whether the error is critical or can be ignored. CError always is.
func (err CError) Critical() bool { return true }

// ConfigError reports an invalid configuration (bad spin-channel count, shape mismatch
// between charge/shift/equivalence data) detected before any work starts. Always critical.
type ConfigError struct {
	msg  string
	deco []string
}

// NewConfigError returns a ConfigError with the given message.
func NewConfigError(format string, a ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, a...)}
}

func (err *ConfigError) Error() string  { return "dftb: bad configuration: " + err.msg }
func (err *ConfigError) Critical() bool { return true }

func (err *ConfigError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// errDecorate asserts that err implements Error and decorates it with the caller's
// name before returning it. Calling it with any other error type panics.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

// PanicMsg is a message used for panics on broken internal invariants, even though it
// does satisfy the error interface. For recoverable conditions use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilData     = PanicMsg("dftb: nil data given")
	ErrShapeChange = PanicMsg("dftb: shape mismatch between spin-resolved arrays")
	ErrSpinCount   = PanicMsg("dftb: unsupported spin-channel count")
)
