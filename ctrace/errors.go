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

package ctrace

import "fmt"

// Error is the general structure for charge-trace errors. It fulfills dftb.Error
// and carries the name of the offending file.
type Error struct {
	message  string
	filename string //the trace file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("ctrace file %s error: %s", err.filename, err.message)
}

// Decorate adds new information to the error and returns the resulting
// decoration slice.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the trace file associated to the error.
func (err Error) FileName() string { return err.filename }

// Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	TraceUnIniRead  = "Trace object uninitialized to read"
	TraceUnIniWrite = "Trace object uninitialized to write"
	ReadError       = "Error reading frame"
	NilCharges      = "Given nil charges"
	WrongFormat     = "Wrong format in the trace file or frame"
)

//lastFrameError signals a normal end of trace. It is not critical.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (err lastFrameError) Error() string { return "EOF" }

func (err lastFrameError) FileName() string { return err.fileName }

func (err lastFrameError) Critical() bool { return false }

func (err lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//does nothing, it only marks the type as a normal termination
func (err lastFrameError) NormalLastFrameTermination() {}

// IsLastFrame returns true when err only signals the normal end of a trace, so
// callers can filter it in a type switch-free way.
func IsLastFrame(err error) bool {
	_, ok := err.(interface{ NormalLastFrameTermination() })
	return ok
}
