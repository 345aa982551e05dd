/*
 * ctrace.go, part of goDFTB.
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

/*Package ctrace reads and writes SCC charge traces: one compressed, append-only
text frame per iteration, holding the iteration number, the residual, the spin
energy and the compressed (one value per equivalence class) charges. The format is
zstd-compressed plain text, so a trace survives partial runs and can be inspected
with standard tools. The file name is always an explicit argument; the package
holds no default name. A Writer satisfies the scc.Tracer interface.*/
package ctrace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Frame is one recorded iteration of a trace.
type Frame struct {
	Iter     int
	Residual float64
	Energy   float64
	Red      []float64 //compressed charges, one value per equivalence class
}

//Write!

// Writer appends iteration frames to a compressed trace file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	nclasses  int
	filename  string
	writeable bool
}

// NewWriter creates the named trace file for nclasses equivalence classes,
// truncating any previous content.
func NewWriter(name string, nclasses int) (*Writer, error) {
	if nclasses <= 0 {
		return nil, Error{fmt.Sprintf("%d equivalence classes", nclasses), name, []string{"NewWriter"}, true}
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W.h, err = zstd.NewWriter(W.f)
	if err != nil {
		W.f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W.nclasses = nclasses
	W.filename = name
	W.writeable = true
	if _, err := W.h.Write([]byte(fmt.Sprintf("** %d\n", nclasses))); err != nil {
		W.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	return W, nil
}

// WNext appends one frame. The red slice is copied into the file and not
// retained, so the Writer can be handed to an scc.Driver as its Tracer.
func (W *Writer) WNext(iter int, residual, energy float64, red []float64) error {
	if !W.writeable {
		return Error{TraceUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if red == nil {
		return Error{NilCharges, W.filename, []string{"WNext"}, true}
	}
	if len(red) != W.nclasses {
		return Error{fmt.Sprintf("%d charges given, but %d expected", len(red), W.nclasses), W.filename, []string{"WNext"}, true}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %d %.17g %.17g\n", iter, residual, energy)
	for _, v := range red {
		fmt.Fprintf(&b, "%.17g\n", v)
	}
	b.WriteString("*\n")
	if _, err := W.h.Write([]byte(b.String())); err != nil {
		return Error{err.Error(), W.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes and closes the trace. The Writer can not be used after this call.
func (W *Writer) Close() {
	if W == nil {
		return
	}
	if W.writeable {
		W.h.Close()
		W.f.Close()
	}
	W.writeable = false
}

// NClasses returns the number of equivalence classes per frame.
func (W *Writer) NClasses() int {
	return W.nclasses
}

//Read!

//why couldn't *zstd.Decoder implement io.ReadCloser? :-(
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

// Reader reads the frames of a trace back, in order.
type Reader struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	nclasses int
	filename string
	readable bool
}

// NewReader opens the named trace for reading and parses its header.
func NewReader(name string) (*Reader, error) {
	R := new(Reader)
	R.filename = name
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewReader"}, true}
	}
	d, err := zstd.NewReader(bufio.NewReader(R.f))
	if err != nil {
		R.f.Close()
		return nil, Error{err.Error(), name, []string{"NewReader"}, true}
	}
	R.z = zstdql{d.Close, d}
	R.h = bufio.NewReader(R.z)
	str, err := R.h.ReadString('\n')
	if err != nil {
		R.Close()
		return nil, Error{"Can't read header: " + err.Error(), name, []string{"NewReader"}, true}
	}
	fields := strings.Fields(str)
	if len(fields) != 2 || fields[0] != "**" {
		R.Close()
		return nil, Error{WrongFormat + ": bad header: " + str, name, []string{"NewReader"}, true}
	}
	R.nclasses, err = strconv.Atoi(fields[1])
	if err != nil || R.nclasses <= 0 {
		R.Close()
		return nil, Error{fmt.Sprintf("Can't read class count from '%s'", str), name, []string{"NewReader"}, true}
	}
	R.readable = true
	return R, nil
}

// Readable returns true if it is possible to call Next on the reader.
func (R *Reader) Readable() bool {
	return R.readable
}

// NClasses returns the number of equivalence classes per frame.
func (R *Reader) NClasses() int {
	return R.nclasses
}

// Next returns the next frame of the trace. At the end of the trace it returns a
// nil frame and a non-critical error for which IsLastFrame returns true.
func (R *Reader) Next() (*Frame, error) {
	if !R.readable {
		return nil, Error{TraceUnIniRead, R.filename, []string{"Next"}, true}
	}
	str, err := R.h.ReadString('\n')
	if err == io.EOF {
		return nil, lastFrameError{fileName: R.filename}
	}
	if err != nil {
		return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	F := new(Frame)
	fields := strings.Fields(str)
	if len(fields) != 4 || fields[0] != "#" {
		return nil, Error{WrongFormat + ": bad frame header: " + str, R.filename, []string{"Next"}, true}
	}
	if F.Iter, err = strconv.Atoi(fields[1]); err != nil {
		return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	if F.Residual, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	if F.Energy, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	F.Red = make([]float64, R.nclasses)
	for i := 0; i < R.nclasses; i++ {
		str, err = R.h.ReadString('\n')
		if err != nil {
			return nil, Error{ReadError + ": " + err.Error(), R.filename, []string{"Next"}, true}
		}
		if F.Red[i], err = strconv.ParseFloat(strings.TrimSuffix(str, "\n"), 64); err != nil {
			return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
		}
	}
	str, err = R.h.ReadString('\n')
	if err != nil || strings.TrimSpace(str) != "*" {
		return nil, Error{"Can't read the frame termination mark", R.filename, []string{"Next"}, true}
	}
	return F, nil
}

// Close closes the reader. It can not be used after this call.
func (R *Reader) Close() {
	if R == nil {
		return
	}
	if R.readable || R.z != nil {
		if R.z != nil {
			R.z.Close()
		}
		R.f.Close()
	}
	R.readable = false
}
