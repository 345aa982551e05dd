/*
 * scc.go, part of goDFTB.
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
	"log"
	"math"
	"sync/atomic"

	dftb "github.com/diegomartinez2/dftbplus"
	"gonum.org/v1/gonum/mat"
)

// State is the lifecycle state of a Driver. The three terminal states never
// transition further; a new run needs a new Driver.
type State int

const (
	Initial State = iota
	Iterating
	Converged
	MaxIterReached
	DiagFailed
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterReached:
		return "max iterations reached"
	case DiagFailed:
		return "diagonalization failed"
	}
	return "unknown"
}

// Params collects the configuration of one SCC run. The driver does not own any
// of it: geometry parsing, parameter-file loading and the initial guess are the
// caller's business.
type Params struct {
	Layout        *dftb.OrbitalLayout
	SpinChannels  int     //1, 2 or 4
	Tolerance     float64 //convergence threshold on the compressed residual
	MaxIterations int
	//Electrons per eigensolver channel: one entry for closed-shell and
	//non-collinear runs, two (up, down) for collinear spin-polarized ones.
	Electrons []float64
	//InitialCharges is the orbital-resolved starting guess in the
	//charge/magnetization representation. The driver copies it.
	InitialCharges *dftb.ChargeVector
	H0             *mat.SymDense //static (non-SCC) Hamiltonian
	Overlap        *mat.SymDense
}

//eigenChannels returns how many independent eigenproblems one iteration solves:
//two for collinear spin polarization, otherwise one (the non-collinear problem is
//a single doubled one, owned by the external solver and analyzer).
func (p *Params) eigenChannels() int {
	if p.SpinChannels == 2 {
		return 2
	}
	return 1
}

//maxOcc is the largest occupation of a single state in one eigenproblem channel.
func (p *Params) maxOcc() float64 {
	if p.SpinChannels == 1 {
		return 2.0
	}
	return 1.0
}

// Driver runs the self-consistent-charge fixed-point loop. Build one with
// MakeDriver, optionally attach a logger and a tracer, then call Run once.
// After Run returns, the terminal snapshot (charges in both representations,
// shifts, spin energies, residual) is frozen and readable through the accessors.
type Driver struct {
	p      Params
	equiv  *dftb.EquivalenceMap
	eig    Eigensolver
	pop    PopulationAnalyzer
	elec   ElectrostaticShifter
	mix    Mixer
	logger *log.Logger
	tracer Tracer
	//set only for four-channel runs, where the collaborators must also
	//implement the spinor contracts
	spinorEig SpinorEigensolver
	spinorPop SpinorPopulationAnalyzer

	state    State
	iter     int
	residual float64
	energy   float64 //spin energy of the current output density
	aborted  atomic.Bool

	//loop workspace, allocated once
	qIn       *dftb.ChargeVector //current trial, orbital-resolved, charge/mag
	qOut      *dftb.ChargeVector //output of the current iteration, charge/mag
	qOutUD    *dftb.ChargeVector //same, up/down
	shellQ    *dftb.ChargeVector //shell-resolved input charges
	shellQOut *dftb.ChargeVector //shell-resolved output charges
	shift     *dftb.ShiftVector  //electrostatic + spin shift, charge/mag
	shiftUD   *dftb.ShiftVector  //same, up/down
	spinShift *dftb.ShiftVector  //spin part only, pure-charge channel kept zero
	vorb      []float64
	ham       *mat.SymDense
	redIn     []float64
	redOut    []float64
	diff      []float64

	shiftBuilt bool
	//frozen results
	qFinal     *dftb.ChargeVector
	qFinalUD   *dftb.ChargeVector
	eSpin      float64
	eSpinAtoms []float64
}

// MakeDriver validates the configuration and assembles a Driver from it and the
// four collaborators. A nil elec defaults to NullShifter. All validation problems
// are reported as a critical ConfigError before any iteration work.
func MakeDriver(p *Params, eig Eigensolver, pop PopulationAnalyzer, elec ElectrostaticShifter, mix Mixer) (*Driver, error) {
	if p == nil || p.Layout == nil || p.InitialCharges == nil || p.H0 == nil || p.Overlap == nil {
		return nil, dftb.NewConfigError("nil configuration data")
	}
	if eig == nil || pop == nil || mix == nil {
		return nil, dftb.NewConfigError("nil collaborator")
	}
	if elec == nil {
		elec = NullShifter{}
	}
	if p.SpinChannels != 1 && p.SpinChannels != 2 && p.SpinChannels != 4 {
		return nil, dftb.NewConfigError("spin-channel count %d, want 1, 2 or 4", p.SpinChannels)
	}
	if p.Tolerance <= 0 {
		return nil, dftb.NewConfigError("non-positive SCC tolerance %g", p.Tolerance)
	}
	if p.MaxIterations < 0 {
		return nil, dftb.NewConfigError("negative iteration limit %d", p.MaxIterations)
	}
	if len(p.Electrons) != p.eigenChannels() {
		return nil, dftb.NewConfigError("%d electron counts given, want one per eigensolver channel (%d)", len(p.Electrons), p.eigenChannels())
	}
	L := p.Layout
	q := p.InitialCharges
	if q.Rows() != L.MaxOrbitals() || q.NAtoms() != L.NAtoms() || q.Spins() != p.SpinChannels {
		return nil, dftb.NewConfigError("initial charges shaped (%d,%d,%d), want (%d,%d,%d)", q.Rows(), q.NAtoms(), q.Spins(), L.MaxOrbitals(), L.NAtoms(), p.SpinChannels)
	}
	n := L.NOrbitals()
	if p.H0.SymmetricDim() != n || p.Overlap.SymmetricDim() != n {
		return nil, dftb.NewConfigError("Hamiltonian/overlap dimension (%d,%d) does not match the %d basis orbitals", p.H0.SymmetricDim(), p.Overlap.SymmetricDim(), n)
	}
	equiv, err := dftb.MakeEquivalenceMap(L, p.SpinChannels)
	if err != nil {
		return nil, dftb.NewConfigError("building the equivalence map: %v", err)
	}
	D := new(Driver)
	D.p = *p
	D.equiv = equiv
	D.eig = eig
	D.pop = pop
	D.elec = elec
	D.mix = mix
	if p.SpinChannels == 4 {
		var ok bool
		if D.spinorEig, ok = eig.(SpinorEigensolver); !ok {
			return nil, dftb.NewConfigError("a four-channel run needs an eigensolver implementing SpinorEigensolver, %T does not", eig)
		}
		if D.spinorPop, ok = pop.(SpinorPopulationAnalyzer); !ok {
			return nil, dftb.NewConfigError("a four-channel run needs a population analyzer implementing SpinorPopulationAnalyzer, %T does not", pop)
		}
	}
	D.state = Initial
	D.residual = math.Inf(1)
	D.qIn = q.Copy()
	ns := p.SpinChannels
	for _, v := range []**dftb.ChargeVector{&D.shellQ, &D.shellQOut, &D.shift, &D.shiftUD, &D.spinShift} {
		if *v, err = dftb.MakeShellVector(L, ns); err != nil {
			return nil, errDecorate(err, "MakeDriver")
		}
	}
	D.vorb = make([]float64, n)
	D.ham = mat.NewSymDense(n, nil)
	D.redIn = make([]float64, equiv.NClasses())
	D.redOut = make([]float64, equiv.NClasses())
	D.diff = make([]float64, equiv.NClasses())
	return D, nil
}

// SetLogger attaches a diagnostic logger. The driver only appends to it; a nil
// logger (the default) keeps the run silent.
func (D *Driver) SetLogger(l *log.Logger) { D.logger = l }

// SetTracer attaches a per-iteration trace sink, e.g. a ctrace.Writer. Trace
// failures are logged and otherwise ignored: diagnostics never perturb the run.
func (D *Driver) SetTracer(t Tracer) { D.tracer = t }

// RequestStop asks a running loop to stop at the next iteration boundary. The
// driver then freezes the current trial charges and reports a ConvergenceError,
// exactly as if the iteration budget had run out. Safe to call from another
// goroutine.
func (D *Driver) RequestStop() { D.aborted.Store(true) }

//assembleH builds the shifted Hamiltonian of one channel from the per-orbital
//potential shifts v: H(i,j) = H0(i,j) + (S(i,j)/2)(v(i)+v(j)).
func (D *Driver) assembleH(v []float64) {
	n := len(v)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			D.ham.SetSym(i, j, D.p.H0.At(i, j)+0.5*D.p.Overlap.At(i, j)*(v[i]+v[j]))
		}
	}
}

//step runs points 1-3 of one iteration: shift build, diagonalization and
//population analysis. It leaves the new charges in qOut/qOutUD.
func (D *Driver) step(iter int) error {
	//1. potential shift from the current trial density, charge/mag representation
	if err := D.p.Layout.ShellCharges(D.qIn, D.shellQ); err != nil {
		return errDecorate(err, "step")
	}
	es, err := D.elec.Shift(D.shellQ.Channels(0, 1))
	if err != nil {
		return errDecorate(err, "step")
	}
	D.shift.Zero()
	D.spinShift.Zero()
	copy(D.shift.Channel(0), es.Channel(0))
	if D.p.SpinChannels > 1 {
		ss, err := dftb.BuildSpinShift(D.shellQ.Channels(1, D.p.SpinChannels-1), D.p.Layout)
		if err != nil {
			return errDecorate(err, "step")
		}
		for s := 1; s < D.p.SpinChannels; s++ {
			copy(D.shift.Channel(s), ss.Channel(s-1))
			copy(D.spinShift.Channel(s), ss.Channel(s-1))
		}
	}
	D.shiftBuilt = true
	//the eigensolver consumes the up/down representation
	D.shiftUD.CopyFrom(D.shift)
	D.shiftUD.ToUpDown()
	if D.p.SpinChannels == 4 {
		return D.spinorStep(iter)
	}
	//2. one eigenproblem per collinear channel
	nc := D.p.eigenChannels()
	sols := make([]Eigenstates, nc)
	for c := 0; c < nc; c++ {
		if err := D.p.Layout.OrbitalShifts(D.shiftUD, c, D.vorb); err != nil {
			return errDecorate(err, "step")
		}
		D.assembleH(D.vorb)
		evals, evecs, status := D.eig.Diagonalize(D.ham, D.p.Overlap)
		if status != 0 {
			return &NumericalError{Status: status, Spin: c, Iter: iter}
		}
		sols[c] = Eigenstates{Evals: evals, Evecs: evecs, Occ: fillAufbau(len(evals), D.p.Electrons[c], D.p.maxOcc())}
	}
	//3. new charges, converted back to charge/mag for mixing
	qud, err := D.pop.Populations(sols, D.p.Overlap, D.p.Layout, D.p.SpinChannels)
	if err != nil {
		return errDecorate(err, "step")
	}
	if !qud.Congruent(D.qIn) {
		return Error{string(dftb.ErrShapeChange), []string{"step"}, true}
	}
	D.qOutUD = qud
	D.qOut = qud.Copy()
	D.qOut.ToChargeMag()
	return nil
}

//spinorStep runs points 2-3 of a four-channel iteration: the doubled
//non-collinear eigenproblem gets the static Hamiltonian and all four shift
//channels, since the magnetization potential has no real symmetric form.
func (D *Driver) spinorStep(iter int) error {
	v := make([][]float64, 4)
	for c := range v {
		v[c] = make([]float64, D.p.Layout.NOrbitals())
		if err := D.p.Layout.OrbitalShifts(D.shiftUD, c, v[c]); err != nil {
			return errDecorate(err, "spinorStep")
		}
	}
	evals, evecs, status := D.spinorEig.DiagonalizeSpinor(D.p.H0, D.p.Overlap, v)
	if status != 0 {
		return &NumericalError{Status: status, Spin: 0, Iter: iter}
	}
	sol := SpinorStates{Evals: evals, Evecs: evecs, Occ: fillAufbau(len(evals), D.p.Electrons[0], D.p.maxOcc())}
	q, err := D.spinorPop.SpinorPopulations(sol, D.p.Overlap, D.p.Layout)
	if err != nil {
		return errDecorate(err, "spinorStep")
	}
	if !q.Congruent(D.qIn) {
		return Error{string(dftb.ErrShapeChange), []string{"spinorStep"}, true}
	}
	D.qOutUD = q
	D.qOut = q.Copy()
	D.qOut.ToChargeMag()
	return nil
}

//updateEnergy refreshes the running spin energy from the output density and the
//spin part of the shift. Closed-shell runs have none.
func (D *Driver) updateEnergy() {
	D.energy = 0
	if D.p.SpinChannels == 1 {
		return
	}
	if err := D.p.Layout.ShellCharges(D.qOut, D.shellQOut); err != nil {
		return
	}
	e, err := dftb.SpinEnergyTotal(D.shellQOut, D.spinShift)
	if err == nil {
		D.energy = e
	}
}

//freeze records the terminal snapshot: state, final charges in both
//representations, and the spin energies of the final density.
func (D *Driver) freeze(st State, q *dftb.ChargeVector) {
	D.state = st
	D.qFinal = q.Copy()
	D.qFinalUD = q.Copy()
	D.qFinalUD.ToUpDown()
	D.eSpin = 0
	D.eSpinAtoms = make([]float64, D.p.Layout.NAtoms())
	if D.p.SpinChannels > 1 && D.shiftBuilt {
		if err := D.p.Layout.ShellCharges(D.qFinal, D.shellQOut); err == nil {
			if e, err := dftb.SpinEnergyTotal(D.shellQOut, D.spinShift); err == nil {
				D.eSpin = e
			}
			if ea, err := dftb.SpinEnergyAtoms(D.shellQOut, D.spinShift); err == nil {
				D.eSpinAtoms = ea
			}
		}
	}
}

// Run executes the fixed-point loop to one of its terminal states. It returns nil
// on convergence, a non-critical *ConvergenceError when the iteration budget is
// exhausted or a stop was requested (the last available charges stay readable),
// and a critical *NumericalError if the eigensolver fails, in which case the loop
// aborts immediately, with no further mixing and no usable charges. Calling Run
// on a driver that already ran is an error.
func (D *Driver) Run() error {
	if D.state != Initial {
		return dftb.NewConfigError("the driver already ran (state %q); build a new one for a new run", D.state)
	}
	D.mix.Reset(D.equiv.NClasses())
	D.state = Iterating
	for iter := 1; iter <= D.p.MaxIterations; iter++ {
		if D.aborted.Load() {
			D.freeze(MaxIterReached, D.qIn)
			return &ConvergenceError{Residual: D.residual, Iterations: D.iter}
		}
		if err := D.step(iter); err != nil {
			if ne, ok := err.(*NumericalError); ok {
				D.state = DiagFailed
				D.iter = iter
				if D.logger != nil {
					D.logger.Println("SCC aborted:", ne.Error())
				}
				return ne
			}
			return err
		}
		//4. residual over the compressed representation
		if _, err := D.equiv.Compress(D.qIn, D.redIn); err != nil {
			return errDecorate(err, "Run")
		}
		if _, err := D.equiv.Compress(D.qOut, D.redOut); err != nil {
			return errDecorate(err, "Run")
		}
		D.residual = dftb.MaxAbsDiff(D.redOut, D.redIn)
		D.iter = iter
		D.updateEnergy()
		if D.logger != nil {
			D.logger.Println("SCC iteration", iter, "residual =", D.residual, "spin energy =", D.energy)
		}
		if D.tracer != nil {
			if err := D.tracer.WNext(iter, D.residual, D.energy, D.redOut); err != nil && D.logger != nil {
				D.logger.Println("SCC trace write failed:", err)
			}
		}
		//5. mixing. The mixer runs on the converging iteration too, so its
		//history stays reproducible whatever the tolerance.
		for i := range D.diff {
			D.diff[i] = D.redOut[i] - D.redIn[i]
		}
		next, err := D.mix.Mix(D.redIn, D.diff)
		if err != nil {
			return errDecorate(err, "Run")
		}
		//6. transitions
		if D.residual < D.p.Tolerance {
			D.freeze(Converged, D.qOut)
			if D.logger != nil {
				D.logger.Println("SCC converged after iteration", iter)
			}
			return nil
		}
		if err := D.equiv.Expand(next, D.qIn); err != nil {
			return errDecorate(err, "Run")
		}
	}
	D.freeze(MaxIterReached, D.qIn)
	if D.logger != nil {
		D.logger.Println("Warning! SCC not converged after", D.p.MaxIterations, "iterations, residual =", D.residual)
	}
	return &ConvergenceError{Residual: D.residual, Iterations: D.iter}
}

// State returns the lifecycle state of the driver.
func (D *Driver) State() State { return D.state }

// Iterations returns how many iterations have completed.
func (D *Driver) Iterations() int { return D.iter }

// Residual returns the compressed-representation residual of the last completed
// iteration, +Inf before the first one.
func (D *Driver) Residual() float64 { return D.residual }

// Charges returns the frozen orbital-resolved charges in the charge/magnetization
// representation: the self-consistent output density on convergence, the last
// trial vector when the run stopped early, nil after a diagonalization failure
// or before termination.
func (D *Driver) Charges() *dftb.ChargeVector { return D.qFinal }

// SpinDensityUpDown returns the frozen charges in the up/down representation, or
// nil under the same conditions as Charges.
func (D *Driver) SpinDensityUpDown() *dftb.ChargeVector { return D.qFinalUD }

// Shifts returns a copy of the shell-resolved potential shift (electrostatic
// plus spin, in the charge/magnetization representation) of the last completed
// iteration. It is nil if none ran, and nil after a diagonalization failure,
// under the same contract as Charges.
func (D *Driver) Shifts() *dftb.ShiftVector {
	if !D.shiftBuilt || D.state == DiagFailed {
		return nil
	}
	return D.shift.Copy()
}

// SpinEnergy returns the total spin energy of the frozen density. It is zero for
// closed-shell runs and for runs that terminated before any iteration.
func (D *Driver) SpinEnergy() float64 { return D.eSpin }

// AtomSpinEnergies returns the atom-resolved spin energies of the frozen density,
// or nil before termination.
func (D *Driver) AtomSpinEnergies() []float64 { return D.eSpinAtoms }

// Equivalence returns the orbital equivalence map of the run, for reuse by
// response and force modules.
func (D *Driver) Equivalence() *dftb.EquivalenceMap { return D.equiv }
