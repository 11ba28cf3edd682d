package scenario

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/cottand/slottype/engine"
	"github.com/cottand/slottype/graph"
	"github.com/cottand/slottype/internal/log"
	"github.com/cottand/slottype/typeexpr"
)

var logger = log.DefaultLogger.With("section", "scenario")

// Outcome is what happened in one step
type Outcome struct {
	Step   int    `yaml:"step"`
	Action string `yaml:"action"`
	Passed bool   `yaml:"passed"`
	// Got describes the result, or the error if there was one
	Got string `yaml:"got"`
	// Want describes the expectation
	Want string `yaml:"want"`
}

type Report struct {
	Scenario string    `yaml:"scenario"`
	Outcomes []Outcome `yaml:"outcomes"`
}

func (r *Report) Passed() bool {
	return !slices.ContainsFunc(r.Outcomes, func(o Outcome) bool { return !o.Passed })
}

// Failures returns the outcomes that did not pass
func (r *Report) Failures() []Outcome {
	var ret []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			ret = append(ret, o)
		}
	}
	return ret
}

// run is the state of one execution of a scenario
type run struct {
	engine *engine.Engine
	ws     *graph.Workspace
}

// Run sets up the workspace and executes every step. Failed expectations are
// reported in the Report; the error is only for scenarios that cannot be set up.
func (s *Scenario) Run() (*Report, error) {
	h, err := s.loadHierarchy()
	if err != nil {
		return nil, errors.Wrapf(err, "scenario '%s'", s.Name)
	}
	e := engine.New(h)
	ws := graph.NewWorkspace(e)
	e.SetHost(ws)
	for _, b := range s.Blocks {
		if _, err := ws.NewBlock(b.spec()); err != nil {
			return nil, errors.Wrapf(err, "scenario '%s'", s.Name)
		}
	}

	r := &run{engine: e, ws: ws}
	report := &Report{Scenario: s.Name}
	for i, st := range s.Steps {
		o := r.step(st)
		o.Step = i + 1
		logger.Debug("ran step", "scenario", s.Name, "step", o.Step, "action", o.Action, "passed", o.Passed)
		report.Outcomes = append(report.Outcomes, o)
	}
	return report, nil
}

func (b Block) spec() graph.BlockSpec {
	slot := func(check *string) *graph.SlotSpec {
		if check == nil {
			return nil
		}
		return &graph.SlotSpec{Check: *check}
	}
	spec := graph.BlockSpec{
		ID:       b.ID,
		Output:   slot(b.Output),
		Previous: slot(b.Previous),
		Next:     slot(b.Next),
	}
	for _, in := range b.Inputs {
		spec.Inputs = append(spec.Inputs, graph.InputSpec{Name: in.Name, Check: in.Check})
	}
	return spec
}

// action describes the step, and checks that it does exactly one thing
func (st Step) action() (string, error) {
	var actions []string
	pair := func(verb string, refs []string) {
		if refs != nil {
			actions = append(actions, verb+" "+strings.Join(refs, " "))
		}
	}
	single := func(verb, ref string) {
		if ref != "" {
			actions = append(actions, verb+" "+ref)
		}
	}
	pair("connect", st.Connect)
	pair("check", st.Check)
	pair("fulfills", st.Fulfills)
	single("disconnect", st.Disconnect)
	single("delete", st.Delete)
	single("connectionTypes", st.ConnectionTypes)
	if st.Bind != nil {
		actions = append(actions, fmt.Sprintf("bind %s.%s to %s", st.Bind.Block, st.Bind.Generic, st.Bind.Type))
	}
	if st.Unbind != nil {
		actions = append(actions, fmt.Sprintf("unbind %s.%s", st.Unbind.Block, st.Unbind.Generic))
	}
	if st.ExplicitTypes != nil {
		actions = append(actions, fmt.Sprintf("explicitTypes %s.%s", st.ExplicitTypes.Block, st.ExplicitTypes.Generic))
	}
	switch {
	case len(actions) == 0:
		return "", errors.New("step does nothing")
	case len(actions) > 1:
		return "", errors.Errorf("step does more than one thing: %s", strings.Join(actions, ", "))
	}
	for _, refs := range [][]string{st.Connect, st.Check, st.Fulfills} {
		if refs != nil && len(refs) != 2 {
			return "", errors.Errorf("'%s' needs exactly two arguments", actions[0])
		}
	}
	return actions[0], nil
}

func (r *run) step(st Step) Outcome {
	action, err := st.action()
	if err != nil {
		return Outcome{Action: "invalid step", Got: "error: " + err.Error(), Want: "a step with one action"}
	}
	o := Outcome{Action: action}
	switch {
	case st.Connect != nil:
		a, b, err := r.slotPair(st.Connect)
		if err == nil {
			err = r.ws.Connect(a, b)
		}
		if errors.Is(err, graph.ErrIncompatible) {
			st.expectBool(&o, false, nil)
		} else {
			st.expectBool(&o, err == nil, err)
		}
	case st.Check != nil:
		a, b, err := r.slotPair(st.Check)
		ok := false
		if err == nil {
			ok, err = r.engine.Check(a, b)
		}
		st.expectBool(&o, ok, err)
	case st.Fulfills != nil:
		ok := false
		exprs, err := typeexpr.ParseAll(st.Fulfills...)
		if err == nil {
			ok, err = r.engine.Hierarchy().Fulfills(exprs[0], exprs[1])
		}
		st.expectBool(&o, ok, err)
	case st.Disconnect != "":
		s, err := r.slot(st.Disconnect)
		if err == nil {
			r.ws.Disconnect(s)
		}
		st.expectBool(&o, err == nil, err)
	case st.Delete != "":
		st.expectBool(&o, r.ws.DeleteBlock(st.Delete), nil)
	case st.Bind != nil:
		b, err := r.block(st.Bind.Block)
		if err == nil {
			err = r.engine.BindType(b, st.Bind.Generic, st.Bind.Type)
		}
		st.expectBool(&o, err == nil, err)
	case st.Unbind != nil:
		b, err := r.block(st.Unbind.Block)
		ok := false
		if err == nil {
			ok = r.engine.UnbindType(b, st.Unbind.Generic)
		}
		st.expectBool(&o, ok, err)
	case st.ExplicitTypes != nil:
		b, err := r.block(st.ExplicitTypes.Block)
		var types []string
		if err == nil {
			types, err = r.engine.ExplicitTypes(b, st.ExplicitTypes.Generic)
		}
		st.expectTypes(&o, types, err)
	case st.ConnectionTypes != "":
		s, err := r.slot(st.ConnectionTypes)
		var types []string
		if err == nil {
			types, err = r.engine.ExplicitTypesOfConnection(s)
		}
		st.expectTypes(&o, types, err)
	}
	return o
}

func (st Step) expectError(o *Outcome, err error) bool {
	if st.WantError == "" {
		return false
	}
	o.Want = fmt.Sprintf("error containing '%s'", st.WantError)
	if err == nil {
		o.Got = "no error"
		return true
	}
	o.Got = err.Error()
	o.Passed = strings.Contains(err.Error(), st.WantError)
	return true
}

func (st Step) expectBool(o *Outcome, got bool, err error) {
	if st.expectError(o, err) {
		return
	}
	want := st.Want == nil || *st.Want
	o.Want = fmt.Sprint(want)
	if err != nil {
		o.Got = "error: " + err.Error()
		return
	}
	o.Got = fmt.Sprint(got)
	o.Passed = got == want
}

func (st Step) expectTypes(o *Outcome, got []string, err error) {
	if st.expectError(o, err) {
		return
	}
	want := st.WantTypes
	if want == nil {
		want = []string{}
	}
	normalised := make([]string, len(want))
	for i, w := range want {
		if e, err := typeexpr.Parse(w); err == nil {
			normalised[i] = e.String()
		} else {
			normalised[i] = w
		}
	}
	o.Want = fmt.Sprint(normalised)
	if err != nil {
		o.Got = "error: " + err.Error()
		return
	}
	o.Got = fmt.Sprint(got)
	o.Passed = slices.Equal(got, normalised)
}

func (r *run) block(id string) (*graph.Block, error) {
	b, ok := r.ws.Block(id)
	if !ok {
		return nil, errors.Errorf("no block '%s'", id)
	}
	return b, nil
}

// slot resolves a block.slot reference
func (r *run) slot(ref string) (*graph.Connection, error) {
	i := strings.LastIndexByte(ref, '.')
	if i < 0 {
		return nil, errors.Errorf("'%s' is not of the form block.slot", ref)
	}
	b, err := r.block(ref[:i])
	if err != nil {
		return nil, err
	}
	s, ok := b.Slot(ref[i+1:])
	if !ok {
		return nil, errors.Errorf("block '%s' has no slot '%s'", ref[:i], ref[i+1:])
	}
	return s, nil
}

func (r *run) slotPair(refs []string) (a, b *graph.Connection, err error) {
	if a, err = r.slot(refs[0]); err != nil {
		return nil, nil, err
	}
	b, err = r.slot(refs[1])
	return a, b, err
}
