package build

import (
	"fmt"
	"strconv"
)

// State is a stage of one build run.
type State int

const (
	Idle State = iota
	DirectoriesPrepared
	Configured
	Built
	Done
	Failed
)

var stateNames = [...]string{
	Idle:                "idle",
	DirectoriesPrepared: "directories-prepared",
	Configured:          "configured",
	Built:               "built",
	Done:                "done",
	Failed:              "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// allowed reports whether from -> to is a legal transition. Runs move
// forward one stage at a time; any non-terminal stage may fail.
func allowed(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == Failed {
		return true
	}
	return to == from+1
}

// machine tracks the stage of one run and records every stage it passed.
type machine struct {
	state   State
	history []State
}

func newMachine() *machine {
	return &machine{state: Idle, history: []State{Idle}}
}

func (m *machine) advance(to State) error {
	if !allowed(m.state, to) {
		return fmt.Errorf("build: illegal transition %s -> %s", m.state, to)
	}
	m.state = to
	m.history = append(m.history, to)
	return nil
}
