package regexlib

import "iter"

// Result is the outcome of running a DFA over a prefix of its input.
type Result int

const (
	// Ok means the consumed input is accepted.
	Ok Result = iota
	// Unfinished means the run is alive but not in an accepting state.
	Unfinished
	// Err means the automaton has no transfer for the last symbol.
	Err
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "Ok"
	case Unfinished:
		return "Unfinished"
	}
	return "Err"
}

// Step moves from state on c. It is the single-symbol form of MatchSeq.
func Step(d *FA, state int, c byte) (int, Result) {
	next, ok := d.Transition(state, c)
	if !ok {
		return state, Err
	}
	if d.IsEnd(next) {
		return next, Ok
	}
	return next, Unfinished
}

// MatchSeq runs d over seq starting at its start state.
func MatchSeq(d *FA, seq iter.Seq[byte]) Result {
	state := d.Start
	res := Unfinished
	if d.IsEnd(state) {
		res = Ok
	}
	for c := range seq {
		state, res = Step(d, state, c)
		if res == Err {
			return Err
		}
	}
	return res
}

// Match runs d over input.
func Match(d *FA, input string) Result {
	return MatchSeq(d, func(yield func(byte) bool) {
		for i := 0; i < len(input); i++ {
			if !yield(input[i]) {
				return
			}
		}
	})
}
