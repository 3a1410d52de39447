// Package workflow drives a blast campaign from upload through payment and
// send, for both registered users and guests. The paid branch survives the
// hosted checkout redirect by checkpointing to the store before leaving and
// resuming from the checkpoint on return.
package workflow

import "fmt"

// State is the campaign workflow position.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateAnalyzing
	StateConfiguring
	StateRedirecting
	StateResuming
	StateSending
	StateSuccess
	StateErrored
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateUploading:   "uploading",
	StateAnalyzing:   "analyzing",
	StateConfiguring: "configuring",
	StateRedirecting: "redirecting",
	StateResuming:    "resuming",
	StateSending:     "sending",
	StateSuccess:     "success",
	StateErrored:     "errored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// transitions is the full legal-move table. Anything absent is a
// programming error and lands the workflow in StateErrored.
var transitions = map[State][]State{
	StateIdle:        {StateUploading, StateResuming},
	StateUploading:   {StateAnalyzing, StateErrored},
	StateAnalyzing:   {StateConfiguring, StateErrored},
	StateConfiguring: {StateRedirecting, StateSending, StateErrored},
	StateRedirecting: {StateErrored},
	StateResuming:    {StateSending, StateErrored},
	StateSending:     {StateSuccess, StateErrored},
	StateSuccess:     {StateIdle},
	StateErrored:     {StateIdle},
}

// CanTransition reports whether moving from to next is legal.
func CanTransition(from, next State) bool {
	for _, allowed := range transitions[from] {
		if allowed == next {
			return true
		}
	}
	return false
}
