//////////////////////////////////////////////////////////////////////////////
//
// Recording session state and status snapshot
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package mosaic

import (
	"fmt"
	"strings"
	"time"
)

// State of the single recording session of a Recorder.
type State int

const (
	Idle State = iota
	Recording
	Stopped
)

var stateNames = [...]string{"idle", "recording", "stopped"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if strings.EqualFold(string(b), name) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Status is a snapshot of the recording session.
type Status struct {
	Session    string     `json:"session,omitempty"`
	State      State      `json:"state"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	OutputFile string     `json:"output_file,omitempty"`

	// Canvases produced since Start.
	Ticks uint64 `json:"ticks"`

	// Ticks whose work ran past the next tick boundary.
	Overruns uint64 `json:"overruns"`

	WriteErrors   uint64 `json:"write_errors"`
	PublishErrors uint64 `json:"publish_errors"`
}
