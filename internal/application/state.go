// Package application tracks where a single upload is in the formatting flow.
//
// An upload starts in StateUpload, moves to StateProcessing while the file is
// being formatted and ends in StateComplete with a result name. A failure
// returns it to StateUpload carrying the error message, so the user can try
// again with a different file.
package application

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is one step of the upload flow.
type State int

const (
	StateUpload State = iota
	StateProcessing
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateUpload:
		return "upload"
	case StateProcessing:
		return "processing"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateUpload, StateProcessing, StateComplete} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// ErrInvalidTransition is returned when an event does not apply to the
// current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// Status is a point-in-time copy of a Machine.
type Status struct {
	State      State     `json:"state"`
	FileName   string    `json:"file_name,omitempty"`
	ResultName string    `json:"result_name,omitempty"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Failed reports whether the last processing attempt ended in an error.
func (s Status) Failed() bool {
	return s.State == StateUpload && s.Error != ""
}

// Machine is safe for concurrent use.
type Machine struct {
	mu     sync.Mutex
	status Status
	now    func() time.Time
}

// NewMachine returns a machine in StateUpload.
func NewMachine() *Machine {
	m := &Machine{now: time.Now}
	m.status.UpdatedAt = m.now()
	return m
}

// Start records that fileName is being processed.
func (m *Machine) Start(fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State != StateUpload {
		return m.invalid("start")
	}
	m.status = Status{State: StateProcessing, FileName: fileName, UpdatedAt: m.now()}
	return nil
}

// Complete records a successful run producing resultName.
func (m *Machine) Complete(resultName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State != StateProcessing {
		return m.invalid("complete")
	}
	m.status.State = StateComplete
	m.status.ResultName = resultName
	m.status.UpdatedAt = m.now()
	return nil
}

// Fail returns the machine to StateUpload with msg for display.
func (m *Machine) Fail(msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State != StateProcessing {
		return m.invalid("fail")
	}
	m.status.State = StateUpload
	m.status.Error = msg
	m.status.UpdatedAt = m.now()
	return nil
}

// Reset discards any result or error and returns to StateUpload.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = Status{State: StateUpload, UpdatedAt: m.now()}
}

// Snapshot returns the current status.
func (m *Machine) Snapshot() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Machine) invalid(event string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, m.status.State)
}
