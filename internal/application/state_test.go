package application

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateUpload, m.Snapshot().State)

	require.NoError(t, m.Start("sales.csv"))
	st := m.Snapshot()
	assert.Equal(t, StateProcessing, st.State)
	assert.Equal(t, "sales.csv", st.FileName)

	require.NoError(t, m.Complete("sales_formatted.xlsx"))
	st = m.Snapshot()
	assert.Equal(t, StateComplete, st.State)
	assert.Equal(t, "sales_formatted.xlsx", st.ResultName)
	assert.False(t, st.Failed())
}

func TestMachine_FailReturnsToUpload(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start("broken.xlsx"))
	require.NoError(t, m.Fail("Failed to process the file"))

	st := m.Snapshot()
	assert.Equal(t, StateUpload, st.State)
	assert.True(t, st.Failed())
	assert.Equal(t, "broken.xlsx", st.FileName)

	// a new attempt clears the old error
	require.NoError(t, m.Start("fixed.xlsx"))
	assert.Empty(t, m.Snapshot().Error)
}

func TestMachine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Machine)
		event func(m *Machine) error
	}{
		{"complete before start", func(*Machine) {}, func(m *Machine) error { return m.Complete("x") }},
		{"fail before start", func(*Machine) {}, func(m *Machine) error { return m.Fail("x") }},
		{"start twice", func(m *Machine) { _ = m.Start("a") }, func(m *Machine) error { return m.Start("b") }},
		{"start after complete", func(m *Machine) {
			_ = m.Start("a")
			_ = m.Complete("a.xlsx")
		}, func(m *Machine) error { return m.Start("b") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			tt.setup(m)
			before := m.Snapshot()

			err := tt.event(m)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, before, m.Snapshot(), "state unchanged")
		})
	}
}

func TestMachine_Reset(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start("a.csv"))
	require.NoError(t, m.Complete("a_formatted.xlsx"))

	m.Reset()
	st := m.Snapshot()
	assert.Equal(t, StateUpload, st.State)
	assert.Empty(t, st.FileName)
	assert.Empty(t, st.ResultName)

	require.NoError(t, m.Start("b.csv"))
}

func TestStatus_JSONStateName(t *testing.T) {
	out, err := json.Marshal(Status{State: StateProcessing})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"state":"processing"`)
}

func TestState_TextRoundTrip(t *testing.T) {
	var st State
	require.NoError(t, st.UnmarshalText([]byte("complete")))
	assert.Equal(t, StateComplete, st)
	assert.Error(t, st.UnmarshalText([]byte("done")))
}
