package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{StatusNew, StatusInProgress, StatusShipped, StatusCompleted, StatusCancelled}

func legalPairs() map[[2]Status]bool {
	return map[[2]Status]bool{
		{StatusNew, StatusInProgress}:       true,
		{StatusInProgress, StatusShipped}:   true,
		{StatusShipped, StatusCompleted}:    true,
		{StatusNew, StatusCancelled}:        true,
		{StatusInProgress, StatusCancelled}: true,
		{StatusShipped, StatusCancelled}:    true,
	}
}

func TestCanTransitionFullMatrix(t *testing.T) {
	legal := legalPairs()
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanTransition(from, to)
			assert.Equalf(t, legal[[2]Status{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(Status("pending"), StatusInProgress))
	assert.False(t, CanTransition(StatusNew, Status("done")))
	assert.False(t, CanTransition(Status(""), Status("")))
}

func TestTargets(t *testing.T) {
	tests := []struct {
		current Status
		want    []Status
	}{
		{StatusNew, []Status{StatusInProgress, StatusCancelled}},
		{StatusInProgress, []Status{StatusShipped, StatusCancelled}},
		{StatusShipped, []Status{StatusCompleted, StatusCancelled}},
		{StatusCompleted, nil},
		{StatusCancelled, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			assert.Equal(t, tt.want, Targets(tt.current))
		})
	}
}

func TestApplyForwardChain(t *testing.T) {
	status := StatusNew
	for _, next := range []Status{StatusInProgress, StatusShipped, StatusCompleted} {
		var err error
		status, err = Apply(status, next)
		require.NoError(t, err)
		require.Equal(t, next, status)
	}
}

func TestApplyIllegalLeavesStatusUnchanged(t *testing.T) {
	status, err := Apply(StatusCompleted, StatusCancelled)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusCompleted, status)

	status, err = Apply(StatusNew, StatusShipped)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusNew, status)

	status, err = Apply(StatusShipped, StatusInProgress)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusShipped, status)
}

func TestCanEdit(t *testing.T) {
	assert.True(t, CanEdit(StatusNew))
	for _, s := range []Status{StatusInProgress, StatusShipped, StatusCompleted, StatusCancelled} {
		assert.Falsef(t, CanEdit(s), "status %s", s)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusNew.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, StatusShipped.Terminal())
}
