package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_StateTransitions(t *testing.T) {
	g := NewGuard()
	assert.Equal(t, StateIdle, g.State("insight:bitcoin").State)

	err := g.Run(context.Background(), "insight:bitcoin", func(context.Context) error {
		assert.Equal(t, StateInFlight, g.State("insight:bitcoin").State)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatePopulated, g.State("insight:bitcoin").State)

	boom := errors.New("quota")
	err = g.Run(context.Background(), "insight:bitcoin", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	status := g.State("insight:bitcoin")
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, "quota", status.Error)

	// retry after failure
	require.NoError(t, g.Run(context.Background(), "insight:bitcoin", func(context.Context) error { return nil }))
	assert.Equal(t, StatePopulated, g.State("insight:bitcoin").State)
	assert.Empty(t, g.State("insight:bitcoin").Error)
}

func TestGuard_RejectsDuplicateWhileInFlight(t *testing.T) {
	g := NewGuard()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- g.Run(context.Background(), SlotNewsletterResearch, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	called := false
	err := g.Run(context.Background(), SlotNewsletterResearch, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.False(t, called)

	// other slots are independent
	require.NoError(t, g.Run(context.Background(), SlotNewsletterCurated, func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StatePopulated, g.State(SlotNewsletterResearch).State)
}

func TestGuard_States(t *testing.T) {
	g := NewGuard()
	require.NoError(t, g.Run(context.Background(), "b", func(context.Context) error { return nil }))
	require.NoError(t, g.Run(context.Background(), "a", func(context.Context) error { return nil }))

	states := g.States()
	require.Len(t, states, 2)
	assert.Equal(t, "a", states[0].Slot)
	assert.Equal(t, "b", states[1].Slot)
}

func TestSlotNames(t *testing.T) {
	assert.Equal(t, "insight:bitcoin", InsightSlot("bitcoin"))
	assert.Equal(t, "narrative:regulation", NarrativeSlot("regulation"))
}
