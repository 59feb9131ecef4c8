package robot

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

const testTravelTime = 500 * time.Millisecond

// TestArm_MoveTo checks the transient UNDEFINED position and arrival after the travel time.
func TestArm_MoveTo(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		arm := NewArm(testTravelTime)
		require.Equal(t, "HOME", arm.PositionName())
		require.False(t, arm.IsMoving())

		arm.MoveTo(context.Background(), PositionSoak)

		// Observable before any time passes.
		require.True(t, arm.IsMoving())
		require.Equal(t, "UNDEFINED", arm.PositionName())

		time.Sleep(testTravelTime - time.Millisecond)
		synctest.Wait()
		require.True(t, arm.IsMoving())

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		require.False(t, arm.IsMoving())
		require.Equal(t, PositionSoak, arm.Position())
		require.Equal(t, "SOAK", arm.PositionName())
	})
}

// TestArm_TravelTimeScalesWithSpeed verifies the speed ratio is sampled at start.
func TestArm_TravelTimeScalesWithSpeed(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		arm := NewArm(testTravelTime)

		// 75% of full speed.
		arm.ChangeSpeed(false)
		require.Equal(t, "75.0", arm.SpeedRatio())

		arm.MoveTo(context.Background(), PositionSoak)

		// Speeding up mid-flight does not shorten the running trajectory.
		arm.ChangeSpeed(true)
		require.Equal(t, "100.0", arm.SpeedRatio())

		time.Sleep(testTravelTime + 100*time.Millisecond)
		synctest.Wait()
		require.True(t, arm.IsMoving())

		// 500ms / 0.75 = 666.66ms.
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		require.Equal(t, PositionSoak, arm.Position())
	})
}

// TestArm_MoveWhileMovingPanics documents the exclusive-move precondition.
func TestArm_MoveWhileMovingPanics(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		arm := NewArm(testTravelTime)
		arm.MoveTo(context.Background(), PositionSoak)

		require.Panics(t, func() {
			arm.MoveTo(context.Background(), PositionHome)
		})

		time.Sleep(testTravelTime)
		synctest.Wait()
		require.Equal(t, PositionSoak, arm.Position())
	})
}

// TestPosition_String covers all position names.
func TestPosition_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "HOME", PositionHome.String())
	require.Equal(t, "SOAK", PositionSoak.String())
	require.Equal(t, "UNDEFINED", PositionMoving.String())
}
