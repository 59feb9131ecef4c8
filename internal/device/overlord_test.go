package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micromax/isara-emulator/internal/api/overlord"
	"github.com/micromax/isara-emulator/internal/config"
)

// TestOverlord_AttributeNames lists exactly the four visible attributes.
func TestOverlord_AttributeNames(t *testing.T) {
	t.Parallel()

	o := NewOverlord(newTestDevice(t, config.ModelIsara2))

	require.Equal(t, []string{"remote_mode", "door_closed", "power_on", "dewar_pucks"}, o.AttributeNames())
}

// TestOverlord_Execute drives the administrative commands and observes the store.
func TestOverlord_Execute(t *testing.T) {
	t.Parallel()

	d := newTestDevice(t, config.ModelIsara2)
	o := NewOverlord(d)
	ctx := context.Background()

	var doors []any
	cancel := o.Watch(AttrDoorClosed, func(v any) { doors = append(doors, v) })

	defer cancel()

	require.NoError(t, o.Execute(ctx, "set_door_closed", []string{"FALSE"}))
	require.NoError(t, o.Execute(ctx, "set_door_closed", []string{"false"}))
	require.NoError(t, o.Execute(ctx, "set_door_closed", []string{"True"}))
	require.Equal(t, []any{false, true}, doors)

	require.NoError(t, o.Execute(ctx, "set_manual_mode", nil))

	value, _ := o.Attribute(AttrRemoteMode)
	require.Equal(t, false, value)
	require.Equal(t, "Remote mode requested", operate(t, d, "on"))

	require.NoError(t, o.Execute(ctx, "set_remote_mode", nil))

	value, _ = o.Attribute(AttrRemoteMode)
	require.Equal(t, true, value)

	require.NoError(t, o.Execute(ctx, "set_puck", []string{"3", "true"}))
	require.True(t, d.pucks()[2])
}

// TestOverlord_ExecuteErrors covers unknown commands and bad arguments.
func TestOverlord_ExecuteErrors(t *testing.T) {
	t.Parallel()

	o := NewOverlord(newTestDevice(t, config.ModelIsara2))
	ctx := context.Background()

	err := o.Execute(ctx, "self_destruct", nil)
	require.ErrorIs(t, err, overlord.ErrUnknownCommand)
	require.EqualError(t, err, "no such command: self_destruct")

	require.ErrorIs(t, o.Execute(ctx, "set_door_closed", nil), overlord.ErrInvalidArgs)
	require.ErrorIs(t, o.Execute(ctx, "set_puck", []string{"x", "true"}), overlord.ErrInvalidArgs)
	require.ErrorIs(t, o.Execute(ctx, "set_puck", []string{"30", "true"}), ErrInvalidPuckSlot)
}
