package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/micromax/isara-emulator/internal/api/overlord"
)

// Overlord administrative commands.
const (
	overlordSetRemoteMode = "set_remote_mode"
	overlordSetManualMode = "set_manual_mode"
	overlordSetDoorClosed = "set_door_closed"
	overlordSetPuck       = "set_puck"
)

// visibleAttributes are the attributes streamed to overlord clients.
//
//nolint:gochecknoglobals // Fixed table.
var visibleAttributes = []string{AttrRemoteMode, AttrDoorClosed, AttrPowerOn, AttrDewarPucks}

// Overlord exposes a device to overlord sessions.
type Overlord struct {
	device *Device
}

// NewOverlord adapts d to the overlord.Device interface.
func NewOverlord(d *Device) *Overlord {
	return &Overlord{device: d}
}

// AttributeNames returns the attributes overlord clients observe.
func (o *Overlord) AttributeNames() []string {
	return append([]string(nil), visibleAttributes...)
}

// Attribute returns the current value of a visible attribute.
func (o *Overlord) Attribute(name string) (any, bool) {
	return o.device.Attribute(name)
}

// Watch registers fn for changes of an attribute.
func (o *Overlord) Watch(name string, fn func(value any)) (cancel func()) {
	return o.device.Watch(name, fn)
}

// Execute runs an administrative command.
func (o *Overlord) Execute(_ context.Context, command string, args []string) error {
	switch command {
	case overlordSetRemoteMode:
		o.device.SetRemoteMode()
	case overlordSetManualMode:
		o.device.SetManualMode()
	case overlordSetDoorClosed:
		if len(args) < 1 {
			return fmt.Errorf("%s: %w: expected 1 argument", command, overlord.ErrInvalidArgs)
		}

		o.device.SetDoorClosed(parseFlag(args[0]))
	case overlordSetPuck:
		if len(args) < 2 {
			return fmt.Errorf("%s: %w: expected slot and presence", command, overlord.ErrInvalidArgs)
		}

		slot, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w: slot %q", command, overlord.ErrInvalidArgs, args[0])
		}

		if err := o.device.SetPuckPresent(slot, parseFlag(args[1])); err != nil {
			return fmt.Errorf("%s: %w: %w", command, overlord.ErrInvalidArgs, err)
		}
	default:
		return fmt.Errorf("%w: %s", overlord.ErrUnknownCommand, command)
	}

	return nil
}

// parseFlag treats "true" in any letter case as true and everything else as false.
func parseFlag(arg string) bool {
	return strings.EqualFold(arg, "true")
}
