package device

import (
	"context"
	"maps"
)

// Command names shared by all models.
const (
	cmdOn        = "on"
	cmdOff       = "off"
	cmdAbort     = "abort"
	cmdSpeedUp   = "speedup"
	cmdSpeedDown = "speeddown"
	cmdState     = "state"
	cmdDI        = "di"
	cmdDO        = "do"
	cmdMessage   = "message"
)

// Replies the PLC gives instead of executing a command.
const (
	replyRemoteModeRequested = "Remote mode requested"
	replyDoorsMustBeClosed   = "Doors must be closed"
)

// baseCommands returns the command tables common to every model.
// Models copy entries over them to add or replace commands.
func (d *Device) baseCommands() (operate, monitor map[string]commandFunc) {
	operate = map[string]commandFunc{
		cmdOn:        d.handlePower(true),
		cmdOff:       d.handlePower(false),
		cmdAbort:     reply(cmdAbort),
		cmdSpeedUp:   d.handleSpeed(cmdSpeedUp, true),
		cmdSpeedDown: d.handleSpeed(cmdSpeedDown, false),
	}

	monitor = map[string]commandFunc{
		cmdMessage: reply(operationalMessage),
	}

	return operate, monitor
}

// override copies model specific commands over a base table.
func override(table, model map[string]commandFunc) {
	maps.Copy(table, model)
}

// reply returns a handler answering with a fixed text.
func reply(text string) commandFunc {
	return func(context.Context, []string) (string, error) {
		return text, nil
	}
}

// checkPLC returns the PLC rejection text, or "" when the command may run.
func (d *Device) checkPLC() string {
	if !d.flag(AttrRemoteMode) {
		return replyRemoteModeRequested
	}

	if !d.flag(AttrDoorClosed) {
		return replyDoorsMustBeClosed
	}

	return ""
}

func (d *Device) handlePower(on bool) commandFunc {
	return func(context.Context, []string) (string, error) {
		if rejection := d.checkPLC(); rejection != "" {
			return rejection, nil
		}

		d.store.Set(AttrPowerOn, on)

		if on {
			return cmdOn, nil
		}

		return cmdOff, nil
	}
}

func (d *Device) handleSpeed(name string, increase bool) commandFunc {
	return func(context.Context, []string) (string, error) {
		if rejection := d.checkPLC(); rejection != "" {
			return rejection, nil
		}

		d.arm.ChangeSpeed(increase)

		return name, nil
	}
}
