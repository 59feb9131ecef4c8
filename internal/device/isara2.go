package device

import (
	"context"
	"fmt"

	"github.com/micromax/isara-emulator/internal/domain/robot"
	"github.com/micromax/isara-emulator/internal/logger"
)

// ISARA2 specific operate commands.
const (
	cmdTraj        = "traj"
	cmdOpenLid     = "openlid"
	cmdCloseLid    = "closelid"
	cmdClearMemory = "clearmemory"
	cmdReset       = "reset"
)

// Trajectory names.
const (
	trajSoak = "soak"
	trajHome = "home"
	trajBack = "back"
	trajPut  = "put"
)

// Replies rejecting ISARA2 operate commands.
const (
	replyPowerDisabled    = "Robot power disabled"
	replyPathRunning      = "Path already running"
	replyLidMoving        = "Disabled when lid is moving"
	replyPathRunningClear = "Disabled when path is running"
	replyPutNotFromSoak   = "Rejected - Trajectory must start at position: SOAK"
)

// isara2DI is the digital inputs snapshot of an idle ISARA2.
const isara2DI = "di(0,0,0,0,0,0,0,1,1,1,1,1,1,0,0,0,1,0,1,0,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,1,0,0," +
	"0,0,0,1,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,1,0,0,0,0,0,0,1,0,0,0,0,0,0,0,0,0,0,0," +
	"0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,1,0,0,0,0,0,0,0,0,0,0)"

// extendIsara2 installs the commands of ISARA2, the yellow robot at MicroMAX.
func (d *Device) extendIsara2() {
	override(d.operate, map[string]commandFunc{
		cmdTraj:        d.handleTraj,
		cmdOpenLid:     d.handleLid(cmdOpenLid, d.lid.Open),
		cmdCloseLid:    d.handleLid(cmdCloseLid, d.lid.Close),
		cmdClearMemory: d.handleClearMemory,
		cmdReset:       reply(cmdReset),
	})

	override(d.monitor, map[string]commandFunc{
		cmdState: d.isara2State,
		cmdDI:    reply(isara2DI),
		cmdDO:    d.isara2DO,
	})
}

func (d *Device) isara2State(context.Context, []string) (string, error) {
	return fmt.Sprintf(
		"state(%s,%s,1,DoubleGripper,%s,,1,1,-1,-1,-1,-1,-1,"+
			"-1,-1,-1,,%s,0,%s,0,0,0.3865678,75.0,72.0,1,0,0,"+
			"%s,67108864,152.9,-390.8,"+
			"-17.3,-180.0,0.0,89.1,-75.6,-18.8,93.6,0.0,105.3,-165.5,,1,,1,0,0,0,0,"+
			"0,0,0,0,0,0,0,0,0,changetool|3|3|0|-2.441|0.068|392.37|0.0|0.0|-0.984)",
		encode(d.flag(AttrPowerOn)),
		encode(d.flag(AttrRemoteMode)),
		d.arm.PositionName(),
		encode(d.arm.IsMoving()),
		d.arm.SpeedRatio(),
		d.message(),
	), nil
}

// isara2DO reports the digital outputs; lines 56..84 carry the puck presence sensors.
func (d *Device) isara2DO(context.Context, []string) (string, error) {
	return "do(" +
		"0,0,1,0,0,1,0,1,0,0," + // 00 - 09
		"1,0,0,0,0,0,0,0,0,0," + // 10 - 19
		"0,0,0,1,0,0,0,0,0,0," + // 20 - 29
		"0,0,0,0,0,0,0,0,0,0," + // 30 - 39
		"0,0,0,1,0,0,0,0,0,0," + // 40 - 49
		"1,0,0,0,0,0," + encode(d.pucks()) + ",0,0,0,0,0," + // 50 - 89
		"0,0,0,0,0,0,0,0,0,0," + // 90 - 99
		"0,0,0,0,0,0,0,0,0,0," + // 100 - 109
		"0,0)", nil
}

func (d *Device) handleTraj(ctx context.Context, args []string) (string, error) {
	if !d.flag(AttrPowerOn) {
		return replyPowerDisabled, nil
	}

	if d.arm.IsMoving() {
		return replyPathRunning, nil
	}

	if d.lid.IsMoving() {
		return replyLidMoving, nil
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	switch name {
	case trajSoak:
		d.arm.MoveTo(ctx, robot.PositionSoak)

		return trajSoak, nil
	case trajHome:
		d.arm.MoveTo(ctx, robot.PositionHome)

		return trajHome, nil
	case trajBack:
		return trajBack, nil
	case trajPut:
		if d.arm.Position() != robot.PositionSoak {
			return replyPutNotFromSoak, nil
		}

		return trajPut, nil
	default:
		return "", fmt.Errorf("%w: running trajectory %q", ErrUnsupportedTrajectory, name)
	}
}

func (d *Device) handleLid(name string, move func()) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		move()
		logger.DebugKV(ctx, "Dewar lid command", "command", name, "position", d.lid.Position())

		return name, nil
	}
}

func (d *Device) handleClearMemory(context.Context, []string) (string, error) {
	if d.arm.IsMoving() {
		return replyPathRunningClear, nil
	}

	return cmdClearMemory, nil
}
