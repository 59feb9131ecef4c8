package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/micromax/isara-emulator/internal/config"
	"github.com/micromax/isara-emulator/internal/domain/attrs"
	"github.com/micromax/isara-emulator/internal/domain/robot"
)

// Attribute names held in the device attribute store.
const (
	AttrRemoteMode = "remote_mode"
	AttrDoorClosed = "door_closed"
	AttrPowerOn    = "power_on"
	AttrDewarPucks = "dewar_pucks"
	AttrMessage    = "message"
)

// PucksNum is the number of puck slots in the dewar.
const PucksNum = 29

// operationalMessage is the status text the controller reports when idle.
const operationalMessage = "System OK for operation"

var (
	// ErrUnknownCommand is returned for a command the channel does not implement.
	ErrUnknownCommand = errors.New("unexpected command")
	// ErrUnsupportedTrajectory is returned for a trajectory the emulator cannot run.
	ErrUnsupportedTrajectory = errors.New("unsupported trajectory")
	// ErrInvalidPuckSlot is returned for a puck slot outside 1..PucksNum.
	ErrInvalidPuckSlot = errors.New("invalid puck slot")
)

// Protocol is the command interpreter of one robot model.
// Replies are returned without the frame delimiter.
type Protocol interface {
	Operate(ctx context.Context, command string) (string, error)
	Monitor(ctx context.Context, command string) (string, error)
}

// Options tunes the timing of the simulated hardware.
type Options struct {
	// ArmTravelTime is the trajectory duration at full speed.
	ArmTravelTime time.Duration
	// LidStepInterval is the pause between lid steps.
	LidStepInterval time.Duration
}

// commandFunc handles one parsed command. It runs with the device locked.
type commandFunc func(ctx context.Context, args []string) (string, error)

// Device is an emulated ISARA sample changer.
type Device struct {
	// model is the emulated model name.
	model string
	// store holds the observable device attributes.
	store *attrs.Store
	// arm is the simulated robot arm.
	arm *robot.Arm
	// lid is the simulated dewar lid.
	lid *robot.Lid
	// operate and monitor are the command tables of the two channels.
	operate, monitor map[string]commandFunc
	// mu serializes command handling and administrative changes.
	mu sync.Mutex
}

// New creates a device of the given model in its power-on state.
func New(model string, opts Options) (*Device, error) {
	if opts.ArmTravelTime <= 0 {
		opts.ArmTravelTime = config.DefaultArmTravelTime
	}

	if opts.LidStepInterval <= 0 {
		opts.LidStepInterval = config.DefaultLidStepInterval
	}

	d := &Device{
		model: model,
		store: attrs.NewStore(),
		arm:   robot.NewArm(opts.ArmTravelTime),
		lid:   robot.NewLid(opts.LidStepInterval),
	}

	d.operate, d.monitor = d.baseCommands()

	switch model {
	case config.ModelIsara:
		d.extendIsara()
	case config.ModelIsara2:
		d.extendIsara2()
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownModel, model)
	}

	// Emulates the PLC key switch in remote mode with closed doors.
	d.store.Set(AttrRemoteMode, true)
	d.store.Set(AttrDoorClosed, true)
	d.store.Set(AttrPowerOn, true)
	d.store.Set(AttrMessage, operationalMessage)

	// Start with a couple of pucks present, for convenience.
	pucks := make([]bool, PucksNum)
	pucks[0] = true
	pucks[PucksNum-1] = true
	d.store.Set(AttrDewarPucks, pucks)

	return d, nil
}

// Model returns the emulated model name.
func (d *Device) Model() string {
	return d.model
}

// Run drives the dewar lid until ctx is done.
func (d *Device) Run(ctx context.Context) {
	d.lid.Run(ctx)
}

// Operate executes a command received on the operate channel.
func (d *Device) Operate(ctx context.Context, command string) (string, error) {
	return d.dispatch(ctx, "operate", d.operate, command)
}

// Monitor executes a command received on the monitor channel.
func (d *Device) Monitor(ctx context.Context, command string) (string, error) {
	return d.dispatch(ctx, "monitor", d.monitor, command)
}

func (d *Device) dispatch(
	ctx context.Context,
	channel string,
	table map[string]commandFunc,
	command string,
) (string, error) {
	name, args := parseCommand(command)

	handler, ok := table[name]
	if !ok {
		return "", fmt.Errorf("%w %q on %s connection", ErrUnknownCommand, command, channel)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return handler(ctx, args)
}

// SetRemoteMode turns the PLC key switch to remote mode.
func (d *Device) SetRemoteMode() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.store.Set(AttrRemoteMode, true)
}

// SetManualMode turns the PLC key switch to manual mode.
func (d *Device) SetManualMode() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.store.Set(AttrRemoteMode, false)
}

// SetDoorClosed changes the state of the hutch door sensor.
func (d *Device) SetDoorClosed(closed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.store.Set(AttrDoorClosed, closed)
}

// SetPuckPresent changes the presence sensor of a dewar slot, numbered from 1.
func (d *Device) SetPuckPresent(slot int, present bool) error {
	if slot < 1 || slot > PucksNum {
		return fmt.Errorf("%w: %d", ErrInvalidPuckSlot, slot)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pucks := d.pucks()
	pucks[slot-1] = present
	d.store.Set(AttrDewarPucks, pucks)

	return nil
}

// Attribute returns the current value of a device attribute.
func (d *Device) Attribute(name string) (any, bool) {
	return d.store.Get(name)
}

// Watch registers fn for changes of a device attribute.
func (d *Device) Watch(name string, fn attrs.WatchFunc) (cancel func()) {
	return d.store.Watch(name, fn)
}

// ArmPosition returns the name of the current arm position.
func (d *Device) ArmPosition() string {
	return d.arm.PositionName()
}

// LidPosition returns the current dewar lid position.
func (d *Device) LidPosition() int {
	return d.lid.Position()
}

func (d *Device) flag(name string) bool {
	value, _ := d.store.Get(name)
	b, _ := value.(bool)

	return b
}

func (d *Device) pucks() []bool {
	value, _ := d.store.Get(AttrDewarPucks)
	pucks, _ := value.([]bool)

	return pucks
}

func (d *Device) message() string {
	value, _ := d.store.Get(AttrMessage)
	msg, _ := value.(string)

	return msg
}
