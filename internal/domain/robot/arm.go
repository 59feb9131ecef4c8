package robot

import (
	"context"
	"sync"
	"time"

	"github.com/micromax/isara-emulator/internal/logger"
)

// Position is a location the robot arm can rest at.
type Position int

// Arm positions. PositionMoving is transient: a trajectory is running and the
// arm is not at any named position.
const (
	PositionMoving Position = iota
	PositionHome
	PositionSoak
)

// String returns the position name used in the state record.
func (p Position) String() string {
	switch p {
	case PositionHome:
		return "HOME"
	case PositionSoak:
		return "SOAK"
	default:
		return "UNDEFINED"
	}
}

// Arm is the robot arm. Trajectories take real time, scaled by the speed ratio.
type Arm struct {
	// travelTime is the trajectory duration at 100% speed.
	travelTime time.Duration
	// position is the current position, PositionMoving while travelling.
	position Position
	// speed is the current speed ratio.
	speed Speed
	// mu protects position and speed against the trajectory goroutine.
	mu sync.Mutex
}

// NewArm creates an arm resting at HOME at full speed.
func NewArm(travelTime time.Duration) *Arm {
	return &Arm{
		travelTime: travelTime,
		position:   PositionHome,
		speed:      NewSpeed(),
	}
}

// MoveTo starts a trajectory to target. The arm reports PositionMoving from
// the moment MoveTo returns until the trajectory time has elapsed.
// Starting a move while one is running is a programming error and panics.
func (a *Arm) MoveTo(ctx context.Context, target Position) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.position == PositionMoving {
		panic("robot arm: trajectory started while another is running")
	}

	// Speed is sampled once per trajectory.
	duration := time.Duration(float64(a.travelTime) / a.speed.DecimalRatio())
	a.position = PositionMoving

	logger.DebugKV(ctx, "Moving robot arm", "target", target.String(), "travel_time", duration)

	go func() {
		time.Sleep(duration)

		a.mu.Lock()
		a.position = target
		a.mu.Unlock()

		logger.DebugKV(ctx, "Robot arm reached position", "position", target.String())
	}()
}

// IsMoving reports whether a trajectory is running.
func (a *Arm) IsMoving() bool {
	return a.Position() == PositionMoving
}

// Position returns the current position.
func (a *Arm) Position() Position {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.position
}

// PositionName returns "UNDEFINED" while moving, else the position name.
func (a *Arm) PositionName() string {
	return a.Position().String()
}

// ChangeSpeed moves the speed ratio one step up or down the ladder.
// A running trajectory keeps the speed it started with.
func (a *Arm) ChangeSpeed(increase bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if increase {
		a.speed.Increase()
	} else {
		a.speed.Decrease()
	}
}

// SpeedRatio returns the current speed ratio.
func (a *Arm) SpeedRatio() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.speed.Ratio()
}
