package robot

import (
	"context"
	"sync"
	"time"

	"github.com/micromax/isara-emulator/internal/logger"
)

// Dewar lid end positions.
const (
	LidClosed = 0
	LidOpen   = 10
)

// Lid is the dewar lid. A single mover goroutine, started with Run, steps the
// position towards the requested end once per interval.
type Lid struct {
	// stepInterval is the pause after each unit step.
	stepInterval time.Duration
	// position is the current position, LidClosed..LidOpen.
	position int
	// target is the requested end position, nil when not moving.
	target *int
	// wake signals the mover that a target was set.
	wake chan struct{}
	// mu protects position and target.
	mu sync.Mutex
}

// NewLid creates an open, idle lid.
func NewLid(stepInterval time.Duration) *Lid {
	return &Lid{
		stepInterval: stepInterval,
		position:     LidOpen,
		wake:         make(chan struct{}, 1),
	}
}

// Open starts opening the lid unless it is open or already opening.
func (l *Lid) Open() {
	l.moveTo(LidOpen)
}

// Close starts closing the lid unless it is closed or already closing.
func (l *Lid) Close() {
	l.moveTo(LidClosed)
}

func (l *Lid) moveTo(end int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.target != nil && *l.target == end {
		return
	}

	if l.target == nil && l.position == end {
		return
	}

	l.target = &end

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// IsMoving reports whether the lid is travelling towards a target.
func (l *Lid) IsMoving() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.target != nil
}

// Position returns the current lid position.
func (l *Lid) Position() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.position
}

// Run is the lid mover. It blocks until ctx is done.
func (l *Lid) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}

		for l.step() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.stepInterval):
			}
		}

		logger.DebugKV(ctx, "Dewar lid stopped", "position", l.Position())
	}
}

// step moves the lid one unit towards the target. It returns false once the
// target is reached, clearing it.
func (l *Lid) step() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.target == nil {
		return false
	}

	if l.position == *l.target {
		l.target = nil

		return false
	}

	if l.position < *l.target {
		l.position++
	} else {
		l.position--
	}

	return true
}
