package robot

import "strconv"

// speedRatios is the ladder of speed settings, in percent, slowest first.
//
//nolint:gochecknoglobals // Fixed table.
var speedRatios = []string{"0.01", "1.0", "10.0", "50.0", "75.0", "100.0"}

// SpeedRatios returns a copy of the supported speed ratios, slowest first.
func SpeedRatios() []string {
	return append([]string(nil), speedRatios...)
}

// Speed is a position on the speed ratio ladder.
type Speed struct {
	index int
}

// NewSpeed returns the fastest speed setting.
func NewSpeed() Speed {
	return Speed{index: len(speedRatios) - 1}
}

// Ratio returns the current speed ratio as reported by the robot.
func (s Speed) Ratio() string {
	return speedRatios[s.index]
}

// DecimalRatio returns the ratio as a fraction between 0.0 and 1.0.
func (s Speed) DecimalRatio() float64 {
	percent, err := strconv.ParseFloat(s.Ratio(), 64)
	if err != nil {
		panic(err)
	}

	return percent / 100.0
}

// Increase moves one step up the ladder, staying at the top.
func (s *Speed) Increase() {
	if s.index < len(speedRatios)-1 {
		s.index++
	}
}

// Decrease moves one step down the ladder, staying at the bottom.
func (s *Speed) Decrease() {
	if s.index > 0 {
		s.index--
	}
}
