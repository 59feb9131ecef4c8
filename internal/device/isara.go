package device

import (
	"context"
	"fmt"
	"strings"
)

const cmdPosition = "position"

// extendIsara installs the commands of the first ISARA model, the blue robot at BioMAX.
func (d *Device) extendIsara() {
	override(d.monitor, map[string]commandFunc{
		cmdState:    d.isaraState,
		cmdDI:       reply("di(" + strings.Repeat("0", 99) + ")"),
		cmdDO:       reply("do(" + strings.Repeat("0", 99) + ")"),
		cmdPosition: reply("position(0.1,0.2,0.3,0.4,0.5,0.6)"),
	})
}

func (d *Device) isaraState(context.Context, []string) (string, error) {
	return fmt.Sprintf(
		"state(%s,%s,0,,,,,-1,-1,,,,0,0,,%s,1.16,1.17,1.18,,,,)",
		encode(d.flag(AttrPowerOn)),
		encode(d.flag(AttrRemoteMode)),
		d.arm.SpeedRatio(),
	), nil
}
