// Package robot simulates the moving parts of the sample changer: the robot
// arm, which travels between discrete positions, and the dewar lid, which
// opens and closes in unit steps. Both evolve in real time on their own
// goroutines; callers only observe their state.
package robot
