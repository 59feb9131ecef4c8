// Package device implements the ISARA sample changer: its command
// interpreter for the operate and monitor channels, the state records it
// reports, and the administrative setters the overlord side channel uses to
// inject state the robot protocol has no command for.
//
// Two models are supported. Both share a base command table; each model
// overrides the records it formats differently and adds its own commands.
package device
