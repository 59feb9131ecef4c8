// Package overlord implements the overlord side channel: a test harness
// connects, receives a snapshot of the device's visible attributes followed
// by one update message per attribute change, and sends administrative
// commands that inject state the robot protocol cannot change.
//
// Messages are JSON objects, one per line on TCP and one per text frame on
// WebSocket:
//
//	server: {"attributes": {"door_closed": true, ...}}
//	server: {"error": "no such command: foo"}
//	client: {"command": "set_door_closed", "args": ["false"]}
package overlord
