// Package attrs implements the attribute store of an emulated device.
//
// Every observable piece of device state is written through Store.Set, which
// is the single place where change notifications originate. Watchers receive
// the new value synchronously, once per accepted change, in registration order.
package attrs
