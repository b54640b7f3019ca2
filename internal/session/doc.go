// Package session models one simulated student: its index, the driver handle
// it exclusively owns, and a status that only ever moves forward
// (Pending → Running → Succeeded | Failed | TimedOut).
//
// Factory provisions a whole batch at once. Either every handle is opened or
// none is kept: a batch that cannot reach the requested size never starts.
package session
