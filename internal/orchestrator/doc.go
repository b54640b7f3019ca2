// Package orchestrator runs a burst: every session's script starts at the
// same moment, each in its own goroutine, and the call returns only once the
// last one has reached a terminal status.
//
// A failing or slow session never cancels its siblings. The only error that
// stops a run is a *session.ProvisioningError, raised before anything starts.
package orchestrator
