// Package app wires a burst together: it loads the scenario, builds the
// driver, runs the orchestrator and writes the report. It is decoupled from
// any specific entrypoint like a CLI.
package app
