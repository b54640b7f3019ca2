// Package script turns a scenario into the concrete steps one student
// performs and runs those steps, strictly in order, against a driver handle.
package script
