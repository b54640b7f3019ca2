// Package scenario defines the format-agnostic description of one burst: how
// many students, where the tutor lives, what each student types and which
// marker proves the tutor answered.
//
// Scenarios can be written in HCL or YAML. Both formats share the payload
// template syntax, which is an HCL template with the session index bound to
// the variable `index`:
//
//	payload = "Student ${index} says: cars in a lot = linked list"
package scenario
