// Package driver defines the capability boundary between the burst engine and
// whatever actually talks to the tutoring application. The engine only ever
// navigates, fills, clicks and asks whether something is visible; concrete
// drivers live in sub-packages (a real browser through go-rod, and a plain
// HTTP client that understands HTML forms).
package driver
