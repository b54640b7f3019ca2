// Package report turns a finished burst into a Summary and writes it out.
package report
