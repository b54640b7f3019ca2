package script

import (
	"fmt"
	"time"
)

// Kind identifies what a Step does.
type Kind int

const (
	Navigate Kind = iota
	Fill
	Click
	WaitForMarker
)

func (k Kind) String() string {
	switch k {
	case Navigate:
		return "navigate"
	case Fill:
		return "fill"
	case Click:
		return "click"
	case WaitForMarker:
		return "wait_for_marker"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Step is a single scripted interaction. Only the fields relevant to Kind
// are set.
type Step struct {
	Kind     Kind
	URL      string
	Selector string
	Text     string
	Timeout  time.Duration
}

func (s Step) String() string {
	switch s.Kind {
	case Navigate:
		return fmt.Sprintf("navigate(%s)", s.URL)
	case Fill:
		return fmt.Sprintf("fill(%s)", s.Selector)
	case Click:
		return fmt.Sprintf("click(%s)", s.Selector)
	case WaitForMarker:
		return fmt.Sprintf("wait_for_marker(%s, %s)", s.Selector, s.Timeout)
	default:
		return s.Kind.String()
	}
}

// Script is the ordered list of steps one session performs.
type Script struct {
	Index int
	Steps []Step
}
