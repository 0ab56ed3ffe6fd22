package render

import "fmt"

// Error reports input that cannot be drawn, such as a flat or empty grid or a
// ramp that does not match the bands.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "render: " + e.Reason
}

func errorf(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}
