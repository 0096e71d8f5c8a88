package family

import "fmt"

// InvalidHeirError reports a single malformed heir record.
type InvalidHeirError struct {
	Name   string
	Field  string
	Reason string
}

func (e *InvalidHeirError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid heir: %s", e.Reason)
	}
	return fmt.Sprintf("invalid heir %q: %s", e.Name, e.Reason)
}
