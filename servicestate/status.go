package servicestate

import serr "github.com/next-trace/scg-service-state/contract/errors"

// Status classes reported for in-flight activity.
const (
	ClassLoading = "isLoading"
	ClassSaving  = "isSaving"
)

// Summary is a derived, UI-facing status line.
type Summary struct {
	Message     string `json:"message"`
	ClassName   string `json:"className"`
	ServiceName string `json:"serviceName"`
}

// Status scans the named services in order. A service with a meaningful error
// wins over any activity; otherwise the first loading or saving service wins.
// Errors without a message, or with the generic "Error" message, are ignored.
func Status(states map[string]State, names ...string) Summary {
	for _, name := range names {
		s, ok := states[name]
		if ok && meaningful(s.IsError) {
			return Summary{
				Message:     name + ": " + s.IsError.Message,
				ClassName:   s.IsError.ClassName,
				ServiceName: name,
			}
		}
	}

	for _, name := range names {
		s, ok := states[name]
		if !ok || meaningful(s.IsError) {
			continue
		}

		switch {
		case s.IsLoading:
			return Summary{Message: name + " is loading", ClassName: ClassLoading, ServiceName: name}
		case s.IsSaving:
			return Summary{Message: name + " is saving", ClassName: ClassSaving, ServiceName: name}
		}
	}

	return Summary{}
}

func meaningful(e *serr.ServiceError) bool {
	return e != nil && e.Message != "" && e.Message != serr.GenericMessage
}
