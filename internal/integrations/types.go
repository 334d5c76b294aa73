package integrations

// StackFrame is one frame of an error report's stacktrace, ordered from
// outermost call to crash site.
type StackFrame struct {
	// File is the frame's source file path as reported by the tracker.
	File string `json:"filename"`

	// Function is the frame's function name.
	Function string `json:"function"`

	// Line is the 1-based line number, 0 when unknown.
	Line int `json:"lineno"`

	// InApp marks frames inside the monitored application (as opposed to
	// framework or runtime frames).
	InApp bool `json:"in_app"`

	// ContextLine is the source line at the frame, when available.
	ContextLine string `json:"context_line,omitempty"`
}

// ErrorReport is one error group from the tracker, reduced to the fields
// the core consumes. Responses beyond these fields are treated as opaque.
type ErrorReport struct {
	// ID is the tracker's error group identifier.
	ID string

	// ShortID is the human-facing identifier (e.g. "PROJ-123"), may be
	// empty.
	ShortID string

	// Title is the error headline.
	Title string

	// Culprit is the tracker's free-form location hint.
	Culprit string

	// Level is the severity ("fatal", "error", "warning", "info").
	Level string

	// Status is "unresolved", "resolved" or "ignored".
	Status string

	// Environment is the deployment environment tag, may be empty.
	Environment string

	// FirstSeen and LastSeen are tracker-reported timestamps (RFC3339).
	FirstSeen string
	LastSeen  string

	// Count is the number of events in the group.
	Count int

	// UserCount is the number of distinct users affected.
	UserCount int

	// Location is the reported crash location file, empty when unknown.
	Location string

	// Function is the crash-site function, empty when unknown.
	Function string

	// Line is the crash-site line number, 0 when unknown.
	Line int

	// Stacktrace is the ordered frame list, may be empty.
	Stacktrace []StackFrame

	// AffectedFiles are the distinct in-app files in the stacktrace.
	AffectedFiles []string

	// Permalink is the tracker's web URL for the group.
	Permalink string
}

// FramePaths returns the file path of every stacktrace frame, in order.
func (e *ErrorReport) FramePaths() []string {
	paths := make([]string, 0, len(e.Stacktrace))
	for _, f := range e.Stacktrace {
		if f.File != "" {
			paths = append(paths, f.File)
		}
	}
	return paths
}
