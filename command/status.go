package command

// Phase is the stage of a command's lifecycle a status entry belongs to.
type Phase int

const (
	PhaseInitialization Phase = iota
	PhaseRun
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialization:
		return "INITIALIZATION"
	case PhaseRun:
		return "RUN"
	}
	return "UNKNOWN"
}

// Severity orders from least to most severe.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityWarning
	SeverityFailure
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "SUCCESS"
	case SeverityWarning:
		return "WARNING"
	case SeverityFailure:
		return "FAILURE"
	}
	return "UNKNOWN"
}

type LogEntry struct {
	Phase          Phase
	Severity       Severity
	Message        string
	Recommendation string
}

// Status is a command's log of problems, grouped by phase.
type Status struct {
	entries []LogEntry
}

func (s *Status) Add(phase Phase, sev Severity, message, recommendation string) {
	s.entries = append(s.entries, LogEntry{
		Phase:          phase,
		Severity:       sev,
		Message:        message,
		Recommendation: recommendation,
	})
}

// Entries returns the entries for phase in the order they were added.
func (s *Status) Entries(phase Phase) []LogEntry {
	var out []LogEntry
	for _, e := range s.entries {
		if e.Phase == phase {
			out = append(out, e)
		}
	}
	return out
}

// All returns every entry across phases.
func (s *Status) All() []LogEntry {
	out := make([]LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Severity returns the most severe entry for phase, or SeveritySuccess.
func (s *Status) Severity(phase Phase) Severity {
	sev := SeveritySuccess
	for _, e := range s.entries {
		if e.Phase == phase && e.Severity > sev {
			sev = e.Severity
		}
	}
	return sev
}

// Clear drops the entries of phase.
func (s *Status) Clear(phase Phase) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Phase != phase {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}
