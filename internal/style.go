package internal

// consoleStyle selects ANSI styling for human-readable run summaries.
// Styling is a pure formatting concern; there is no shared color state.
type consoleStyle int

const (
	stylePlain consoleStyle = iota
	styleHeading
	styleSuccess
	styleWarn
)

// styled wraps msg in the ANSI escape codes for the given style.
func styled(s consoleStyle, msg string) string {
	switch s {
	case styleHeading:
		return "\033[1;36m" + msg + "\033[0m"
	case styleSuccess:
		return "\033[32m" + msg + "\033[0m"
	case styleWarn:
		return "\033[33m" + msg + "\033[0m"
	default:
		return msg
	}
}
