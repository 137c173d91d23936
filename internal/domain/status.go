package domain

import "strings"

// Status is the reading state of a record.
type Status string

const (
	StatusUnread    Status = "UNREAD"
	StatusReading   Status = "READING"
	StatusCompleted Status = "COMPLETED"
	StatusPaused    Status = "PAUSED"
)

// DefaultStatus is used whenever a status is missing or unknown.
const DefaultStatus = StatusUnread

// statusLabels maps every status to its display label.
// Exports write the label, imports accept label or name.
var statusLabels = map[Status]string{
	StatusUnread:    "未読",
	StatusReading:   "読書中",
	StatusCompleted: "読了",
	StatusPaused:    "中止",
}

// Statuses returns all statuses in display order.
func Statuses() []Status {
	return []Status{StatusUnread, StatusReading, StatusCompleted, StatusPaused}
}

// Label returns the human readable name of the status.
// Unknown statuses fall back to their raw value.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// StatusFromLabel resolves a display label (exact match).
func StatusFromLabel(label string) (Status, bool) {
	for s, l := range statusLabels {
		if l == label {
			return s, true
		}
	}
	return "", false
}

// StatusFromName resolves a symbolic name, case-insensitively.
func StatusFromName(name string) (Status, bool) {
	for _, s := range Statuses() {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// ParseStatus resolves free text: label first, then symbolic name.
// ok is false when the text matched neither; the returned status is then
// DefaultStatus.
func ParseStatus(text string) (Status, bool) {
	text = strings.TrimSpace(text)
	if s, ok := StatusFromLabel(text); ok {
		return s, true
	}
	if s, ok := StatusFromName(text); ok {
		return s, true
	}
	return DefaultStatus, false
}
