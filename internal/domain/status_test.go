package domain

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Status
		wantOK bool
	}{
		{name: "label unread", input: "未読", want: StatusUnread, wantOK: true},
		{name: "label reading", input: "読書中", want: StatusReading, wantOK: true},
		{name: "label completed", input: "読了", want: StatusCompleted, wantOK: true},
		{name: "label paused", input: "中止", want: StatusPaused, wantOK: true},
		{name: "label with spaces", input: "  読了 ", want: StatusCompleted, wantOK: true},
		{name: "symbolic exact", input: "READING", want: StatusReading, wantOK: true},
		{name: "symbolic lower", input: "completed", want: StatusCompleted, wantOK: true},
		{name: "symbolic mixed", input: "Paused", want: StatusPaused, wantOK: true},
		{name: "unknown", input: "Bogus", want: StatusUnread, wantOK: false},
		{name: "blank", input: "", want: StatusUnread, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStatus(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseStatus(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStatusLabelRoundTrip(t *testing.T) {
	for _, s := range Statuses() {
		got, ok := StatusFromLabel(s.Label())
		if !ok || got != s {
			t.Errorf("StatusFromLabel(%q) = (%v, %v), want (%v, true)", s.Label(), got, ok, s)
		}
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusPaused.Valid() {
		t.Error("PAUSED should be valid")
	}
	if Status("ARCHIVED").Valid() {
		t.Error("ARCHIVED should not be valid")
	}
	if got := Status("ARCHIVED").Label(); got != "ARCHIVED" {
		t.Errorf("Label() of unknown status = %q, want raw value", got)
	}
}

func TestStatusesOrder(t *testing.T) {
	want := []Status{StatusUnread, StatusReading, StatusCompleted, StatusPaused}
	got := Statuses()
	if len(got) != len(want) {
		t.Fatalf("Statuses() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Statuses()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
