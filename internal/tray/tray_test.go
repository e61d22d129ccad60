package tray

import "testing"

func TestLabels(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{5, "Countdown: 5"},
		{1, "Countdown: 1"},
		{0, "Countdown: Happy 2026"},
	}
	for _, tt := range tests {
		if got := countLabel(tt.n); got != tt.want {
			t.Errorf("countLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}

	if linkLabel(true) == linkLabel(false) {
		t.Error("link labels should differ")
	}
}

func TestTray_StateBeforeMenu(t *testing.T) {
	tr := New(5)

	// Menu items do not exist until the tray is running.
	tr.SetCountdown(3)
	tr.SetLinked(true)

	if got := tr.Countdown(); got != 3 {
		t.Errorf("Countdown() = %d, want 3", got)
	}
}

func TestTray_ResetCallback(t *testing.T) {
	tr := New(5)

	called := 0
	tr.OnReset(func() { called++ })
	tr.handleReset()
	tr.handleReset()

	if called != 2 {
		t.Errorf("reset callback ran %d times, want 2", called)
	}
}
