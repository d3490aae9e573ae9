package mathutil

import (
	"math"
	"testing"
)

func TestLogAdd(t *testing.T) {
	// log(e^0 + e^0) = log(2)
	got := LogAdd(0, 0)
	want := math.Log(2)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("LogAdd(0,0) = %f, want %f", got, want)
	}

	// Symmetric
	if LogAdd(-1, -3) != LogAdd(-3, -1) {
		t.Error("LogAdd is not symmetric")
	}

	// Adding log(0) is identity
	if LogAdd(-5, LogZero) != -5 {
		t.Errorf("LogAdd(-5, LogZero) = %f, want -5", LogAdd(-5, LogZero))
	}

	// Huge difference: smaller term vanishes
	if LogAdd(0, -100) != 0 {
		t.Errorf("LogAdd(0, -100) = %f, want 0", LogAdd(0, -100))
	}
}

func TestIsLogZero(t *testing.T) {
	if !IsLogZero(LogZero) {
		t.Error("IsLogZero(LogZero) = false")
	}
	if IsLogZero(-100) {
		t.Error("IsLogZero(-100) = true")
	}
}
