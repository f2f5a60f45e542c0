package timectrl

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/cosmoview/model"
)

func TestTimeControllerSetTime(t *testing.T) {
	tc := NewTimeController(0, time.Second, RealTime)
	tc.SetTime(42)

	if got := tc.Now(); got.Sim != 42 || got.Real != 0 {
		t.Fatalf("Now() = %+v, want sim 42 real 0", got)
	}
}

func TestTimeControllerStepScalesSimTime(t *testing.T) {
	tc := NewTimeController(1000, time.Second, Accelerated)
	tc.SetTimeScale(3600)

	var seen []FrameTime
	tc.AddListener(func(f FrameTime) { seen = append(seen, f) })

	tc.Step(500 * time.Millisecond)
	tc.Step(500 * time.Millisecond)

	want := FrameTime{Real: 1, Sim: 1000 + 3600}
	if got := tc.Now(); got != want {
		t.Fatalf("Now() = %+v, want %+v", got, want)
	}
	if len(seen) != 2 || seen[1] != want {
		t.Fatalf("listener saw %+v", seen)
	}
	if tc.TimeScale() != 3600 {
		t.Fatalf("TimeScale() = %v", tc.TimeScale())
	}
}

func TestTimeControllerPause(t *testing.T) {
	tc := NewTimeController(0, time.Second, Accelerated)
	tc.SetPaused(true)
	tc.Step(2 * time.Second)
	if got := tc.Now(); got.Sim != 0 || got.Real != 2 {
		t.Fatalf("paused step: %+v", got)
	}
	if !tc.Paused() {
		t.Fatalf("Paused() = false")
	}

	tc.SetPaused(false)
	tc.SetTimeScale(-1)
	tc.Step(time.Second)
	if got := tc.Now(); got.Sim != -1 {
		t.Fatalf("reverse step: sim = %v, want -1", got.Sim)
	}
}

func TestTimeControllerStartUpdatesNow(t *testing.T) {
	tc := NewTimeController(0, 5*time.Millisecond, Accelerated)

	done := tc.Start(context.Background(), 15*time.Millisecond)
	<-done

	if got := tc.Now(); got.Sim < 0.015-1e-12 || got.Sim > 0.015+1e-12 {
		t.Fatalf("Now() = %+v, want sim 0.015", got)
	}
}

func TestTimeControllerStartStopsOnCancel(t *testing.T) {
	tc := NewTimeController(0, time.Millisecond, RealTime)
	ctx, cancel := context.WithCancel(context.Background())
	done := tc.Start(ctx, 0)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("controller did not stop after cancel")
	}
}

func TestFrameTimeUTC(t *testing.T) {
	f := FrameTime{Sim: 86400}
	want := model.J2000.Add(24 * time.Hour)
	if got := f.UTC(); !got.Equal(want) {
		t.Fatalf("UTC() = %v, want %v", got, want)
	}
}
