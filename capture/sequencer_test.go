package capture

import "testing"

func TestRegistrationStepsOrder(t *testing.T) {
	steps := RegistrationSteps()
	if len(steps) != 5 {
		t.Fatalf("expected 5 registration steps, got %d", len(steps))
	}
	wantAngles := []string{"Center", "Left Turn", "Right Turn", "Tilt Up", "Tilt Down"}
	for i, want := range wantAngles {
		if steps[i].Angle != want {
			t.Fatalf("step %d angle = %q, want %q", i, steps[i].Angle, want)
		}
		if steps[i].Completed {
			t.Fatalf("step %d starts completed", i)
		}
		if steps[i].Instruction == "" {
			t.Fatalf("step %d has no instruction", i)
		}
	}
}

func TestSingleShotSteps(t *testing.T) {
	steps := SingleShotSteps()
	if len(steps) != 1 || steps[0].Angle != "Center" {
		t.Fatalf("unexpected single-shot steps: %+v", steps)
	}
}

func TestSequencerAdvanceAndComplete(t *testing.T) {
	seq := NewSequencer(RegistrationSteps())

	for i := 0; i < 5; i++ {
		cur := seq.Current()
		if cur == nil {
			t.Fatalf("no current step at index %d", i)
		}
		done := seq.MarkCurrentComplete()
		if done == nil || !done.Completed {
			t.Fatalf("step %d not marked complete", i)
		}
		if got := seq.CompletedCount(); got != i+1 {
			t.Fatalf("completed count = %d, want %d", got, i+1)
		}
	}
	if !seq.Complete() {
		t.Fatal("sequencer not complete after all steps captured")
	}
	if seq.Current() != nil && !seq.Current().Completed {
		t.Fatal("current step after completion should be complete")
	}
}

func TestSequencerMarkCompleteIdempotent(t *testing.T) {
	seq := NewSequencer(SingleShotSteps())
	seq.MarkCurrentComplete()
	before := seq.CompletedCount()
	seq.MarkCurrentComplete()
	if seq.CompletedCount() != before {
		t.Fatal("marking an already-completed step changed the count")
	}
}

func TestSequencerReset(t *testing.T) {
	seq := NewSequencer(RegistrationSteps())
	seq.MarkCurrentComplete()
	seq.MarkCurrentComplete()
	seq.Reset()
	if seq.CompletedCount() != 0 {
		t.Fatal("reset did not clear completed count")
	}
	for i, s := range seq.Steps() {
		if s.Completed {
			t.Fatalf("step %d still completed after reset", i)
		}
	}
	if cur := seq.Current(); cur == nil || cur.Angle != "Center" {
		t.Fatalf("reset did not rewind to the first step, current=%+v", cur)
	}
}

func TestSequencerStepsReturnsCopy(t *testing.T) {
	seq := NewSequencer(RegistrationSteps())
	out := seq.Steps()
	out[0].Completed = true
	if seq.Current().Completed {
		t.Fatal("mutating the Steps() copy leaked into the sequencer")
	}
}

func TestSessionImageRoundTrip(t *testing.T) {
	sess := NewSession("sess-1", RegistrationSteps())
	sess.StoreImage("Center", []byte{0x01})
	sess.StoreImage("Left Turn", []byte{0x02})

	img, ok := sess.Image("Center")
	if !ok || len(img) != 1 || img[0] != 0x01 {
		t.Fatalf("center image round trip failed: ok=%v img=%v", ok, img)
	}
	if _, ok := sess.Image("Tilt Down"); ok {
		t.Fatal("expected no image for an uncaptured pose")
	}

	all := sess.Images()
	if len(all) != 2 {
		t.Fatalf("Images() returned %d images, want 2", len(all))
	}
	// Pose order, not insertion order.
	if all[0][0] != 0x01 || all[1][0] != 0x02 {
		t.Fatalf("Images() out of pose order: %v", all)
	}
}
