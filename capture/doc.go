// Package capture implements the liveness-guided face capture state machine:
// a tick-driven orchestrator that samples a frame source, checks alignment of
// the detected face against a guide circle, accumulates dwell time, counts
// down, and collects one image per required head pose.
//
// The package is UI-framework agnostic. It owns no rendering and no camera
// hardware: frames arrive through the [FrameSource] interface and all timing
// flows through the [Clock] interface so tests can advance virtual time
// deterministically.
//
// # Architecture boundaries
//
//   - No HTTP calls. Captured images are handed upward as raw encoded bytes;
//     submission belongs to the engine.
//   - No wall-clock sleeps. The orchestrator only reads the injected clock;
//     the embedder (or [Orchestrator.Run]) decides the tick cadence.
//   - Detection failures never abort a session. They are logged, swallowed,
//     and the loop keeps ticking until explicit teardown.
package capture
