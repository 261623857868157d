package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrCameraUnavailable is an exported constant or variable used by the payment authentication engine.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrNotStreaming is an exported constant or variable used by the payment authentication engine.
	ErrNotStreaming = errors.New("capture not streaming")
	// ErrCaptureBusy is an exported constant or variable used by the payment authentication engine.
	ErrCaptureBusy = errors.New("capture already in progress")
	// ErrOrchestratorClosed is an exported constant or variable used by the payment authentication engine.
	ErrOrchestratorClosed = errors.New("capture orchestrator closed")
	// ErrFaceNotAligned is an exported constant or variable used by the payment authentication engine.
	ErrFaceNotAligned = errors.New("face not aligned with guide")
	// ErrStepAlreadyComplete is an exported constant or variable used by the payment authentication engine.
	ErrStepAlreadyComplete = errors.New("capture step already complete")
	// ErrFrameUnavailable is an exported constant or variable used by the payment authentication engine.
	ErrFrameUnavailable = errors.New("frame unavailable")
)

// State defines a public type used by avfacePay APIs.
type State uint8

const (
	// StateIdle is an exported constant or variable used by the payment authentication engine.
	StateIdle State = iota
	// StateStreaming is an exported constant or variable used by the payment authentication engine.
	StateStreaming
	// StateDetecting is an exported constant or variable used by the payment authentication engine.
	StateDetecting
	// StateAligned is an exported constant or variable used by the payment authentication engine.
	StateAligned
	// StateCountingDown is an exported constant or variable used by the payment authentication engine.
	StateCountingDown
	// StateCapturing is an exported constant or variable used by the payment authentication engine.
	StateCapturing
	// StateAllComplete is an exported constant or variable used by the payment authentication engine.
	StateAllComplete
	// StateClosed is an exported constant or variable used by the payment authentication engine.
	StateClosed
)

// String describes the string operation and its observable behavior.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDetecting:
		return "detecting"
	case StateAligned:
		return "aligned"
	case StateCountingDown:
		return "counting_down"
	case StateCapturing:
		return "capturing"
	case StateAllComplete:
		return "all_complete"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventType defines a public type used by avfacePay APIs.
type EventType uint8

const (
	// EventStateChanged is an exported constant or variable used by the payment authentication engine.
	EventStateChanged EventType = iota
	// EventCountdownTick is an exported constant or variable used by the payment authentication engine.
	EventCountdownTick
	// EventStepCaptured is an exported constant or variable used by the payment authentication engine.
	EventStepCaptured
	// EventAllComplete is an exported constant or variable used by the payment authentication engine.
	EventAllComplete
	// EventError is an exported constant or variable used by the payment authentication engine.
	EventError
)

// Event defines a public type used by avfacePay APIs.
//
// Event is the push-based notification emitted by the orchestrator. The
// host renders from events; the orchestrator itself never renders.
type Event struct {
	Type      EventType
	State     State
	Step      Step
	Countdown int
	Err       error
}

// Status defines a public type used by avfacePay APIs.
//
// Status is the pull-based view of the state machine for hosts that poll
// instead of (or in addition to) consuming events.
type Status struct {
	State          State
	FaceDetected   bool
	FaceInCircle   bool
	Confidence     float64
	Dwell          time.Duration
	Countdown      int
	CompletedSteps int
	TotalSteps     int
}

// Config defines a public type used by avfacePay APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	DetectionInterval  time.Duration // frame sampling cadence
	StabilityThreshold time.Duration // continuous dwell required before countdown
	AlignmentThreshold float64       // max px between face center and guide center
	CountdownStart     int           // visual countdown start value
	CountdownInterval  time.Duration // pace of countdown ticks
	AutoCapture        bool
	MirrorFrames       bool
	EventBuffer        int
}

// DefaultOrchestratorConfig describes the defaultorchestratorconfig operation and its observable behavior.
func DefaultOrchestratorConfig() Config {
	return Config{
		DetectionInterval:  100 * time.Millisecond,
		StabilityThreshold: 2 * time.Second,
		AlignmentThreshold: 80,
		CountdownStart:     3,
		CountdownInterval:  time.Second,
		AutoCapture:        true,
		MirrorFrames:       true,
		EventBuffer:        32,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultOrchestratorConfig()
	if c.DetectionInterval <= 0 {
		c.DetectionInterval = d.DetectionInterval
	}
	if c.StabilityThreshold <= 0 {
		c.StabilityThreshold = d.StabilityThreshold
	}
	if c.AlignmentThreshold <= 0 {
		c.AlignmentThreshold = d.AlignmentThreshold
	}
	if c.CountdownStart <= 0 {
		c.CountdownStart = d.CountdownStart
	}
	if c.CountdownInterval <= 0 {
		c.CountdownInterval = d.CountdownInterval
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = d.EventBuffer
	}
	return c
}

// Orchestrator defines a public type used by avfacePay APIs.
//
// Orchestrator drives one capture session through the state machine
// Idle → Streaming → Detecting → Aligned → CountingDown → Capturing →
// (StepComplete → Detecting | AllComplete). It exclusively owns the frame
// source for its lifetime; exactly one orchestrator may hold a camera.
type Orchestrator struct {
	cfg    Config
	clock  Clock
	log    *zap.Logger
	source FrameSource

	mu            sync.Mutex
	state         State
	session       *Session
	align         *AlignmentEvaluator
	stability     *StabilityTracker
	faceDetected  bool
	faceInCircle  bool
	confidence    float64
	countdown     int
	countdownNext time.Time
	capturing     bool
	processing    bool
	autoCapture   bool
	closed        bool

	events  chan Event
	dropped atomic.Uint64
}

// NewOrchestrator describes the neworchestrator operation and its observable behavior.
func NewOrchestrator(cfg Config, sessionID string, steps []Step, src FrameSource, clock Clock, log *zap.Logger) *Orchestrator {
	cfg = cfg.withDefaults()
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cfg:         cfg,
		clock:       clock,
		log:         log,
		source:      src,
		state:       StateIdle,
		session:     NewSession(sessionID, steps),
		align:       NewAlignmentEvaluator(cfg.AlignmentThreshold),
		stability:   NewStabilityTracker(cfg.StabilityThreshold),
		autoCapture: cfg.AutoCapture,
		events:      make(chan Event, cfg.EventBuffer),
	}
}

// Start acquires the camera and anchors the guide circle at the frame
// center. Idle → Streaming.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOrchestratorClosed
	}
	if o.state != StateIdle {
		return ErrCaptureBusy
	}

	w, h, err := o.source.Start()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	o.align.SetGuideCenter(Point{X: float64(w) / 2, Y: float64(h) / 2})
	o.setStateLocked(StateStreaming)
	return nil
}

// Run drives Tick at the configured detection interval until the context is
// cancelled or the orchestrator is closed. Tests bypass Run and call Tick
// against a virtual clock.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.DetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.mu.Lock()
			closed := o.closed
			o.mu.Unlock()
			if closed {
				return ErrOrchestratorClosed
			}
			o.Tick()
		}
	}
}

// Tick runs one detection cycle: sample, align, accumulate dwell, and move
// the countdown or capture forward. Detection errors are logged and
// swallowed; the session keeps running.
func (o *Orchestrator) Tick() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || o.state == StateIdle || o.state == StateAllComplete {
		return
	}
	// Capture and submission are mutually exclusive with detection.
	if o.capturing || o.processing {
		return
	}
	if o.state == StateStreaming {
		o.setStateLocked(StateDetecting)
	}

	det, err := o.source.Detect()
	if err != nil {
		o.log.Warn("face detection failed", zap.Error(err))
		return
	}

	now := o.clock.Now()

	if det == nil {
		o.faceDetected = false
		o.faceInCircle = false
		o.confidence = 0
		o.stability.Reset()
		if o.state == StateCountingDown || o.state == StateAligned {
			o.abortCountdownLocked()
			o.setStateLocked(StateDetecting)
		}
		return
	}

	o.faceDetected = true
	o.confidence = det.Confidence
	center := det.Center()
	o.faceInCircle = o.align.InCircle(&center)
	o.stability.Observe(o.faceInCircle, now)

	if o.state == StateCountingDown {
		o.advanceCountdownLocked(now)
		return
	}

	cur := o.session.Sequencer().Current()
	if o.autoCapture && o.faceInCircle && cur != nil && !cur.Completed {
		if o.state != StateAligned {
			o.setStateLocked(StateAligned)
		}
		if o.stability.Ready(now) {
			o.countdown = o.cfg.CountdownStart
			o.countdownNext = now.Add(o.cfg.CountdownInterval)
			o.setStateLocked(StateCountingDown)
			o.emitLocked(Event{Type: EventCountdownTick, State: o.state, Countdown: o.countdown})
		}
		return
	}

	if o.state == StateAligned {
		o.setStateLocked(StateDetecting)
	}
}

// advanceCountdownLocked progresses the 3-2-1 countdown, checking the
// capture preconditions before every tick. Aborts return to Detecting with
// no penalty beyond the dwell reset that already happened on misalignment.
func (o *Orchestrator) advanceCountdownLocked(now time.Time) {
	if !o.canCaptureLocked() {
		o.abortCountdownLocked()
		o.setStateLocked(StateDetecting)
		return
	}
	if now.Before(o.countdownNext) {
		return
	}

	o.countdown--
	if o.countdown > 0 {
		o.countdownNext = o.countdownNext.Add(o.cfg.CountdownInterval)
		o.emitLocked(Event{Type: EventCountdownTick, State: o.state, Countdown: o.countdown})
		return
	}

	if err := o.performCaptureLocked(); err != nil {
		o.emitLocked(Event{Type: EventError, State: o.state, Err: err})
	}
}

// Capture performs a manual capture. It bypasses the stability and countdown
// requirements but still enforces the base preconditions: streaming, not
// already capturing, not processing a submission.
func (o *Orchestrator) Capture() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOrchestratorClosed
	}
	o.abortCountdownLocked()
	if !o.canCaptureLocked() {
		switch {
		case o.state == StateIdle:
			return ErrNotStreaming
		case o.capturing || o.processing:
			return ErrCaptureBusy
		default:
			return ErrFaceNotAligned
		}
	}
	return o.performCaptureLocked()
}

func (o *Orchestrator) canCaptureLocked() bool {
	if o.closed || o.state == StateIdle || o.state == StateAllComplete {
		return false
	}
	if o.capturing || o.processing {
		return false
	}
	if o.autoCapture && (!o.faceDetected || !o.faceInCircle) {
		return false
	}
	return true
}

func (o *Orchestrator) performCaptureLocked() error {
	cur := o.session.Sequencer().Current()
	if cur == nil || cur.Completed {
		return ErrStepAlreadyComplete
	}

	o.capturing = true
	o.setStateLocked(StateCapturing)

	frame, err := o.source.Frame()
	if err != nil {
		o.capturing = false
		o.stability.Reset()
		o.setStateLocked(StateDetecting)
		return fmt.Errorf("%w: %v", ErrFrameUnavailable, err)
	}
	if o.cfg.MirrorFrames {
		mirrored, err := mirrorFrame(frame)
		if err != nil {
			o.capturing = false
			o.stability.Reset()
			o.setStateLocked(StateDetecting)
			return fmt.Errorf("%w: %v", ErrFrameUnavailable, err)
		}
		frame = mirrored
	}

	angle := cur.Angle
	o.session.StoreImage(angle, frame)
	done := o.session.Sequencer().MarkCurrentComplete()

	o.stability.Reset()
	o.countdown = 0
	o.capturing = false

	o.emitLocked(Event{Type: EventStepCaptured, State: o.state, Step: *done})

	if o.session.Complete() {
		o.setStateLocked(StateAllComplete)
		o.emitLocked(Event{Type: EventAllComplete, State: o.state})
	} else {
		o.setStateLocked(StateDetecting)
	}
	return nil
}

func (o *Orchestrator) abortCountdownLocked() {
	o.countdown = 0
	o.countdownNext = time.Time{}
}

// SetAutoCapture toggles auto-capture and discards any pending countdown and
// accumulated dwell, matching a fresh start for the new mode.
func (o *Orchestrator) SetAutoCapture(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.autoCapture = enabled
	o.abortCountdownLocked()
	o.stability.Reset()
	if o.state == StateCountingDown || o.state == StateAligned {
		o.setStateLocked(StateDetecting)
	}
}

// SetGuideCenter re-anchors the guide circle, typically from a viewport
// resize hook.
func (o *Orchestrator) SetGuideCenter(p Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.align.SetGuideCenter(p)
}

// SetProcessing marks a submission in flight. While set, ticks and captures
// are rejected so no second submission can race the first.
func (o *Orchestrator) SetProcessing(processing bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processing = processing
	if processing {
		o.abortCountdownLocked()
		o.stability.Reset()
	}
}

// Session describes the session operation and its observable behavior.
func (o *Orchestrator) Session() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// State describes the state operation and its observable behavior.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Status describes the status operation and its observable behavior.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{
		State:          o.state,
		FaceDetected:   o.faceDetected,
		FaceInCircle:   o.faceInCircle,
		Confidence:     o.confidence,
		Dwell:          o.stability.Dwell(o.clock.Now()),
		Countdown:      o.countdown,
		CompletedSteps: o.session.Sequencer().CompletedCount(),
		TotalSteps:     o.session.Sequencer().Len(),
	}
}

// Events describes the events operation and its observable behavior.
func (o *Orchestrator) Events() <-chan Event { return o.events }

// Dropped describes the dropped operation and its observable behavior.
//
// Dropped reports how many events were discarded because the host read the
// event channel too slowly.
func (o *Orchestrator) Dropped() uint64 { return o.dropped.Load() }

// Close tears the session down from any state: stops the camera, discards
// the pending countdown and dwell, and ends the event stream. Safe to call
// more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	o.abortCountdownLocked()
	o.stability.Reset()
	if o.state != StateIdle {
		o.source.Stop()
	}
	o.state = StateClosed
	close(o.events)
}

func (o *Orchestrator) setStateLocked(s State) {
	if o.state == s {
		return
	}
	o.state = s
	o.emitLocked(Event{Type: EventStateChanged, State: s})
}

func (o *Orchestrator) emitLocked(ev Event) {
	if o.closed {
		return
	}
	select {
	case o.events <- ev:
	default:
		o.dropped.Add(1)
	}
}
