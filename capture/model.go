package capture

// Detection defines a public type used by avfacePay APIs.
//
// Detection is the ephemeral per-tick sample produced by a frame source:
// face bounding box in frame pixels plus a 0..1 confidence. Samples are
// consumed immediately and never retained across ticks.
type Detection struct {
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Confidence float64
}

// Center describes the center operation and its observable behavior.
func (d *Detection) Center() Point {
	return Point{X: d.X + d.Width/2, Y: d.Y + d.Height/2}
}

// FrameSource defines a public type used by avfacePay APIs.
//
// FrameSource abstracts the camera stream. Start acquires the device and
// returns frame dimensions; Detect samples the current frame for a face
// (nil Detection, nil error when no face is present); Frame encodes the
// current frame as JPEG bytes; Stop releases the device. A source is owned
// by exactly one orchestrator at a time.
type FrameSource interface {
	Start() (width, height int, err error)
	Detect() (*Detection, error)
	Frame() ([]byte, error)
	Stop()
}

// Session defines a public type used by avfacePay APIs.
//
// Session is the per-attempt capture state: the required pose sequence and
// the image captured for each completed angle. It is owned exclusively by
// one orchestrator and discarded on cancel, success, or teardown.
type Session struct {
	ID     string
	seq    *Sequencer
	images map[string][]byte
}

// NewSession describes the newsession operation and its observable behavior.
func NewSession(id string, steps []Step) *Session {
	return &Session{
		ID:     id,
		seq:    NewSequencer(steps),
		images: make(map[string][]byte, len(steps)),
	}
}

// Sequencer describes the sequencer operation and its observable behavior.
func (s *Session) Sequencer() *Sequencer { return s.seq }

// StoreImage records the captured image for one angle.
func (s *Session) StoreImage(angle string, img []byte) {
	s.images[angle] = img
}

// Image returns the stored image for an angle, unmodified.
func (s *Session) Image(angle string) ([]byte, bool) {
	img, ok := s.images[angle]
	return img, ok
}

// Images returns the captured images in required-pose order, skipping any
// angle not yet captured.
func (s *Session) Images() [][]byte {
	steps := s.seq.Steps()
	out := make([][]byte, 0, len(steps))
	for _, st := range steps {
		if img, ok := s.images[st.Angle]; ok {
			out = append(out, img)
		}
	}
	return out
}

// Complete describes the complete operation and its observable behavior.
func (s *Session) Complete() bool { return s.seq.Complete() }

// Reset clears captured images and completed flags for a fresh attempt.
func (s *Session) Reset() {
	s.seq.Reset()
	s.images = make(map[string][]byte, s.seq.Len())
}
