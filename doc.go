// Package avfacepay provides the client-side orchestration engine for a
// biometric payment flow: a face-capture state machine with alignment gating
// and auto-capture, an OTP fallback coordinator with attempt lockouts, a
// canonical biometric error taxonomy, and HTTP clients for the face, OTP,
// payment, and hosted-checkout backends.
//
// The package is designed for concurrent embedders: Engine methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// avfacepay is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, AuthError, OTPStatusView, etc.). The capture
// state machine lives in the capture subpackage; backend and provider HTTP
// wrappers live in the client subpackage. Neither subpackage imports
// avfacepay.
//
// # What this package must NOT do
//
//   - Persist biometric templates or perform face matching; captured frames
//     are opaque payloads forwarded to the face backend.
//   - Render anything. Hosts consume capture events and engine state and do
//     their own presentation.
//   - Touch real cameras or wall clocks directly; frame sources and clocks
//     are injected interfaces.
//
// # Timing contract
//
// Every countdown, cooldown, and lockout deadline is computed against the
// injected clock. With a virtual clock the whole engine runs deterministic
// under test without a single sleep.
package avfacepay
