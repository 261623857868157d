// Package client implements the HTTP collaborators the engine talks to: the
// face authentication backend, the OTP delivery backend, the payment-method
// backend, and the hosted-checkout provider.
//
// All clients are context-aware, speak JSON, inject the bearer token held by
// [TokenStore], and normalize error bodies (detail, message, error, or a
// bare string) into [APIError] so the engine's classifier sees one shape.
// The checkout client additionally routes every call through a circuit
// breaker.
package client
