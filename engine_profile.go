package avfacepay

import "context"

// ValidateEmail describes the validateemail operation and its observable behavior.
//
// ValidateEmail may return an error when input validation, dependency calls, or security checks fail.
// ValidateEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// ValidateEmail asks the backend whether the address belongs to a registered
// account, used to pick between the login and register flows up front.
func (e *Engine) ValidateEmail(ctx context.Context, email string) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	if email == "" {
		return false, ErrEmailRequired
	}
	registered, err := e.face.ValidateEmail(ctx, email)
	if err != nil {
		return false, Classify(err, e.now())
	}
	return registered, nil
}

// CurrentUser describes the currentuser operation and its observable behavior.
//
// CurrentUser may return an error when input validation, dependency calls, or security checks fail.
// CurrentUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CurrentUser(ctx context.Context) (*UserProfile, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	profile, err := e.face.CurrentUser(ctx)
	if err != nil {
		return nil, Classify(err, e.now())
	}
	return profile, nil
}
