package avfacepay

import (
	"context"
	"fmt"
	"time"
)

// AuthMode defines a public type used by avfacePay APIs.
//
// AuthMode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthMode string

const (
	// ModeRegister is an exported constant or variable used by the payment authentication engine.
	ModeRegister AuthMode = "register"
	// ModeLogin is an exported constant or variable used by the payment authentication engine.
	ModeLogin AuthMode = "login"
	// ModeIdentify is an exported constant or variable used by the payment authentication engine.
	ModeIdentify AuthMode = "identify"
	// ModeVerify is an exported constant or variable used by the payment authentication engine.
	ModeVerify AuthMode = "verify"
)

func (m AuthMode) valid() bool {
	switch m {
	case ModeRegister, ModeLogin, ModeIdentify, ModeVerify:
		return true
	default:
		return false
	}
}

// ErrorCode defines a public type used by avfacePay APIs.
//
// ErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ErrorCode string

const (
	// CodeCameraAccessDenied is an exported constant or variable used by the payment authentication engine.
	CodeCameraAccessDenied ErrorCode = "CAMERA_ACCESS_DENIED"
	// CodeFaceRecognitionTimeout is an exported constant or variable used by the payment authentication engine.
	CodeFaceRecognitionTimeout ErrorCode = "FACE_RECOGNITION_TIMEOUT"
	// CodeBiometricFailed is an exported constant or variable used by the payment authentication engine.
	CodeBiometricFailed ErrorCode = "BIOMETRIC_FAILED"
	// CodeDuplicateFaceRegistration is an exported constant or variable used by the payment authentication engine.
	CodeDuplicateFaceRegistration ErrorCode = "DUPLICATE_FACE_REGISTRATION"
	// CodeFaceDetectionFailed is an exported constant or variable used by the payment authentication engine.
	CodeFaceDetectionFailed ErrorCode = "FACE_DETECTION_FAILED"
	// CodeFaceNotRegistered is an exported constant or variable used by the payment authentication engine.
	CodeFaceNotRegistered ErrorCode = "FACE_NOT_REGISTERED"
	// CodeValidationError is an exported constant or variable used by the payment authentication engine.
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	// CodeInvalidRequest is an exported constant or variable used by the payment authentication engine.
	CodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// CodeNetworkError is an exported constant or variable used by the payment authentication engine.
	CodeNetworkError ErrorCode = "NETWORK_ERROR"
	// CodeSystemError is an exported constant or variable used by the payment authentication engine.
	CodeSystemError ErrorCode = "SYSTEM_ERROR"
	// CodeUnknownError is an exported constant or variable used by the payment authentication engine.
	CodeUnknownError ErrorCode = "UNKNOWN_ERROR"
	// CodeMultipleFailedAttempts is an exported constant or variable used by the payment authentication engine.
	CodeMultipleFailedAttempts ErrorCode = "MULTIPLE_FAILED_ATTEMPTS"
	// CodeDeviceNotTrusted is an exported constant or variable used by the payment authentication engine.
	CodeDeviceNotTrusted ErrorCode = "DEVICE_NOT_TRUSTED"
	// CodeSuspiciousActivity is an exported constant or variable used by the payment authentication engine.
	CodeSuspiciousActivity ErrorCode = "SUSPICIOUS_ACTIVITY"
	// CodeLivenessCheckFailed is an exported constant or variable used by the payment authentication engine.
	CodeLivenessCheckFailed ErrorCode = "LIVENESS_CHECK_FAILED"
)

// AuthError defines a public type used by avfacePay APIs.
//
// AuthError is the canonical classified form of any failure surfaced to a
// host. Code and Message are stable; Err carries the underlying cause for
// errors.Is/As chains.
type AuthError struct {
	Code             ErrorCode
	Message          string
	RequiresFallback bool
	Err              error
	Timestamp        time.Time
}

// Error describes the error operation and its observable behavior.
func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap describes the unwrap operation and its observable behavior.
func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AuthResult defines a public type used by avfacePay APIs.
//
// AuthResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthResult struct {
	Success          bool
	UserID           string
	Email            string
	Token            string
	Message          string
	Confidence       float64
	RequiresFallback bool
}

// UserProfile defines a public type used by avfacePay APIs.
//
// UserProfile instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserProfile struct {
	UserID    string
	Email     string
	Name      string
	CreatedAt time.Time
}

// OTPMethod defines a public type used by avfacePay APIs.
//
// OTPMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPMethod string

const (
	// OTPMethodSMS is an exported constant or variable used by the payment authentication engine.
	OTPMethodSMS OTPMethod = "sms"
	// OTPMethodEmail is an exported constant or variable used by the payment authentication engine.
	OTPMethodEmail OTPMethod = "email"
)

func (m OTPMethod) valid() bool {
	return m == OTPMethodSMS || m == OTPMethodEmail
}

// OTPRequest defines a public type used by avfacePay APIs.
//
// OTPRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPRequest struct {
	Method      OTPMethod
	Destination string
	Purpose     string
}

// OTPSession defines a public type used by avfacePay APIs.
//
// OTPSession instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPSession struct {
	ID        string
	Method    OTPMethod
	ExpiresAt time.Time
}

// OTPVerification defines a public type used by avfacePay APIs.
//
// OTPVerification instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPVerification struct {
	Verified bool
	UserID   string
	Token    string
}

// OTPSessionStatus defines a public type used by avfacePay APIs.
//
// OTPSessionStatus instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPSessionStatus struct {
	SessionID string
	Active    bool
	ExpiresAt time.Time
}

// OTPStatusView defines a public type used by avfacePay APIs.
//
// OTPStatusView is the engine-side snapshot of the fallback flow a host
// renders from: attempts, lockout, and resend cooldown, all computed against
// the engine clock at call time.
type OTPStatusView struct {
	Active          bool
	SessionID       string
	Method          OTPMethod
	Attempts        int
	MaxAttempts     int
	Locked          bool
	LockRemaining   time.Duration
	ResendRemaining time.Duration
}

// MessageKind defines a public type used by avfacePay APIs.
//
// MessageKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MessageKind uint8

const (
	// MessageNone is an exported constant or variable used by the payment authentication engine.
	MessageNone MessageKind = iota
	// MessageInfo is an exported constant or variable used by the payment authentication engine.
	MessageInfo
	// MessageSuccess is an exported constant or variable used by the payment authentication engine.
	MessageSuccess
	// MessageError is an exported constant or variable used by the payment authentication engine.
	MessageError
)

// Message defines a public type used by avfacePay APIs.
//
// Message instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Message struct {
	Kind MessageKind
	Text string
	Code ErrorCode
	At   time.Time
}

// FaceService defines a public type used by avfacePay APIs.
//
// FaceService is the face backend the engine submits captured frames to.
// Implementations live in the client subpackage; tests substitute fakes.
type FaceService interface {
	Register(ctx context.Context, email string, images [][]byte) (*AuthResult, error)
	Login(ctx context.Context, email string, images [][]byte) (*AuthResult, error)
	Identify(ctx context.Context, images [][]byte) (*AuthResult, error)
	Verify(ctx context.Context, email string, images [][]byte) (*AuthResult, error)
	ValidateEmail(ctx context.Context, email string) (bool, error)
	CurrentUser(ctx context.Context) (*UserProfile, error)
}

// OTPService defines a public type used by avfacePay APIs.
//
// OTPService instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPService interface {
	Request(ctx context.Context, req OTPRequest) (*OTPSession, error)
	Verify(ctx context.Context, sessionID, code string) (*OTPVerification, error)
	Resend(ctx context.Context, sessionID string) error
	Cancel(ctx context.Context, sessionID string) error
	Status(ctx context.Context, sessionID string) (*OTPSessionStatus, error)
}

// Card defines a public type used by avfacePay APIs.
//
// Card instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Card struct {
	ID          string
	Brand       string
	Last4       string
	ExpiryMonth int
	ExpiryYear  int
	HolderName  string
	Primary     bool
}

// BankAccount defines a public type used by avfacePay APIs.
//
// BankAccount instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BankAccount struct {
	ID            string
	BankName      string
	AccountLast4  string
	RoutingNumber string
	HolderName    string
	Primary       bool
}

// ExchangeRate defines a public type used by avfacePay APIs.
//
// ExchangeRate instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ExchangeRate struct {
	Base      string
	Target    string
	Rate      float64
	Timestamp time.Time
}

// PaymentService defines a public type used by avfacePay APIs.
//
// PaymentService instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PaymentService interface {
	ListCards(ctx context.Context, userID string) ([]Card, error)
	SaveCard(ctx context.Context, userID string, card Card) (*Card, error)
	DeleteCard(ctx context.Context, userID, cardID string) error
	SetPrimaryCard(ctx context.Context, userID, cardID string) error

	ListBankAccounts(ctx context.Context, userID string) ([]BankAccount, error)
	AddBankAccount(ctx context.Context, userID string, account BankAccount) (*BankAccount, error)
	DeleteBankAccount(ctx context.Context, userID, accountID string) error
	SetPrimaryBankAccount(ctx context.Context, userID, accountID string) error

	GetExchangeRate(ctx context.Context, base, target string) (*ExchangeRate, error)
}

// Amount defines a public type used by avfacePay APIs.
//
// Amount uses the provider's string-decimal convention ("10.00") so values
// survive JSON round-trips without float drift.
type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// SequenceType defines a public type used by avfacePay APIs.
//
// SequenceType instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SequenceType string

const (
	// SequenceOneOff is an exported constant or variable used by the payment authentication engine.
	SequenceOneOff SequenceType = "oneoff"
	// SequenceFirst is an exported constant or variable used by the payment authentication engine.
	SequenceFirst SequenceType = "first"
	// SequenceRecurring is an exported constant or variable used by the payment authentication engine.
	SequenceRecurring SequenceType = "recurring"
)

// PaymentStatus defines a public type used by avfacePay APIs.
//
// PaymentStatus instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PaymentStatus string

const (
	// PaymentOpen is an exported constant or variable used by the payment authentication engine.
	PaymentOpen PaymentStatus = "open"
	// PaymentPending is an exported constant or variable used by the payment authentication engine.
	PaymentPending PaymentStatus = "pending"
	// PaymentPaid is an exported constant or variable used by the payment authentication engine.
	PaymentPaid PaymentStatus = "paid"
	// PaymentFailed is an exported constant or variable used by the payment authentication engine.
	PaymentFailed PaymentStatus = "failed"
	// PaymentCanceled is an exported constant or variable used by the payment authentication engine.
	PaymentCanceled PaymentStatus = "canceled"
	// PaymentExpired is an exported constant or variable used by the payment authentication engine.
	PaymentExpired PaymentStatus = "expired"
)

// Terminal describes the terminal operation and its observable behavior.
//
// Terminal reports whether the status can no longer change.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentPaid, PaymentFailed, PaymentCanceled, PaymentExpired:
		return true
	default:
		return false
	}
}

// CheckoutCustomer defines a public type used by avfacePay APIs.
//
// CheckoutCustomer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CheckoutCustomer struct {
	ID    string
	Name  string
	Email string
}

// CheckoutPaymentRequest defines a public type used by avfacePay APIs.
//
// CheckoutPaymentRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CheckoutPaymentRequest struct {
	CustomerID  string
	Amount      Amount
	Description string
	RedirectURL string
	WebhookURL  string
	Sequence    SequenceType
	MandateID   string
	Metadata    map[string]string
}

// CheckoutPayment defines a public type used by avfacePay APIs.
//
// CheckoutPayment instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CheckoutPayment struct {
	ID          string
	CustomerID  string
	Amount      Amount
	Description string
	Status      PaymentStatus
	CheckoutURL string
	MandateID   string
	CreatedAt   time.Time
}

// Mandate defines a public type used by avfacePay APIs.
//
// Mandate instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Mandate struct {
	ID         string
	CustomerID string
	Method     string
	Status     string
	CreatedAt  time.Time
}

// Refund defines a public type used by avfacePay APIs.
//
// Refund instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Refund struct {
	ID          string
	PaymentID   string
	Amount      Amount
	Status      string
	Description string
	CreatedAt   time.Time
}

// CheckoutService defines a public type used by avfacePay APIs.
//
// CheckoutService is the hosted-checkout provider surface. The client
// subpackage implements it with a circuit breaker around every call.
type CheckoutService interface {
	CreateCustomer(ctx context.Context, name, email string) (*CheckoutCustomer, error)
	CreatePayment(ctx context.Context, req CheckoutPaymentRequest) (*CheckoutPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*CheckoutPayment, error)
	ListMandates(ctx context.Context, customerID string) ([]Mandate, error)
	RevokeMandate(ctx context.Context, customerID, mandateID string) error
	CreateRefund(ctx context.Context, paymentID string, amount Amount, description string) (*Refund, error)
	GetRefund(ctx context.Context, paymentID, refundID string) (*Refund, error)
}

// PendingRedirect defines a public type used by avfacePay APIs.
//
// PendingRedirect is the continuity record written before handing the user
// off to the hosted checkout page and read back when the redirect returns,
// possibly in a fresh process.
type PendingRedirect struct {
	PaymentID  string
	CustomerID string
	Amount     Amount
	Purpose    string
	CreatedAt  time.Time
}

// RedirectResult defines a public type used by avfacePay APIs.
//
// RedirectResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectResult struct {
	Payment  *CheckoutPayment
	Recovery *PendingRedirect
	Source   string // "query", "fragment", or "store"
}
