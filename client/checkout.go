package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	avfacepay "github.com/Handavipul/avfacePay"
)

// CheckoutClient defines a public type used by avfacePay APIs.
//
// CheckoutClient implements avfacepay.CheckoutService against a
// Mollie-style hosted-checkout provider. Every call passes through a circuit
// breaker; provider 5xx and transport failures trip it, client-side 4xx do
// not.
type CheckoutClient struct {
	http    *httpClient
	breaker *gobreaker.CircuitBreaker
}

// NewCheckoutClient describes the newcheckoutclient operation and its observable behavior.
func NewCheckoutClient(cfg Config, apiKey string) *CheckoutClient {
	tokens := NewTokenStore()
	tokens.Set(apiKey)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "checkout",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &CheckoutClient{
		http:    newHTTPClient(cfg, tokens),
		breaker: breaker,
	}
}

// exec routes one call through the breaker. Client-side rejections come
// back as the result value so they never count toward tripping.
func (c *CheckoutClient) exec(ctx context.Context, method, path string, body, out any) error {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		err := c.http.do(ctx, method, path, body, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return apiErr, nil
		}
		return nil, err
	})
	if err != nil {
		return err
	}
	if apiErr, ok := res.(*APIError); ok {
		return apiErr
	}
	return nil
}

type checkoutCustomerBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type checkoutCustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateCustomer describes the createcustomer operation and its observable behavior.
func (c *CheckoutClient) CreateCustomer(ctx context.Context, name, email string) (*avfacepay.CheckoutCustomer, error) {
	var resp checkoutCustomerResponse
	if err := c.exec(ctx, http.MethodPost, "/customers", checkoutCustomerBody{Name: name, Email: email}, &resp); err != nil {
		return nil, err
	}
	return &avfacepay.CheckoutCustomer{ID: resp.ID, Name: resp.Name, Email: resp.Email}, nil
}

type checkoutPaymentBody struct {
	Amount       avfacepay.Amount  `json:"amount"`
	Description  string            `json:"description"`
	RedirectURL  string            `json:"redirectUrl,omitempty"`
	WebhookURL   string            `json:"webhookUrl,omitempty"`
	SequenceType string            `json:"sequenceType,omitempty"`
	CustomerID   string            `json:"customerId,omitempty"`
	MandateID    string            `json:"mandateId,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type checkoutPaymentResponse struct {
	ID          string           `json:"id"`
	CustomerID  string           `json:"customerId"`
	Amount      avfacepay.Amount `json:"amount"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	MandateID   string           `json:"mandateId"`
	CreatedAt   time.Time        `json:"createdAt"`
	Links       struct {
		Checkout struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
}

func (r *checkoutPaymentResponse) payment() *avfacepay.CheckoutPayment {
	return &avfacepay.CheckoutPayment{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		Amount:      r.Amount,
		Description: r.Description,
		Status:      avfacepay.PaymentStatus(r.Status),
		CheckoutURL: r.Links.Checkout.Href,
		MandateID:   r.MandateID,
		CreatedAt:   r.CreatedAt,
	}
}

// CreatePayment describes the createpayment operation and its observable behavior.
func (c *CheckoutClient) CreatePayment(ctx context.Context, req avfacepay.CheckoutPaymentRequest) (*avfacepay.CheckoutPayment, error) {
	body := checkoutPaymentBody{
		Amount:       req.Amount,
		Description:  req.Description,
		RedirectURL:  req.RedirectURL,
		WebhookURL:   req.WebhookURL,
		SequenceType: string(req.Sequence),
		CustomerID:   req.CustomerID,
		MandateID:    req.MandateID,
		Metadata:     req.Metadata,
	}
	var resp checkoutPaymentResponse
	if err := c.exec(ctx, http.MethodPost, "/payments", body, &resp); err != nil {
		return nil, err
	}
	return resp.payment(), nil
}

// GetPayment describes the getpayment operation and its observable behavior.
func (c *CheckoutClient) GetPayment(ctx context.Context, paymentID string) (*avfacepay.CheckoutPayment, error) {
	var resp checkoutPaymentResponse
	if err := c.exec(ctx, http.MethodGet, "/payments/"+paymentID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.payment(), nil
}

// WaitForPayment describes the waitforpayment operation and its observable behavior.
//
// WaitForPayment polls until the payment reaches a terminal status or the
// context ends, returning the last status seen either way.
func (c *CheckoutClient) WaitForPayment(ctx context.Context, paymentID string, interval time.Duration) (*avfacepay.CheckoutPayment, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		payment, err := c.GetPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if payment.Status.Terminal() {
			return payment, nil
		}
		select {
		case <-ctx.Done():
			return payment, ctx.Err()
		case <-ticker.C:
		}
	}
}

type mandateResponse struct {
	ID        string    `json:"id"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListMandates describes the listmandates operation and its observable behavior.
func (c *CheckoutClient) ListMandates(ctx context.Context, customerID string) ([]avfacepay.Mandate, error) {
	var resp struct {
		Embedded struct {
			Mandates []mandateResponse `json:"mandates"`
		} `json:"_embedded"`
	}
	if err := c.exec(ctx, http.MethodGet, "/customers/"+customerID+"/mandates", nil, &resp); err != nil {
		return nil, err
	}
	mandates := make([]avfacepay.Mandate, 0, len(resp.Embedded.Mandates))
	for _, m := range resp.Embedded.Mandates {
		mandates = append(mandates, avfacepay.Mandate{
			ID:         m.ID,
			CustomerID: customerID,
			Method:     m.Method,
			Status:     m.Status,
			CreatedAt:  m.CreatedAt,
		})
	}
	return mandates, nil
}

// RevokeMandate describes the revokemandate operation and its observable behavior.
func (c *CheckoutClient) RevokeMandate(ctx context.Context, customerID, mandateID string) error {
	return c.exec(ctx, http.MethodDelete, "/customers/"+customerID+"/mandates/"+mandateID, nil, nil)
}

type refundBody struct {
	Amount      avfacepay.Amount `json:"amount"`
	Description string           `json:"description,omitempty"`
}

type refundResponse struct {
	ID          string           `json:"id"`
	PaymentID   string           `json:"paymentId"`
	Amount      avfacepay.Amount `json:"amount"`
	Status      string           `json:"status"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func (r *refundResponse) refund(paymentID string) *avfacepay.Refund {
	id := r.PaymentID
	if id == "" {
		id = paymentID
	}
	return &avfacepay.Refund{
		ID:          r.ID,
		PaymentID:   id,
		Amount:      r.Amount,
		Status:      r.Status,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateRefund describes the createrefund operation and its observable behavior.
func (c *CheckoutClient) CreateRefund(ctx context.Context, paymentID string, amount avfacepay.Amount, description string) (*avfacepay.Refund, error) {
	var resp refundResponse
	if err := c.exec(ctx, http.MethodPost, "/payments/"+paymentID+"/refunds", refundBody{Amount: amount, Description: description}, &resp); err != nil {
		return nil, err
	}
	return resp.refund(paymentID), nil
}

// GetRefund describes the getrefund operation and its observable behavior.
func (c *CheckoutClient) GetRefund(ctx context.Context, paymentID, refundID string) (*avfacepay.Refund, error) {
	var resp refundResponse
	if err := c.exec(ctx, http.MethodGet, "/payments/"+paymentID+"/refunds/"+refundID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.refund(paymentID), nil
}
