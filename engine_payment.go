package avfacepay

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
)

// ListCards describes the listcards operation and its observable behavior.
func (e *Engine) ListCards(ctx context.Context, userID string) ([]Card, error) {
	if e == nil || e.payments == nil {
		return nil, ErrEngineNotReady
	}
	return e.payments.ListCards(ctx, userID)
}

// SaveCard describes the savecard operation and its observable behavior.
func (e *Engine) SaveCard(ctx context.Context, userID string, card Card) (*Card, error) {
	if e == nil || e.payments == nil {
		return nil, ErrEngineNotReady
	}
	return e.payments.SaveCard(ctx, userID, card)
}

// DeleteCard describes the deletecard operation and its observable behavior.
func (e *Engine) DeleteCard(ctx context.Context, userID, cardID string) error {
	if e == nil || e.payments == nil {
		return ErrEngineNotReady
	}
	return e.payments.DeleteCard(ctx, userID, cardID)
}

// SetPrimaryCard describes the setprimarycard operation and its observable behavior.
func (e *Engine) SetPrimaryCard(ctx context.Context, userID, cardID string) error {
	if e == nil || e.payments == nil {
		return ErrEngineNotReady
	}
	return e.payments.SetPrimaryCard(ctx, userID, cardID)
}

// ListBankAccounts describes the listbankaccounts operation and its observable behavior.
func (e *Engine) ListBankAccounts(ctx context.Context, userID string) ([]BankAccount, error) {
	if e == nil || e.payments == nil {
		return nil, ErrEngineNotReady
	}
	return e.payments.ListBankAccounts(ctx, userID)
}

// AddBankAccount describes the addbankaccount operation and its observable behavior.
func (e *Engine) AddBankAccount(ctx context.Context, userID string, account BankAccount) (*BankAccount, error) {
	if e == nil || e.payments == nil {
		return nil, ErrEngineNotReady
	}
	return e.payments.AddBankAccount(ctx, userID, account)
}

// DeleteBankAccount describes the deletebankaccount operation and its observable behavior.
func (e *Engine) DeleteBankAccount(ctx context.Context, userID, accountID string) error {
	if e == nil || e.payments == nil {
		return ErrEngineNotReady
	}
	return e.payments.DeleteBankAccount(ctx, userID, accountID)
}

// SetPrimaryBankAccount describes the setprimarybankaccount operation and its observable behavior.
func (e *Engine) SetPrimaryBankAccount(ctx context.Context, userID, accountID string) error {
	if e == nil || e.payments == nil {
		return ErrEngineNotReady
	}
	return e.payments.SetPrimaryBankAccount(ctx, userID, accountID)
}

// GetExchangeRate describes the getexchangerate operation and its observable behavior.
func (e *Engine) GetExchangeRate(ctx context.Context, base, target string) (*ExchangeRate, error) {
	if e == nil || e.payments == nil {
		return nil, ErrEngineNotReady
	}
	return e.payments.GetExchangeRate(ctx, base, target)
}

// StartCheckout describes the startcheckout operation and its observable behavior.
//
// StartCheckout may return an error when input validation, dependency calls, or security checks fail.
// StartCheckout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// StartCheckout creates the customer if needed, opens a hosted-checkout
// payment, and writes the continuity record before returning the checkout
// URL. Hosts send the user to that URL and call CompleteRedirect when the
// provider sends them back.
func (e *Engine) StartCheckout(ctx context.Context, userID, name, email string, amount Amount, description string) (*CheckoutPayment, error) {
	if e == nil || e.checkout == nil {
		return nil, ErrEngineNotReady
	}

	customer, err := e.checkout.CreateCustomer(ctx, name, email)
	if err != nil {
		e.metricInc(MetricCheckoutPaymentFailed)
		return nil, checkoutError(err)
	}

	payment, err := e.checkout.CreatePayment(ctx, CheckoutPaymentRequest{
		CustomerID:  customer.ID,
		Amount:      amount,
		Description: description,
		RedirectURL: e.config.Checkout.RedirectURL,
		WebhookURL:  e.config.Checkout.WebhookURL,
		Sequence:    SequenceFirst,
		Metadata:    map[string]string{"user_id": userID},
	})
	if err != nil {
		e.metricInc(MetricCheckoutPaymentFailed)
		e.auditEmit(AuditEvent{
			EventType: "checkout_payment_failed",
			UserID:    userID,
			Error:     err.Error(),
		})
		return nil, checkoutError(err)
	}

	if e.recovery != nil {
		record := &PendingRedirect{
			PaymentID:  payment.ID,
			CustomerID: customer.ID,
			Amount:     amount,
			Purpose:    description,
			CreatedAt:  e.now(),
		}
		if err := e.recovery.Save(ctx, userID, record); err != nil {
			// Recovery is best effort; the query-string path still works.
			e.log.Warn("redirect continuity record not saved")
		}
	}

	e.metricInc(MetricCheckoutPaymentCreated)
	e.auditEmit(AuditEvent{
		EventType: "checkout_payment_created",
		UserID:    userID,
		PaymentID: payment.ID,
		Success:   true,
	})

	return payment, nil
}

// CompleteRedirect describes the completeredirect operation and its observable behavior.
//
// CompleteRedirect may return an error when input validation, dependency calls, or security checks fail.
// CompleteRedirect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Identifier resolution order: return-URL query string, then URL fragment,
// then the Redis continuity record. The record is cleared once the payment
// reaches a terminal status.
func (e *Engine) CompleteRedirect(ctx context.Context, userID, returnURL string) (*RedirectResult, error) {
	if e == nil || e.checkout == nil {
		return nil, ErrEngineNotReady
	}

	params, source := parseRedirectReturn(returnURL)
	result := &RedirectResult{Source: source}

	paymentID := params.PaymentID
	if paymentID == "" && e.recovery != nil {
		record, err := e.recovery.Load(ctx, userID)
		if err == nil {
			paymentID = record.PaymentID
			result.Recovery = record
			result.Source = "store"
			e.metricInc(MetricCheckoutRedirectRecovered)
		} else if !errors.Is(err, errRecoveryNotFound) {
			return nil, err
		}
	}
	if paymentID == "" {
		return nil, ErrRedirectUnresolved
	}

	payment, err := e.checkout.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, checkoutError(err)
	}
	result.Payment = payment

	if payment.Status.Terminal() && e.recovery != nil {
		_ = e.recovery.Clear(ctx, userID)
	}

	e.auditEmit(AuditEvent{
		EventType: "checkout_redirect_completed",
		UserID:    userID,
		PaymentID: payment.ID,
		Success:   payment.Status == PaymentPaid,
		Metadata:  map[string]string{"status": string(payment.Status), "source": result.Source},
	})

	return result, nil
}

// ChargeRecurring describes the chargerecurring operation and its observable behavior.
//
// ChargeRecurring may return an error when input validation, dependency calls, or security checks fail.
// ChargeRecurring does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChargeRecurring(ctx context.Context, customerID, mandateID string, amount Amount, description string) (*CheckoutPayment, error) {
	if e == nil || e.checkout == nil {
		return nil, ErrEngineNotReady
	}
	if mandateID == "" {
		return nil, ErrMandateRequired
	}

	payment, err := e.checkout.CreatePayment(ctx, CheckoutPaymentRequest{
		CustomerID:  customerID,
		Amount:      amount,
		Description: description,
		WebhookURL:  e.config.Checkout.WebhookURL,
		Sequence:    SequenceRecurring,
		MandateID:   mandateID,
	})
	if err != nil {
		e.metricInc(MetricCheckoutPaymentFailed)
		return nil, checkoutError(err)
	}

	e.metricInc(MetricCheckoutPaymentCreated)
	e.auditEmit(AuditEvent{
		EventType: "recurring_payment_created",
		PaymentID: payment.ID,
		Success:   true,
	})
	return payment, nil
}

// ListMandates describes the listmandates operation and its observable behavior.
func (e *Engine) ListMandates(ctx context.Context, customerID string) ([]Mandate, error) {
	if e == nil || e.checkout == nil {
		return nil, ErrEngineNotReady
	}
	return e.checkout.ListMandates(ctx, customerID)
}

// RevokeMandate describes the revokemandate operation and its observable behavior.
func (e *Engine) RevokeMandate(ctx context.Context, customerID, mandateID string) error {
	if e == nil || e.checkout == nil {
		return ErrEngineNotReady
	}
	return e.checkout.RevokeMandate(ctx, customerID, mandateID)
}

// RefundPayment describes the refundpayment operation and its observable behavior.
//
// RefundPayment may return an error when input validation, dependency calls, or security checks fail.
// RefundPayment does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RefundPayment(ctx context.Context, paymentID string, amount Amount, description string) (*Refund, error) {
	if e == nil || e.checkout == nil {
		return nil, ErrEngineNotReady
	}
	refund, err := e.checkout.CreateRefund(ctx, paymentID, amount, description)
	if err != nil {
		return nil, checkoutError(err)
	}
	e.metricInc(MetricRefundCreated)
	e.auditEmit(AuditEvent{
		EventType: "refund_created",
		PaymentID: paymentID,
		Success:   true,
	})
	return refund, nil
}

// RefundStatus describes the refundstatus operation and its observable behavior.
func (e *Engine) RefundStatus(ctx context.Context, paymentID, refundID string) (*Refund, error) {
	if e == nil || e.checkout == nil {
		return nil, ErrEngineNotReady
	}
	return e.checkout.GetRefund(ctx, paymentID, refundID)
}

// checkoutError wraps breaker-open failures so hosts can distinguish a
// tripped provider from a declined payment.
func checkoutError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}
	return err
}
