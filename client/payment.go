package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	avfacepay "github.com/Handavipul/avfacePay"
)

// PaymentClient defines a public type used by avfacePay APIs.
//
// PaymentClient implements avfacepay.PaymentService against the payment
// methods backend: saved cards, bank accounts, and FX rates.
type PaymentClient struct {
	http *httpClient
}

// NewPaymentClient describes the newpaymentclient operation and its observable behavior.
func NewPaymentClient(cfg Config, tokens *TokenStore) *PaymentClient {
	return &PaymentClient{
		http: newHTTPClient(cfg, tokens),
	}
}

type cardPayload struct {
	ID          string `json:"id,omitempty"`
	Brand       string `json:"brand"`
	Last4       string `json:"last4"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	HolderName  string `json:"holder_name"`
	Primary     bool   `json:"primary"`
}

func (p cardPayload) card() avfacepay.Card {
	return avfacepay.Card{
		ID:          p.ID,
		Brand:       p.Brand,
		Last4:       p.Last4,
		ExpiryMonth: p.ExpiryMonth,
		ExpiryYear:  p.ExpiryYear,
		HolderName:  p.HolderName,
		Primary:     p.Primary,
	}
}

func cardToPayload(c avfacepay.Card) cardPayload {
	return cardPayload{
		ID:          c.ID,
		Brand:       c.Brand,
		Last4:       c.Last4,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		HolderName:  c.HolderName,
		Primary:     c.Primary,
	}
}

// ListCards describes the listcards operation and its observable behavior.
func (c *PaymentClient) ListCards(ctx context.Context, userID string) ([]avfacepay.Card, error) {
	var resp struct {
		Cards []cardPayload `json:"cards"`
	}
	if err := c.http.do(ctx, http.MethodGet, "/payments/"+userID+"/cards", nil, &resp); err != nil {
		return nil, err
	}
	cards := make([]avfacepay.Card, 0, len(resp.Cards))
	for _, p := range resp.Cards {
		cards = append(cards, p.card())
	}
	return cards, nil
}

// SaveCard describes the savecard operation and its observable behavior.
func (c *PaymentClient) SaveCard(ctx context.Context, userID string, card avfacepay.Card) (*avfacepay.Card, error) {
	var resp cardPayload
	if err := c.http.do(ctx, http.MethodPost, "/payments/"+userID+"/cards", cardToPayload(card), &resp); err != nil {
		return nil, err
	}
	saved := resp.card()
	return &saved, nil
}

// DeleteCard describes the deletecard operation and its observable behavior.
func (c *PaymentClient) DeleteCard(ctx context.Context, userID, cardID string) error {
	return c.http.do(ctx, http.MethodDelete, "/payments/"+userID+"/cards/"+cardID, nil, nil)
}

// SetPrimaryCard describes the setprimarycard operation and its observable behavior.
func (c *PaymentClient) SetPrimaryCard(ctx context.Context, userID, cardID string) error {
	return c.http.do(ctx, http.MethodPut, "/payments/"+userID+"/cards/"+cardID+"/primary", nil, nil)
}

type bankAccountPayload struct {
	ID            string `json:"id,omitempty"`
	BankName      string `json:"bank_name"`
	AccountLast4  string `json:"account_last4"`
	RoutingNumber string `json:"routing_number"`
	HolderName    string `json:"holder_name"`
	Primary       bool   `json:"primary"`
}

func (p bankAccountPayload) account() avfacepay.BankAccount {
	return avfacepay.BankAccount{
		ID:            p.ID,
		BankName:      p.BankName,
		AccountLast4:  p.AccountLast4,
		RoutingNumber: p.RoutingNumber,
		HolderName:    p.HolderName,
		Primary:       p.Primary,
	}
}

// ListBankAccounts describes the listbankaccounts operation and its observable behavior.
func (c *PaymentClient) ListBankAccounts(ctx context.Context, userID string) ([]avfacepay.BankAccount, error) {
	var resp struct {
		Accounts []bankAccountPayload `json:"accounts"`
	}
	if err := c.http.do(ctx, http.MethodGet, "/payments/"+userID+"/banks", nil, &resp); err != nil {
		return nil, err
	}
	accounts := make([]avfacepay.BankAccount, 0, len(resp.Accounts))
	for _, p := range resp.Accounts {
		accounts = append(accounts, p.account())
	}
	return accounts, nil
}

// AddBankAccount describes the addbankaccount operation and its observable behavior.
func (c *PaymentClient) AddBankAccount(ctx context.Context, userID string, account avfacepay.BankAccount) (*avfacepay.BankAccount, error) {
	payload := bankAccountPayload{
		BankName:      account.BankName,
		AccountLast4:  account.AccountLast4,
		RoutingNumber: account.RoutingNumber,
		HolderName:    account.HolderName,
		Primary:       account.Primary,
	}
	var resp bankAccountPayload
	if err := c.http.do(ctx, http.MethodPost, "/payments/"+userID+"/banks", payload, &resp); err != nil {
		return nil, err
	}
	added := resp.account()
	return &added, nil
}

// DeleteBankAccount describes the deletebankaccount operation and its observable behavior.
func (c *PaymentClient) DeleteBankAccount(ctx context.Context, userID, accountID string) error {
	return c.http.do(ctx, http.MethodDelete, "/payments/"+userID+"/banks/"+accountID, nil, nil)
}

// SetPrimaryBankAccount describes the setprimarybankaccount operation and its observable behavior.
func (c *PaymentClient) SetPrimaryBankAccount(ctx context.Context, userID, accountID string) error {
	return c.http.do(ctx, http.MethodPut, "/payments/"+userID+"/banks/"+accountID+"/primary", nil, nil)
}

type exchangeRateResponse struct {
	Base      string    `json:"base"`
	Target    string    `json:"target"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

// GetExchangeRate describes the getexchangerate operation and its observable behavior.
func (c *PaymentClient) GetExchangeRate(ctx context.Context, base, target string) (*avfacepay.ExchangeRate, error) {
	q := url.Values{}
	q.Set("base", base)
	q.Set("target", target)

	var resp exchangeRateResponse
	if err := c.http.do(ctx, http.MethodGet, "/payments/exchange-rate?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &avfacepay.ExchangeRate{
		Base:      resp.Base,
		Target:    resp.Target,
		Rate:      resp.Rate,
		Timestamp: resp.Timestamp,
	}, nil
}
