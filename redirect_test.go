package avfacepay

import "testing"

func TestParseRedirectReturn(t *testing.T) {
	cases := []struct {
		name       string
		url        string
		paymentID  string
		customerID string
		source     string
	}{
		{
			name:      "query snake case",
			url:       "https://app.example/return?payment_id=tr_1&customer_id=cst_1",
			paymentID: "tr_1", customerID: "cst_1", source: "query",
		},
		{
			name:      "query camel case",
			url:       "https://app.example/return?paymentId=tr_2",
			paymentID: "tr_2", source: "query",
		},
		{
			name:      "query bare id",
			url:       "https://app.example/return?id=tr_3",
			paymentID: "tr_3", source: "query",
		},
		{
			name:      "fragment parameters",
			url:       "https://app.example/return#payment_id=tr_4",
			paymentID: "tr_4", source: "fragment",
		},
		{
			name:      "hash routed fragment",
			url:       "https://app.example/return#/complete?paymentId=tr_5&customerId=cst_5",
			paymentID: "tr_5", customerID: "cst_5", source: "fragment",
		},
		{
			name:      "query wins over fragment",
			url:       "https://app.example/return?payment_id=tr_6#payment_id=tr_7",
			paymentID: "tr_6", source: "query",
		},
		{
			name:   "no identifiers",
			url:    "https://app.example/return",
			source: "none",
		},
		{
			name:   "customer id alone is not enough",
			url:    "https://app.example/return?customer_id=cst_8",
			source: "none",
		},
		{
			name:   "unparseable url",
			url:    "://not-a-url",
			source: "none",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params, source := parseRedirectReturn(tc.url)
			if params.PaymentID != tc.paymentID {
				t.Errorf("payment id = %q, want %q", params.PaymentID, tc.paymentID)
			}
			if params.CustomerID != tc.customerID {
				t.Errorf("customer id = %q, want %q", params.CustomerID, tc.customerID)
			}
			if source != tc.source {
				t.Errorf("source = %q, want %q", source, tc.source)
			}
		})
	}
}
