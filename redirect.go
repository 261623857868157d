package avfacepay

import (
	"net/url"
	"strings"
)

// redirectParams is what the hosted-checkout provider appends to the return
// URL, in either the query string or the fragment depending on the flow.
type redirectParams struct {
	PaymentID  string
	CustomerID string
}

// parseRedirectReturn extracts payment identifiers from a return URL.
// Query-string parameters win; the fragment is tried next because some
// provider flows put the identifiers after the '#'.
func parseRedirectReturn(rawURL string) (redirectParams, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return redirectParams{}, "none"
	}

	if params, ok := redirectParamsFromValues(u.Query()); ok {
		return params, "query"
	}

	if u.Fragment != "" {
		// Hash-routed returns look like "#/complete?payment_id=...", so
		// anything before a '?' is a route path, not parameters.
		frag := strings.TrimPrefix(u.Fragment, "/")
		if i := strings.Index(frag, "?"); i >= 0 {
			frag = frag[i+1:]
		}
		if values, err := url.ParseQuery(frag); err == nil {
			if params, ok := redirectParamsFromValues(values); ok {
				return params, "fragment"
			}
		}
	}

	return redirectParams{}, "none"
}

func redirectParamsFromValues(values url.Values) (redirectParams, bool) {
	params := redirectParams{
		CustomerID: firstValue(values, "customer_id", "customerId"),
		PaymentID:  firstValue(values, "payment_id", "paymentId", "id"),
	}
	return params, params.PaymentID != ""
}

func firstValue(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := values.Get(k); v != "" {
			return v
		}
	}
	return ""
}
