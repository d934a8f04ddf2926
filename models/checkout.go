package models

// CheckoutSession is an externally issued payment session handle. Its
// lifecycle beyond creation belongs to the payment provider.
type CheckoutSession struct {
	SessionID    string `json:"session_id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

// CheckoutResult is the tagged result of a session-creation attempt:
// either a created session or a captured provider/configuration error.
type CheckoutResult struct {
	Session *CheckoutSession `json:"session,omitempty"`
	Err     string           `json:"error,omitempty"`
}

// OK reports whether a session was created.
func (r CheckoutResult) OK() bool {
	return r.Err == "" && r.Session != nil
}
