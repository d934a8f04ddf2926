package models

// Quote is a computed price breakdown for a candidate stay. Immutable once
// computed; a pure function of dates, guest count and pricing configuration.
// All amounts are whole currency units except TotalCents.
type Quote struct {
	Nights             int    `json:"nights"`
	Guests             int    `json:"guests"`
	NightlyRate        int    `json:"nightly_rate"`
	AccommodationTotal int    `json:"accommodation_total"`
	CleaningFee        int    `json:"cleaning_fee"`
	ExtraGuestFee      int    `json:"extra_guest_fee"`
	Total              int    `json:"total"`
	TotalCents         int    `json:"total_cents"`
	Currency           string `json:"currency"`
	Breakdown          string `json:"breakdown"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
}

// QuoteResult is the tagged result of a pricing calculation: either a
// Quote or an error message, never both. Total is zero on error.
type QuoteResult struct {
	Quote *Quote `json:"quote,omitempty"`
	Err   string `json:"error,omitempty"`
	// Nights is still reported for ordering errors where it could be computed.
	Nights int `json:"nights"`
	Total  int `json:"total"`
}

// OK reports whether the calculation produced a quote.
func (r QuoteResult) OK() bool {
	return r.Err == "" && r.Quote != nil
}
