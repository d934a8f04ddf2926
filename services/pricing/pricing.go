package pricing

import (
	"fmt"
	"strings"

	"dakotahome/config"
	"dakotahome/models"
	"dakotahome/utils"
)

// Config holds the pricing model for the property. ExtraGuestFee of zero
// disables extra-guest pricing regardless of BaseGuests.
type Config struct {
	NightlyRate   int
	CleaningFee   int
	MaxGuests     int
	BaseGuests    int
	ExtraGuestFee int
	Currency      string
}

// FromApp builds a pricing config from the loaded application config.
func FromApp() Config {
	return Config{
		NightlyRate:   config.AppConfig.NightlyRate,
		CleaningFee:   config.AppConfig.CleaningFee,
		MaxGuests:     config.AppConfig.MaxGuests,
		BaseGuests:    config.AppConfig.BaseGuests,
		ExtraGuestFee: config.AppConfig.ExtraGuestFee,
		Currency:      "usd",
	}
}

// Calculator computes deterministic quotes. It is a pure function of its
// configuration and inputs: no network or store access, so it is callable
// standalone and re-validates dates itself.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Calculator{cfg: cfg}
}

// Quote prices a stay. Validation failures come back as an error variant
// with Total zero, never a panic or Go error.
func (c *Calculator) Quote(startDate, endDate string, guests int) models.QuoteResult {
	checkIn, err := utils.ParseISODate(startDate)
	if err != nil {
		return models.QuoteResult{Err: err.Error()}
	}
	checkOut, err := utils.ParseISODate(endDate)
	if err != nil {
		return models.QuoteResult{Err: err.Error()}
	}

	nights := utils.Nights(checkIn, checkOut)
	if nights <= 0 {
		return models.QuoteResult{Err: "Check-out must be after check-in"}
	}

	if guests > c.cfg.MaxGuests {
		return models.QuoteResult{
			Err:    fmt.Sprintf("Maximum %d guests allowed", c.cfg.MaxGuests),
			Nights: nights,
		}
	}
	if guests < 1 {
		return models.QuoteResult{Err: "At least 1 guest required", Nights: nights}
	}

	accommodation := nights * c.cfg.NightlyRate

	extraGuests := guests - c.cfg.BaseGuests
	if extraGuests < 0 {
		extraGuests = 0
	}
	extraFee := extraGuests * c.cfg.ExtraGuestFee * nights

	total := accommodation + c.cfg.CleaningFee + extraFee

	lines := []string{
		fmt.Sprintf("$%d x %d nights = $%d", c.cfg.NightlyRate, nights, accommodation),
	}
	if extraFee > 0 {
		lines = append(lines, fmt.Sprintf("Extra guest fee (%d guests) = $%d", extraGuests, extraFee))
	}
	lines = append(lines,
		fmt.Sprintf("Cleaning fee = $%d", c.cfg.CleaningFee),
		fmt.Sprintf("Total = $%d", total),
	)

	quote := &models.Quote{
		Nights:             nights,
		Guests:             guests,
		NightlyRate:        c.cfg.NightlyRate,
		AccommodationTotal: accommodation,
		CleaningFee:        c.cfg.CleaningFee,
		ExtraGuestFee:      extraFee,
		Total:              total,
		TotalCents:         total * 100,
		Currency:           c.cfg.Currency,
		Breakdown:          strings.Join(lines, "\n"),
		CheckIn:            startDate,
		CheckOut:           endDate,
	}
	return models.QuoteResult{Quote: quote, Nights: nights, Total: total}
}
