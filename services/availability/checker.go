package availability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dakotahome/models"
	"dakotahome/services/calendar"
	"dakotahome/utils"
)

// MinNights is the property's minimum stay.
const MinNights = 2

// Checker validates a requested date range against business rules and the
// calendar feed cache. Validation failures are deterministic and never
// touch the network; the feed is only consulted once all rules pass.
type Checker struct {
	Feed *calendar.FeedCache

	// Today is injectable for tests; defaults to the current UTC date.
	Today func() time.Time

	logger *zap.Logger
}

func NewChecker(feed *calendar.FeedCache, logger *zap.Logger) *Checker {
	return &Checker{
		Feed:   feed,
		Today:  func() time.Time { return utils.Truncate(time.Now().UTC()) },
		logger: logger,
	}
}

// Check runs the ordered validation chain; the first failure wins.
func (c *Checker) Check(ctx context.Context, startDate, endDate string) models.AvailabilityResult {
	checked := models.CheckedDates{Start: startDate, End: endDate}

	checkIn, err := utils.ParseISODate(startDate)
	if err != nil {
		return blocked(checked, err.Error())
	}
	checkOut, err := utils.ParseISODate(endDate)
	if err != nil {
		return blocked(checked, err.Error())
	}

	if checkIn.Before(utils.Truncate(c.Today())) {
		return blocked(checked, "Cannot book dates in the past")
	}
	if !checkOut.After(checkIn) {
		return blocked(checked, "Check-out must be after check-in")
	}
	if utils.Nights(checkIn, checkOut) < MinNights {
		return blocked(checked, fmt.Sprintf("Minimum stay is %d nights", MinNights))
	}

	ranges, verified := c.Feed.BlockedRanges(ctx)
	if !verified {
		return models.AvailabilityResult{
			Available:    true,
			CheckedDates: checked,
			Note:         "No calendar configured - availability not verified",
		}
	}

	for _, r := range ranges {
		if utils.RangesOverlap(checkIn, checkOut, r.Start, r.End) {
			c.logger.Debug("dates conflict with blocked range",
				zap.String("start", startDate), zap.String("end", endDate),
				zap.String("blocked", r.String()))
			return blocked(checked, fmt.Sprintf("Dates conflict with existing booking (%s)", r))
		}
	}

	return models.AvailabilityResult{Available: true, CheckedDates: checked}
}

func blocked(checked models.CheckedDates, reason string) models.AvailabilityResult {
	return models.AvailabilityResult{
		Available:     false,
		BlockedReason: reason,
		CheckedDates:  checked,
	}
}
