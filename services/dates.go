package services

import "time"

// MarketLocation resolves the market timezone, falling back to UTC on
// hosts without a tz database.
func MarketLocation() *time.Location {
	loc, err := time.LoadLocation(marketTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateLabel pairs a report label with its check-in date.
type DateLabel struct {
	Label string
	Date  time.Time
}

// NextFriday returns the upcoming Friday, except on Thursdays where it
// skips to next week's Friday (tomorrow's rate is already the Tomorrow
// column).
func NextFriday(today time.Time) time.Time {
	// Monday = 0 ... Sunday = 6
	weekday := (int(today.Weekday()) + 6) % 7
	if weekday == 3 {
		return today.AddDate(0, 0, 8)
	}
	daysUntil := (4 - weekday + 7) % 7
	return today.AddDate(0, 0, daysUntil)
}

// DateLabels returns the check-in dates tracked each run, in report order.
func DateLabels(today time.Time) []DateLabel {
	return []DateLabel{
		{Label: "Today", Date: today},
		{Label: "Tomorrow", Date: today.AddDate(0, 0, 1)},
		{Label: "Friday", Date: NextFriday(today)},
	}
}
