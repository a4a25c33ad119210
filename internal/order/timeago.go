package order

import (
	"strconv"
	"time"
)

var ageBands = []struct {
	seconds  float64
	singular string
	plural   string
}{
	{31536000, "year", "years"},
	{2592000, "month", "months"},
	{86400, "day", "days"},
	{3600, "hour", "hours"},
	{60, "minute", "minutes"},
}

// TimeAgo renders the age of created at now in the coarsest unit that has
// passed more than once, e.g. "3 hours". Future times read as "0 seconds".
func TimeAgo(created, now time.Time) string {
	secs := now.Sub(created).Seconds()
	if secs < 0 {
		secs = 0
	}
	for _, b := range ageBands {
		if interval := secs / b.seconds; interval > 1 {
			return plural(int(interval), b.singular, b.plural)
		}
	}
	return plural(int(secs), "second", "seconds")
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}
