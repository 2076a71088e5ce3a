// Package aggregate reduces raw time-stamped observations to one value per
// UTC calendar day.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"trendboard/internal/domain"
)

// Policy selects which observation represents a day.
type Policy int

const (
	// LastByOrder keeps the last observation in input order, whatever its timestamp.
	LastByOrder Policy = iota
	// LastByTimestamp keeps the observation with the latest timestamp.
	// Equal timestamps fall back to input order.
	LastByTimestamp
)

func (p Policy) String() string {
	switch p {
	case LastByTimestamp:
		return "timestamp"
	default:
		return "order"
	}
}

// ParsePolicy accepts "order" or "timestamp"; empty means LastByOrder.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "order", "last-by-order":
		return LastByOrder, nil
	case "timestamp", "last-by-timestamp":
		return LastByTimestamp, nil
	default:
		return LastByOrder, fmt.Errorf("unknown aggregation policy %q", s)
	}
}

type observation struct {
	day   string
	at    time.Time
	value float64
}

// reduce buckets observations by day and returns them sorted by the kept
// observation's timestamp.
func reduce(obs []observation, policy Policy) domain.DailySeries {
	kept := make(map[string]observation, len(obs))
	for _, o := range obs {
		cur, ok := kept[o.day]
		if ok && policy == LastByTimestamp && o.at.Before(cur.at) {
			continue
		}
		kept[o.day] = o
	}

	days := make([]string, 0, len(kept))
	for day := range kept {
		days = append(days, day)
	}
	// Days are UTC keys, so ordering by the kept timestamp and by day agree;
	// the day string breaks the (impossible) tie deterministically.
	sort.Slice(days, func(i, j int) bool {
		a, b := kept[days[i]].at, kept[days[j]].at
		if a.Equal(b) {
			return days[i] < days[j]
		}
		return a.Before(b)
	})

	out := make(domain.DailySeries, 0, len(days))
	for _, day := range days {
		out = append(out, domain.DailyPoint{Day: day, Value: kept[day].value})
	}
	return out
}

// DailySentiment reduces sentiment records to one compound score per day.
func DailySentiment(records []domain.SentimentRecord, policy Policy) domain.DailySeries {
	obs := make([]observation, len(records))
	for i, r := range records {
		obs[i] = observation{day: domain.FormatDay(r.Created), at: r.Created, value: r.SentimentCompound}
	}
	return reduce(obs, policy)
}

// DailyPrices reduces market-chart samples to one price per day.
func DailyPrices(points []domain.PricePoint, policy Policy) domain.DailySeries {
	obs := make([]observation, len(points))
	for i, p := range points {
		obs[i] = observation{day: domain.DayOfMillis(p.Timestamp), at: time.UnixMilli(p.Timestamp), value: p.Price}
	}
	return reduce(obs, policy)
}
