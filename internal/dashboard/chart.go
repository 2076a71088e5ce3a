package dashboard

import "trendboard/internal/domain"

// EmptyMessage is shown in place of the chart when neither series has data.
const EmptyMessage = "No data available for the selected criteria."

// Chart is the two series aligned on one label axis. A nil entry means the
// series has no value for that label.
type Chart struct {
	Labels    []string   `json:"labels"`
	Sentiment []*float64 `json:"sentiment"`
	Price     []*float64 `json:"price"`
	Empty     bool       `json:"empty"`
	Message   string     `json:"message,omitempty"`
}

// Merge aligns both series onto the price days when there are any, otherwise
// onto the sentiment days.
func Merge(sentiment, prices domain.DailySeries) Chart {
	if len(sentiment) == 0 && len(prices) == 0 {
		return Chart{
			Labels:    []string{},
			Sentiment: []*float64{},
			Price:     []*float64{},
			Empty:     true,
			Message:   EmptyMessage,
		}
	}

	labels := prices.Days()
	if len(labels) == 0 {
		labels = sentiment.Days()
	}
	return Chart{
		Labels:    labels,
		Sentiment: align(labels, sentiment),
		Price:     align(labels, prices),
	}
}

func align(labels []string, series domain.DailySeries) []*float64 {
	byDay := make(map[string]float64, len(series))
	for _, p := range series {
		byDay[p.Day] = p.Value
	}
	out := make([]*float64, len(labels))
	for i, day := range labels {
		if v, ok := byDay[day]; ok {
			out[i] = &v
		}
	}
	return out
}
