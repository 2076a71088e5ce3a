package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// StoredTimeLayout is the layout trend rows use for the created column.
const StoredTimeLayout = "2006-01-02 15:04:05"

// SentimentRecord is one scored social-media post.
type SentimentRecord struct {
	ID                int64     `json:"id"`
	PostID            string    `json:"post_id,omitempty"`
	Title             string    `json:"title"`
	Crypto            string    `json:"crypto"`
	Score             int       `json:"score"`
	NumComments       int       `json:"num_comments"`
	Created           time.Time `json:"-"`
	SentimentNeg      float64   `json:"sentiment_neg"`
	SentimentNeu      float64   `json:"sentiment_neu"`
	SentimentPos      float64   `json:"sentiment_pos"`
	SentimentCompound float64   `json:"sentiment_compound"`
}

type sentimentRecordJSON struct {
	ID                int64           `json:"id"`
	PostID            string          `json:"post_id,omitempty"`
	Title             string          `json:"title"`
	Crypto            string          `json:"crypto"`
	Score             int             `json:"score"`
	NumComments       int             `json:"num_comments"`
	Created           json.RawMessage `json:"created"`
	SentimentNeg      float64         `json:"sentiment_neg"`
	SentimentNeu      float64         `json:"sentiment_neu"`
	SentimentPos      float64         `json:"sentiment_pos"`
	SentimentCompound float64         `json:"sentiment_compound"`
}

func (r SentimentRecord) MarshalJSON() ([]byte, error) {
	created, _ := json.Marshal(r.Created.UTC().Format(StoredTimeLayout))
	return json.Marshal(sentimentRecordJSON{
		ID:                r.ID,
		PostID:            r.PostID,
		Title:             r.Title,
		Crypto:            r.Crypto,
		Score:             r.Score,
		NumComments:       r.NumComments,
		Created:           created,
		SentimentNeg:      r.SentimentNeg,
		SentimentNeu:      r.SentimentNeu,
		SentimentPos:      r.SentimentPos,
		SentimentCompound: r.SentimentCompound,
	})
}

func (r *SentimentRecord) UnmarshalJSON(data []byte) error {
	var raw sentimentRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SentimentRecord{
		ID:                raw.ID,
		PostID:            raw.PostID,
		Title:             raw.Title,
		Crypto:            raw.Crypto,
		Score:             raw.Score,
		NumComments:       raw.NumComments,
		SentimentNeg:      raw.SentimentNeg,
		SentimentNeu:      raw.SentimentNeu,
		SentimentPos:      raw.SentimentPos,
		SentimentCompound: raw.SentimentCompound,
	}
	if len(raw.Created) == 0 || string(raw.Created) == "null" {
		return fmt.Errorf("sentiment record %d: missing created", raw.ID)
	}

	var createdStr string
	if raw.Created[0] == '"' {
		if err := json.Unmarshal(raw.Created, &createdStr); err != nil {
			return fmt.Errorf("sentiment record %d: created: %w", raw.ID, err)
		}
	} else {
		createdStr = string(raw.Created)
	}
	created, err := ParseTimestamp(createdStr)
	if err != nil {
		return fmt.Errorf("sentiment record %d: %w", raw.ID, err)
	}
	r.Created = created
	return nil
}

// PricePoint is a single market-chart sample. Timestamp is in milliseconds.
type PricePoint struct {
	Timestamp int64
	Price     float64
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Timestamp), p.Price})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) < 2 {
		return fmt.Errorf("price point: expected [timestamp, price], got %d values", len(pair))
	}
	p.Timestamp = int64(pair[0])
	p.Price = pair[1]
	return nil
}

// DailyPoint is one calendar day of a derived series.
type DailyPoint struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// DailySeries is ordered by Day ascending with unique days.
type DailySeries []DailyPoint

// Days returns the day labels of the series.
func (s DailySeries) Days() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Day
	}
	return out
}
