// Package sentiment scores post titles and detects which asset a post is about.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Polarity is a VADER-style score: Neg, Neu and Pos are proportions summing
// to 1, Compound is the normalized overall valence in [-1, 1].
type Polarity struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// BatchLLMScorer returns a compound score per input text, keyed by index.
type BatchLLMScorer interface {
	ScoreBatch(ctx context.Context, texts []string) (map[int]float64, error)
}

type Scorer struct {
	llm       BatchLLMScorer
	batchSize int
}

func NewScorer(llm BatchLLMScorer, batchSize int) *Scorer {
	if batchSize <= 0 {
		batchSize = 24
	}
	return &Scorer{llm: llm, batchSize: batchSize}
}

// Score returns one Polarity per text. The lexicon score is always computed;
// when an LLM scorer is configured its compound replaces the lexicon compound
// for the texts it scored.
func (s *Scorer) Score(ctx context.Context, texts []string) []Polarity {
	out := make([]Polarity, len(texts))
	for i, text := range texts {
		out[i] = LexiconPolarity(text)
	}
	if s.llm == nil {
		return out
	}

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		scored, err := s.llm.ScoreBatch(ctx, texts[start:end])
		if err != nil {
			log.Printf("llm sentiment batch %d-%d failed, keeping lexicon scores: %v", start, end, err)
			continue
		}
		for idx, compound := range scored {
			if idx < 0 || start+idx >= end {
				continue
			}
			out[start+idx].Compound = round4(clamp(compound, -1, 1))
		}
	}
	return out
}

// cryptoTerms extends the VADER lexicon with market slang it does not rate.
var cryptoTerms = map[string]float64{
	"bullish": 2.2, "bearish": -2.2, "breakout": 1.8, "rally": 2.0, "rallies": 2.0,
	"surge": 1.9, "surges": 1.9, "uptrend": 1.8, "downtrend": -1.8, "moon": 1.7,
	"pump": 1.2, "dump": -1.8, "ath": 1.8, "rekt": -2.0, "rug": -2.2,
	"liquidation": -1.9, "hack": -2.3, "hacked": -2.3, "crash": -2.6, "crashes": -2.6, "plunge": -2.1,
}

var analyzer = newAnalyzer()

func newAnalyzer() *govader.SentimentIntensityAnalyzer {
	a := govader.NewSentimentIntensityAnalyzer()
	for term, v := range cryptoTerms {
		if _, ok := a.Lexicon[term]; !ok {
			a.Lexicon[term] = v
		}
	}
	return a
}

// LexiconPolarity scores text with VADER plus the crypto term additions.
func LexiconPolarity(text string) Polarity {
	if strings.TrimSpace(text) == "" {
		return Polarity{Neu: 1}
	}
	s := analyzer.PolarityScores(text)
	return Polarity{
		Neg:      round4(s.Negative),
		Neu:      round4(s.Neutral),
		Pos:      round4(s.Positive),
		Compound: round4(clamp(s.Compound, -1, 1)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type OpenAIScorer struct {
	client openAIChatClient
	model  string
}

// NewOpenAIScorer returns nil when apiKey is empty.
func NewOpenAIScorer(apiKey string, model string) *OpenAIScorer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIScorer{
		client: &openAIClient{client: client},
		model:  model,
	}
}

func (s *OpenAIScorer) ScoreBatch(ctx context.Context, texts []string) (map[int]float64, error) {
	if s == nil || s.client == nil || len(texts) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, text := range texts {
		sb.WriteString(fmt.Sprintf("id=%d\ntext=%s\n\n", i, strings.TrimSpace(text)))
	}

	systemPrompt := "You score crypto social-media sentiment. Return ONLY a JSON array. Each object requires: id (int), compound (-1..1). No markdown."
	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Items:\n" + sb.String()),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty scorer completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)
	var parsed []struct {
		ID       int     `json:"id"`
		Compound float64 `json:"compound"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse scorer json: %w", err)
	}

	out := make(map[int]float64, len(parsed))
	for _, row := range parsed {
		if row.ID < 0 || row.ID >= len(texts) {
			continue
		}
		out[row.ID] = clamp(row.Compound, -1, 1)
	}
	return out, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
