package sentiment

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"trendboard/internal/domain"

	"gopkg.in/yaml.v3"
)

var tokenRx = regexp.MustCompile(`\$?[a-z0-9]+`)

// AssetKeyword pairs a stored asset id with the words that identify it.
type AssetKeyword struct {
	Asset    string   `yaml:"asset"`
	Keywords []string `yaml:"keywords"`
}

// DefaultKeywords is checked in order; the first asset with a matching
// keyword wins.
var DefaultKeywords = []AssetKeyword{
	{Asset: string(domain.Bitcoin), Keywords: []string{"bitcoin", "btc"}},
	{Asset: string(domain.Ethereum), Keywords: []string{"ethereum", "eth"}},
	{Asset: string(domain.Solana), Keywords: []string{"solana", "sol"}},
	{Asset: string(domain.Dogecoin), Keywords: []string{"dogecoin", "doge"}},
	{Asset: string(domain.Cardano), Keywords: []string{"cardano", "ada"}},
	{Asset: "xrp", Keywords: []string{"xrp", "ripple"}},
}

// Detector maps free text to an asset id by whole-token keyword match.
type Detector struct {
	keywords []AssetKeyword
	index    map[string]int
}

func NewDetector(keywords []AssetKeyword) *Detector {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	d := &Detector{keywords: keywords, index: make(map[string]int)}
	for i, ak := range keywords {
		for _, kw := range ak.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, seen := d.index[kw]; !seen {
				d.index[kw] = i
			}
		}
	}
	return d
}

// LoadKeywords reads an asset keyword table from a YAML file of the form:
//
//	- asset: bitcoin
//	  keywords: [bitcoin, btc]
func LoadKeywords(path string) ([]AssetKeyword, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword file: %w", err)
	}
	var out []AssetKeyword
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse keyword file: %w", err)
	}
	for i, ak := range out {
		if strings.TrimSpace(ak.Asset) == "" || len(ak.Keywords) == 0 {
			return nil, fmt.Errorf("keyword file entry %d needs asset and keywords", i)
		}
	}
	return out, nil
}

// Detect returns the asset of the earliest-listed table entry that has a
// keyword among the tokens of text.
func (d *Detector) Detect(text string) (string, bool) {
	best := -1
	for _, raw := range tokenRx.FindAllString(strings.ToLower(text), -1) {
		tok := strings.TrimPrefix(raw, "$")
		if i, ok := d.index[tok]; ok && (best < 0 || i < best) {
			best = i
			if best == 0 {
				break
			}
		}
	}
	if best < 0 {
		return "", false
	}
	return d.keywords[best].Asset, true
}

// DetectPost checks the post text first and then each comment in order,
// returning domain.UnknownAsset when nothing matches.
func (d *Detector) DetectPost(title, selfText string, comments []string) string {
	if asset, ok := d.Detect(title + " " + selfText); ok {
		return asset
	}
	for _, c := range comments {
		if asset, ok := d.Detect(c); ok {
			return asset
		}
	}
	return domain.UnknownAsset
}
