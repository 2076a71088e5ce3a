package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnsupportedAsset is returned when an asset id is not one of SupportedAssets.
var ErrUnsupportedAsset = errors.New("unsupported asset")

// Asset is a cryptocurrency identifier selectable in the dashboard.
type Asset string

const (
	Bitcoin  Asset = "bitcoin"
	Ethereum Asset = "ethereum"
	Solana   Asset = "solana"
	Dogecoin Asset = "dogecoin"
	Cardano  Asset = "cardano"
)

// SupportedAssets is the fixed selector order.
var SupportedAssets = []Asset{Bitcoin, Ethereum, Solana, Dogecoin, Cardano}

var assetNames = map[Asset]string{
	Bitcoin:  "Bitcoin",
	Ethereum: "Ethereum",
	Solana:   "Solana",
	Dogecoin: "Dogecoin",
	Cardano:  "Cardano",
}

// CoinGeckoID maps assets to CoinGecko API identifiers.
var CoinGeckoID = map[Asset]string{
	Bitcoin:  "bitcoin",
	Ethereum: "ethereum",
	Solana:   "solana",
	Dogecoin: "dogecoin",
	Cardano:  "cardano",
}

// UnknownAsset is stored for collected posts that mention no tracked asset.
const UnknownAsset = "Unknown"

func (a Asset) Name() string {
	if n, ok := assetNames[a]; ok {
		return n
	}
	return string(a)
}

func (a Asset) IsValid() bool {
	_, ok := assetNames[a]
	return ok
}

// ParseAsset normalizes s and checks it against SupportedAssets.
func ParseAsset(s string) (Asset, error) {
	a := Asset(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAsset, s)
	}
	return a, nil
}

// AssetIDs returns the supported asset ids as strings.
func AssetIDs() []string {
	out := make([]string, 0, len(SupportedAssets))
	for _, a := range SupportedAssets {
		out = append(out, string(a))
	}
	return out
}

// DateRange is an inclusive time window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the span of the range in whole days, rounded up.
// The sign of the range is ignored.
func (r DateRange) Days() int {
	d := r.End.Sub(r.Start)
	if d < 0 {
		d = -d
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// DefaultRange returns the last n days ending at now.
func DefaultRange(now time.Time, days int) DateRange {
	return DateRange{Start: now.AddDate(0, 0, -days), End: now}
}
