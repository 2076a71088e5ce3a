package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"trendboard/internal/dashboard"
	"trendboard/internal/domain"

	tele "gopkg.in/telebot.v3"
)

const maxTrendDays = 90

type SeriesProvider interface {
	DailySeries(ctx context.Context, asset domain.Asset, start, end time.Time) (sentiment, prices domain.DailySeries)
}

// StartTelegramBot serves /ping, /assets and /trend. It returns nil when no
// token is configured or the bot cannot be created.
func StartTelegramBot(token string, series SeriesProvider, defaultDays int) *tele.Bot {
	token = strings.TrimSpace(token)
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Printf("failed to create Telegram bot: %v", err)
		return nil
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/assets", func(c tele.Context) error {
		return c.Send("Supported: " + strings.Join(domain.AssetIDs(), ", "))
	})

	b.Handle("/trend", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return c.Send(trendReply(ctx, series, c.Args(), defaultDays, time.Now()))
	})

	log.Println("Telegram bot started")
	go b.Start()
	return b
}

func trendReply(ctx context.Context, series SeriesProvider, args []string, defaultDays int, now time.Time) string {
	usage := fmt.Sprintf("Usage: /trend bitcoin [days]\nSupported: %s", strings.Join(domain.AssetIDs(), ", "))
	if len(args) == 0 {
		return usage
	}
	asset, err := domain.ParseAsset(args[0])
	if err != nil {
		return fmt.Sprintf("Unknown asset: %s\nSupported: %s", args[0], strings.Join(domain.AssetIDs(), ", "))
	}

	days := defaultDays
	if days <= 0 {
		days = 7
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 || n > maxTrendDays {
			return fmt.Sprintf("days must be between 1 and %d", maxTrendDays)
		}
		days = n
	}

	rng := domain.DefaultRange(now.UTC(), days)
	sentiment, prices := series.DailySeries(ctx, asset, rng.Start, rng.End)
	return formatTrend(asset, days, dashboard.Merge(sentiment, prices))
}

func formatTrend(asset domain.Asset, days int, chart dashboard.Chart) string {
	if chart.Empty {
		return fmt.Sprintf("%s, last %d days\n%s", asset.Name(), days, chart.Message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, last %d days\n", asset.Name(), days)
	for i, day := range chart.Labels {
		s := "   n/a"
		if v := chart.Sentiment[i]; v != nil {
			s = fmt.Sprintf("%+.3f", *v)
		}
		p := "n/a"
		if v := chart.Price[i]; v != nil {
			p = fmt.Sprintf("$%.2f", *v)
		}
		fmt.Fprintf(&b, "%s  sentiment %s  price %s\n", day, s, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
