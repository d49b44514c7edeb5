package scraper

import (
	"context"

	"github.com/w-h-a/ragchat/record"
)

type Scraper interface {
	Scrape(ctx context.Context, sourceURL string) ([]record.Record, error)
}
