package html

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/w-h-a/ragchat/record"
	"github.com/w-h-a/ragchat/scraper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type htmlScraper struct {
	options scraper.Options
	client  *http.Client
}

func (s *htmlScraper) Scrape(ctx context.Context, sourceURL string) ([]record.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, &scraper.FetchError{URL: sourceURL, Cause: err}
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if len(s.options.UserAgent) > 0 {
		req.Header.Set("User-Agent", s.options.UserAgent)
	}

	rsp, err := s.client.Do(req)
	if err != nil {
		return nil, &scraper.FetchError{URL: sourceURL, Cause: err}
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, &scraper.FetchError{
			URL:        sourceURL,
			StatusCode: rsp.StatusCode,
			Cause:      errors.New(rsp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(rsp.Body)
	if err != nil {
		return nil, &scraper.FetchError{URL: sourceURL, Cause: err}
	}

	records := s.extract(ctx, doc)

	slog.DebugContext(ctx, "scraped source", "url", sourceURL, "records", len(records))

	return records, nil
}

func (s *htmlScraper) extract(ctx context.Context, doc *goquery.Document) []record.Record {
	sel := s.options.Selectors

	records := []record.Record{}

	doc.Find(sel.Entity).Each(func(i int, entity *goquery.Selection) {
		r, err := extractRecord(i, entity, sel)
		if err != nil {
			slog.WarnContext(ctx, "skipping entity", "error", err)
			return
		}
		records = append(records, r)
	})

	return records
}

func extractRecord(index int, entity *goquery.Selection, sel scraper.Selectors) (record.Record, error) {
	var r record.Record

	fields := []struct {
		name     string
		selector string
		dst      *string
	}{
		{"name", sel.Name, &r.Name},
		{"capital", sel.Capital, &r.Capital},
		{"population", sel.Population, &r.Population},
		{"area", sel.Area, &r.Area},
	}

	for _, f := range fields {
		found := entity.Find(f.selector).First()
		if found.Length() == 0 {
			return record.Record{}, &scraper.ParseError{Index: index, Field: f.name}
		}
		*f.dst = strings.TrimSpace(found.Text())
	}

	return r, nil
}

func NewScraper(opts ...scraper.Option) scraper.Scraper {
	options := scraper.NewOptions(opts...)

	s := &htmlScraper{
		options: options,
	}

	client := options.Client
	if client == nil {
		client = &http.Client{
			Timeout:   options.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	s.client = client

	return s
}
