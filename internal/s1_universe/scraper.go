package s1_universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/valuequant/backend/pkg/httputil"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// DefaultSP500URL lists the current S&P 500 constituents
const DefaultSP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Scraper reads index constituents from a public HTML table
type Scraper struct {
	client *httputil.Client
	url    string
	logger *logger.Logger
}

// NewScraper creates a new constituents scraper (url "" → DefaultSP500URL)
func NewScraper(client *httputil.Client, url string, log *logger.Logger) *Scraper {
	if url == "" {
		url = DefaultSP500URL
	}
	return &Scraper{
		client: client,
		url:    url,
		logger: log.Module("sp500_scraper"),
	}
}

// Name identifies the source
func (s *Scraper) Name() string {
	return "sp500"
}

// Tickers implements Source
func (s *Scraper) Tickers(ctx context.Context) ([]string, error) {
	return s.FetchSP500(ctx)
}

// FetchSP500 downloads the constituents page and returns the symbols of the
// #constituents table in page order
// ⭐ SSOT: S&P 500 구성종목 스크래핑은 여기서만
func (s *Scraper) FetchSP500(ctx context.Context) ([]string, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httputil.StatusError{URL: s.url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituents page: %w", err)
	}

	tickers := ParseConstituents(doc)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no constituents found at %s", s.url)
	}

	s.logger.WithField("count", len(tickers)).Info("Fetched S&P 500 constituents")
	return tickers, nil
}

// ParseConstituents extracts the first column of table#constituents
func ParseConstituents(doc *goquery.Document) []string {
	var tickers []string
	doc.Find("table#constituents tbody tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return // header row
		}
		symbol := strings.TrimSpace(cell.Text())
		if symbol != "" {
			tickers = append(tickers, symbol)
		}
	})
	return tickers
}
