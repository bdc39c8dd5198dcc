package fetcher

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/amills-vpmgmt/vpmgmt-rates/extract"
)

// BrandFetcher loads a hotel's own booking page and reads a taxes-included
// total from a configured CSS selector. A plain HTTP fetch is tried first;
// pages that render prices client-side fall back to a headless browser.
// Hotels without a booking URL and selector in the roster yield no rate
// and the pipeline relies on the search API alone.
//
// Brand sites may restrict scraping in their terms of service; prefer
// official APIs or partner access where available.
type BrandFetcher struct {
	client *http.Client
	bounds extract.Bounds
}

func NewBrandFetcher(client *http.Client, bounds extract.Bounds) *BrandFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &BrandFetcher{client: client, bounds: bounds}
}

// FetchNightly returns the nightly rate derived from the page total, or
// false when the fetcher is unconfigured or the page exposes no plausible
// price.
func (b *BrandFetcher) FetchNightly(bookingURL, priceCSS string, checkIn time.Time, nights int) (int, bool, error) {
	if bookingURL == "" || priceCSS == "" {
		return 0, false, nil
	}
	if nights <= 0 {
		nights = 1
	}

	if nightly, ok := b.fetchStatic(bookingURL, priceCSS, nights); ok {
		return nightly, true, nil
	}

	return b.fetchRendered(bookingURL, priceCSS, nights)
}

// fetchStatic grabs the page over plain HTTP. Works for brand sites that
// render the total server-side.
func (b *BrandFetcher) fetchStatic(bookingURL, priceCSS string, nights int) (int, bool) {
	resp, err := b.client.Get(bookingURL)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, false
	}

	return b.priceFromDoc(doc, priceCSS, nights)
}

// fetchRendered drives a headless browser so client-rendered totals appear
// in the DOM before the selector is read.
func (b *BrandFetcher) fetchRendered(bookingURL, priceCSS string, nights int) (int, bool, error) {
	pw, err := playwright.Run()
	if err != nil {
		return 0, false, fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch()
	if err != nil {
		return 0, false, fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Locale: playwright.String("en-US"),
	})
	if err != nil {
		return 0, false, err
	}

	if _, err := page.Goto(bookingURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return 0, false, fmt.Errorf("goto %s: %w", bookingURL, err)
	}

	html, err := page.Content()
	if err != nil {
		return 0, false, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, false, err
	}

	nightly, ok := b.priceFromDoc(doc, priceCSS, nights)
	return nightly, ok, nil
}

func (b *BrandFetcher) priceFromDoc(doc *goquery.Document, priceCSS string, nights int) (int, bool) {
	text := strings.TrimSpace(doc.Find(priceCSS).First().Text())
	total, ok := extract.ParseAmount(text)
	if !ok {
		return 0, false
	}

	nightly := nightlyFromTotal(total, nights)
	if !b.bounds.Plausible(nightly) {
		return 0, false
	}
	return nightly, true
}

func nightlyFromTotal(total, nights int) int {
	if nights < 1 {
		nights = 1
	}
	return int(math.Round(float64(total) / float64(nights)))
}
