package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/amills-vpmgmt/vpmgmt-rates/archive"
	"github.com/amills-vpmgmt/vpmgmt-rates/cache"
	"github.com/amills-vpmgmt/vpmgmt-rates/extract"
	"github.com/amills-vpmgmt/vpmgmt-rates/identity"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
	"github.com/amills-vpmgmt/vpmgmt-rates/selector"
)

// Request identifies one hotel/date rate query.
type Request struct {
	HotelName string
	Address   string
	City      string
	Brand     string // provider group restricting primary selection, may be empty
	CheckIn   time.Time
	Nights    int
	Adults    int
}

// Fetcher is the query orchestrator: precise query first, relaxed city
// fallback second, each response run through matching, extraction, and
// classification. One hotel/date at a time; no shared mutable state between
// queries.
type Fetcher struct {
	client  SearchClient
	bounds  extract.Bounds
	retries int

	archive *archive.Writer
	cache   *cache.Cache
}

func New(client SearchClient, bounds extract.Bounds, retries int) *Fetcher {
	return &Fetcher{
		client:  client,
		bounds:  bounds,
		retries: retries,
	}
}

// SetArchive enables raw-response archival. Optional.
func (f *Fetcher) SetArchive(w *archive.Writer) {
	f.archive = w
}

// SetCache enables the Redis response cache. Optional.
func (f *Fetcher) SetCache(c *cache.Cache) {
	f.cache = c
}

// Fetch returns the classified rate for one hotel and check-in date, or nil
// when neither the precise nor the relaxed query produced a plausible offer.
// A query exhausting its retries degrades to "no result" so the fallback is
// still attempted; only programmer errors surface as error.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*models.RateResult, error) {
	if req.HotelName == "" {
		return nil, fmt.Errorf("fetch: empty hotel name")
	}
	if req.Nights <= 0 {
		req.Nights = 1
	}
	if req.Adults <= 0 {
		req.Adults = 2
	}

	type attempt struct {
		query   string
		relaxed bool
	}
	var attempts []attempt
	if req.Address != "" {
		attempts = append(attempts, attempt{fmt.Sprintf("%s, %s", req.HotelName, req.Address), false})
	}
	attempts = append(attempts, attempt{fmt.Sprintf("%s, %s", req.HotelName, req.City), true})

	for _, a := range attempts {
		summary, raw := f.runQuery(ctx, a.query, req)
		if summary == nil || summary.Primary == nil {
			continue
		}
		return &models.RateResult{
			ID:        uuid.New(),
			HotelKey:  identity.HotelKey(req.HotelName),
			HotelName: req.HotelName,
			CheckIn:   req.CheckIn,
			Summary:   *summary,
			Query:     a.query,
			Relaxed:   a.relaxed,
			FetchedAt: time.Now(),
			Raw:       raw,
		}, nil
	}

	return nil, nil
}

// runQuery performs one search attempt and classifies its response. Any
// transport or shape problem degrades to a nil summary.
func (f *Fetcher) runQuery(ctx context.Context, query string, req Request) (*models.RateSummary, json.RawMessage) {
	checkOut := req.CheckIn.AddDate(0, 0, req.Nights)

	raw, err := f.search(ctx, query, req.CheckIn, checkOut, req.Adults)
	if err != nil {
		log.Printf("Query failed after retries: %q: %v", query, err)
		return nil, nil
	}

	if f.archive != nil {
		if _, err := f.archive.Write(identity.HotelKey(req.HotelName), req.CheckIn, raw); err != nil {
			log.Printf("Warning: archive write failed for %q: %v", query, err)
		}
	}

	summary := f.classify(raw, req)
	return summary, raw
}

func (f *Fetcher) search(ctx context.Context, query string, checkIn, checkOut time.Time, adults int) ([]byte, error) {
	if f.cache != nil {
		if cached, err := f.cache.Get(ctx, query, checkIn, checkOut, adults); err != nil {
			log.Printf("Warning: cache get failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	var raw []byte
	err := withRetry(ctx, f.retries, func() error {
		var opErr error
		raw, opErr = f.client.Search(ctx, query, checkIn, checkOut, adults)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, query, checkIn, checkOut, adults, raw); err != nil {
			log.Printf("Warning: cache set failed: %v", err)
		}
	}
	return raw, nil
}

// classify parses a raw response, matches the target among properties and
// ads independently, extracts offers from each winner, and selects. A
// response with no usable sections yields nil.
func (f *Fetcher) classify(raw []byte, req Request) *models.RateSummary {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Printf("Warning: unparseable response for %s: %v", req.HotelName, err)
		return nil
	}
	root := extract.Record(doc)

	var offers []models.Offer

	if props := propertyCandidates(root); len(props) > 0 {
		if best := extract.BestMatch(props, req.HotelName, req.City); best != nil {
			offers = append(offers, extract.ExtractOffers(best, models.SourceProperties, f.bounds)...)
		}
	}

	if list, ok := root.List("ads"); ok {
		if best := extract.BestMatch(extract.Records(list), req.HotelName, req.City); best != nil {
			offers = append(offers, extract.ExtractOffers(best, models.SourceAds, f.bounds)...)
		}
	}

	if len(offers) == 0 {
		return nil
	}

	summary := selector.ClassifyAndSelect(offers, req.Brand, f.bounds)
	return &summary
}

// propertyCandidates probes the known locations of the property list,
// first non-empty wins: properties, then hotel_results, then hotel-tagged
// entries of organic_results.
func propertyCandidates(root extract.Record) []extract.Record {
	if list, ok := root.List("properties"); ok {
		if recs := extract.Records(list); len(recs) > 0 {
			return recs
		}
	}
	if list, ok := root.List("hotel_results"); ok {
		if recs := extract.Records(list); len(recs) > 0 {
			return recs
		}
	}
	if list, ok := root.List("organic_results"); ok {
		var hotels []extract.Record
		for _, rec := range extract.Records(list) {
			if rec.Str("type") == "hotel" {
				hotels = append(hotels, rec)
			}
		}
		return hotels
	}
	return nil
}
