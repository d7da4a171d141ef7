// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package atom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Common errors returned by the client.
var (
	ErrNoBaseURL = errors.New("catalog base URL is missing")
)

// listPage fetches a single browse page.
func (c *Client) listPage(ctx context.Context, creator string, limit, skip int) (_ *listResponse, err error) {
	if c.options.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	endpoint, err := url.Parse(c.options.BaseURL + "/api/informationobjects")
	if err != nil {
		return nil, fmt.Errorf("parsing base URL <%s>: %w", c.options.BaseURL, err)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(skip))

	if creator != "" {
		params.Set("creators", creator)
	}

	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating browse request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing resp.Body: %w", cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("browse endpoint returned status %d", resp.StatusCode)
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding browse response: %w", err)
	}

	return &page, err
}

// FetchAll retrieves every record matching the creator filter (empty string
// means the whole catalog), traversing pages until the reported total is
// reached. Request pacing is handled by the client transport. A page whose
// records were all seen before stops the traversal early: some AtoM builds
// repeat pages when the index shifts mid-browse, and looping on them would
// never terminate.
//
// Failure of the first page is terminal - there is nothing to aggregate.
// Failures of later pages are logged and skipped; partial data wins over
// no data.
func (c *Client) FetchAll(ctx context.Context, creator string) ([]InformationObject, error) {
	limit := c.options.PageSize

	seen := make(map[string]struct{})

	var items []InformationObject

	total := -1

	for skip := 0; total < 0 || skip < total; skip += limit {
		page, err := c.listPage(ctx, creator, limit, skip)
		if err != nil {
			if total < 0 {
				return nil, fmt.Errorf("retrieving first catalog page: %w", err)
			}

			if ctx.Err() != nil {
				return items, ctx.Err()
			}

			c.Metrics.PageErrors++
			log.Printf("Catalog - skipping page at offset %d (creator=%q): %s", skip, creator, err)

			continue
		}

		c.Metrics.Pages++
		c.Metrics.TotalRecords += len(page.Results)

		if total < 0 {
			total = page.Total
			log.Printf("Catalog - %d records reported for creator=%q", total, creator)
		}

		added := 0

		for _, item := range page.Results {
			if item.Slug == "" {
				continue
			}

			if _, dup := seen[item.Slug]; dup {
				continue
			}

			seen[item.Slug] = struct{}{}
			items = append(items, item)
			added++
		}

		if added == 0 {
			log.Printf(
				"Catalog - page at offset %d contributed no new records, stopping early (have %d of %d)",
				skip,
				len(items),
				total,
			)

			break
		}

		if len(items) >= total {
			break
		}
	}

	c.Metrics.UniqueItems = len(items)

	return items, nil
}

// Detail fetches the full record for a slug.
func (c *Client) Detail(ctx context.Context, slug string) (_ *InformationObject, err error) {
	if c.options.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	endpoint := c.options.BaseURL + "/api/informationobjects/" + url.PathEscape(slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating detail request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing resp.Body: %w", cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail endpoint returned status %d", resp.StatusCode)
	}

	var detail InformationObject
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decoding detail response: %w", err)
	}

	if detail.Slug == "" {
		detail.Slug = slug
	}

	return &detail, err
}

// EnrichAll joins each record with its detail fetch, in place. Detail
// failures leave the browse-level record untouched. The MaxItems option caps
// the loop so an unexpectedly large catalog cannot keep a single-threaded
// run going for hours.
func (c *Client) EnrichAll(ctx context.Context, items []InformationObject) []InformationObject {
	n := len(items)
	if c.options.MaxItems > 0 && n > c.options.MaxItems {
		log.Printf("Catalog - capping detail enrichment at %d of %d records", c.options.MaxItems, n)
		n = c.options.MaxItems
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Enriching records"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i := range items[:n] {
		if ctx.Err() != nil {
			log.Printf("Catalog - enrichment canceled after %d of %d records", i, n)

			break
		}

		detail, err := c.Detail(ctx, items[i].Slug)
		if err != nil {
			c.Metrics.DetailsErr++
			log.Printf("Catalog - detail fetch failed for %q: %s", items[i].Slug, err)
		} else {
			mergeDetail(&items[i], detail)
			c.Metrics.DetailsOk++
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return items
}

// mergeDetail copies detail-endpoint fields onto the browse-level record,
// never clearing data the browse page already provided.
func mergeDetail(item, detail *InformationObject) {
	if detail.Title != "" {
		item.Title = detail.Title
	}

	if len(detail.Notes) > 0 {
		item.Notes = detail.Notes
	}

	if len(detail.PlaceAccessPoints) > 0 {
		item.PlaceAccessPoints = detail.PlaceAccessPoints
	}

	if len(detail.CreationDates) > 0 {
		item.CreationDates = detail.CreationDates
	}

	if detail.ScopeAndContent != "" {
		item.ScopeAndContent = detail.ScopeAndContent
	}

	if detail.ThumbnailURL != "" {
		item.ThumbnailURL = detail.ThumbnailURL
	}

	item.ArchivalHistory = detail.ArchivalHistory
	item.PhysicalCharacteristics = detail.PhysicalCharacteristics

	if detail.DigitalObject != nil {
		item.DigitalObject = detail.DigitalObject
	}
}
