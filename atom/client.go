// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

// Package atom is a read-only client for the AtoM REST API that backs the
// archive catalog: paged browsing, per-record detail, and the pacing the
// shared public instance asks for.
package atom

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/acervohiphopdf/acervomapa/utils/httputils"
)

// Mode selects the pacing profile for catalog traversal.
type Mode int

const (
	// ModeFast paces requests for interactive refreshes.
	ModeFast Mode = iota
	// ModeComplete paces requests conservatively for full harvests.
	ModeComplete
)

// MinInterval returns the minimum spacing between successive requests.
func (m Mode) MinInterval() time.Duration {
	if m == ModeComplete {
		return 300 * time.Millisecond
	}

	return 100 * time.Millisecond
}

// ClientOptions configuration for the catalog client.
type ClientOptions struct {
	// BaseURL is the root of the AtoM instance, e.g. https://base.acervohiphopdf.com.br
	BaseURL string

	// APIKey is sent as the REST-API-Key header on every request
	APIKey string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// Mode selects fast or complete pacing
	Mode Mode

	// PageSize is the browse page size (limit query parameter)
	PageSize int

	// MaxItems caps how many records the detail-enrichment loop visits.
	// Zero means unlimited.
	MaxItems int
}

// ClientMetrics tracks various metrics collected during client operations.
type ClientMetrics struct {
	FetchMetrics
	DetailMetrics
}

// Merge combines the metrics from another ClientMetrics instance into this one.
func (m *ClientMetrics) Merge(other *ClientMetrics) *ClientMetrics {
	if other == nil {
		return m
	}

	m.FetchMetrics.Merge(&other.FetchMetrics)
	m.DetailMetrics.Merge(&other.DetailMetrics)

	return m
}

// FetchMetrics tracks statistics about catalog pagination.
type FetchMetrics struct {
	Pages        int // pages successfully retrieved
	PageErrors   int // pages skipped after a request failure
	TotalRecords int // records seen across pages, duplicates included
	UniqueItems  int // records kept after slug deduplication
}

// Merge combines two FetchMetrics.
func (f *FetchMetrics) Merge(o *FetchMetrics) *FetchMetrics {
	f.Pages += o.Pages
	f.PageErrors += o.PageErrors
	f.TotalRecords += o.TotalRecords
	f.UniqueItems += o.UniqueItems

	return f
}

// DetailMetrics tracks statistics about per-record detail enrichment.
type DetailMetrics struct {
	DetailsOk  int
	DetailsErr int
}

// Merge combines two DetailMetrics.
func (d *DetailMetrics) Merge(o *DetailMetrics) *DetailMetrics {
	d.DetailsOk += o.DetailsOk
	d.DetailsErr += o.DetailsErr

	return d
}

// Client accesses the archive catalog.
type Client struct {
	client  *http.Client
	options *ClientOptions
	Metrics ClientMetrics
}

// NewClient creates a catalog client with the provided options.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	if options.PageSize <= 0 {
		options.PageSize = 50
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableKeepAlives:     false,
		DisableCompression:    false,
	}

	throttledTransport := &httputils.ThrottledRoundTripper{
		MinInterval: options.Mode.MinInterval(),
		Transport:   transport,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: throttledTransport,
	}

	userAgent := "acervomapa/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headers := map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json",
	}
	if options.APIKey != "" {
		headers["REST-API-Key"] = options.APIKey
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers:   headers,
		Transport: loggingTransport,
	}

	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: headerTransport,
	}

	return &Client{
		client:  client,
		options: options,
	}
}
