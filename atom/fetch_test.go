// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package atom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogStub serves a synthetic AtoM browse endpoint over n records.
type catalogStub struct {
	total    int
	requests int
	// when repeatFrom >= 0, pages at or past that offset replay page zero,
	// mimicking the index-shift bug the paginator guards against.
	repeatFrom int
}

func (s *catalogStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.requests++

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

		if s.repeatFrom >= 0 && skip >= s.repeatFrom {
			skip = 0
		}

		resp := listResponse{Total: s.total}

		for i := skip; i < skip+limit && i < s.total; i++ {
			resp.Results = append(resp.Results, InformationObject{
				Slug:  fmt.Sprintf("registro-%03d", i),
				Title: fmt.Sprintf("Registro %03d", i),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(&ClientOptions{
		BaseURL:  baseURL,
		PageSize: 50,
	})
}

func TestFetchAllStopsAtTotal(t *testing.T) {
	stub := &catalogStub{total: 97, repeatFrom: -1}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := newTestClient(srv.URL)

	items, err := c.FetchAll(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, items, 97)
	// 97 records at page size 50 must take exactly two requests, not three.
	assert.Equal(t, 2, stub.requests)
	assert.Equal(t, 2, c.Metrics.Pages)
	assert.Equal(t, 97, c.Metrics.UniqueItems)
}

func TestFetchAllStopsEarlyOnRepeatingPages(t *testing.T) {
	stub := &catalogStub{total: 200, repeatFrom: 50}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := newTestClient(srv.URL)

	items, err := c.FetchAll(context.Background(), "")
	require.NoError(t, err)

	// Page two replays page one; every slug is a duplicate, so pagination
	// must stop instead of walking all four pages.
	assert.Len(t, items, 50)
	assert.Equal(t, 2, stub.requests)
}

func TestFetchAllFirstPageFailureIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchAll(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first catalog page")
}

func TestFetchAllSkipsFailedPage(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		if skip == 50 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		resp := listResponse{Total: 120}
		for i := skip; i < skip+50 && i < 120; i++ {
			resp.Results = append(resp.Results, InformationObject{Slug: fmt.Sprintf("registro-%03d", i)})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	items, err := c.FetchAll(context.Background(), "")
	require.NoError(t, err)

	// The middle page is lost but the rest of the catalog still arrives.
	assert.Len(t, items, 70)
	assert.Equal(t, 1, c.Metrics.PageErrors)
	assert.Equal(t, 3, requests)
}

func TestFetchAllSendsCreatorFilter(t *testing.T) {
	var gotCreator string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCreator = r.URL.Query().Get("creators")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listResponse{Total: 0})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchAll(context.Background(), "dj-jamaika")
	require.NoError(t, err)
	assert.Equal(t, "dj-jamaika", gotCreator)
}

func TestEnrichAllMergesDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/informationobjects/batalha-careca", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(InformationObject{
			Slug:            "batalha-careca",
			ScopeAndContent: "<p>Batalha de MCs na Ceilândia</p>",
			ArchivalHistory: "Doado pelo fotógrafo",
			DigitalObject:   &DigitalObject{URL: "https://base/uploads/batalha.jpg"},
		})
	})
	mux.HandleFunc("/api/informationobjects/sem-detalhe", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL)

	items := []InformationObject{
		{Slug: "batalha-careca", Title: "Batalha do Careca", Notes: []string{"nota original"}},
		{Slug: "sem-detalhe", Title: "Sem Detalhe"},
	}

	got := c.EnrichAll(context.Background(), items)

	want := []InformationObject{
		{
			Slug:            "batalha-careca",
			Title:           "Batalha do Careca",
			Notes:           []string{"nota original"},
			ScopeAndContent: "<p>Batalha de MCs na Ceilândia</p>",
			ArchivalHistory: "Doado pelo fotógrafo",
			DigitalObject:   &DigitalObject{URL: "https://base/uploads/batalha.jpg"},
		},
		{Slug: "sem-detalhe", Title: "Sem Detalhe"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EnrichAll() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, c.Metrics.DetailsOk)
	assert.Equal(t, 1, c.Metrics.DetailsErr)
}

func TestEnrichAllHonorsMaxItems(t *testing.T) {
	details := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		details++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(InformationObject{Slug: "x"})
	}))
	defer srv.Close()

	c := NewClient(&ClientOptions{BaseURL: srv.URL, MaxItems: 2})

	items := []InformationObject{{Slug: "a"}, {Slug: "b"}, {Slug: "c"}, {Slug: "d"}}
	c.EnrichAll(context.Background(), items)

	assert.Equal(t, 2, details)
}

func TestMetricsMerge(t *testing.T) {
	a := ClientMetrics{
		FetchMetrics:  FetchMetrics{Pages: 2, TotalRecords: 100, UniqueItems: 97},
		DetailMetrics: DetailMetrics{DetailsOk: 90, DetailsErr: 7},
	}
	b := ClientMetrics{
		FetchMetrics:  FetchMetrics{Pages: 1, PageErrors: 1, TotalRecords: 50, UniqueItems: 50},
		DetailMetrics: DetailMetrics{DetailsOk: 50},
	}

	a.Merge(&b)

	assert.Equal(t, 3, a.Pages)
	assert.Equal(t, 1, a.PageErrors)
	assert.Equal(t, 150, a.TotalRecords)
	assert.Equal(t, 147, a.UniqueItems)
	assert.Equal(t, 140, a.DetailsOk)
	assert.Equal(t, 7, a.DetailsErr)
}
