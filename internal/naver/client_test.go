package naver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// redirectTransport sends every request to the test server, keeping the
// original query string and headers
type redirectTransport struct{ base string }

func (r redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := http.NewRequest(req.Method, r.base+"?"+req.URL.RawQuery, nil)
	if err != nil {
		return nil, err
	}
	out.Header = req.Header
	return http.DefaultTransport.RoundTrip(out)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("id", "secret")
	c.httpClient = &http.Client{Transport: redirectTransport{base: srv.URL}}
	return c
}

func TestGeocode(t *testing.T) {
	var gotQuery, gotKeyID string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotKeyID = r.Header.Get("X-NCP-APIGW-API-KEY-ID")
		io.WriteString(w, `{"addresses":[{"x":"127.0276","y":"37.4979","roadAddress":"서울 강남구 강남대로 지하 396","jibunAddress":""}]}`)
	})

	place, err := c.Geocode(context.Background(), "강남역")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "강남역" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotKeyID != "id" {
		t.Errorf("credentials header = %q", gotKeyID)
	}
	if place.Lat != 37.4979 || place.Lng != 127.0276 {
		t.Errorf("point = %+v", place.Point)
	}
	if place.Address != "서울 강남구 강남대로 지하 396" {
		t.Errorf("address = %q", place.Address)
	}
}

func TestGeocodeAddressFallback(t *testing.T) {
	// No road address: fall back to the jibun address
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"addresses":[{"x":"127.0","y":"37.5","roadAddress":"","jibunAddress":"서울 강남구 역삼동 858"}]}`)
	})
	place, err := c.Geocode(context.Background(), "강남역")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.Address != "서울 강남구 역삼동 858" {
		t.Errorf("address = %q", place.Address)
	}

	// Neither address form: fall back to the query itself
	c = testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"addresses":[{"x":"127.0","y":"37.5","roadAddress":"","jibunAddress":""}]}`)
	})
	place, err = c.Geocode(context.Background(), "강남역")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.Address != "강남역" {
		t.Errorf("address = %q", place.Address)
	}
}

func TestGeocodeNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"addresses":[]}`)
	})
	_, err := c.Geocode(context.Background(), "아무데도없는곳")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectionsURL(t *testing.T) {
	origin := Point{Lat: 37.51, Lng: 127.03}
	dest := Point{Lat: 37.4979, Lng: 127.0276}

	got := DirectionsURL(origin, dest, "강남역")

	if !strings.HasPrefix(got, "https://map.naver.com/v5/directions/") {
		t.Errorf("wrong base: %q", got)
	}
	if !strings.HasSuffix(got, "/-/transit") {
		t.Errorf("must end with the transit mode: %q", got)
	}
	// Longitude comes before latitude in the path
	if !strings.Contains(got, "127.03,37.51,%ED%98%84%EC%9E%AC%EC%9C%84%EC%B9%98") {
		t.Errorf("origin segment wrong: %q", got)
	}
	if !strings.Contains(got, "127.0276,37.4979,") {
		t.Errorf("destination segment wrong: %q", got)
	}
}
