// Package naver wraps the Naver Maps geocoding API and builds transit
// directions links for map.naver.com.
package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const geocodeURL = "https://naveropenapi.apigw.ntruss.com/map-geocode/v2/geocode"

// ErrNotFound means the address produced no geocoding results
var ErrNotFound = errors.New("no geocoding results")

// Point is a WGS84 coordinate pair
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a geocoded address
type Place struct {
	Point
	Address string `json:"address"`
}

// Client calls the Naver Maps APIs
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
}

// NewClient creates a Naver Maps client
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Geocode resolves a place name or address to coordinates. Returns
// ErrNotFound when the API has no results for the query.
func (c *Client) Geocode(ctx context.Context, query string) (Place, error) {
	params := url.Values{}
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, "GET", geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", c.clientID)
	req.Header.Set("X-NCP-APIGW-API-KEY", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return Place{}, fmt.Errorf("geocode API returned status %d", resp.StatusCode)
	}

	var result struct {
		Addresses []struct {
			X            string `json:"x"` // longitude
			Y            string `json:"y"` // latitude
			RoadAddress  string `json:"roadAddress"`
			JibunAddress string `json:"jibunAddress"`
		} `json:"addresses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Place{}, fmt.Errorf("parse geocode response: %w", err)
	}

	if len(result.Addresses) == 0 {
		return Place{}, ErrNotFound
	}

	first := result.Addresses[0]
	lat, err := strconv.ParseFloat(first.Y, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse latitude %q: %w", first.Y, err)
	}
	lng, err := strconv.ParseFloat(first.X, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse longitude %q: %w", first.X, err)
	}

	address := first.RoadAddress
	if address == "" {
		address = first.JibunAddress
	}
	if address == "" {
		address = query
	}

	return Place{Point: Point{Lat: lat, Lng: lng}, Address: address}, nil
}

// DirectionsURL builds a map.naver.com transit directions link from the
// origin to the destination. The origin label is fixed to "현재위치"
// (current location), URL-encoded.
func DirectionsURL(origin Point, dest Point, destName string) string {
	return fmt.Sprintf(
		"https://map.naver.com/v5/directions/%g,%g,%s/%g,%g,%s/-/transit",
		origin.Lng, origin.Lat, "%ED%98%84%EC%9E%AC%EC%9C%84%EC%B9%98",
		dest.Lng, dest.Lat, url.PathEscape(destName),
	)
}
