package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	authURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"
	scope    = "https://www.googleapis.com/auth/calendar.events https://www.googleapis.com/auth/calendar.readonly"
)

// Token is an OAuth access token with its refresh companion
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Valid reports whether the access token is still usable
func (t Token) Valid() bool {
	return t.AccessToken != "" && time.Now().Before(t.Expiry)
}

// OAuth performs the manual authorization-code flow for user consent
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	httpClient *http.Client
}

// NewOAuth creates an OAuth helper
func NewOAuth(clientID, clientSecret, redirectURI string) *OAuth {
	return &OAuth{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthURL returns the consent URL a user opens to authorize the bot
func (o *OAuth) AuthURL() string {
	params := url.Values{}
	params.Set("client_id", o.ClientID)
	params.Set("redirect_uri", o.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", scope)
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	return authURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens
func (o *OAuth) Exchange(ctx context.Context, code string) (Token, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", o.ClientID)
	data.Set("client_secret", o.ClientSecret)
	data.Set("redirect_uri", o.RedirectURI)
	return o.tokenRequest(ctx, data)
}

// Refresh obtains a fresh access token from a refresh token
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", o.ClientID)
	data.Set("client_secret", o.ClientSecret)

	token, err := o.tokenRequest(ctx, data)
	if err != nil {
		return Token{}, err
	}
	// Google omits the refresh token on refresh responses
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

func (o *OAuth) tokenRequest(ctx context.Context, data url.Values) (Token, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != 200 {
		return Token{}, fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return Token{}, fmt.Errorf("parse token response: %w", err)
	}

	return Token{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		// Refresh a few minutes before the reported expiry
		Expiry: time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - 5*time.Minute),
	}, nil
}
