// Package auth handles Strava OAuth credentials: the browser authorization
// flow, token refresh, and persistence of the token pair.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"
	scopes   = "activity:read_all"

	// Refresh when less than 5 minutes remain on the access token.
	expirySkew = 300
)

// OAuthConfig returns an OAuth2 config for Strava.
func OAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
		RedirectURL: redirectURI,
		Scopes:      []string{scopes},
	}
}

// TokenPair is the persisted access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type"`
}

// TokenFromOAuth2 converts an oauth2.Token to a TokenPair.
func TokenFromOAuth2(token *oauth2.Token) *TokenPair {
	return &TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
		TokenType:    token.TokenType,
	}
}

// IsTokenExpired checks if the token is expired or will expire soon.
func IsTokenExpired(expiresAt int64) bool {
	return time.Now().Unix() > (expiresAt - expirySkew)
}

// Authenticate performs the browser authorization flow and returns tokens.
// It serves a one-shot callback endpoint on the redirect URI's port.
func Authenticate(ctx context.Context, clientID, clientSecret, redirectURI string) (*TokenPair, error) {
	config := OAuthConfig(clientID, clientSecret, redirectURI)

	callback, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect URI: %w", err)
	}
	port := callback.Port()
	if port == "" {
		port = "80"
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	mux.HandleFunc(callback.Path, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errMsg := r.URL.Query().Get("error")
			if errMsg == "" {
				errMsg = "no authorization code received"
			}
			http.Error(w, errMsg, http.StatusBadRequest)
			errChan <- fmt.Errorf("authorization failed: %s", errMsg)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>`)
		codeChan <- code
	})

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	state := "runcoach-auth"
	openURL := config.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))

	fmt.Println("Opening browser for Strava authorization...")
	fmt.Printf("If browser doesn't open, visit: %s\n\n", openURL)

	if err := browser.OpenURL(openURL); err != nil {
		fmt.Printf("Could not open browser automatically: %v\n", err)
	}

	var code string
	select {
	case code = <-codeChan:
		// Success
	case err := <-errChan:
		server.Shutdown(ctx)
		return nil, err
	case <-ctx.Done():
		server.Shutdown(ctx)
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		server.Shutdown(ctx)
		return nil, fmt.Errorf("authorization timeout")
	}

	server.Shutdown(ctx)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	return TokenFromOAuth2(token), nil
}

// RefreshAccessToken exchanges the refresh token for a new pair.
func RefreshAccessToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenPair, error) {
	config := OAuthConfig(clientID, clientSecret, "")

	// An already-expired token forces TokenSource to refresh.
	oldToken := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}

	newToken, err := config.TokenSource(ctx, oldToken).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	return TokenFromOAuth2(newToken), nil
}
