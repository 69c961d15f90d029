// Spotify Web API name lookups
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiovault/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyKind is the catalogue object type in a Spotify URL.
type SpotifyKind string

const (
	SpotifyTrack    SpotifyKind = "track"
	SpotifyAlbum    SpotifyKind = "album"
	SpotifyPlaylist SpotifyKind = "playlist"
	SpotifyArtist   SpotifyKind = "artist"
)

// SpotifyArtistRef is the artist summary embedded in track and album objects.
type SpotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyObject holds the fields shared by track, album, playlist and artist objects.
type SpotifyObject struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Type    string             `json:"type"`
	Artists []SpotifyArtistRef `json:"artists,omitempty"`
}

// DisplayName is "Artist - Name" when the object has artists, otherwise its name.
func (o SpotifyObject) DisplayName() string {
	if len(o.Artists) == 0 || o.Artists[0].Name == "" {
		return o.Name
	}
	return o.Artists[0].Name + " - " + o.Name
}

// ParseSpotifyURL extracts the kind and id from an open.spotify.com URL or a spotify: URI.
func ParseSpotifyURL(raw string) (SpotifyKind, string, error) {
	raw = strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(raw, "spotify:"); ok {
		kind, id, ok := strings.Cut(rest, ":")
		if !ok || id == "" {
			return "", "", fmt.Errorf("%w: malformed spotify URI %q", shared.ErrInvalidInput, raw)
		}
		return checkKind(kind, id, raw)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host != "open.spotify.com" {
		return "", "", fmt.Errorf("%w: not a spotify URL %q", shared.ErrInvalidInput, raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 0 && strings.HasPrefix(segments[0], "intl-") {
		segments = segments[1:]
	}
	if len(segments) < 2 || segments[1] == "" {
		return "", "", fmt.Errorf("%w: spotify URL has no id %q", shared.ErrInvalidInput, raw)
	}
	return checkKind(segments[0], segments[1], raw)
}

func checkKind(kind, id, raw string) (SpotifyKind, string, error) {
	switch k := SpotifyKind(kind); k {
	case SpotifyTrack, SpotifyAlbum, SpotifyPlaylist, SpotifyArtist:
		return k, id, nil
	default:
		return "", "", fmt.Errorf("%w: unsupported spotify object %q in %q", shared.ErrInvalidInput, kind, raw)
	}
}

// SpotifyResolverOpts overrides endpoints for a [SpotifyResolver].
type SpotifyResolverOpts struct {
	TokenURL   string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// SpotifyResolver looks up catalogue names with the client credentials flow.
type SpotifyResolver struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSpotifyResolver creates a resolver that authenticates as the configured application.
func NewSpotifyResolver(ctx context.Context, creds shared.SpotifyConfig, opts SpotifyResolverOpts) (*SpotifyResolver, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     opts.TokenURL,
	}

	logger := opts.Logger
	source := oauth2.ReuseTokenSource(nil, &refreshableTokenSource{
		source: cfg.TokenSource(ctx),
		callback: func(tok *oauth2.Token) {
			logger.Debug("spotify token refreshed", "expiry", tok.Expiry)
		},
	})

	return &SpotifyResolver{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: oauth2.NewClient(ctx, source),
		logger:     logger,
	}, nil
}

// Lookup fetches the catalogue object of kind with id.
func (s *SpotifyResolver) Lookup(ctx context.Context, kind SpotifyKind, id string) (*SpotifyObject, error) {
	endpoint := fmt.Sprintf("%s/%ss/%s", s.baseURL, kind, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: spotify %s %s", shared.ErrNotFound, kind, id)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var obj SpotifyObject
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &obj, nil
}

// Resolve returns the display name of the object a Spotify URL points to.
func (s *SpotifyResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	kind, id, err := ParseSpotifyURL(rawURL)
	if err != nil {
		return "", err
	}

	obj, err := s.Lookup(ctx, kind, id)
	if err != nil {
		return "", err
	}

	s.logger.Debug("resolved spotify url", "kind", kind, "name", obj.Name)
	if kind == SpotifyPlaylist || kind == SpotifyArtist {
		return obj.Name, nil
	}
	return obj.DisplayName(), nil
}

// refreshableTokenSource calls callback whenever the wrapped source returns a new access token.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	tok, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	if tok.AccessToken != r.last {
		r.last = tok.AccessToken
		if r.callback != nil {
			r.callback(tok)
		}
	}
	return tok, nil
}
