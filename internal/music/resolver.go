package music

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"tunebridge/internal/platforms"
)

// Match is the outcome of one lookup: equivalent URLs keyed by platform, plus
// track metadata.
type Match struct {
	Links  map[string]string
	Title  string
	Artist string
}

// Resolver calls the external link-matching API. One GET per qualifying
// message, no retries; a failure just means no reply for that message.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewResolver(baseURL string, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type lookupResponse struct {
	LinksByPlatform map[string]struct {
		URL string `json:"url"`
	} `json:"linksByPlatform"`
	EntitiesByUniqueID map[string]struct {
		Title      string `json:"title"`
		ArtistName string `json:"artistName"`
	} `json:"entitiesByUniqueId"`
}

// Resolve looks link up for the given user country. Missing metadata falls
// back to placeholder values, never an error.
func (r *Resolver) Resolve(ctx context.Context, link, country string) (*Match, error) {
	endpoint := fmt.Sprintf("%s/links?url=%s&userCountry=%s",
		r.baseURL, url.QueryEscape(link), url.QueryEscape(country))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}

	match := &Match{
		Links:  make(map[string]string, len(payload.LinksByPlatform)),
		Title:  "Unknown Title",
		Artist: "Unknown Artist",
	}
	for key, entry := range payload.LinksByPlatform {
		if entry.URL != "" {
			match.Links[key] = entry.URL
		}
	}

	// JSON object order is not preserved by Go maps; sorted keys make the
	// "first entity" deterministic.
	entityIDs := make([]string, 0, len(payload.EntitiesByUniqueID))
	for id := range payload.EntitiesByUniqueID {
		entityIDs = append(entityIDs, id)
	}
	sort.Strings(entityIDs)
	if len(entityIDs) > 0 {
		entity := payload.EntitiesByUniqueID[entityIDs[0]]
		if entity.Title != "" {
			match.Title = entity.Title
		}
		if entity.ArtistName != "" {
			match.Artist = entity.ArtistName
		}
	}

	r.logger.Debug("resolved link",
		zap.String("link", link),
		zap.String("country", country),
		zap.Int("platforms", len(match.Links)))

	return match, nil
}

// CrossPlatform reports whether the match offers anything beyond variants of
// the source link's own platform. A YouTube link resolving only to
// YouTube-family entries has no cross-platform value.
func CrossPlatform(match *Match, sourceKey string) bool {
	if match == nil || len(match.Links) == 0 {
		return false
	}
	sourceFamily := platforms.Family(sourceKey)
	for key := range match.Links {
		if platforms.Family(key) != sourceFamily {
			return true
		}
	}
	return false
}
