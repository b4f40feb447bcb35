package music

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const sampleResponse = `{
	"linksByPlatform": {
		"spotify": {"url": "https://open.spotify.com/track/abc"},
		"youtube": {"url": "https://www.youtube.com/watch?v=x"}
	},
	"entitiesByUniqueId": {
		"SPOTIFY_SONG::abc": {"title": "Some Song", "artistName": "Some Artist"}
	}
}`

func TestResolve(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 5*time.Second, zap.NewNop())
	match, err := resolver.Resolve(context.Background(), "open.spotify.com/track/abc", "DE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/links" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotQuery != "url=open.spotify.com%2Ftrack%2Fabc&userCountry=DE" {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if match.Links["spotify"] != "https://open.spotify.com/track/abc" {
		t.Fatalf("unexpected spotify url: %s", match.Links["spotify"])
	}
	if match.Title != "Some Song" || match.Artist != "Some Artist" {
		t.Fatalf("unexpected metadata: %s - %s", match.Title, match.Artist)
	}
}

func TestResolveMissingEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"linksByPlatform": {"deezer": {"url": "https://deezer.com/track/1"}}}`))
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 5*time.Second, zap.NewNop())
	match, err := resolver.Resolve(context.Background(), "link", "DE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match.Title != "Unknown Title" || match.Artist != "Unknown Artist" {
		t.Fatalf("expected placeholder metadata, got %s - %s", match.Title, match.Artist)
	}
}

func TestResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 5*time.Second, zap.NewNop())
	if _, err := resolver.Resolve(context.Background(), "link", "DE"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestCrossPlatformGuard(t *testing.T) {
	allYouTube := &Match{Links: map[string]string{
		"youtube":      "https://www.youtube.com/watch?v=x",
		"youtubeMusic": "https://music.youtube.com/watch?v=x",
	}}
	if CrossPlatform(allYouTube, "youtube") {
		t.Fatal("YouTube-family-only result for a YouTube link has no cross-platform value")
	}

	mixed := &Match{Links: map[string]string{
		"youtube": "https://www.youtube.com/watch?v=x",
		"spotify": "https://open.spotify.com/track/abc",
	}}
	if !CrossPlatform(mixed, "youtube") {
		t.Fatal("a non-family platform in the result has cross-platform value")
	}

	if CrossPlatform(&Match{Links: map[string]string{}}, "spotify") {
		t.Fatal("empty result has no value")
	}
	if CrossPlatform(nil, "spotify") {
		t.Fatal("nil match has no value")
	}
}
