package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"watchdeck/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	tmdbStillSize    = "w300"
	tmdbPosterSize   = "w500"
	tmdbBannerSize   = "w1280"

	// How many discovered shows to expand into per-episode releases for a
	// month view. Each expansion costs one season fetch.
	maxMonthShows = 20
)

var (
	ErrNotConfigured = errors.New("tmdb api key not configured")
	ErrRateLimited   = errors.New("catalog rate limited")
)

// Client talks to TMDB. All calls go through a min-interval throttle plus a
// bounded retry with exponential backoff on 429, 5xx, and network errors.
type Client struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func NewClient(apiKey, language string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		apiKey:      strings.TrimSpace(apiKey),
		language:    strings.TrimSpace(language),
		baseURL:     tmdbBaseURL,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) throttle() {
	c.throttleMu.Lock()
	since := time.Since(c.lastRequest)
	if since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
	c.throttleMu.Unlock()
}

// doGET performs a throttled GET with retries and decodes the JSON body into v.
func (c *Client) doGET(ctx context.Context, endpoint string, params url.Values, v any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	} else {
		params.Set("language", "en-US")
	}

	return retry.Do(
		func() error {
			c.throttle()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.URL.RawQuery = params.Encode()

			resp, err := c.httpc.Do(req)
			if err != nil {
				log.Printf("[catalog] http error: %v", err)
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests {
				log.Printf("[catalog] rate limited: %s", endpoint)
				return ErrRateLimited
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("tmdb request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("tmdb request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode tmdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

type tmdbEpisode struct {
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
	StillPath     string `json:"still_path"`
}

type tmdbSeasonResponse struct {
	Episodes []tmdbEpisode `json:"episodes"`
}

type tmdbDiscoverTVResponse struct {
	Results []struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		PosterPath   string `json:"poster_path"`
		BackdropPath string `json:"backdrop_path"`
	} `json:"results"`
}

type tmdbDiscoverMovieResponse struct {
	Results []struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Overview    string `json:"overview"`
		PosterPath  string `json:"poster_path"`
		ReleaseDate string `json:"release_date"`
	} `json:"results"`
}

type tmdbShowResponse struct {
	Name         string `json:"name"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	Seasons      []struct {
		SeasonNumber int `json:"season_number"`
		EpisodeCount int `json:"episode_count"`
	} `json:"seasons"`
}

// FetchEpisode returns metadata for one episode.
func (c *Client) FetchEpisode(ctx context.Context, showID, season, episode int) (models.Release, error) {
	endpoint, err := url.JoinPath(c.baseURL, "tv", fmt.Sprintf("%d", showID), "season", fmt.Sprintf("%d", season), "episode", fmt.Sprintf("%d", episode))
	if err != nil {
		return models.Release{}, err
	}

	var payload tmdbEpisode
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return models.Release{}, fmt.Errorf("fetch episode %d S%dE%d: %w", showID, season, episode, err)
	}

	return episodeRelease(showID, "", "", "", payload), nil
}

// FetchSeasonEpisodeCount returns how many episodes TMDB lists for a season.
func (c *Client) FetchSeasonEpisodeCount(ctx context.Context, showID, season int) (int, error) {
	endpoint, err := url.JoinPath(c.baseURL, "tv", fmt.Sprintf("%d", showID), "season", fmt.Sprintf("%d", season))
	if err != nil {
		return 0, err
	}

	var payload tmdbSeasonResponse
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return 0, fmt.Errorf("fetch season %d S%d: %w", showID, season, err)
	}

	return len(payload.Episodes), nil
}

// FetchShowSeasons returns the (seasonNumber, episodeCount) pairs TMDB lists
// for a show, specials included.
func (c *Client) FetchShowSeasons(ctx context.Context, showID int) (map[int]int, error) {
	endpoint, err := url.JoinPath(c.baseURL, "tv", fmt.Sprintf("%d", showID))
	if err != nil {
		return nil, err
	}

	var payload tmdbShowResponse
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch show %d: %w", showID, err)
	}

	seasons := make(map[int]int, len(payload.Seasons))
	for _, s := range payload.Seasons {
		seasons[s.SeasonNumber] = s.EpisodeCount
	}
	return seasons, nil
}

// FetchReleasesForMonth builds the flat release list for one calendar month:
// episodes of shows airing in the window plus movie releases, in TMDB's
// popularity order.
func (c *Client) FetchReleasesForMonth(ctx context.Context, year int, month time.Month) ([]models.Release, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	from, to := first.Format("2006-01-02"), last.Format("2006-01-02")

	releases, err := c.episodesInWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	theatrical, err := c.moviesInWindow(ctx, from, to, models.ReleaseTypeTheatrical)
	if err != nil {
		return nil, err
	}
	digital, err := c.moviesInWindow(ctx, from, to, models.ReleaseTypeDigital)
	if err != nil {
		return nil, err
	}

	releases = append(releases, theatrical...)
	releases = append(releases, digital...)
	return releases, nil
}

func (c *Client) episodesInWindow(ctx context.Context, from, to string) ([]models.Release, error) {
	endpoint, err := url.JoinPath(c.baseURL, "discover", "tv")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("air_date.gte", from)
	params.Set("air_date.lte", to)
	params.Set("sort_by", "popularity.desc")

	var discovered tmdbDiscoverTVResponse
	if err := c.doGET(ctx, endpoint, params, &discovered); err != nil {
		return nil, fmt.Errorf("discover shows %s..%s: %w", from, to, err)
	}

	releases := make([]models.Release, 0, len(discovered.Results)*2)
	for i, show := range discovered.Results {
		if i >= maxMonthShows {
			break
		}
		episodes, err := c.showEpisodesInWindow(ctx, show.ID, show.Name, show.PosterPath, show.BackdropPath, from, to)
		if err != nil {
			// One broken show should not take down the whole month.
			log.Printf("[catalog] expand show %d: %v", show.ID, err)
			continue
		}
		releases = append(releases, episodes...)
	}
	return releases, nil
}

func (c *Client) showEpisodesInWindow(ctx context.Context, showID int, name, posterPath, backdropPath, from, to string) ([]models.Release, error) {
	seasons, err := c.FetchShowSeasons(ctx, showID)
	if err != nil {
		return nil, err
	}

	latest := -1
	for number := range seasons {
		if number > latest {
			latest = number
		}
	}
	if latest < 0 {
		return nil, nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "tv", fmt.Sprintf("%d", showID), "season", fmt.Sprintf("%d", latest))
	if err != nil {
		return nil, err
	}

	var payload tmdbSeasonResponse
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, err
	}

	releases := make([]models.Release, 0, len(payload.Episodes))
	for _, episode := range payload.Episodes {
		if episode.AirDate < from || episode.AirDate > to {
			continue
		}
		releases = append(releases, episodeRelease(showID, name, posterPath, backdropPath, episode))
	}
	return releases, nil
}

func (c *Client) moviesInWindow(ctx context.Context, from, to string, releaseType models.ReleaseType) ([]models.Release, error) {
	endpoint, err := url.JoinPath(c.baseURL, "discover", "movie")
	if err != nil {
		return nil, err
	}

	// TMDB release types: 2|3 theatrical windows, 4 digital.
	typeFilter := "2|3"
	if releaseType == models.ReleaseTypeDigital {
		typeFilter = "4"
	}

	params := url.Values{}
	params.Set("primary_release_date.gte", from)
	params.Set("primary_release_date.lte", to)
	params.Set("with_release_type", typeFilter)
	params.Set("sort_by", "popularity.desc")

	var discovered tmdbDiscoverMovieResponse
	if err := c.doGET(ctx, endpoint, params, &discovered); err != nil {
		return nil, fmt.Errorf("discover movies %s..%s: %w", from, to, err)
	}

	releases := make([]models.Release, 0, len(discovered.Results))
	for _, movie := range discovered.Results {
		airDate, err := time.Parse("2006-01-02", movie.ReleaseDate)
		if err != nil {
			continue
		}
		releases = append(releases, models.Release{
			ShowID:      movie.ID,
			Title:       movie.Title,
			Overview:    movie.Overview,
			IsMovie:     true,
			ReleaseType: releaseType,
			AirDate:     airDate,
			PosterURL:   imageURL(movie.PosterPath, tmdbPosterSize),
		})
	}
	return releases, nil
}

func episodeRelease(showID int, showName, posterPath, backdropPath string, episode tmdbEpisode) models.Release {
	season := episode.SeasonNumber
	number := episode.EpisodeNumber
	release := models.Release{
		ShowID:        showID,
		ShowTitle:     showName,
		Title:         episode.Name,
		Overview:      episode.Overview,
		SeasonNumber:  &season,
		EpisodeNumber: &number,
		StillURL:      imageURL(episode.StillPath, tmdbStillSize),
		PosterURL:     imageURL(posterPath, tmdbPosterSize),
		BannerURL:     imageURL(backdropPath, tmdbBannerSize),
	}
	if t, err := time.Parse("2006-01-02", episode.AirDate); err == nil {
		release.AirDate = t
	}
	return release
}

func imageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", tmdbImageBaseURL, path.Join(size, strings.TrimPrefix(trimmed, "/")))
}
