package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/metrics"
	"github.com/jnphilipp/computer/pkg/logger"
	"github.com/jnphilipp/computer/pkg/retry"
	"github.com/jnphilipp/computer/pkg/utils"
)

// Summary aggregates the forecast slices of one calendar day.
type Summary struct {
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Condition int     `json:"condition"`
}

// Cache stores forecast summaries. May be nil.
type Cache interface {
	GetForecast(ctx context.Context, key string, summary interface{}) (bool, error)
	SetForecast(ctx context.Context, key string, summary interface{}, ttl time.Duration) error
}

type Client struct {
	baseURL    string
	apiKey     string
	cityID     string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	now        func() time.Time
}

func NewClient(baseURL, apiKey, cityID string, timeout time.Duration, cache Cache, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		cityID:     cityID,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

type forecastResponse struct {
	List []forecastSlice `json:"list"`
}

type forecastSlice struct {
	Dt   int64 `json:"dt"`
	Main struct {
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		ID int `json:"id"`
	} `json:"weather"`
}

// Forecast returns the aggregated forecast for the next calendar day:
// min/max temperature and the most frequent condition code across the day's
// time slices, ties resolved toward the lower code.
func (c *Client) Forecast(ctx context.Context, language, userAgent string) (*Summary, error) {
	day := c.now().UTC().AddDate(0, 0, 1)
	cacheKey := utils.HashString(fmt.Sprintf("%s|%s", c.cityID, day.Format("2006-01-02")))

	if c.cache != nil {
		var cached Summary
		hit, err := c.cache.GetForecast(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("Forecast cache lookup failed", zap.Error(err))
		} else if hit {
			metrics.CacheHits.WithLabelValues("forecast").Inc()
			return &cached, nil
		}
		metrics.CacheMisses.WithLabelValues("forecast").Inc()
	}

	response, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*forecastResponse, error) {
		return c.fetch(ctx, language, userAgent)
	})
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}

	summary, err := aggregate(response.List, day)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetForecast(ctx, cacheKey, summary, c.cacheTTL); err != nil {
			logger.Warn("Failed to cache forecast", zap.Error(err))
		}
	}

	logger.Debug("Forecast aggregated",
		zap.String("day", day.Format("2006-01-02")),
		zap.Float64("temp_min", summary.TempMin),
		zap.Float64("temp_max", summary.TempMax),
		zap.Int("condition", summary.Condition),
	)

	return summary, nil
}

func (c *Client) fetch(ctx context.Context, language, userAgent string) (*forecastResponse, error) {
	params := url.Values{}
	params.Set("id", c.cityID)
	params.Set("units", "metric")
	params.Set("lang", language)
	params.Set("APPID", c.apiKey)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		fmt.Sprintf("%s/forecast?%s", c.baseURL, params.Encode()),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("forecast API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	return &response, nil
}

func aggregate(slices []forecastSlice, day time.Time) (*Summary, error) {
	var tempMin, tempMax *float64
	counts := make(map[int]int)

	for _, s := range slices {
		if time.Unix(s.Dt, 0).UTC().Format("2006-01-02") != day.Format("2006-01-02") {
			continue
		}

		min, max := s.Main.TempMin, s.Main.TempMax
		if tempMin == nil || min < *tempMin {
			tempMin = &min
		}
		if tempMax == nil || max > *tempMax {
			tempMax = &max
		}

		for _, condition := range s.Weather {
			counts[condition.ID]++
		}
	}

	if tempMin == nil {
		return nil, fmt.Errorf("no forecast data for %s", day.Format("2006-01-02"))
	}

	condition := 0
	best := -1
	for id, count := range counts {
		if count > best || (count == best && id < condition) {
			condition = id
			best = count
		}
	}

	return &Summary{TempMin: *tempMin, TempMax: *tempMax, Condition: condition}, nil
}
