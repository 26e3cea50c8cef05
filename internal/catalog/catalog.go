// Package catalog is a thin proxy to the TMDB API. It injects the server's
// API key and locale into every call and hands the upstream body back
// untouched.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/arrowflix/internal/apperror"
	"github.com/patric-chuzhbe/arrowflix/internal/logger"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
)

// Client-facing messages for failed upstream calls.
const (
	MsgTrendingFailed = "Failed to fetch trending"
	MsgTopRatedFailed = "Failed to fetch top rated"
	MsgGenreFailed    = "Failed to fetch genre"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
	DefaultTimeout  = 10 * time.Second
)

type upstreamRecorder interface {
	UpstreamRequest(endpoint, outcome string)
}

// Client wraps a resty client bound to one TMDB base URL and API key.
type Client struct {
	http     *resty.Client
	recorder upstreamRecorder
}

type options struct {
	baseURL  string
	language string
	timeout  time.Duration
	recorder upstreamRecorder
}

type Option func(*options)

func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

func WithLanguage(language string) Option {
	return func(o *options) {
		o.language = language
	}
}

// WithTimeout bounds each upstream call. Non-positive values keep DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRecorder attaches a metrics recorder for upstream outcomes.
func WithRecorder(recorder upstreamRecorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// New creates a catalog client authenticating with apiKey.
func New(apiKey string, optionsProto ...Option) *Client {
	opts := &options{
		baseURL:  DefaultBaseURL,
		language: DefaultLanguage,
		timeout:  DefaultTimeout,
		recorder: nopRecorder{},
	}
	for _, protoOption := range optionsProto {
		protoOption(opts)
	}

	httpClient := resty.New().
		SetBaseURL(opts.baseURL).
		SetTimeout(opts.timeout).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"api_key":  apiKey,
			"language": opts.language,
		})

	return &Client{
		http:     httpClient,
		recorder: opts.recorder,
	}
}

// Trending returns this week's trending titles of all media types.
func (c *Client) Trending(ctx context.Context) (models.CatalogPage, error) {
	return c.get(ctx, "trending", "/trending/all/week", nil, MsgTrendingFailed)
}

// TopRated returns the top rated movies.
func (c *Client) TopRated(ctx context.Context) (models.CatalogPage, error) {
	return c.get(ctx, "top_rated", "/movie/top_rated", nil, MsgTopRatedFailed)
}

// ByGenre returns movies of genreID ordered by popularity.
func (c *Client) ByGenre(ctx context.Context, genreID int) (models.CatalogPage, error) {
	return c.get(
		ctx,
		"genre",
		"/discover/movie",
		map[string]string{
			"with_genres": strconv.Itoa(genreID),
			"sort_by":     "popularity.desc",
		},
		MsgGenreFailed,
	)
}

func (c *Client) get(
	ctx context.Context,
	endpoint string,
	path string,
	queryParams map[string]string,
	failureMessage string,
) (models.CatalogPage, error) {
	response, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams).
		Get(path)
	if err != nil {
		logger.Log.Debugln("Error calling the `c.http.R().Get()`: ", zap.String("endpoint", endpoint), zap.Error(err))
		c.recorder.UpstreamRequest(endpoint, "error")
		return nil, apperror.NewUpstream(
			failureMessage,
			fmt.Errorf("in internal/catalog/catalog.go/get(): error while `c.http.R().Get()` calling: %w", err),
		)
	}

	if !response.IsSuccess() {
		logger.Log.Debugln(
			"Unexpected catalog upstream status: ",
			zap.String("endpoint", endpoint),
			zap.Int("status", response.StatusCode()),
		)
		c.recorder.UpstreamRequest(endpoint, "failure")
		return nil, apperror.NewUpstream(
			failureMessage,
			fmt.Errorf("catalog upstream %s responded with status %d", endpoint, response.StatusCode()),
		)
	}

	c.recorder.UpstreamRequest(endpoint, "success")

	return models.CatalogPage(response.Body()), nil
}

type nopRecorder struct{}

func (nopRecorder) UpstreamRequest(string, string) {}
