package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"questlog/config"
	"questlog/internal/apperrors"
	"questlog/internal/database"
	"questlog/internal/types"
	"questlog/pkg/logger"
)

const (
	CATALOG_SEARCH_CACHE_PREFIX = "catalog_search"
	CATALOG_SEARCH_CACHE_EXPIRY = 6 * time.Hour
	CATALOG_SEARCH_PAGE_SIZE    = 20
)

// CatalogService queries the external game catalog for metadata lookups.
// Results are cached aggressively since catalog data changes rarely.
type CatalogService struct {
	log        logger.Logger
	httpClient *http.Client
	cache      database.CacheClient
	baseURL    string
	apiKey     string
}

func NewCatalogService(cfg config.Config, db database.DB) *CatalogService {
	return &CatalogService{
		log: logger.New("CatalogService"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache:   db.Cache.General,
		baseURL: cfg.CatalogBaseURL,
		apiKey:  cfg.CatalogAPIKey,
	}
}

// Enabled reports whether catalog lookups are configured. The rest of the
// application works without a catalog; search endpoints return upstream
// failures when it is absent.
func (s *CatalogService) Enabled() bool {
	return s.baseURL != "" && s.apiKey != ""
}

// Search queries the catalog for games matching the given text. Page is
// 1-based.
func (s *CatalogService) Search(
	ctx context.Context,
	query string,
	page int,
) (*types.CatalogSearchResponse, error) {
	log := s.log.TraceFromContext(ctx).Function("Search")

	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", apperrors.ErrValidation)
	}
	if page < 1 {
		page = 1
	}

	if !s.Enabled() {
		return nil, fmt.Errorf("%w: catalog is not configured", apperrors.ErrUpstream)
	}

	cacheKey := query + ":" + strconv.Itoa(page)

	var cached types.CatalogSearchResponse
	found, err := database.NewCacheBuilder(s.cache, cacheKey).
		WithContext(ctx).
		WithHash(CATALOG_SEARCH_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get catalog results from cache", "query", query, "error", err)
	}
	if found {
		return &cached, nil
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("search", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(CATALOG_SEARCH_PAGE_SIZE))

	requestURL := s.baseURL + "/games?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, log.Err("failed to create catalog request", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("catalog request failed", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "query", query)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close catalog response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, log.Err(
			"catalog returned non-OK status",
			fmt.Errorf("%w: catalog status %d", apperrors.ErrUpstream, resp.StatusCode),
			"statusCode", resp.StatusCode,
			"query", query,
		)
	}

	var result types.CatalogSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, log.Err("failed to decode catalog response", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}

	if err := database.NewCacheBuilder(s.cache, cacheKey).
		WithContext(ctx).
		WithHash(CATALOG_SEARCH_CACHE_PREFIX).
		WithStruct(result).
		WithTTL(CATALOG_SEARCH_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to cache catalog results", "query", query, "error", err)
	}

	log.Debug("Catalog search completed", "query", query, "count", result.Count)
	return &result, nil
}

// GetGame fetches a single catalog entry by its catalog ID.
func (s *CatalogService) GetGame(ctx context.Context, catalogID int64) (*types.CatalogGame, error) {
	log := s.log.TraceFromContext(ctx).Function("GetGame")

	if !s.Enabled() {
		return nil, fmt.Errorf("%w: catalog is not configured", apperrors.ErrUpstream)
	}

	params := url.Values{}
	params.Set("key", s.apiKey)

	requestURL := s.baseURL + "/games/" + strconv.FormatInt(catalogID, 10) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, log.Err("failed to create catalog request", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("catalog request failed", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "catalogID", catalogID)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close catalog response body", "error", closeErr)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: catalog game %d", apperrors.ErrNotFound, catalogID)
	default:
		return nil, log.Err(
			"catalog returned non-OK status",
			fmt.Errorf("%w: catalog status %d", apperrors.ErrUpstream, resp.StatusCode),
			"statusCode", resp.StatusCode,
			"catalogID", catalogID,
		)
	}

	var game types.CatalogGame
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, log.Err("failed to decode catalog game", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}

	return &game, nil
}
