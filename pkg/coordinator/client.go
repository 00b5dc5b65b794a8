package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"questlog/internal/apperrors"
	"questlog/internal/models"
	"questlog/pkg/logger"
)

// Client is an HTTP Store implementation. It carries the credential
// explicitly; nothing is read from ambient state.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.New("coordinatorClient"),
	}
}

func (c *Client) List(ctx context.Context) ([]Game, error) {
	var games []Game
	if err := c.do(ctx, http.MethodGet, "/api/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) Create(ctx context.Context, request models.GameCreateRequest) (*Game, error) {
	var game Game
	if err := c.do(ctx, http.MethodPost, "/api/games", request, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) Update(
	ctx context.Context,
	id string,
	request models.GameUpdateRequest,
) (*Game, error) {
	var game Game
	if err := c.do(ctx, http.MethodPatch, "/api/games/"+id, request, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/games/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	log := c.log.Function("do")

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return log.Err("failed to marshal request body", err, "path", path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return log.Err("failed to create request", err, "path", path)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUpstream, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if err := statusToError(resp.StatusCode); err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding response: %w", apperrors.ErrUpstream, err)
	}

	return nil
}

func statusToError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: server rejected request", apperrors.ErrValidation)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: server rejected credential", apperrors.ErrUnauthorized)
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	default:
		return fmt.Errorf("%w: server returned status %d", apperrors.ErrUpstream, status)
	}
}
