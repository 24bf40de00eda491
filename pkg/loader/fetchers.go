package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"indexo/pkg/store"
)

// StoreFetcher reads documents straight from an index store
type StoreFetcher struct {
	Store store.IndexStore
}

func (f StoreFetcher) FetchIndexDocument(ctx context.Context, id string) (FetchResult, error) {
	rec, err := f.Store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return FetchResult{Error: "Index file not found"}, nil
	}
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Success: true, Frames: rec.IndexData}, nil
}

// HTTPFetcher reads documents from a running server's index-data endpoint
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

type indexDataResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		IndexData json.RawMessage `json:"indexData"`
	} `json:"data"`
}

func (f HTTPFetcher) FetchIndexDocument(ctx context.Context, id string) (FetchResult, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := strings.TrimRight(f.BaseURL, "/") + "/api/index-data?id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, fmt.Errorf("read response: %w", err)
	}

	var decoded indexDataResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return FetchResult{Error: resp.Status}, nil
		}
		return FetchResult{}, fmt.Errorf("decode response: %w", err)
	}

	if !decoded.Success {
		reason := decoded.Error
		if reason == "" {
			reason = resp.Status
		}
		return FetchResult{Error: reason}, nil
	}
	return FetchResult{Success: true, Frames: decoded.Data.IndexData}, nil
}
