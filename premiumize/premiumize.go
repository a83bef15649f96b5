package premiumize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcus-crane/premiumize-addon/utils"
)

const (
	folderListEndpoint   = "/folder/list?apikey={apiKey}&id={folderId}"
	folderSearchEndpoint = "/folder/search?apikey={apiKey}&q={query}"
	itemDetailsEndpoint  = "/item/details?apikey={apiKey}&id={itemId}"

	TypeFile   = "file"
	TypeFolder = "folder"

	statusSuccess = "success"
	statusError   = "error"
)

// ErrNotFound is returned for an empty item or an error envelope saying the target doesn't exist.
var ErrNotFound = errors.New("premiumize: item not found")

// APIError carries the message from a Premiumize error envelope. Only "not found"
// messages match ErrNotFound, anything else (auth, quota) is an upstream failure.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("premiumize: %s", e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && strings.Contains(strings.ToLower(e.Message), "not found")
}

type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int64  `json:"size,omitempty"`
	Link       string `json:"link,omitempty"`
	DirectLink string `json:"directlink,omitempty"`
	StreamLink string `json:"stream_link,omitempty"`
}

func (i Item) IsFile() bool {
	return i.Type == TypeFile
}

func (i Item) IsFolder() bool {
	return i.Type == TypeFolder
}

// PlayableURL picks the best link Premiumize gave us, preferring the transcoded stream.
func (i Item) PlayableURL() string {
	for _, link := range []string{i.StreamLink, i.Link, i.DirectLink} {
		if link != "" {
			return link
		}
	}
	return ""
}

type FolderResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Content  []Item `json:"content"`
	Name     string `json:"name,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	FolderID string `json:"folder_id,omitempty"`
}

type detailsResponse struct {
	Item
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    "https://www.premiumize.me/api",
		HTTPClient: utils.NewHTTPClient(10 * time.Second),
	}
}

func (c *Client) buildUrl(endpoint string, params map[string]string) string {
	params["apiKey"] = c.APIKey
	return c.BaseURL + utils.FillTemplate(endpoint, params)
}

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildUrl(endpoint, params), nil)
	if err != nil {
		return fmt.Errorf("failed to build premiumize request: %w", redactURL(err))
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to contact premiumize: %w", redactURL(err))
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read premiumize response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("premiumize responded with status %d", res.StatusCode)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode premiumize response: %w", err)
	}
	return nil
}

// redactURL drops the request URL from transport errors as it carries the api key.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

// ListFolder returns the immediate children of folderID. An empty folderID is the account root.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]Item, error) {
	var folder FolderResponse
	if err := c.get(ctx, folderListEndpoint, map[string]string{"folderId": folderID}, &folder); err != nil {
		return nil, err
	}
	if folder.Status == statusError {
		return nil, &APIError{Message: folder.Message}
	}
	if folder.Content == nil {
		return []Item{}, nil
	}
	return folder.Content, nil
}

func (c *Client) ItemDetails(ctx context.Context, itemID string) (Item, error) {
	var details detailsResponse
	if err := c.get(ctx, itemDetailsEndpoint, map[string]string{"itemId": itemID}, &details); err != nil {
		return Item{}, err
	}
	if details.Status == statusError {
		return Item{}, &APIError{Message: details.Message}
	}
	if details.ID == "" {
		return Item{}, ErrNotFound
	}
	return details.Item, nil
}

// SearchFolder runs a fuzzy search over the whole account and returns only the first hit.
// A nil item with a nil error means nothing matched.
func (c *Client) SearchFolder(ctx context.Context, query string) (*Item, error) {
	var results FolderResponse
	if err := c.get(ctx, folderSearchEndpoint, map[string]string{"query": query}, &results); err != nil {
		return nil, err
	}
	if results.Status == statusError {
		return nil, &APIError{Message: results.Message}
	}
	if results.Status != statusSuccess || len(results.Content) == 0 {
		slog.Debug("Premiumize search had no results",
			slog.String("query", query),
			slog.String("status", results.Status),
		)
		return nil, nil
	}
	return &results.Content[0], nil
}
