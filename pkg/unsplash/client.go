package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.unsplash.com"

type Photo struct {
	Id          string `json:"id"`
	Description string `json:"description"`
	Urls        struct {
		Raw     string `json:"raw"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
}

type SearchResponse struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []Photo `json:"results"`
}

type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

func NewClient(accessKey string) *Client {
	return NewClientWithBaseURL(accessKey, defaultBaseURL)
}

func NewClientWithBaseURL(accessKey, baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SearchPhotos queries the photo search endpoint. perPage is clamped to
// the API maximum of 30.
func (c *Client) SearchPhotos(ctx context.Context, query string, perPage int) (*SearchResponse, error) {
	if perPage <= 0 || perPage > 30 {
		perPage = 30
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/search/photos?"+params.Encode(),
		nil,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var searchRes SearchResponse
	if err := json.Unmarshal(resBody, &searchRes); err != nil {
		return nil, err
	}
	return &searchRes, nil
}
