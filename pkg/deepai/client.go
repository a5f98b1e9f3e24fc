package deepai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.deepai.org"

type GenerateResponse struct {
	Id        string `json:"id"`
	OutputUrl string `json:"output_url"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GenerateImage submits a text-to-image job and returns the hosted
// output url once rendering completes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*GenerateResponse, error) {
	form := url.Values{}
	form.Set("text", prompt)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/text2img",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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

	var generateRes GenerateResponse
	if err := json.Unmarshal(resBody, &generateRes); err != nil {
		return nil, err
	}
	if generateRes.OutputUrl == "" {
		return nil, fmt.Errorf("empty output url in response %s", string(resBody))
	}
	return &generateRes, nil
}
