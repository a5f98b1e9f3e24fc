package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

type GeminiChatParts struct {
	Text string `json:"text"`
}

type GeminiChatContent struct {
	Parts []*GeminiChatParts `json:"parts"`
	Role  string             `json:"role"`
}

type GeminiChatRequest struct {
	Contents          []*GeminiChatContent `json:"contents"`
	SystemInstruction *GeminiChatContent   `json:"system_instruction,omitempty"`
}

type GeminiChatCandidate struct {
	Content *GeminiChatContent `json:"content"`
}

type GeminiChatResponse struct {
	Candidates []*GeminiChatCandidate `json:"candidates"`
}

// ChatHistory is one prior turn, already in Gemini role vocabulary
// ("user" or "model").
type ChatHistory struct {
	Chat string
	Role string
}

// StreamCallback receives each text chunk as it arrives.
type StreamCallback func(chunk string) error

type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return NewGeminiClientWithBaseURL(apiKey, defaultBaseURL)
}

func NewGeminiClientWithBaseURL(apiKey, baseURL string) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   defaultModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *GeminiClient) buildRequest(systemPrompt string, chatHistories []*ChatHistory, prompt string) *GeminiChatRequest {
	chatContents := make([]*GeminiChatContent, 0, len(chatHistories)+1)
	for _, chatHistory := range chatHistories {
		chatContents = append(chatContents, &GeminiChatContent{
			Parts: []*GeminiChatParts{{Text: chatHistory.Chat}},
			Role:  chatHistory.Role,
		})
	}
	chatContents = append(chatContents, &GeminiChatContent{
		Parts: []*GeminiChatParts{{Text: prompt}},
		Role:  "user",
	})

	payload := &GeminiChatRequest{Contents: chatContents}
	if systemPrompt != "" {
		payload.SystemInstruction = &GeminiChatContent{
			Parts: []*GeminiChatParts{{Text: systemPrompt}},
		}
	}
	return payload
}

// GetGeminiResponse performs a single non-streaming completion.
func (c *GeminiClient) GetGeminiResponse(
	ctx context.Context,
	systemPrompt string,
	chatHistories []*ChatHistory,
	prompt string,
) (string, error) {
	payloadJson, err := json.Marshal(c.buildRequest(systemPrompt, chatHistories, prompt))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes GeminiChatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}

// StreamGeminiResponse streams a completion, invoking callback once per
// text chunk in arrival order. A callback error aborts the stream.
func (c *GeminiClient) StreamGeminiResponse(
	ctx context.Context,
	systemPrompt string,
	chatHistories []*ChatHistory,
	prompt string,
	callback StreamCallback,
) error {
	payloadJson, err := json.Marshal(c.buildRequest(systemPrompt, chatHistories, prompt))
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		resBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	reader := bufio.NewReader(res.Body)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read stream: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		var chunkRes GeminiChatResponse
		if err := json.Unmarshal([]byte(data), &chunkRes); err != nil {
			continue
		}
		if len(chunkRes.Candidates) == 0 || chunkRes.Candidates[0].Content == nil {
			continue
		}
		for _, part := range chunkRes.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			if err := callback(part.Text); err != nil {
				return err
			}
		}
	}
}

func (c *GeminiClient) setHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
