package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultEndpoint = "https://api.anthropic.com/v1/messages"

// AnthropicSummarizer uses the Anthropic Messages API to describe document
// changes. A missing API key is a normal configuration, not an error: every
// failure path resolves to a sentinel string.
type AnthropicSummarizer struct {
	apiKey           string
	model            string
	maxTokens        int
	maxContentChars  int
	maxPreviousChars int
	endpoint         string
	client           *http.Client
}

func NewAnthropicSummarizer(apiKey, model string, maxTokens, maxContentChars, maxPreviousChars int) *AnthropicSummarizer {
	return &AnthropicSummarizer{
		apiKey:           apiKey,
		model:            model,
		maxTokens:        maxTokens,
		maxContentChars:  maxContentChars,
		maxPreviousChars: maxPreviousChars,
		endpoint:         defaultEndpoint,
		client:           &http.Client{Timeout: 120 * time.Second},
	}
}

// Anthropic API request/response types

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, req Request) string {
	if s.apiKey == "" {
		if req.HasPrevious {
			return FallbackUpdate
		}
		return FallbackFirstObservation
	}

	text, err := s.callAPI(ctx, s.buildPrompt(req))
	if err != nil {
		log.Printf("Summarizer degraded for %s: %v", req.URL, err)
		return FallbackFailed
	}

	text = strings.TrimSpace(stripFences(text))
	if text == "" {
		return FallbackFailed
	}
	return text
}

func (s *AnthropicSummarizer) buildPrompt(req Request) string {
	content := truncate(req.Content, s.maxContentChars)

	var sb strings.Builder
	sb.WriteString("You are monitoring AI platform terms and government AI policy pages for material changes.\n\n")

	if !req.HasPrevious {
		sb.WriteString(fmt.Sprintf("This is the first captured version of %q (%s). ", req.SourceName, req.URL))
		sb.WriteString("Write a 2-3 sentence plain-English summary of what this document covers, noting anything a compliance reviewer should be aware of.\n\n")
		sb.WriteString("Document content:\n")
		sb.WriteString(content)
	} else {
		previous := truncate(req.Previous, s.maxPreviousChars)
		sb.WriteString(fmt.Sprintf("The document %q (%s) has changed since the last check. ", req.SourceName, req.URL))
		sb.WriteString("Compare the two versions and describe the material changes in 2-4 plain-English sentences, ignoring formatting and boilerplate. If a change creates a new obligation, call it out.\n\n")
		sb.WriteString("Previous version:\n")
		sb.WriteString(previous)
		sb.WriteString("\n\nCurrent version:\n")
		sb.WriteString(content)
	}

	sb.WriteString("\n\nRespond with the summary text only, no preamble.")
	return sb.String()
}

func (s *AnthropicSummarizer) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("anthropic: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("anthropic: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: failed to read response: %w", err)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("anthropic: failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("anthropic: API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}

	return apiResp.Content[0].Text, nil
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return s
}
