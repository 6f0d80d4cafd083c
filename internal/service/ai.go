package service

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

	"dropskills/internal/model"
)

// AIService talks to an OpenAI-compatible chat completions endpoint.
type AIService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewAIService(baseURL, apiKey, model string, timeout time.Duration) *AIService {
	return &AIService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *AIService) Configured() bool { return s != nil && s.apiKey != "" }
func (s *AIService) Model() string    { return s.model }

// ChatOptions overrides the defaults of one completion call.
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *AIService) doChat(ctx context.Context, opts ChatOptions, messages []chatMessage, stream bool, flush func(string)) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	modelName := opts.Model
	if modelName == "" {
		modelName = s.model
	}
	body := map[string]interface{}{
		"model":    modelName,
		"stream":   stream,
		"messages": messages,
	}
	if opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: llm call: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: llm status %d: %s", ErrUpstream, resp.StatusCode, data)
	}

	if !stream {
		var result struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
		}
		if len(result.Choices) == 0 {
			return "", fmt.Errorf("%w: empty choices", ErrUpstream)
		}
		return result.Choices[0].Message.Content, nil
	}

	scanner := bufio.NewScanner(resp.Body)
	var full strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := line[6:]
		if data == "[DONE]" {
			break
		}
		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if json.Unmarshal([]byte(data), &chunk) == nil && len(chunk.Choices) > 0 {
			token := chunk.Choices[0].Delta.Content
			if token != "" {
				full.WriteString(token)
				if flush != nil {
					flush(token)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("%w: read stream: %v", ErrUpstream, err)
	}
	return full.String(), nil
}

// Complete runs a single system + user exchange.
func (s *AIService) Complete(ctx context.Context, system, user string) (string, error) {
	return s.CompleteWith(ctx, ChatOptions{}, system, user)
}

func (s *AIService) CompleteWith(ctx context.Context, opts ChatOptions, system, user string) (string, error) {
	msgs := []chatMessage{{Role: "user", Content: user}}
	if system != "" {
		msgs = append([]chatMessage{{Role: "system", Content: system}}, msgs...)
	}
	return s.doChat(ctx, opts, msgs, false, nil)
}

// StreamChat streams an answer to user, given a system prompt and the
// previous turns of the conversation.
func (s *AIService) StreamChat(ctx context.Context, system string, history []model.HistoryItem, user string, flush func(string)) (string, error) {
	msgs := []chatMessage{{Role: "system", Content: system}}
	for _, h := range history {
		msgs = append(msgs, chatMessage{Role: h.Role, Content: h.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: user})
	return s.doChat(ctx, ChatOptions{}, msgs, true, flush)
}

// extractJSON cuts the outermost JSON object or array out of an LLM reply,
// dropping prose and code fences around it.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > start {
		return s[start : end+1]
	}
	return s[start:]
}

// BuildHistory keeps the last maxPairs user/assistant exchanges.
func BuildHistory(items []model.HistoryItem, maxPairs int) []model.HistoryItem {
	if max := maxPairs * 2; len(items) > max {
		items = items[len(items)-max:]
	}
	out := make([]model.HistoryItem, 0, len(items))
	for _, m := range items {
		if m.Role == "user" || m.Role == "assistant" {
			out = append(out, m)
		}
	}
	return out
}
