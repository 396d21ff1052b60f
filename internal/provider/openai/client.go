package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pathmentor/learning-app/internal/config"
	"pathmentor/learning-app/internal/provider"

	"github.com/sirupsen/logrus"
)

// Client talks to the OpenAI Responses API and implements
// provider.CurriculumProvider. All curriculum output is requested as a
// strict json_schema structured response and decoded with unknown fields
// disallowed, so a malformed or off-contract reply surfaces as an error
// instead of being scraped out of free text.
type Client struct {
	log        *logrus.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

var _ provider.CurriculumProvider = (*Client)(nil)

// NewClient builds a client from configuration. The API key is required.
func NewClient(cfg config.OpenAIConfig, log *logrus.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai: missing API key")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		log:        log,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model       string    `json:"model"`
	Input       []message `json:"input"`
	Temperature float64   `json:"temperature,omitempty"`
	Text        struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitzero"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text"`
			Refusal string `json:"refusal"`
		} `json:"content"`
	} `json:"output"`
}

func (c *Client) doOnce(ctx context.Context, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}

		if attempt == c.maxRetries || !isRetryable(err) {
			return err
		}

		c.log.WithFields(logrus.Fields{
			"path":    path,
			"attempt": attempt + 1,
			"sleep":   backoff.String(),
		}).WithError(err).Warn("openai request retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func isRetryable(err error) bool {
	var he *httpError
	if errors.As(err, &he) {
		return he.StatusCode == http.StatusTooManyRequests || he.StatusCode >= 500
	}
	// Transport-level failures are worth another attempt.
	return true
}

func extractOutputText(resp responsesResponse) (text string, refusal string) {
	var sb strings.Builder
	for _, out := range resp.Output {
		if out.Type != "message" {
			continue
		}
		for _, content := range out.Content {
			switch content.Type {
			case "output_text":
				sb.WriteString(content.Text)
			case "refusal":
				refusal = content.Refusal
			}
		}
	}
	return sb.String(), refusal
}

// generateJSON performs a structured-output request and decodes the result
// strictly into out.
func (c *Client) generateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any, out any) error {
	req := responsesRequest{
		Model: c.model,
		Input: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, "/v1/responses", req, &resp); err != nil {
		return err
	}

	text, refusal := extractOutputText(resp)
	if refusal != "" {
		return fmt.Errorf("openai: model refused: %s", refusal)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("openai: empty response")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("openai: response did not match schema %s: %w", schemaName, err)
	}
	return nil
}

// GenerateCurriculum asks the model for a 4-8 week structured curriculum.
func (c *Client) GenerateCurriculum(ctx context.Context, profile provider.Profile) (*provider.CurriculumDraft, error) {
	goals := profile.Goals
	if goals == "" {
		goals = "Not specified"
	}

	user := fmt.Sprintf(`Create a comprehensive, personalized learning path for the topic: %q

User Profile:
- Experience Level: %s
- Time Commitment: %s
- Learning Goals: %s

Create 4-8 weekly goals depending on the complexity of the topic and the
time commitment. Each week needs clear learning objectives, an estimated
time commitment in hours, and a deadline in ISO-8601 format. Make the plan
progressive, practical, realistic, and engaging.`,
		profile.Topic, profile.ExperienceLevel, profile.EffortBand, goals)

	var draft provider.CurriculumDraft
	err := c.generateJSON(ctx,
		"You are an expert learning path creator. Create detailed, practical learning paths with specific objectives and deadlines.",
		user, "curriculum", curriculumSchema, &draft)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// GenerateRecommendations asks the model for 3-5 actionable next steps
// based on the learner's progress.
func (c *Client) GenerateRecommendations(ctx context.Context, progress provider.ProgressContext) ([]string, error) {
	completed := "None"
	if len(progress.CompletedItems) > 0 {
		completed = strings.Join(progress.CompletedItems, ", ")
	}
	challenges := progress.Challenges
	if challenges == "" {
		challenges = "None"
	}

	user := fmt.Sprintf(`Based on the following learning progress, provide 3-5 specific, actionable recommendations to help the learner continue their journey:

Topic: %s
Current Progress: %s
Completed Items: %s
Challenges Faced: %s

Address any challenges mentioned, build upon completed items, suggest next
logical steps, and consider the learner's current level.`,
		progress.Topic, progress.CurrentStatus, completed, challenges)

	var out struct {
		Recommendations []string `json:"recommendations"`
	}
	err := c.generateJSON(ctx,
		"You are an expert learning mentor. Provide specific, actionable recommendations based on learner progress.",
		user, "recommendations", recommendationsSchema, &out)
	if err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

var curriculumSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"topic", "total_weeks", "weekly_goals"},
	"properties": map[string]any{
		"topic":       map[string]any{"type": "string"},
		"total_weeks": map[string]any{"type": "integer"},
		"weekly_goals": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"week_number", "title", "description", "objectives", "estimated_hours", "deadline"},
				"properties": map[string]any{
					"week_number":     map[string]any{"type": "integer"},
					"title":           map[string]any{"type": "string"},
					"description":     map[string]any{"type": "string"},
					"objectives":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"estimated_hours": map[string]any{"type": "number"},
					"deadline":        map[string]any{"type": "string"},
				},
			},
		},
	},
}

var recommendationsSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"recommendations"},
	"properties": map[string]any{
		"recommendations": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}
