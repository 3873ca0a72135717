package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aether-planner/internal/model"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-3-flash-preview"
)

// Config holds settings for the Gemini client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the Gemini generateContent API with JSON response schemas.
type Client struct {
	config Config
}

// NewClient creates a Gemini client with the given config.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{config: cfg}
}

// GeneratedTask is the slim task shape the model returns; identifiers, status
// and order are assigned by the caller.
type GeneratedTask struct {
	Title     string         `json:"title"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	Category  model.Category `json:"category"`
	Priority  model.Priority `json:"priority"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateTimetable asks the model to turn free-text goals into a structured
// day plan between the given bounds, folding in unfinished carry-over tasks.
func (c *Client) GenerateTimetable(ctx context.Context, userInput, dayStart, dayEnd string, carryOver []model.Task) ([]GeneratedTask, error) {
	carryOverContext := ""
	if len(carryOver) > 0 {
		titles := make([]string, 0, len(carryOver))
		for _, t := range carryOver {
			titles = append(titles, t.Title)
		}
		carryOverContext = fmt.Sprintf("IMPORTANT: The following tasks were not finished yesterday and MUST be included today: %s.", strings.Join(titles, ", "))
	}

	prompt := fmt.Sprintf(`Create a detailed daily timetable based on this input: %q.
The user wants to start their day at %s and end at %s.
%s
Organize the tasks logically, ensuring reasonable breaks and realistic durations.
Assign categories and priorities to each task.
Today is %s.`, userInput, dayStart, dayEnd, carryOverContext, time.Now().Format("2006-01-02"))

	schema := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"tasks": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"title":     map[string]any{"type": "STRING"},
						"startTime": map[string]any{"type": "STRING", "description": "Time in HH:mm format"},
						"endTime":   map[string]any{"type": "STRING", "description": "Time in HH:mm format"},
						"category":  map[string]any{"type": "STRING", "enum": []string{"Work", "Personal", "Health", "Leisure", "Other"}},
						"priority":  map[string]any{"type": "STRING", "enum": []string{"High", "Medium", "Low"}},
					},
					"required": []string{"title", "startTime", "endTime", "category", "priority"},
				},
			},
		},
		"required": []string{"tasks"},
	}

	var out struct {
		Tasks []GeneratedTask `json:"tasks"`
	}
	if err := c.generate(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// GenerateDayReview asks the model for a constructive reflection over the
// day's tasks and their final statuses.
func (c *Client) GenerateDayReview(ctx context.Context, tasks []model.Task) (*model.DayReview, error) {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", t.Title, t.Category, t.Status))
	}

	prompt := fmt.Sprintf(`Review the following day's tasks and provide a constructive summary:
%s

Format the response as JSON. Evaluate productivity, highlight key wins, and suggest improvements for tomorrow.`, strings.Join(lines, "\n"))

	schema := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"summary":             map[string]any{"type": "STRING"},
			"accomplishments":     map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"missedOpportunities": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"productivityScore":   map[string]any{"type": "NUMBER", "description": "Score from 0 to 100"},
			"tipsForTomorrow":     map[string]any{"type": "STRING"},
		},
		"required": []string{"summary", "accomplishments", "missedOpportunities", "productivityScore", "tipsForTomorrow"},
	}

	var review model.DayReview
	if err := c.generate(ctx, prompt, schema, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) generate(ctx context.Context, prompt string, schema map[string]any, out any) error {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("genai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.config.BaseURL, "/"), c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("genai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("genai: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("genai: read response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("genai: decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("genai: api error %s: %s", parsed.Error.Status, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("genai: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("genai: empty response")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("genai: decode generated JSON: %w", err)
	}
	return nil
}
