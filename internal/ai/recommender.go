// Package ai asks a hosted language model for a run recommendation. Any
// failure here is recoverable: the orchestrator falls back to the
// rule-based analyzer.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joshdurbin/runcoach/internal/logging"
	"github.com/joshdurbin/runcoach/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
)

const (
	requestTimeout = 30 * time.Second

	// Low temperature keeps the structured output parseable.
	temperature = 0.2

	dailyMaxTokens  = 200
	weeklyMaxTokens = 150
)

// ErrMalformedResponse indicates the model reply could not be parsed into
// a recommendation.
var ErrMalformedResponse = fmt.Errorf("malformed model response")

// Recommender calls an OpenAI-compatible chat completion endpoint.
type Recommender struct {
	client openai.Client
	model  string
}

// New creates a Recommender against the given base URL (OpenRouter by
// default) and model.
func New(apiKey, model, baseURL string) *Recommender {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(requestTimeout),
		option.WithHeader("HTTP-Referer", "https://github.com/joshdurbin/runcoach"),
		option.WithHeader("X-Title", "runcoach"),
	)
	return &Recommender{client: client, model: model}
}

// DailyRecommendation sends one chat completion request and parses a
// structured recommendation from the reply.
func (r *Recommender) DailyRecommendation(ctx context.Context, activities []models.Activity, rc models.Context) (*models.Recommendation, error) {
	content, err := r.complete(ctx, dailySystemPrompt, DailyPrompt(activities, rc), dailyMaxTokens)
	if err != nil {
		return nil, err
	}

	rec, err := parseRecommendation(content)
	if err != nil {
		return nil, err
	}

	rec.Source = models.SourceAI
	rec.Model = r.model

	if logging.IsTraceEnabled() {
		logging.Logger.Debug().Str("recommendation", logging.ToJSON(rec)).Msg("parsed recommendation")
	}
	return rec, nil
}

// WeeklyInsights asks the model for three pattern insights.
func (r *Recommender) WeeklyInsights(ctx context.Context, activities []models.Activity) ([]string, error) {
	content, err := r.complete(ctx, weeklySystemPrompt, WeeklyPrompt(activities), weeklyMaxTokens)
	if err != nil {
		return nil, err
	}

	doc := extractJSON(content)
	insights := gjson.Get(doc, "insights")
	if !insights.IsArray() {
		return nil, fmt.Errorf("%w: missing insights array", ErrMalformedResponse)
	}

	var out []string
	for _, item := range insights.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty insights array", ErrMalformedResponse)
	}
	return out, nil
}

func (r *Recommender) complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if logging.IsTraceEnabled() {
		logging.Logger.Debug().Str("model", r.model).Str("content", content).Msg("model response")
	}
	return content, nil
}

// parseRecommendation extracts the structured recommendation fields from
// the model reply. Missing required fields make the reply malformed.
func parseRecommendation(content string) (*models.Recommendation, error) {
	doc := extractJSON(content)
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedResponse)
	}

	timeOfDay := gjson.Get(doc, "time").String()
	duration := gjson.Get(doc, "duration").Int()
	intensity := gjson.Get(doc, "intensity").String()
	insight := gjson.Get(doc, "insight").String()
	motivation := gjson.Get(doc, "motivation").String()

	if timeOfDay == "" || duration <= 0 || intensity == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrMalformedResponse)
	}

	route := gjson.Get(doc, "route").String()
	if route == "" {
		route = "your usual neighborhood loop"
	}

	return &models.Recommendation{
		TimeOfDay:       timeOfDay,
		DurationMinutes: int(duration),
		Intensity:       intensity,
		RouteHint:       route,
		Insight:         insight,
		Motivation:      motivation,
	}, nil
}

// extractJSON strips markdown fences and any prose around the outermost
// JSON object or array.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}
