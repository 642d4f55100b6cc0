package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tripcraft/tripcraft/internal/logging"
)

const generateSystemPrompt = `You are a travel planning assistant. You respond with a single JSON object and nothing else. The object has a "days" array; each day has "day_number" (int, starting at 1), "date" (YYYY-MM-DD), "title" (string) and an "activities" array. Each activity has "time" (HH:MM or null), "title", "description", "location", "estimated_cost" (number, USD), "notes" (string or null) and "is_completed" (always false). Plan 4-6 activities per day.`

const refineSystemPrompt = `You are a travel planning assistant revising an existing itinerary. You respond with a single JSON object of the same shape as the itinerary you are given: a "days" array covering the full trip, with every day present even if unchanged. Apply only the changes the user asks for.`

// GroqGenerator talks to Groq's OpenAI-compatible chat completion API.
type GroqGenerator struct {
	client *openai.Client
	model  string
	logger logging.Logger
}

func NewGroqGenerator(apiKey, model, baseURL string, logger logging.Logger) *GroqGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (g *GroqGenerator) GenerateItinerary(ctx context.Context, params GenerateParams) (*Itinerary, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a %d-day trip to %s, from %s to %s.\n",
		params.NumDays, params.Destination, params.StartDate, params.EndDate)
	if params.Budget != nil {
		fmt.Fprintf(&b, "Total budget: %.0f USD.\n", *params.Budget)
	}
	if params.BudgetTier != nil {
		fmt.Fprintf(&b, "Budget tier: %s.\n", *params.BudgetTier)
	}
	if params.TravelStyle != nil {
		fmt.Fprintf(&b, "Travel style: %s.\n", *params.TravelStyle)
	}
	if len(params.Interests) > 0 {
		fmt.Fprintf(&b, "Interests: %s.\n", strings.Join(params.Interests, ", "))
	}
	if params.SpecialRequirements != nil {
		fmt.Fprintf(&b, "Special requirements: %s.\n", *params.SpecialRequirements)
	}

	return g.complete(ctx, generateSystemPrompt, b.String())
}

func (g *GroqGenerator) RefineItinerary(ctx context.Context, current *Itinerary, request string, trip TripContext) (*Itinerary, error) {
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("marshal current itinerary: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Trip: %d days in %s.\n", trip.NumDays, trip.Destination)
	if trip.Budget != nil {
		fmt.Fprintf(&b, "Budget: %.0f USD.\n", *trip.Budget)
	}
	if trip.TravelStyle != nil {
		fmt.Fprintf(&b, "Travel style: %s.\n", *trip.TravelStyle)
	}
	if len(trip.Interests) > 0 {
		fmt.Fprintf(&b, "Interests: %s.\n", strings.Join(trip.Interests, ", "))
	}
	fmt.Fprintf(&b, "\nCurrent itinerary:\n%s\n\nRequested change: %s\n", currentJSON, request)

	return g.complete(ctx, refineSystemPrompt, b.String())
}

func (g *GroqGenerator) complete(ctx context.Context, system, user string) (*Itinerary, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	itinerary, err := parseItinerary(content)
	if err != nil {
		g.logger.Warn(ctx, "unparseable model output", "model", g.model, "error", err.Error())
		return nil, err
	}
	return itinerary, nil
}

// parseItinerary extracts the itinerary JSON from a model reply. Models
// routinely wrap the object in a markdown code fence or surround it with
// prose, so parsing is anchored on the outermost braces.
func parseItinerary(content string) (*Itinerary, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var itinerary Itinerary
	if err := json.Unmarshal([]byte(content[start:end+1]), &itinerary); err != nil {
		return nil, fmt.Errorf("decode itinerary: %w", err)
	}
	if len(itinerary.Days) == 0 {
		return nil, fmt.Errorf("itinerary has no days")
	}
	return &itinerary, nil
}
