package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/tas33n/DroidWright/internal/action"
)

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("gemini API key is required")

// GeminiConfig configures the Gemini source.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	Temperature       float32 `mapstructure:"temperature"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
}

// generator is the slice of the genai client the source uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSource plans with a Gemini model, asking for a JSON reply.
type GeminiSource struct {
	models  generator
	cfg     GeminiConfig
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewGemini creates a source backed by the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig, log zerolog.Logger) (*GeminiSource, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(client.Models, cfg, log), nil
}

func newGemini(models generator, cfg GeminiConfig, log zerolog.Logger) *GeminiSource {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &GeminiSource{
		models:  models,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// Plan implements Source.
func (g *GeminiSource) Plan(ctx context.Context, task string) ([]action.Action, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{genai.NewContentFromText("Task: "+task, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr(g.cfg.Temperature),
		})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	text := resp.Text()
	g.log.Debug().Str("model", g.cfg.Model).Dur("duration", time.Since(start)).Int("chars", len(text)).Msg("plan received")
	if text == "" {
		return nil, fmt.Errorf("%w: gemini returned no text", ErrNoPlan)
	}
	return ParsePlan(text)
}
