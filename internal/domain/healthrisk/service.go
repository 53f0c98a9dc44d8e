package healthrisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
	"github.com/yanqian/aqi-health/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/aqi-health/pkg/errors"
)

// Service scores assessments and keeps a per-subject history.
type Service interface {
	Assess(ctx context.Context, req AssessRequest) (Assessment, error)
	Latest(ctx context.Context, subject string) (Assessment, error)
	Get(ctx context.Context, id string) (Assessment, error)
	History(ctx context.Context, subject string, limit int) ([]Assessment, error)
}

// ChatClient generates free-form insights. A nil client disables them.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Repository persists assessments.
type Repository interface {
	Save(ctx context.Context, assessment Assessment) error
	Latest(ctx context.Context, subject string) (Assessment, bool, error)
	Get(ctx context.Context, id string) (Assessment, bool, error)
	List(ctx context.Context, subject string, limit int) ([]Assessment, error)
}

type service struct {
	cfg    Config
	repo   Repository
	client ChatClient
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires up the health risk domain.
func NewService(cfg Config, repo Repository, client ChatClient, logger *slog.Logger) Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.MaxHistory < cfg.HistoryLimit {
		cfg.MaxHistory = cfg.HistoryLimit
	}
	return &service{
		cfg:    cfg,
		repo:   repo,
		client: client,
		logger: logger.With("component", "healthrisk.service"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Assess scores the request and attaches insights. Requests carrying a subject are
// persisted so Latest and History can return them.
func (s *service) Assess(ctx context.Context, req AssessRequest) (Assessment, error) {
	if err := validateReadings(req.PM25, req.PM10); err != nil {
		return Assessment{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid pollutant readings", err)
	}
	result, err := ScoreRisk(req.AssessmentInput)
	if err != nil {
		var invalid *InvalidInputError
		if errors.As(err, &invalid) {
			return Assessment{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid assessment input", err)
		}
		return Assessment{}, apperrors.Wrap(apperrors.CodeAssessment, "failed to score assessment", err)
	}

	assessment := Assessment{
		ID:         s.newID(),
		Subject:    strings.TrimSpace(req.Subject),
		Location:   strings.TrimSpace(req.Location),
		Input:      req.AssessmentInput,
		Result:     result,
		PM25:       req.PM25,
		PM10:       req.PM10,
		AssessedAt: s.now().UTC(),
	}
	assessment.AIInsights, assessment.GeneratedBy = s.insights(ctx, assessment)

	if assessment.Subject != "" {
		if err := s.repo.Save(ctx, assessment); err != nil {
			return Assessment{}, apperrors.Wrap(apperrors.CodeAssessment, "failed to store assessment", err)
		}
	}
	s.logger.Info("health risk assessed",
		"id", assessment.ID,
		"riskScore", result.RiskScore,
		"riskLevel", result.RiskLevel,
		"generatedBy", assessment.GeneratedBy,
	)
	return assessment, nil
}

func (s *service) Latest(ctx context.Context, subject string) (Assessment, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Assessment{}, apperrors.Wrap(apperrors.CodeInvalidInput, "subject cannot be empty", nil)
	}
	assessment, ok, err := s.repo.Latest(ctx, subject)
	if err != nil {
		return Assessment{}, apperrors.Wrap(apperrors.CodeAssessment, "failed to load assessment", err)
	}
	if !ok {
		return Assessment{}, apperrors.Wrap(apperrors.CodeNotFound, "no previous assessment found", nil)
	}
	return assessment, nil
}

func (s *service) Get(ctx context.Context, id string) (Assessment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Assessment{}, apperrors.Wrap(apperrors.CodeInvalidInput, "id cannot be empty", nil)
	}
	assessment, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Assessment{}, apperrors.Wrap(apperrors.CodeAssessment, "failed to load assessment", err)
	}
	if !ok {
		return Assessment{}, apperrors.Wrap(apperrors.CodeNotFound, "assessment not found", nil)
	}
	return assessment, nil
}

func (s *service) History(ctx context.Context, subject string, limit int) ([]Assessment, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "subject cannot be empty", nil)
	}
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	if limit > s.cfg.MaxHistory {
		limit = s.cfg.MaxHistory
	}
	items, err := s.repo.List(ctx, subject, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAssessment, "failed to list assessments", err)
	}
	if items == nil {
		items = []Assessment{}
	}
	return items, nil
}

func (s *service) insights(ctx context.Context, a Assessment) ([]string, string) {
	if s.client == nil {
		return ruleBasedInsights(a), GeneratedByRuleBased
	}
	insights, err := s.llmInsights(ctx, a)
	if err != nil {
		s.logger.Warn("llm insights unavailable, using rule based insights", "error", err)
		return ruleBasedInsights(a), GeneratedByRuleBased
	}
	return insights, GeneratedByLLM
}

func (s *service) llmInsights(ctx context.Context, a Assessment) ([]string, error) {
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: s.buildSystemPrompt()},
			{Role: "user", Content: buildInsightPrompt(a)},
		},
		Temperature:    s.cfg.Temperature,
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	return parseInsights(completion.Choices[0].Message.Content)
}

func (s *service) buildSystemPrompt() string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = "You are an environmental health assistant explaining air pollution risk."
	}
	return base + " Respond ONLY with valid minified JSON using this shape: {\"insights\":string[]}. Give at most four short, actionable insights. Never return plain text or other fields."
}

func buildInsightPrompt(a Assessment) string {
	wire := struct {
		Location string           `json:"location,omitempty"`
		PM25     *float64         `json:"pm25,omitempty"`
		PM10     *float64         `json:"pm10,omitempty"`
		Input    AssessmentInput  `json:"input"`
		Result   AssessmentResult `json:"result"`
		AQILabel string           `json:"aqiCategory"`
	}{
		Location: a.Location,
		PM25:     a.PM25,
		PM10:     a.PM10,
		Input:    a.Input,
		Result:   a.Result,
	}
	if idx, err := validAQI(a.Input.AQI); err == nil {
		wire.AQILabel = airquality.Classify(idx).Label
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		payload = []byte("{}")
	}
	return "Explain this air quality health risk assessment to the person it describes: " + string(payload)
}

func parseInsights(raw string) ([]string, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire struct {
		Insights json.RawMessage `json:"insights"`
	}
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	items, err := coerceStringArray(wire.Insights)
	if err != nil {
		return nil, err
	}
	items = normalizeList(items)
	if len(items) == 0 {
		return nil, errors.New("insights missing")
	}
	return items, nil
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported insights format")
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}

func validateReadings(values ...*float64) error {
	for _, v := range values {
		if v != nil && *v < 0 {
			return errors.New("pollutant concentrations must not be negative")
		}
	}
	return nil
}
