package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bureauplan/bureauplan-api/internal/dto"
	"github.com/bureauplan/bureauplan-api/internal/models"
	"github.com/bureauplan/bureauplan-api/pkg/config"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
	"github.com/bureauplan/bureauplan-api/pkg/llm"
)

type rosterReader interface {
	ListProfiles(ctx context.Context, bureau string) ([]models.EmployeeProfile, error)
}

type shiftReader interface {
	ListDetailsByRange(ctx context.Context, bureau string, start, end time.Time) ([]models.ShiftDetail, error)
}

type scheduleSaver interface {
	Save(ctx context.Context, schedule *models.GeneratedSchedule, actorID string) (*dto.SaveScheduleResponse, error)
}

// GenerationService drives the prompt, model call, parse, validate, preview
// cycle. Transient model failures are retried with exponential backoff; parse
// rejections are terminal because resending the identical prompt after a
// malformed reply only burns quota.
type GenerationService struct {
	client   llm.Client
	prompts  *PromptBuilder
	parser   *ScheduleParser
	checker  *ScheduleValidator
	previews PreviewStore
	roster   rosterReader
	shifts   shiftReader
	saver    scheduleSaver
	cfg      config.PlannerConfig
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewGenerationService wires the orchestrator. Pass nil for optional
// collaborators to get safe defaults.
func NewGenerationService(
	client llm.Client,
	prompts *PromptBuilder,
	parser *ScheduleParser,
	checker *ScheduleValidator,
	previews PreviewStore,
	roster rosterReader,
	shifts shiftReader,
	saver scheduleSaver,
	cfg config.PlannerConfig,
	logger *zap.Logger,
) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	return &GenerationService{
		client:   client,
		prompts:  prompts,
		parser:   parser,
		checker:  checker,
		previews: previews,
		roster:   roster,
		shifts:   shifts,
		saver:    saver,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
		sleep:    sleepContext,
	}
}

// WithMetrics attaches the instrumentation. Safe to skip in tests.
func (s *GenerationService) WithMetrics(m *MetricsService) *GenerationService {
	s.metrics = m
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Failures exposes the recent parse rejections for the diagnostics endpoint.
func (s *GenerationService) Failures() []models.FailureRecord {
	return s.parser.Failures()
}

// Generate runs the full pipeline for one request. actorID identifies the
// authenticated user and becomes created_by/assigned_by on an immediate save.
func (s *GenerationService) Generate(ctx context.Context, req dto.GenerateScheduleRequest, actorID string) (*dto.GenerateScheduleResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation request")
	}

	bureauFilter := req.Bureau
	if strings.EqualFold(bureauFilter, models.BureauBoth) {
		bureauFilter = ""
	}
	roster, err := s.roster.ListProfiles(ctx, bureauFilter)
	if err != nil {
		return nil, err
	}

	var existing []models.ShiftDetail
	if req.PreserveExisting {
		start, perr := time.Parse("2006-01-02", req.StartDate)
		end, eerr := time.Parse("2006-01-02", req.EndDate)
		if perr == nil && eerr == nil {
			existing, err = s.shifts.ListDetailsByRange(ctx, bureauFilter, start, end)
			if err != nil {
				return nil, err
			}
		}
	}

	systemPrompt, userPrompt, err := s.prompts.Build(req, roster, existing)
	if err != nil {
		return nil, err
	}

	requestContext := fmt.Sprintf("%s %s..%s %s", req.Granularity, req.StartDate, req.EndDate, req.Bureau)
	started := time.Now()
	schedule, attempts, err := s.completeWithRetry(ctx, systemPrompt, userPrompt, req.MaxTokens, requestContext)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		s.metrics.ObserveGeneration(outcome, time.Since(started))
	}
	if err != nil {
		return nil, err
	}

	violations := s.checker.Validate(schedule)

	resp := &dto.GenerateScheduleResponse{
		Schedule:           *schedule,
		Violations:         violations,
		Attempts:           attempts,
		EffectiveMaxTokens: s.client.EffectiveMaxTokens(req.MaxTokens),
	}

	if req.Persist {
		saved, err := s.saver.Save(ctx, schedule, actorID)
		if err != nil {
			return nil, err
		}
		resp.Saved = saved
		return resp, nil
	}

	previewID := uuid.NewString()
	preview := SchedulePreview{
		PreviewID: previewID,
		Request: PreviewRequest{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Bureau:    req.Bureau,
		},
		Schedule:   *schedule,
		Violations: violations,
		CreatedBy:  actorID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.previews.Put(ctx, preview); err != nil {
		return nil, err
	}
	resp.PreviewID = previewID

	s.logger.Info("schedule generated",
		zap.String("preview_id", previewID),
		zap.Int("shifts", len(schedule.Shifts)),
		zap.Int("violations", len(violations)),
		zap.Int("attempts", attempts),
	)
	return resp, nil
}

// completeWithRetry calls the model until it returns a parseable schedule or
// the retry budget runs out. Delay after failed attempt n is base<<(n-1).
func (s *GenerationService) completeWithRetry(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, requestContext string) (*models.GeneratedSchedule, int, error) {
	var lastErr error
	maxAttempts := s.cfg.MaxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := s.client.Complete(ctx, systemPrompt, userPrompt, maxTokens)
		if s.metrics != nil {
			if err != nil {
				s.metrics.ObserveModelCall(string(llm.KindOf(err)))
			} else {
				s.metrics.ObserveModelCall("OK")
			}
		}
		if err != nil {
			lastErr = err
			if !llm.Retryable(err) {
				return nil, attempt, appErrors.Wrap(err, appErrors.ErrGenerationFailed.Code,
					appErrors.ErrGenerationFailed.Status, fmt.Sprintf("model request failed (%s)", llm.KindOf(err)))
			}
			if attempt == maxAttempts {
				break
			}
			delay := s.cfg.BackoffBase << (attempt - 1)
			s.logger.Warn("model request failed, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.String("kind", string(llm.KindOf(err))),
			)
			if err := s.sleep(ctx, delay); err != nil {
				return nil, attempt, appErrors.Wrap(err, appErrors.ErrGenerationFailed.Code,
					appErrors.ErrGenerationFailed.Status, "generation cancelled")
			}
			continue
		}

		schedule, err := s.parser.Parse(raw, requestContext)
		if err != nil {
			// A syntactically broken reply to a well-formed prompt will
			// not get better on resend.
			if s.metrics != nil {
				s.metrics.ObserveParseRejection()
			}
			return nil, attempt, err
		}
		return schedule, attempt, nil
	}

	return nil, maxAttempts, appErrors.Wrap(lastErr, appErrors.ErrGenerationFailed.Code,
		appErrors.ErrGenerationFailed.Status, "max retries exceeded")
}

// SaveFromPreview persists a previously generated preview and invalidates it.
func (s *GenerationService) SaveFromPreview(ctx context.Context, previewID, actorID string) (*dto.SaveScheduleResponse, error) {
	preview, err := s.previews.Get(ctx, previewID)
	if err != nil {
		return nil, err
	}

	saved, err := s.saver.Save(ctx, &preview.Schedule, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.previews.Delete(ctx, previewID); err != nil {
		s.logger.Warn("preview cleanup failed", zap.String("preview_id", previewID), zap.Error(err))
	}

	s.logger.Info("schedule saved",
		zap.String("preview_id", previewID),
		zap.Int("shifts", len(saved.ShiftIDs)),
		zap.String("actor_id", actorID),
	)
	return saved, nil
}
