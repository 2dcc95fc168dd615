package service

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

// Openers that indicate the model is asking questions or narrating instead of
// emitting data. Matching is deliberately literal; see the validator for the
// semantic checks that follow acceptance.
var conversationalPrefixes = []string{
	"I",
	"Let me",
	"To create",
	"Which",
	"What",
	"Could you",
	"Before generating",
}

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	tailJSONPattern   = regexp.MustCompile(`(?s)\{[^{]*?\}\s*$`)
)

// ScheduleParser turns raw model text into an accepted GeneratedSchedule or a
// definitive rejection. It never panics on malformed input; every rejection
// is appended to the shared failure log.
type ScheduleParser struct {
	failures *FailureLog
	logger   *zap.Logger
}

// NewScheduleParser wires the parser with its failure log.
func NewScheduleParser(failures *FailureLog, logger *zap.Logger) *ScheduleParser {
	if failures == nil {
		failures = NewFailureLog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleParser{failures: failures, logger: logger}
}

// Failures exposes the retained rejection records, newest last.
func (p *ScheduleParser) Failures() []models.FailureRecord {
	return p.failures.List()
}

type rawSchedule struct {
	Shifts          *[]models.ShiftCandidate `json:"shifts"`
	FairnessMetrics *models.FairnessMetrics  `json:"fairness_metrics"`
	Recommendations *[]string                `json:"recommendations"`
}

// Parse extracts and validates the schedule payload from raw model output.
// requestContext is a short human-readable tag recorded with any failure.
func (p *ScheduleParser) Parse(raw string, requestContext string) (*models.GeneratedSchedule, error) {
	trimmed := strings.TrimSpace(raw)

	for _, prefix := range conversationalPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return nil, p.reject(raw, "conversational response", requestContext)
		}
	}

	candidate := extractJSON(trimmed)
	if candidate == "" {
		return nil, p.reject(raw, "No JSON found", requestContext)
	}

	var payload rawSchedule
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, p.reject(raw, "JSON parse exception: "+err.Error(), requestContext)
	}

	if payload.Shifts == nil {
		return nil, p.reject(raw, "missing shifts", requestContext)
	}
	if len(*payload.Shifts) == 0 {
		return nil, p.reject(raw, "Empty shifts array", requestContext)
	}
	for _, shift := range *payload.Shifts {
		if !shift.Complete() {
			return nil, p.reject(raw, "Missing required fields", requestContext)
		}
	}

	schedule := &models.GeneratedSchedule{Shifts: *payload.Shifts}

	if payload.FairnessMetrics != nil {
		schedule.FairnessMetrics = *payload.FairnessMetrics
		if schedule.FairnessMetrics.ShiftsPerPerson == nil {
			schedule.FairnessMetrics.ShiftsPerPerson = map[string]int{}
		}
		if schedule.FairnessMetrics.WeekendShiftsPerPerson == nil {
			schedule.FairnessMetrics.WeekendShiftsPerPerson = map[string]int{}
		}
		if schedule.FairnessMetrics.NightShiftsPerPerson == nil {
			schedule.FairnessMetrics.NightShiftsPerPerson = map[string]int{}
		}
		if schedule.FairnessMetrics.HardConstraintViolations == nil {
			schedule.FairnessMetrics.HardConstraintViolations = []string{}
		}
	} else {
		schedule.FairnessMetrics = models.EmptyFairnessMetrics()
	}

	if payload.Recommendations != nil {
		schedule.Recommendations = *payload.Recommendations
	} else {
		schedule.Recommendations = []string{}
	}

	return schedule, nil
}

// extractJSON tries the extraction strategies in priority order and returns
// the first candidate text, or "" when nothing plausible is found.
func extractJSON(text string) string {
	if match := fencedJSONPattern.FindStringSubmatch(text); match != nil {
		if body := strings.TrimSpace(match[1]); body != "" {
			return body
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		return text[first : last+1]
	}

	if match := tailJSONPattern.FindString(text); match != "" {
		return strings.TrimSpace(match)
	}

	return ""
}

func (p *ScheduleParser) reject(raw, reason, requestContext string) error {
	p.failures.Append(models.FailureRecord{
		Timestamp:      time.Now().UTC(),
		RawResponse:    raw,
		ResponseLength: len(raw),
		Reason:         reason,
		RequestContext: requestContext,
	})
	p.logger.Warn("model response rejected",
		zap.String("reason", reason),
		zap.Int("response_length", len(raw)),
		zap.String("request_context", requestContext),
	)
	return appErrors.Clone(appErrors.ErrGenerationFailed, reason)
}
