// Package worker consumes analysis jobs from a message queue, runs the match
// engine and publishes the outcomes.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/ingestion"
	"github.com/jonathan/job-matcher/internal/ranking"
	"github.com/jonathan/job-matcher/internal/schemas"
	"github.com/jonathan/job-matcher/internal/types"
	embedded "github.com/jonathan/job-matcher/schemas"
)

// Outcome statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrMalformedJob marks a message that can never be processed.
var ErrMalformedJob = errors.New("malformed analysis job")

// AnalysisJob is the message body consumed from the analysis queue.
// Either CVText or CVKey must be set; CVKey names an object in the document
// store whose text is extracted according to CVMime or the key's extension.
type AnalysisJob struct {
	ID         uuid.UUID `json:"id"`
	CVText     string    `json:"cv_text,omitempty"`
	CVKey      string    `json:"cv_key,omitempty"`
	CVMime     string    `json:"cv_mime,omitempty"`
	JobText    string    `json:"job_text"`
	UserSkills []string  `json:"user_skills"`
}

// AnalysisOutcome is published to the result exchange for every job.
type AnalysisOutcome struct {
	JobID     uuid.UUID          `json:"job_id"`
	Status    string             `json:"status"`
	Result    *types.MatchResult `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// ObjectStore downloads stored CV documents.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// Publisher sends an outcome body with the given routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Acknowledger settles a delivery. amqp.Delivery satisfies it.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// DecodeJob parses and validates a message body.
func DecodeJob(body []byte) (*AnalysisJob, error) {
	var job AnalysisJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if err := schemas.ValidateDocument(embedded.AnalysisJob, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedJob)
	}
	if strings.TrimSpace(job.CVText) != "" && job.CVKey != "" {
		return nil, fmt.Errorf("%w: cv_text and cv_key are mutually exclusive", ErrMalformedJob)
	}
	if job.UserSkills == nil {
		job.UserSkills = []string{}
	}
	return &job, nil
}

// RoutingKey returns the routing key outcomes for job id are published with.
func RoutingKey(id uuid.UUID) string {
	return "analysis." + id.String()
}

// Processor runs analysis jobs. It is safe for concurrent use.
type Processor struct {
	analyzer  *ranking.Analyzer
	objects   ObjectStore // nil rejects jobs with cv_key
	publisher Publisher
	store     db.Store // nil skips persistence
	logger    *slog.Logger
	now       func() time.Time
	attempts  int
}

// ProcessorConfig holds the collaborators of a Processor.
type ProcessorConfig struct {
	Analyzer  *ranking.Analyzer
	Objects   ObjectStore
	Publisher Publisher
	Store     db.Store
	Logger    *slog.Logger
	Attempts  int // download and publish attempts, default 3
}

// NewProcessor creates a Processor.
func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("processor requires an analyzer")
	}
	if cfg.Publisher == nil {
		return nil, fmt.Errorf("processor requires a publisher")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	return &Processor{
		analyzer:  cfg.Analyzer,
		objects:   cfg.Objects,
		publisher: cfg.Publisher,
		store:     cfg.Store,
		logger:    cfg.Logger,
		now:       time.Now,
		attempts:  cfg.Attempts,
	}, nil
}

// Process resolves the CV text of job, runs the engine and stores the record
// when a store is configured.
func (p *Processor) Process(ctx context.Context, job *AnalysisJob) (types.MatchResult, error) {
	cvText, err := p.cvText(ctx, job)
	if err != nil {
		return types.MatchResult{}, err
	}

	result := p.analyzer.Analyze(cvText, job.JobText, job.UserSkills)

	if p.store != nil {
		record := &types.AnalysisRecord{
			ID:         job.ID,
			JobText:    job.JobText,
			CVText:     cvText,
			UserSkills: job.UserSkills,
			Result:     result,
		}
		if _, err := retry(ctx, p.attempts, func() (struct{}, error) {
			return struct{}{}, p.store.SaveAnalysis(ctx, record)
		}); err != nil {
			return types.MatchResult{}, fmt.Errorf("failed to store analysis: %w", err)
		}
	}
	return result, nil
}

func (p *Processor) cvText(ctx context.Context, job *AnalysisJob) (string, error) {
	if job.CVKey == "" {
		return job.CVText, nil
	}
	if p.objects == nil {
		return "", fmt.Errorf("job %s references cv_key but no document store is configured", job.ID)
	}

	data, err := retry(ctx, p.attempts, func() ([]byte, error) {
		return p.objects.Download(ctx, job.CVKey)
	})
	if err != nil {
		return "", fmt.Errorf("file download error: %w", err)
	}

	text, meta, err := ingestion.IngestBytes(job.CVKey, job.CVMime, data)
	if err != nil {
		return "", fmt.Errorf("text extraction error: %w", err)
	}
	p.logger.Debug("extracted cv text", "job_id", job.ID, "key", job.CVKey, "format", meta.Format, "chars", meta.Chars)
	return text, nil
}

// Handle processes one delivery body and settles it. Malformed messages are
// dropped with a nack and no requeue. Every decodable job gets an outcome;
// the delivery is acked once it is published and requeued when publishing
// fails.
func (p *Processor) Handle(ctx context.Context, body []byte, ack Acknowledger) error {
	job, err := DecodeJob(body)
	if err != nil {
		p.logger.Warn("dropping malformed message", "error", err)
		if nackErr := ack.Nack(false, false); nackErr != nil {
			return fmt.Errorf("failed to nack message: %w", nackErr)
		}
		return err
	}

	log := p.logger.With("job_id", job.ID)
	start := p.now()

	outcome := AnalysisOutcome{JobID: job.ID, Status: StatusCompleted}
	result, procErr := p.Process(ctx, job)
	if procErr != nil {
		log.Error("analysis failed", "error", procErr)
		outcome.Status = StatusFailed
		outcome.Error = procErr.Error()
	} else {
		outcome.Result = &result
		log.Info("analysis completed",
			"final_score", result.FinalScore,
			"fallback", result.UsedFallback,
			"duration", p.now().Sub(start),
		)
	}
	outcome.Timestamp = p.now().UTC()

	if err := p.publish(ctx, outcome); err != nil {
		log.Error("failed to publish outcome, requeueing", "error", err)
		if nackErr := ack.Nack(false, true); nackErr != nil {
			return fmt.Errorf("failed to nack message: %w", nackErr)
		}
		return err
	}

	if err := ack.Ack(false); err != nil {
		return fmt.Errorf("failed to ack message: %w", err)
	}
	return procErr
}

func (p *Processor) publish(ctx context.Context, outcome AnalysisOutcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	_, err = retry(ctx, p.attempts, func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(ctx, RoutingKey(outcome.JobID), body)
	})
	return err
}
