// Package worker consumes AI answer-suggestion jobs from the Redis queue and
// stores the generated answers.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cyberlab-events/backend/internal/ai"
	"github.com/cyberlab-events/backend/internal/feedback"
	"github.com/cyberlab-events/backend/pkg/queue"
)

// SuggestionProcessor processes answer-suggestion jobs: call the AI service,
// write the suggested answer back to the question.
type SuggestionProcessor struct {
	feedbackRepo *feedback.Repository
	aiClient     *ai.Client
	queue        *queue.Queue
	logger       *zap.Logger
}

// NewSuggestionProcessor creates a suggestion processor.
func NewSuggestionProcessor(feedbackRepo *feedback.Repository, aiClient *ai.Client, q *queue.Queue, logger *zap.Logger) *SuggestionProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionProcessor{feedbackRepo: feedbackRepo, aiClient: aiClient, queue: q, logger: logger}
}

// Process executes one answer-suggestion job.
func (p *SuggestionProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeAnswerSuggestion {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.SuggestionPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	q, err := p.feedbackRepo.GetQuestionByID(ctx, payload.QuestionID)
	if err != nil {
		return fmt.Errorf("load question: %w", err)
	}
	if q == nil {
		// Question deleted since enqueue; nothing to do.
		p.logger.Info("question gone, skipping", zap.String("question_id", payload.QuestionID.String()))
		return nil
	}

	answer, err := p.aiClient.Suggest(ctx, q.Prompt)
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}

	if err := p.feedbackRepo.SetSuggestedAnswer(ctx, q.ID, answer); err != nil {
		return fmt.Errorf("store suggestion: %w", err)
	}

	p.logger.Info("suggestion stored", zap.String("question_id", q.ID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *SuggestionProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("suggestion worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
