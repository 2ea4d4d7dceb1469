package feedback

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyberlab-events/backend/internal/models"
)

// Repository handles feedback question and response persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a feedback repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateQuestion inserts a new feedback question.
func (r *Repository) CreateQuestion(ctx context.Context, q *models.FeedbackQuestion) error {
	const query = `INSERT INTO feedback_questions (id, event_id, prompt)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, q.EventID, q.Prompt).Scan(&q.ID, &q.CreatedAt)
}

// GetQuestionByID returns a question by ID, or (nil, nil) when not found.
func (r *Repository) GetQuestionByID(ctx context.Context, id uuid.UUID) (*models.FeedbackQuestion, error) {
	const query = `SELECT id, event_id, prompt, suggested_answer, created_at
		FROM feedback_questions WHERE id = $1`
	var q models.FeedbackQuestion
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&q.ID, &q.EventID, &q.Prompt, &q.SuggestedAnswer, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestionsByEvent returns all feedback questions for an event.
func (r *Repository) ListQuestionsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.FeedbackQuestion, error) {
	const query = `SELECT id, event_id, prompt, suggested_answer, created_at
		FROM feedback_questions WHERE event_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.FeedbackQuestion
	for rows.Next() {
		var q models.FeedbackQuestion
		if err := rows.Scan(&q.ID, &q.EventID, &q.Prompt, &q.SuggestedAnswer, &q.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// SetSuggestedAnswer stores the AI-generated suggested answer on a question.
func (r *Repository) SetSuggestedAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	_, err := r.pool.Exec(ctx, `UPDATE feedback_questions SET suggested_answer = $2 WHERE id = $1`, id, answer)
	return err
}

// DeleteQuestion removes a question and its responses.
func (r *Repository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM feedback_questions WHERE id = $1`, id)
	return err
}

// CreateResponse inserts an attendee's response. One response per attendee per
// question; resubmission replaces the previous answer.
func (r *Repository) CreateResponse(ctx context.Context, resp *models.FeedbackResponse) error {
	const query = `INSERT INTO feedback_responses (id, question_id, attendee_id, content)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (question_id, attendee_id) DO UPDATE SET content = EXCLUDED.content
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, resp.QuestionID, resp.AttendeeID, resp.Content).
		Scan(&resp.ID, &resp.CreatedAt)
}

// ListResponsesByQuestion returns all responses to a question.
func (r *Repository) ListResponsesByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.FeedbackResponse, error) {
	const query = `SELECT id, question_id, attendee_id, content, created_at
		FROM feedback_responses WHERE question_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.FeedbackResponse
	for rows.Next() {
		var resp models.FeedbackResponse
		if err := rows.Scan(&resp.ID, &resp.QuestionID, &resp.AttendeeID, &resp.Content, &resp.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, resp)
	}
	return list, rows.Err()
}

// CountResponsesByEvent returns the number of feedback responses across an
// event's questions.
func (r *Repository) CountResponsesByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM feedback_responses fr
		JOIN feedback_questions fq ON fq.id = fr.question_id
		WHERE fq.event_id = $1`
	var n int
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&n)
	return n, err
}
