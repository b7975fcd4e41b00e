package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"classtest/internal/grading"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTestNotFound = errors.New("test not found")
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type CreateTestInput struct {
	Title     string
	Questions []grading.Question
	CreatorID *int64
}

type TestRecord struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
	CreatorID     *int64    `json:"creator_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Service) CreateTest(ctx context.Context, in CreateTestInput) (*TestRecord, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := grading.ValidateQuestions(in.Questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	questionsJSON, err := json.Marshal(in.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	createdAt := time.Now().Unix()
	var id int64
	if err := s.db.QueryRowContext(ctx, `
		INSERT INTO tests (title, questions, question_count, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, title, string(questionsJSON), len(in.Questions), in.CreatorID, createdAt).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert test: %w", err)
	}

	return &TestRecord{
		ID:            id,
		Title:         title,
		QuestionCount: len(in.Questions),
		CreatorID:     in.CreatorID,
		CreatedAt:     time.Unix(createdAt, 0),
	}, nil
}

func (s *Service) ListTests(ctx context.Context) ([]TestRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, question_count, creator_id, created_at
		FROM tests
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tests: %w", err)
	}
	defer rows.Close()

	out := make([]TestRecord, 0)
	for rows.Next() {
		var (
			rec       TestRecord
			creatorID sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.QuestionCount, &creatorID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan test row: %w", err)
		}
		if creatorID.Valid {
			v := creatorID.Int64
			rec.CreatorID = &v
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tests: %w", err)
	}
	return out, nil
}

// GetTest loads a full test definition. A corrupt questions column degrades
// to an empty question list rather than failing the read.
func (s *Service) GetTest(ctx context.Context, id int64) (*grading.Test, error) {
	var (
		t             grading.Test
		questionsJSON string
		creatorID     sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, questions, creator_id
		FROM tests
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Title, &questionsJSON, &creatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	if creatorID.Valid {
		v := creatorID.Int64
		t.CreatorID = &v
	}
	if err := json.Unmarshal([]byte(questionsJSON), &t.Questions); err != nil {
		t.Questions = []grading.Question{}
	}
	return &t, nil
}

func (s *Service) DeleteTest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete test result: %w", err)
	}
	if affected == 0 {
		return ErrTestNotFound
	}
	return nil
}
