package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"classtest/internal/grading"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrTestNotFound       = errors.New("test not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type Service struct {
	db    *sql.DB
	scale grading.GradeScale
}

func NewService(db *sql.DB, scale grading.GradeScale) *Service {
	if scale == nil {
		scale = grading.NumericScale
	}
	return &Service{db: db, scale: scale}
}

type SubmitInput struct {
	TestID       int64
	StudentName  string
	StudentClass string
	Answers      grading.RawAnswerBag
}

type SubmitResult struct {
	SubmissionID int64             `json:"submission_id"`
	AutoScore    grading.AutoScore `json:"auto_score"`
	ShareToken   string            `json:"share_token"`
}

type DashboardRow struct {
	SubmissionID int64     `json:"submission_id"`
	StudentName  string    `json:"student_name"`
	StudentClass string    `json:"student_class"`
	SubmittedAt  time.Time `json:"submitted_at"`
	AutoGrade    string    `json:"auto_grade"`
	ManualGrade  *string   `json:"manual_grade,omitempty"`
	Status       string    `json:"status"`
	TestTitle    *string   `json:"test_title,omitempty"`
}

// Submit grades a raw answer bag against the referenced test and persists
// the result. Grading a missing test fails; everything else degrades inside
// the engine.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if strings.TrimSpace(in.StudentName) == "" {
		return nil, fmt.Errorf("%w: student name is required", ErrInvalidInput)
	}

	t, err := s.loadTest(ctx, in.TestID)
	if err != nil {
		return nil, err
	}

	out, err := grading.Grade(t, in.Answers, s.scale)
	if err != nil {
		if errors.Is(err, grading.ErrMissingTest) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("grade submission: %w", err)
	}

	token := uuid.NewString()
	submittedAt := time.Now().Unix()

	var id int64
	if err := s.db.QueryRowContext(ctx, `
		INSERT INTO submissions (
			test_id,
			student_name,
			student_class,
			answers,
			auto_grade,
			manual_points,
			share_token,
			submitted_at
		) VALUES ($1, $2, $3, $4, $5, '{}', $6, $7)
		RETURNING id
	`,
		in.TestID,
		strings.TrimSpace(in.StudentName),
		strings.TrimSpace(in.StudentClass),
		in.Answers.Encode(),
		out.AutoScore.Grade,
		token,
		submittedAt,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	return &SubmitResult{
		SubmissionID: id,
		AutoScore:    out.AutoScore,
		ShareToken:   token,
	}, nil
}

// List is the teacher dashboard. The LEFT JOIN keeps submissions visible
// after their test was deleted.
func (s *Service) List(ctx context.Context) ([]DashboardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.id,
			s.student_name,
			s.student_class,
			s.submitted_at,
			s.auto_grade,
			s.manual_grade,
			s.manual_points,
			t.title
		FROM submissions s
		LEFT JOIN tests t ON t.id = s.test_id
		ORDER BY s.submitted_at DESC, s.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := make([]DashboardRow, 0)
	for rows.Next() {
		var (
			row          DashboardRow
			submittedAt  int64
			manualGrade  sql.NullString
			manualPoints string
			title        sql.NullString
		)
		if err := rows.Scan(&row.SubmissionID, &row.StudentName, &row.StudentClass, &submittedAt, &row.AutoGrade, &manualGrade, &manualPoints, &title); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		row.SubmittedAt = time.Unix(submittedAt, 0)
		override := grading.ManualOverride{Points: grading.ParseManualPoints(manualPoints)}
		if manualGrade.Valid && manualGrade.String != "" {
			v := manualGrade.String
			row.ManualGrade = &v
			override.Grade = v
		}
		row.Status = override.ReviewStatus()
		if title.Valid {
			v := title.String
			row.TestTitle = &v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// GetDetail builds the review view for a submission. A deleted test is not
// an error here: the view degrades to rows synthesized from the answer keys.
func (s *Service) GetDetail(ctx context.Context, id int64) (*grading.DetailView, error) {
	return s.detail(ctx, `s.id = $1`, id)
}

// GetDetailByShareToken is the student self-view, addressed by the opaque
// token handed out at submission time.
func (s *Service) GetDetailByShareToken(ctx context.Context, token string) (*grading.DetailView, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrSubmissionNotFound
	}
	return s.detail(ctx, `s.share_token = $1`, strings.TrimSpace(token))
}

func (s *Service) detail(ctx context.Context, where string, arg interface{}) (*grading.DetailView, error) {
	var (
		sub            grading.Submission
		answersJSON    string
		manualGrade    sql.NullString
		manualPoints   string
		teacherComment sql.NullString
		submittedAt    int64
		title          sql.NullString
		questionsJSON  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			s.id,
			s.test_id,
			s.student_name,
			s.student_class,
			s.answers,
			s.auto_grade,
			s.manual_grade,
			s.manual_points,
			s.teacher_comment,
			s.submitted_at,
			t.title,
			t.questions
		FROM submissions s
		LEFT JOIN tests t ON t.id = s.test_id
		WHERE `+where+`
	`, arg).Scan(
		&sub.ID,
		&sub.TestID,
		&sub.StudentName,
		&sub.StudentClass,
		&answersJSON,
		&sub.AutoGrade,
		&manualGrade,
		&manualPoints,
		&teacherComment,
		&submittedAt,
		&title,
		&questionsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}

	sub.RawAnswers = grading.ParseAnswerBag([]byte(answersJSON))
	sub.Override = grading.ManualOverride{
		Points:  grading.ParseManualPoints(manualPoints),
		Grade:   manualGrade.String,
		Comment: teacherComment.String,
	}
	sub.SubmittedAt = time.Unix(submittedAt, 0)

	var t *grading.Test
	if questionsJSON.Valid {
		t = &grading.Test{ID: sub.TestID, Title: title.String}
		if err := json.Unmarshal([]byte(questionsJSON.String), &t.Questions); err != nil {
			t.Questions = []grading.Question{}
		}
	}

	return grading.BuildDetail(t, sub, s.scale), nil
}

// SetManualPoints merges one per-question award into the submission's
// manual points. The merge itself is pure; this persists the result.
func (s *Service) SetManualPoints(ctx context.Context, id int64, questionIndex int, points float64) (map[string]float64, error) {
	if questionIndex < 0 {
		return nil, fmt.Errorf("%w: question index must not be negative", ErrInvalidInput)
	}

	var raw string
	if err := s.db.QueryRowContext(ctx,
		`SELECT manual_points FROM submissions WHERE id = $1`, id,
	).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("load manual points: %w", err)
	}

	merged := grading.ApplyManualPoints(grading.ParseManualPoints(raw), questionIndex, points)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET manual_points = $1 WHERE id = $2`,
		grading.EncodeManualPoints(merged), id,
	); err != nil {
		return nil, fmt.Errorf("update manual points: %w", err)
	}
	return merged, nil
}

// SaveReview records the teacher's final grade and comment.
func (s *Service) SaveReview(ctx context.Context, id int64, grade, comment string) error {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return fmt.Errorf("%w: grade is required", ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET manual_grade = $1, teacher_comment = $2 WHERE id = $3`,
		grade, comment, id,
	)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save review result: %w", err)
	}
	if affected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete submission result: %w", err)
	}
	if affected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (s *Service) loadTest(ctx context.Context, id int64) (*grading.Test, error) {
	var (
		t             grading.Test
		questionsJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, questions FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &questionsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}
	if err := json.Unmarshal([]byte(questionsJSON), &t.Questions); err != nil {
		t.Questions = []grading.Question{}
	}
	return &t, nil
}
