package report

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"classtest/internal/grading"

	"github.com/xuri/excelize/v2"
)

var ErrTestNotFound = errors.New("test not found")

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type TestSummary struct {
	TestID       int64    `json:"test_id"`
	Title        string   `json:"title"`
	Participants int      `json:"participants"`
	Reviewed     int      `json:"reviewed"`
	AverageGrade *float64 `json:"average_grade,omitempty"`
	HighestGrade *float64 `json:"highest_grade,omitempty"`
	LowestGrade  *float64 `json:"lowest_grade,omitempty"`
}

// SummaryByTest aggregates submission stats for one test. Grade statistics
// are only meaningful for the numeric scale; letter-grade deployments get
// counts without averages.
func (s *Service) SummaryByTest(ctx context.Context, testID int64) (*TestSummary, error) {
	summary := &TestSummary{TestID: testID}
	if err := s.db.QueryRowContext(ctx,
		`SELECT title FROM tests WHERE id = $1`, testID,
	).Scan(&summary.Title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT auto_grade, manual_grade
		FROM submissions
		WHERE test_id = $1
	`, testID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var sum float64
	var graded int
	for rows.Next() {
		var autoGrade string
		var manualGrade sql.NullString
		if err := rows.Scan(&autoGrade, &manualGrade); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		summary.Participants++
		if manualGrade.Valid && manualGrade.String != "" {
			summary.Reviewed++
		}

		effective := grading.EffectiveGrade(autoGrade, grading.ManualOverride{Grade: manualGrade.String})
		value, err := strconv.ParseFloat(effective, 64)
		if err != nil {
			continue
		}
		graded++
		sum += value
		if summary.HighestGrade == nil || value > *summary.HighestGrade {
			v := value
			summary.HighestGrade = &v
		}
		if summary.LowestGrade == nil || value < *summary.LowestGrade {
			v := value
			summary.LowestGrade = &v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	if graded > 0 {
		avg := sum / float64(graded)
		summary.AverageGrade = &avg
	}
	return summary, nil
}

// ExportSubmissionsExcel renders the whole dashboard as an xlsx gradebook.
func (s *Service) ExportSubmissionsExcel(ctx context.Context) ([]byte, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.id,
			s.student_name,
			s.student_class,
			s.auto_grade,
			s.manual_grade,
			s.manual_points,
			s.teacher_comment,
			s.submitted_at,
			t.title
		FROM submissions s
		LEFT JOIN tests t ON t.id = s.test_id
		ORDER BY s.submitted_at DESC, s.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := []string{"submission_id", "student_name", "student_class", "test_title", "auto_grade", "manual_grade", "effective_grade", "status", "teacher_comment", "submitted_at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowNo := 1
	for rows.Next() {
		var (
			id             int64
			studentName    string
			studentClass   string
			autoGrade      string
			manualGrade    sql.NullString
			manualPoints   string
			teacherComment sql.NullString
			submittedAt    int64
			title          sql.NullString
		)
		if err := rows.Scan(&id, &studentName, &studentClass, &autoGrade, &manualGrade, &manualPoints, &teacherComment, &submittedAt, &title); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}

		override := grading.ManualOverride{
			Points:  grading.ParseManualPoints(manualPoints),
			Grade:   manualGrade.String,
			Comment: teacherComment.String,
		}
		testTitle := grading.DeletedQuestionText
		if title.Valid {
			testTitle = title.String
		}

		rowNo++
		values := []any{
			id,
			studentName,
			studentClass,
			testTitle,
			autoGrade,
			manualGrade.String,
			grading.EffectiveGrade(autoGrade, override),
			override.ReviewStatus(),
			teacherComment.String,
			time.Unix(submittedAt, 0).Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNo)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	_ = f.SetColWidth(sheet, "A", "J", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
