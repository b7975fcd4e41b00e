package grading

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DeletedQuestionText marks answer rows synthesized after the referenced
// test was deleted.
const DeletedQuestionText = "<deleted>"

// AnswerDetail is one row of the teacher's review view.
type AnswerDetail struct {
	Index         int         `json:"index"`
	Question      string      `json:"question"`
	Type          string      `json:"type"`
	Points        float64     `json:"points"`
	Options       []string    `json:"options,omitempty"`
	CorrectAnswer interface{} `json:"correct_answer,omitempty"`
	StudentAnswer interface{} `json:"student_answer,omitempty"`
	IsCorrect     *bool       `json:"is_correct,omitempty"`
	ManualPoints  *float64    `json:"manual_points,omitempty"`
}

// DetailView is the full submission as opened for review or shown back to
// a student.
type DetailView struct {
	StudentName    string         `json:"student_name"`
	StudentClass   string         `json:"student_class"`
	TestTitle      string         `json:"test_title"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	AutoScore      AutoScore      `json:"auto_score"`
	ManualGrade    string         `json:"manual_grade,omitempty"`
	EffectiveGrade string         `json:"effective_grade"`
	TeacherComment string         `json:"teacher_comment,omitempty"`
	Status         string         `json:"status"`
	Answers        []AnswerDetail `json:"answers"`
	Mistakes       []Mistake      `json:"mistakes"`
	OpenAnswers    []OpenAnswer   `json:"open_answers"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// BuildDetail re-evaluates a submission against its test and overlays the
// manual override. A nil test takes the degraded-data recovery path: each
// answered key is synthesized as a zero-point unknown question so the
// record stays reviewable after its test was deleted.
func BuildDetail(t *Test, sub Submission, scale GradeScale) *DetailView {
	view := &DetailView{
		StudentName:    sub.StudentName,
		StudentClass:   sub.StudentClass,
		SubmittedAt:    sub.SubmittedAt,
		ManualGrade:    sub.Override.Grade,
		TeacherComment: sub.Override.Comment,
		Status:         sub.Override.ReviewStatus(),
		Answers:        []AnswerDetail{},
		Mistakes:       []Mistake{},
		OpenAnswers:    []OpenAnswer{},
	}

	if t == nil {
		view.TestTitle = DeletedQuestionText
		view.AutoScore = AutoScore{Grade: sub.AutoGrade}
		view.EffectiveGrade = EffectiveGrade(sub.AutoGrade, sub.Override)
		view.Answers = deletedTestAnswers(sub.RawAnswers)
		return view
	}

	view.TestTitle = t.Title

	out, err := Grade(t, sub.RawAnswers, scale)
	if err != nil {
		// unreachable with a non-nil test; keep the degraded shape anyway
		view.Answers = deletedTestAnswers(sub.RawAnswers)
		return view
	}

	view.AutoScore = out.AutoScore
	view.Mistakes = out.Mistakes
	view.OpenAnswers = out.OpenAnswers
	view.Warnings = out.Warnings
	view.EffectiveGrade = EffectiveGrade(out.AutoScore.Grade, sub.Override)

	evals := evaluate(t.Questions, sub.RawAnswers)
	for i, ev := range evals {
		row := AnswerDetail{
			Index:         i,
			Question:      ev.question.Text,
			Type:          ev.question.Type,
			Points:        ev.question.PointsPossible(),
			Options:       ev.question.Options,
			StudentAnswer: sub.RawAnswers[AnswerKey(i)],
		}
		if ev.question.IsObjective() {
			correct := ev.verdict.IsCorrect
			row.IsCorrect = &correct
			switch ev.question.Type {
			case TypeSingle:
				if idx, ok := ev.question.CorrectIndex(); ok {
					row.CorrectAnswer = idx
				}
			case TypeMultiple:
				row.CorrectAnswer = ev.question.CorrectSet()
			}
		}
		if award, ok := sub.Override.ManualPointsFor(i); ok {
			v := award
			row.ManualPoints = &v
		}
		view.Answers = append(view.Answers, row)
	}

	return view
}

// deletedTestAnswers synthesizes rows from the raw answer keys alone,
// ordered by question index.
func deletedTestAnswers(bag RawAnswerBag) []AnswerDetail {
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return answerKeyIndex(keys[i]) < answerKeyIndex(keys[j])
	})

	rows := make([]AnswerDetail, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, AnswerDetail{
			Index:         answerKeyIndex(k),
			Question:      DeletedQuestionText,
			Type:          "unknown",
			Points:        0,
			StudentAnswer: bag[k],
		})
	}
	return rows
}

func answerKeyIndex(key string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "q"))
	if err != nil {
		return -1
	}
	return n
}
