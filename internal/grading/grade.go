package grading

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingTest means there is no answer key to grade against. It is the
// only failure the engine raises: bad student input always degrades to the
// no-credit path instead.
var ErrMissingTest = errors.New("test not found")

// Mistake is one incorrectly answered objective question, rendered with
// option text rather than raw indices.
type Mistake struct {
	Index         int      `json:"index"`
	Question      string   `json:"question"`
	YourAnswer    []string `json:"your_answer"`
	CorrectAnswer []string `json:"correct_answer"`
}

// OpenAnswer is one open question's raw text, queued for manual review.
type OpenAnswer struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Outcome is everything a grading pass produces for persistence and for the
// response to the student.
type Outcome struct {
	AutoScore   AutoScore    `json:"auto_score"`
	Verdicts    []Verdict    `json:"verdicts"`
	Mistakes    []Mistake    `json:"mistakes"`
	OpenAnswers []OpenAnswer `json:"open_answers"`
	Warnings    []string     `json:"warnings,omitempty"`
}

type evaluation struct {
	question Question
	answer   NormalizedAnswer
	verdict  Verdict
}

// Grade runs the full pipeline over a test and a raw answer bag: normalize,
// score, aggregate. It is pure and deterministic; calling it twice with the
// same inputs yields the same outcome.
func Grade(t *Test, bag RawAnswerBag, scale GradeScale) (*Outcome, error) {
	if t == nil {
		return nil, ErrMissingTest
	}

	evals := evaluate(t.Questions, bag)

	out := &Outcome{
		Verdicts:    make([]Verdict, len(evals)),
		Mistakes:    []Mistake{},
		OpenAnswers: []OpenAnswer{},
	}
	for i, ev := range evals {
		out.Verdicts[i] = ev.verdict

		switch {
		case ev.question.IsObjective():
			if !ev.verdict.IsCorrect {
				out.Mistakes = append(out.Mistakes, buildMistake(i, ev))
			}
		case ev.question.Type == TypeOpen:
			out.OpenAnswers = append(out.OpenAnswers, OpenAnswer{
				Index:    i,
				Question: ev.question.Text,
				Answer:   ev.answer.Text,
			})
		default:
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: unknown question type %q", AnswerKey(i), ev.question.Type))
		}
	}

	out.AutoScore = Aggregate(t.Questions, out.Verdicts, scale)
	return out, nil
}

func evaluate(questions []Question, bag RawAnswerBag) []evaluation {
	evals := make([]evaluation, len(questions))
	for i, q := range questions {
		ans := Normalize(q, bag[AnswerKey(i)])
		evals[i] = evaluation{question: q, answer: ans, verdict: Score(q, ans)}
	}
	return evals
}

func buildMistake(index int, ev evaluation) Mistake {
	m := Mistake{
		Index:      index,
		Question:   ev.question.Text,
		YourAnswer: []string{},
	}

	switch ev.answer.Kind {
	case SingleChoice:
		m.YourAnswer = []string{optionText(ev.question, ev.answer.Index)}
	case MultipleChoice:
		for _, idx := range ev.answer.Indices {
			m.YourAnswer = append(m.YourAnswer, optionText(ev.question, idx))
		}
	}

	switch ev.question.Type {
	case TypeSingle:
		if idx, ok := ev.question.CorrectIndex(); ok {
			m.CorrectAnswer = []string{optionText(ev.question, idx)}
		}
	case TypeMultiple:
		for _, idx := range ev.question.CorrectSet() {
			m.CorrectAnswer = append(m.CorrectAnswer, optionText(ev.question, idx))
		}
	}

	return m
}

func optionText(q Question, index int) string {
	if index >= 0 && index < len(q.Options) {
		return q.Options[index]
	}
	return "#" + strconv.Itoa(index)
}
