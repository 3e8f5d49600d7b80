package app

import (
	"context"
	"time"

	"yashubustudio/clinicalreport/labeler"
	"yashubustudio/clinicalreport/qa"
)

// LabelResult is the outcome of observation extraction for one report.
type LabelResult struct {
	Sentences    []string              `json:"sentences"`
	Observations []labeler.Observation `json:"observations"`
	Present      []labeler.Category    `json:"present"`
	Mentions     []labeler.Mention     `json:"mentions"`
	Elapsed      time.Duration         `json:"elapsed"`
}

// AnswerResult is the outcome of one question answering request.
type AnswerResult struct {
	Answer  qa.Answer     `json:"answer"`
	Elapsed time.Duration `json:"elapsed"`
}

// AnswerEngine answers a question about a passage. *qa.Answerer satisfies it.
type AnswerEngine interface {
	Answer(ctx context.Context, question, passage string) (qa.Answer, error)
	Close() error
}
