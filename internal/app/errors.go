package app

import (
	"errors"
	"fmt"

	"yashubustudio/clinicalreport/internal/batch"
	"yashubustudio/clinicalreport/qa"
)

var (
	ErrEmptyReport    = errors.New("report is empty")
	ErrMissingQAInput = errors.New("passage or question is missing")
	ErrMissingUpload  = errors.New("no csv file uploaded")
)

// validationMessages holds the text shown for each input error.
var validationMessages = []struct {
	err error
	msg string
}{
	{ErrEmptyReport, "Please enter a clinical report."},
	{ErrMissingQAInput, "Please enter both passage and question."},
	{ErrMissingUpload, "Please upload a CSV file."},
	{batch.ErrMissingColumn, "CSV must contain 'Report Impression' column."},
	{qa.ErrQuestionTooLong, "The question is too long for the model input."},
}

// IsValidation reports whether err stems from user input rather than a
// processing failure.
func IsValidation(err error) bool {
	_, ok := validationMessage(err)
	return ok
}

// Message renders err for display. Validation errors map to a fixed prompt,
// anything else is prefixed with "Error: ".
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := validationMessage(err); ok {
		return msg
	}
	return fmt.Sprintf("Error: %v", err)
}

func validationMessage(err error) (string, bool) {
	for _, v := range validationMessages {
		if errors.Is(err, v.err) {
			return v.msg, true
		}
	}
	return "", false
}

// guard converts a panic in fn into an error.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
	}()
	return fn()
}
