package domain

import "strings"

// fieldChecks accumulates every failing field before reporting.
type fieldChecks struct {
	fields []FieldError
}

func (c *fieldChecks) require(ok bool, field, message string) {
	if !ok {
		c.fields = append(c.fields, FieldError{Field: field, Message: message})
	}
}

func (c *fieldChecks) requireText(value, field string) {
	c.require(strings.TrimSpace(value) != "", field, "value is required")
}

func (c *fieldChecks) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	fields := make([]FieldError, len(c.fields))
	copy(fields, c.fields)
	return &Error{Kind: KindValidation, Code: "ValidationFailed", Fields: fields}
}

func hasDuplicateStrings(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}

func hasDuplicateTrainings(ids []TrainingID) bool {
	seen := make(map[TrainingID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

func containsTraining(ids []TrainingID, id TrainingID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func findTraining(trainings []Training, id TrainingID) (Training, bool) {
	for _, t := range trainings {
		if t.ID == id {
			return t, true
		}
	}
	return Training{}, false
}
