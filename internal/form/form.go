package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/calories-tracker/calories_tracker/internal/prediction"
	"github.com/calories-tracker/calories_tracker/internal/records"
)

// InvalidNumbersMessage is shown when any numeric field fails to parse.
const InvalidNumbersMessage = "Please enter valid numeric values in all fields."

// RawInput is the form exactly as typed by the user.
type RawInput struct {
	Name          string `json:"name" form:"name"`
	Gender        string `json:"gender" form:"gender"`
	ActivityLevel string `json:"activity_level" form:"activity_level"`
	Age           string `json:"age" form:"age"`
	Height        string `json:"height" form:"height"`
	Weight        string `json:"weight" form:"weight"`
	Duration      string `json:"duration" form:"duration"`
	HeartRate     string `json:"heart_rate" form:"heart_rate"`
	BodyTemp      string `json:"body_temp" form:"body_temp"`
}

// ValidationError lists the numeric fields that were empty or not numbers.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return InvalidNumbersMessage
}

// Submission is a validated form.
type Submission struct {
	Name          string
	Gender        string
	ActivityLevel string
	Features      prediction.Features
	// Notes are advisory remarks, e.g. a gender outside the offered set.
	Notes []string
}

// Parse validates the numeric fields and returns a *ValidationError naming every
// offending field.
func Parse(in RawInput) (Submission, error) {
	var (
		f   prediction.Features
		bad []string
	)
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"age", in.Age, &f.Age},
		{"height", in.Height, &f.Height},
		{"weight", in.Weight, &f.Weight},
		{"duration", in.Duration, &f.Duration},
		{"heart_rate", in.HeartRate, &f.HeartRate},
		{"body_temp", in.BodyTemp, &f.BodyTemp},
	}
	for _, field := range fields {
		v, ok := parseNumber(field.raw)
		if !ok {
			bad = append(bad, field.name)
			continue
		}
		*field.dst = v
	}
	if len(bad) > 0 {
		return Submission{}, &ValidationError{Fields: bad}
	}

	sub := Submission{
		Name:          singleLine(in.Name),
		Gender:        singleLine(in.Gender),
		ActivityLevel: singleLine(in.ActivityLevel),
		Features:      f,
	}
	if sub.Gender != "" && !records.KnownGender(sub.Gender) {
		sub.Notes = append(sub.Notes, fmt.Sprintf("gender %q is not one of %s", sub.Gender, strings.Join(records.Genders, ", ")))
	}
	if sub.ActivityLevel != "" && !records.KnownActivityLevel(sub.ActivityLevel) {
		sub.Notes = append(sub.Notes, fmt.Sprintf("activity level %q is not one of %s", sub.ActivityLevel, strings.Join(records.ActivityLevels, ", ")))
	}
	return sub, nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// singleLine trims s and folds line breaks into spaces; stored rows are one line each.
func singleLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

// parseNumber accepts any finite float, ignoring surrounding whitespace.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
