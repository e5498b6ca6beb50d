package model

import (
	"encoding/json"
	"fmt"
)

// FinalResult is the scored summary returned by the scoring API once every
// question has a save recorded. All numbers are authoritative as received;
// the player performs no score arithmetic of its own.
type FinalResult struct {
	TotalQuestions    int         `json:"total_questions"`
	Attempted         int         `json:"attempted"`
	Unattempted       int         `json:"unattempted"`
	Correct           int         `json:"correct"`
	Wrong             int         `json:"wrong"`
	FinalScore        json.Number `json:"final_score"`
	FinalResult       string      `json:"final_result"`
	MarksAwarded      float64     `json:"marks_awarded"`
	MarksDeducted     float64     `json:"marks_deducted"`
	TotalMarksAwarded float64     `json:"total_marks_awarded"`
}

// ScorecardRow is one label/value line of the rendered scorecard.
type ScorecardRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Scorecard renders the final result as ordered display rows, percentage
// formatting included. Pure presentation; no derived numbers.
func (r *FinalResult) Scorecard() []ScorecardRow {
	return []ScorecardRow{
		{Label: "Total Questions", Value: fmt.Sprintf("%d", r.TotalQuestions)},
		{Label: "Attempted", Value: fmt.Sprintf("%d", r.Attempted)},
		{Label: "Unattempted", Value: fmt.Sprintf("%d", r.Unattempted)},
		{Label: "Correct Answers", Value: fmt.Sprintf("%d", r.Correct)},
		{Label: "Wrong Answers", Value: fmt.Sprintf("%d", r.Wrong)},
		{Label: "Final Score", Value: fmt.Sprintf("%s%%", r.FinalScore.String())},
		{Label: "Final Result", Value: r.FinalResult},
		{Label: "Marks Awarded", Value: trimFloat(r.MarksAwarded)},
		{Label: "Marks Deducted", Value: trimFloat(r.MarksDeducted)},
		{Label: "Total Marks Awarded", Value: trimFloat(r.TotalMarksAwarded)},
	}
}

func trimFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
