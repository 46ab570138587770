// Package survey holds the survey document model: questions, their options,
// the display-logic rules between them and the interchange format.
package survey

import "strings"

// Kind defines the type of question
type Kind string

const (
	KindText         Kind = "text"          // Free text
	KindSingleChoice Kind = "single_choice" // One option, can trigger display logic
	KindMultiChoice  Kind = "multi_choice"  // Any number of options
)

// DefaultOption seeds a choice question that would otherwise have no options
const DefaultOption = "Option 1"

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindSingleChoice, KindMultiChoice:
		return true
	}
	return false
}

// IsChoice reports whether options are meaningful for k
func (k Kind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultiChoice
}

// BranchRule shows a question only when an earlier single-choice answer matches
type BranchRule struct {
	TriggerIndex int    `json:"triggerIndex"`
	TriggerValue string `json:"triggerValue"`
}

// Question is one survey item
type Question struct {
	Prompt     string      `json:"prompt"`
	Kind       Kind        `json:"kind"`
	Options    []string    `json:"options"`
	AllowOther bool        `json:"allowOther"`
	BranchRule *BranchRule `json:"branchRule,omitempty"`
}

// NewQuestion returns an empty question of the given kind; text when kind is empty
func NewQuestion(kind Kind) Question {
	if kind == "" {
		kind = KindText
	}
	return Question{Kind: kind, Options: []string{}}
}

// HasOption reports whether value is one of the question's options
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}

func (q Question) clone() Question {
	c := q
	c.Options = append([]string{}, q.Options...)
	if q.BranchRule != nil {
		rule := *q.BranchRule
		c.BranchRule = &rule
	}
	return c
}

// setKind changes the kind, seeding an option when a choice kind would be left empty
func (q *Question) setKind(kind Kind) {
	q.Kind = kind
	if kind.IsChoice() && len(q.Options) == 0 {
		q.Options = []string{DefaultOption}
	}
}

// ParseOptions turns free-text option input into an option list.
// Ideographic commas count as separators; pieces are trimmed and blanks dropped.
func ParseOptions(raw string) []string {
	raw = strings.ReplaceAll(raw, "、", ",")
	return cleanOptions(strings.Split(raw, ","))
}

// JoinOptions renders options back into the free-text form ParseOptions reads
func JoinOptions(options []string) string {
	return strings.Join(options, ", ")
}

func cleanOptions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
