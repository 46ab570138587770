package survey

// Answers maps a question index to the answer given for it
type Answers map[int]string

// RuleState is the display-logic configuration stage of a question
type RuleState string

const (
	RuleNone     RuleState = "none"
	RuleDraft    RuleState = "draft"    // Trigger chosen, value not yet
	RuleComplete RuleState = "complete" // Trigger and value chosen
)

// RuleState reports how far the question's display logic is configured
func (q Question) RuleState() RuleState {
	switch {
	case q.BranchRule == nil:
		return RuleNone
	case q.BranchRule.TriggerValue == "":
		return RuleDraft
	default:
		return RuleComplete
	}
}

// IsVisible reports whether q is shown given the answers collected so far.
// Only a complete rule hides a question: the trigger's answer must equal the
// rule value exactly.
func IsVisible(q Question, answers Answers) bool {
	if q.RuleState() != RuleComplete {
		return true
	}
	got, ok := answers[q.BranchRule.TriggerIndex]
	return ok && got == q.BranchRule.TriggerValue
}

// Visibility evaluates IsVisible for every question in document order
func (d *Document) Visibility(answers Answers) []bool {
	out := make([]bool, len(d.questions))
	for i, q := range d.questions {
		out[i] = IsVisible(q, answers)
	}
	return out
}

// revalidateAfterEdit drops the rules triggered by questions[edited] that it
// can no longer satisfy. Values are never remapped.
func revalidateAfterEdit(questions []Question, edited int) {
	trigger := questions[edited]
	for i := edited + 1; i < len(questions); i++ {
		rule := questions[i].BranchRule
		if rule == nil || rule.TriggerIndex != edited {
			continue
		}
		if trigger.Kind != KindSingleChoice || (rule.TriggerValue != "" && !trigger.HasOption(rule.TriggerValue)) {
			questions[i].BranchRule = nil
		}
	}
}

// revalidateAfterRemoval fixes rules after questions[removed] was spliced out:
// rules on it are dropped, rules past it follow the shift.
func revalidateAfterRemoval(questions []Question, removed int) {
	for i := range questions {
		rule := questions[i].BranchRule
		if rule == nil {
			continue
		}
		switch {
		case rule.TriggerIndex == removed:
			questions[i].BranchRule = nil
		case rule.TriggerIndex > removed:
			rule.TriggerIndex--
		}
	}
}

// repairRules drops every rule that breaks the trigger invariants and
// returns how many were dropped. Used on ingested data.
func repairRules(questions []Question) int {
	dropped := 0
	for i := range questions {
		rule := questions[i].BranchRule
		if rule == nil {
			continue
		}
		ok := rule.TriggerIndex >= 0 && rule.TriggerIndex < i
		if ok {
			trigger := questions[rule.TriggerIndex]
			ok = trigger.Kind == KindSingleChoice && (rule.TriggerValue == "" || trigger.HasOption(rule.TriggerValue))
		}
		if !ok {
			questions[i].BranchRule = nil
			dropped++
		}
	}
	return dropped
}
