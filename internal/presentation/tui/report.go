package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/heartaxis/pkg/domain"
)

var fieldLabels = map[domain.Field]string{
	domain.FieldSumI:   "Sum of lead I",
	domain.FieldSumIII: "Sum of lead III",
	domain.FieldR1:     "R wave, lead I",
	domain.FieldQS1:    "Q+S waves, lead I",
	domain.FieldR3:     "R wave, lead III",
	domain.FieldQS3:    "Q+S waves, lead III",
}

var ruleMessages = map[domain.Rule]string{
	domain.RuleRequired:       "value is required",
	domain.RuleInvalidNumber:  "not a number",
	domain.RuleInvalidMinimum: "below the minimum",
	domain.RuleInvalidMaximum: "above the maximum",
	domain.RuleAllValueIsZero: "both sums are zero",
	domain.RuleAllSumsIsZero:  "every R minus QS difference is zero",
}

// Label returns the human name of a field.
func Label(f domain.Field) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Message returns the human description of a rule.
func Message(r domain.Rule) string {
	if m, ok := ruleMessages[r]; ok {
		return m
	}
	return string(r)
}

// Report renders the live fields and the outcome of a mode as markdown.
func Report(mode domain.Mode, in domain.InputSet, o domain.Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Heart axis (%s)\n\n", mode)
	b.WriteString("| Field | Value | Status |\n|---|---|---|\n")
	for _, f := range mode.Fields() {
		status := "ok"
		if rules := o.Validation.FieldRules(f); len(rules) > 0 {
			msgs := make([]string, len(rules))
			for i, r := range rules {
				msgs[i] = Message(r)
			}
			status = strings.Join(msgs, ", ")
		}
		value := in.Get(f).String()
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "| %s (`%s`) | %s | %s |\n", Label(f), f, value, status)
	}
	b.WriteString("\n")

	for _, r := range o.Validation.Form.Rules() {
		fmt.Fprintf(&b, "> %s\n\n", Message(r))
	}

	fmt.Fprintf(&b, "**Axis:** %s", o.Display)
	if o.HasAngle() && !o.FormInvalid {
		fmt.Fprintf(&b, " (%s deviation, magnitude %.2f)", o.Deviation, o.Magnitude)
	}
	b.WriteString("\n")
	return b.String()
}

// PrintOutcome writes a one-line summary, colored by validity.
func PrintOutcome(w io.Writer, o domain.Outcome) {
	out := termenv.NewOutput(w)
	display := out.String(o.Display).Bold()
	if o.FormInvalid {
		display = display.Foreground(out.Color("#ef4444"))
		fmt.Fprintf(w, "axis: %s [%s]\n", display, strings.Join(ruleNames(o.Validation.Rules()), ", "))
		return
	}
	display = display.Foreground(out.Color("#22c55e"))
	fmt.Fprintf(w, "axis: %s (%s)\n", display, o.Deviation)
}

func ruleNames(rules []domain.Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = string(r)
	}
	return names
}
