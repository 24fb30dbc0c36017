package domain

import "sort"

// Rule names a validation rule. The names match the flags the form reports
// to its display so hosts can key their messages on them.
type Rule string

const (
	RuleRequired       Rule = "required"
	RuleInvalidNumber  Rule = "invalidNumber"
	RuleInvalidMinimum Rule = "invalidMinimum"
	RuleInvalidMaximum Rule = "invalidMaximum"
	RuleAllValueIsZero Rule = "allValueIsZero"
	RuleAllSumsIsZero  Rule = "allSumsIsZero"
)

// Flags is the set of rules a check found violated.
// A nil or empty set means the check passed.
type Flags map[Rule]bool

// Flag builds a set holding a single rule.
func Flag(r Rule) Flags {
	return Flags{r: true}
}

// Merge adds every rule of o and returns the receiver (allocating if nil).
func (f Flags) Merge(o Flags) Flags {
	if len(o) == 0 {
		return f
	}
	if f == nil {
		f = make(Flags, len(o))
	}
	for r, on := range o {
		if on {
			f[r] = true
		}
	}
	return f
}

// Has reports whether the rule is flagged.
func (f Flags) Has(r Rule) bool {
	return f[r]
}

// Rules returns the flagged rules in lexical order.
func (f Flags) Rules() []Rule {
	rules := make([]Rule, 0, len(f))
	for r, on := range f {
		if on {
			rules = append(rules, r)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	return rules
}

// ValidationResult collects every violation found in one snapshot.
type ValidationResult struct {
	// Fields maps a field to its violated per-field rules. Valid fields are absent.
	Fields map[Field]Flags `json:"fields,omitempty"`

	// Form holds violated cross-field rules.
	Form Flags `json:"form,omitempty"`
}

// Invalid is true iff any rule failed.
func (r ValidationResult) Invalid() bool {
	if len(r.Form.Rules()) > 0 {
		return true
	}
	for _, flags := range r.Fields {
		if len(flags.Rules()) > 0 {
			return true
		}
	}
	return false
}

// Has reports whether the rule failed anywhere.
func (r ValidationResult) Has(rule Rule) bool {
	if r.Form.Has(rule) {
		return true
	}
	for _, flags := range r.Fields {
		if flags.Has(rule) {
			return true
		}
	}
	return false
}

// FieldRules returns the rules violated by one field.
func (r ValidationResult) FieldRules(f Field) []Rule {
	return r.Fields[f].Rules()
}

// Rules returns the complete set of failing rule names.
func (r ValidationResult) Rules() []Rule {
	all := Flags{}.Merge(r.Form)
	for _, flags := range r.Fields {
		all = all.Merge(flags)
	}
	return all.Rules()
}
