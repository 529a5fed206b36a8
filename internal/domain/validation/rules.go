package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Rule primitives
// ---------------------------------------------------------------------------

// Form is the full form snapshot a rule may consult for cross-field checks.
type Form map[string]string

// Result is the outcome of evaluating one rule against one value.
type Result struct {
	OK          bool
	Message     string
	Suggestions []string
}

// Rule is a pure validation function. Rules receive the whole form so that
// cross-field rules (e.g. a barcode rule that only applies for imported
// transactions) can be expressed without engine support.
type Rule func(value string, form Form) Result

func ok() Result { return Result{OK: true} }

func fail(msg string, suggestions ...string) Result {
	return Result{Message: msg, Suggestions: suggestions}
}

// ---------------------------------------------------------------------------
// String rules
// ---------------------------------------------------------------------------

// Required fails on blank (all-whitespace) values.
func Required(message string) Rule {
	return func(value string, _ Form) Result {
		if strings.TrimSpace(value) == "" {
			return fail(message)
		}
		return ok()
	}
}

// MaxLen fails when the value exceeds max characters.
func MaxLen(max int, message string) Rule {
	return func(value string, _ Form) Result {
		if len([]rune(value)) > max {
			return fail(message)
		}
		return ok()
	}
}

// Pattern fails when a non-empty value does not match re. Empty values pass;
// combine with Required when the field is mandatory.
func Pattern(re *regexp.Regexp, message string) Rule {
	return func(value string, _ Form) Result {
		if value == "" {
			return ok()
		}
		if !re.MatchString(value) {
			return fail(message)
		}
		return ok()
	}
}

// When applies rule only while cond holds for the current form snapshot.
func When(cond func(Form) bool, rule Rule) Rule {
	return func(value string, form Form) Result {
		if !cond(form) {
			return ok()
		}
		return rule(value, form)
	}
}

// ---------------------------------------------------------------------------
// Amount rule
// ---------------------------------------------------------------------------

// AmountOpts configures IntegerAmount.
type AmountOpts struct {
	Min       int64
	Max       int64
	AllowZero bool
	Label     string
}

// IntegerAmount validates a whole-dollar amount. Any decimal separator fails
// the rule, even when the value is numerically whole ("100.0").
func IntegerAmount(opts AmountOpts) Rule {
	label := opts.Label
	if label == "" {
		label = "Amount"
	}
	return func(value string, _ Form) Result {
		v := strings.TrimSpace(value)
		if v == "" {
			return ok()
		}
		if strings.ContainsAny(v, ".,") {
			return fail(fmt.Sprintf("%s must be a whole dollar amount", label))
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fail(fmt.Sprintf("%s must be a number", label))
		}
		if n == 0 {
			if opts.AllowZero {
				return ok()
			}
			return fail(fmt.Sprintf("%s cannot be zero", label))
		}
		if n < opts.Min || n > opts.Max {
			return fail(fmt.Sprintf("%s must be between %d and %d", label, opts.Min, opts.Max))
		}
		return ok()
	}
}
