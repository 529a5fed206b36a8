package validation

// ---------------------------------------------------------------------------
// Engine – per-field rule evaluation with touched-tracking
// ---------------------------------------------------------------------------

// Summary aggregates a whole-form validation pass.
type Summary struct {
	IsValid     bool
	Errors      map[string]string
	Suggestions map[string][]string
}

// Engine evaluates field rules and tracks which fields have been touched.
// A field's error is only surfaced once the field is touched (edited, or
// swept by ValidateAll), so a freshly opened form renders without noise.
//
// The first failing rule wins per field; rules are never aggregated.
type Engine struct {
	rules       map[string][]Rule
	form        Form
	touched     map[string]bool
	errors      map[string]string
	suggestions map[string][]string
}

// NewEngine creates an engine for the given per-field rule sets.
func NewEngine(rules map[string][]Rule) *Engine {
	return &Engine{
		rules:       rules,
		form:        Form{},
		touched:     map[string]bool{},
		errors:      map[string]string{},
		suggestions: map[string][]string{},
	}
}

// ValidateField evaluates the rules for field against value and the current
// form snapshot. It does not mutate engine state.
func (e *Engine) ValidateField(field, value string) Result {
	for _, rule := range e.rules[field] {
		if res := rule(value, e.form); !res.OK {
			return res
		}
	}
	return Result{OK: true}
}

// UpdateField sets one field value, marks it touched, and re-validates all
// touched fields.
func (e *Engine) UpdateField(field, value string) {
	e.UpdateFields(map[string]string{field: value})
}

// UpdateFields applies a batched update as a single state transition: all
// values land before any rule runs, so cross-field rules never observe a
// half-applied form (e.g. clearing a barcode together with switching the
// transaction type). Only touched fields are re-validated.
func (e *Engine) UpdateFields(values map[string]string) {
	for field, value := range values {
		e.form[field] = value
		e.touched[field] = true
	}
	e.revalidateTouched()
}

// Touch marks a field touched without changing its value (focus/blur) and
// re-validates touched fields.
func (e *Engine) Touch(field string) {
	e.touched[field] = true
	e.revalidateTouched()
}

// ValidateAll marks every ruled field touched and returns the aggregate
// verdict across all rules.
func (e *Engine) ValidateAll() Summary {
	for field := range e.rules {
		e.touched[field] = true
	}
	e.revalidateTouched()

	sum := Summary{
		IsValid:     true,
		Errors:      map[string]string{},
		Suggestions: map[string][]string{},
	}
	for field, msg := range e.errors {
		sum.IsValid = false
		sum.Errors[field] = msg
		if s := e.suggestions[field]; len(s) > 0 {
			sum.Suggestions[field] = s
		}
	}
	return sum
}

// Value returns the current value of a field.
func (e *Engine) Value(field string) string { return e.form[field] }

// Form returns a copy of the current form snapshot.
func (e *Engine) Form() Form {
	out := make(Form, len(e.form))
	for k, v := range e.form {
		out[k] = v
	}
	return out
}

// Touched reports whether a field has been touched.
func (e *Engine) Touched(field string) bool { return e.touched[field] }

// Error returns the surfaced error for a field. Untouched fields never
// surface errors.
func (e *Engine) Error(field string) (string, bool) {
	if !e.touched[field] {
		return "", false
	}
	msg, found := e.errors[field]
	return msg, found
}

// IsValid reports whether every ruled field currently passes its rules,
// touched or not. Gates use this; inline display uses Error.
func (e *Engine) IsValid() bool {
	for field := range e.rules {
		if res := e.ValidateField(field, e.form[field]); !res.OK {
			return false
		}
	}
	return true
}

func (e *Engine) revalidateTouched() {
	for field := range e.touched {
		res := e.ValidateField(field, e.form[field])
		if res.OK {
			delete(e.errors, field)
			delete(e.suggestions, field)
			continue
		}
		e.errors[field] = res.Message
		if len(res.Suggestions) > 0 {
			e.suggestions[field] = res.Suggestions
		} else {
			delete(e.suggestions, field)
		}
	}
}
