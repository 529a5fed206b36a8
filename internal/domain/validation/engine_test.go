package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerAmount(t *testing.T) {
	rule := IntegerAmount(AmountOpts{Min: 1, Max: 50_000, Label: "Loan amount"})

	t.Run("accepts whole dollar values", func(t *testing.T) {
		assert.True(t, rule("500", nil).OK)
		assert.True(t, rule("1", nil).OK)
		assert.True(t, rule("50000", nil).OK)
		assert.True(t, rule(" 500 ", nil).OK, "surrounding whitespace is tolerated")
	})

	t.Run("empty passes, Required handles mandatory fields", func(t *testing.T) {
		assert.True(t, rule("", nil).OK)
		assert.True(t, rule("   ", nil).OK)
	})

	t.Run("any decimal separator fails even when numerically whole", func(t *testing.T) {
		for _, v := range []string{"100.50", "100.0", "100.", "1,000"} {
			res := rule(v, nil)
			assert.False(t, res.OK, v)
			assert.Equal(t, "Loan amount must be a whole dollar amount", res.Message)
		}
	})

	t.Run("non-numeric fails", func(t *testing.T) {
		res := rule("abc", nil)
		assert.False(t, res.OK)
		assert.Equal(t, "Loan amount must be a number", res.Message)
	})

	t.Run("range bounds", func(t *testing.T) {
		assert.False(t, rule("50001", nil).OK)
		assert.False(t, rule("-5", nil).OK)
		assert.False(t, rule("0", nil).OK)
	})

	t.Run("zero allowed when configured", func(t *testing.T) {
		zeroOK := IntegerAmount(AmountOpts{Min: 0, Max: 10_000, AllowZero: true, Label: "Monthly interest"})
		assert.True(t, zeroOK("0", nil).OK)
	})
}

func TestStringRules(t *testing.T) {
	t.Run("Required rejects blank", func(t *testing.T) {
		rule := Required("name is required")
		assert.False(t, rule("", nil).OK)
		assert.False(t, rule("   ", nil).OK)
		assert.True(t, rule("x", nil).OK)
	})

	t.Run("MaxLen counts runes", func(t *testing.T) {
		rule := MaxLen(3, "too long")
		assert.True(t, rule("abc", nil).OK)
		assert.True(t, rule("äöü", nil).OK)
		assert.False(t, rule("abcd", nil).OK)
	})

	t.Run("Pattern skips empty values", func(t *testing.T) {
		rule := Pattern(regexp.MustCompile(`^[a-z]+$`), "lowercase only")
		assert.True(t, rule("", nil).OK)
		assert.True(t, rule("abc", nil).OK)
		assert.False(t, rule("ABC", nil).OK)
	})

	t.Run("When gates on the form snapshot", func(t *testing.T) {
		rule := When(
			func(f Form) bool { return f["mode"] == "strict" },
			Required("value required in strict mode"),
		)
		assert.True(t, rule("", Form{"mode": "lenient"}).OK)
		assert.False(t, rule("", Form{"mode": "strict"}).OK)
	})
}

func testRules() map[string][]Rule {
	return map[string][]Rule{
		"amount": {
			Required("amount is required"),
			IntegerAmount(AmountOpts{Min: 1, Max: 1000, Label: "Amount"}),
		},
		"barcode": {
			When(
				func(f Form) bool { return f["type"] == "NEW" },
				func(value string, _ Form) Result {
					if value != "" {
						return Result{Message: "barcode not allowed on new entries"}
					}
					return Result{OK: true}
				},
			),
		},
		"type": {},
	}
}

func TestEngine_TouchedGating(t *testing.T) {
	e := NewEngine(testRules())

	t.Run("untouched fields surface no errors", func(t *testing.T) {
		_, found := e.Error("amount")
		assert.False(t, found)
		assert.False(t, e.IsValid(), "gates still see the failing Required rule")
	})

	t.Run("editing a field surfaces its error", func(t *testing.T) {
		e.UpdateField("amount", "abc")
		msg, found := e.Error("amount")
		require.True(t, found)
		assert.Equal(t, "Amount must be a number", msg)
	})

	t.Run("fixing the value clears the error", func(t *testing.T) {
		e.UpdateField("amount", "500")
		_, found := e.Error("amount")
		assert.False(t, found)
		assert.True(t, e.IsValid())
	})

	t.Run("touch without edit surfaces the current verdict", func(t *testing.T) {
		e2 := NewEngine(testRules())
		e2.Touch("amount")
		msg, found := e2.Error("amount")
		require.True(t, found)
		assert.Equal(t, "amount is required", msg)
	})
}

func TestEngine_FirstFailingRuleWins(t *testing.T) {
	e := NewEngine(testRules())
	e.UpdateField("amount", "")
	msg, found := e.Error("amount")
	require.True(t, found)
	assert.Equal(t, "amount is required", msg, "Required runs before IntegerAmount")
}

func TestEngine_BatchedUpdate(t *testing.T) {
	e := NewEngine(testRules())
	e.UpdateField("type", "IMPORTED")
	e.UpdateField("barcode", "ABC-123")
	_, found := e.Error("barcode")
	require.False(t, found)

	// Switching the type and clearing the barcode must land together;
	// validating between the two writes would flag a barcode on a new entry.
	e.UpdateFields(map[string]string{
		"type":    "NEW",
		"barcode": "",
	})
	_, found = e.Error("barcode")
	assert.False(t, found)
	assert.Equal(t, "NEW", e.Value("type"))
	assert.Equal(t, "", e.Value("barcode"))
}

func TestEngine_ValidateAll(t *testing.T) {
	e := NewEngine(testRules())
	e.UpdateField("type", "NEW")
	e.UpdateField("barcode", "X1")

	sum := e.ValidateAll()
	assert.False(t, sum.IsValid)
	assert.Equal(t, "amount is required", sum.Errors["amount"])
	assert.Equal(t, "barcode not allowed on new entries", sum.Errors["barcode"])
	assert.True(t, e.Touched("amount"), "ValidateAll sweeps every ruled field")

	e.UpdateFields(map[string]string{"amount": "10", "barcode": ""})
	sum = e.ValidateAll()
	assert.True(t, sum.IsValid)
	assert.Empty(t, sum.Errors)
}

func TestEngine_FormSnapshotIsACopy(t *testing.T) {
	e := NewEngine(testRules())
	e.UpdateField("amount", "10")
	snap := e.Form()
	snap["amount"] = "999"
	assert.Equal(t, "10", e.Value("amount"))
}
