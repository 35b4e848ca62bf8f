package column

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Outcome is the result of validating a candidate cell value. An empty error list
// means the value is accepted.
type Outcome struct {
	Errors []string
}

// Valid reports whether the outcome carries no errors.
func (o Outcome) Valid() bool { return len(o.Errors) == 0 }

// Ok is the accepted outcome.
func Ok() Outcome { return Outcome{} }

// Fail builds a rejected outcome.
func Fail(msgs ...string) Outcome { return Outcome{Errors: msgs} }

// Rule validates a single candidate value, ignoring the row.
type Rule func(candidate any) Outcome

// Rules builds a column validator that runs every rule and merges their errors.
func Rules[R any](rules ...Rule) func(row R, candidate any) Outcome {
	return func(_ R, candidate any) Outcome {
		var out Outcome
		for _, rule := range rules {
			out.Errors = append(out.Errors, rule(candidate).Errors...)
		}
		return out
	}
}

// Required rejects nil and blank strings.
func Required() Rule {
	return func(v any) Outcome {
		if v == nil {
			return Fail("required")
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return Fail("required")
		}
		return Ok()
	}
}

// MaxLen rejects strings longer than n runes.
func MaxLen(n int) Rule {
	return func(v any) Outcome {
		s, ok := v.(string)
		if ok && utf8.RuneCountInString(s) > n {
			return Fail(fmt.Sprintf("max %d characters", n))
		}
		return Ok()
	}
}

// Range rejects numbers outside [lo, hi]. Non-numeric values are rejected too.
func Range(lo, hi float64) Rule {
	return func(v any) Outcome {
		if v == nil {
			return Ok()
		}
		f, ok := ToFloat(v)
		if !ok {
			return Fail("must be a number")
		}
		if f < lo || f > hi {
			return Fail(fmt.Sprintf("must be between %g and %g", lo, hi))
		}
		return Ok()
	}
}

// Match rejects non-empty strings that don't match pattern.
func Match(pattern, msg string) Rule {
	re := regexp.MustCompile(pattern)
	return func(v any) Outcome {
		s, ok := v.(string)
		if !ok || s == "" {
			return Ok()
		}
		if !re.MatchString(s) {
			if msg == "" {
				msg = "invalid format"
			}
			return Fail(msg)
		}
		return Ok()
	}
}

// OneOf rejects values whose display text is not one of allowed. Blank is accepted;
// combine with Required to forbid it.
func OneOf(allowed ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(v any) Outcome {
		s := Text(v)
		if s == "" {
			return Ok()
		}
		if _, ok := set[s]; !ok {
			return Fail(fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
		}
		return Ok()
	}
}
