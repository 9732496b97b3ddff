package sqltransform

import (
	"fmt"
	"strings"
)

// rewriteBuiltinFunction renders a recognized Oracle built-in call given its
// already-transformed argument strings. Returning ok=false means the
// name isn't one of the built-ins this table recognizes, and the
// general FunctionCall emission path should pass it through unchanged
// (spec.md §4.11: "Otherwise pass through unchanged").
func rewriteBuiltinFunction(name string, args []string) (string, bool) {
	switch strings.ToUpper(name) {
	case "NVL":
		if len(args) == 2 {
			return fmt.Sprintf("COALESCE(%s, %s)", args[0], args[1]), true
		}
	case "NVL2":
		if len(args) == 3 {
			return fmt.Sprintf("CASE WHEN %s IS NOT NULL THEN %s ELSE %s END", args[0], args[1], args[2]), true
		}
	case "DECODE":
		if len(args) >= 3 {
			return decodeToCase(args), true
		}
	case "SUBSTR":
		if len(args) == 2 {
			return fmt.Sprintf("SUBSTRING(%s FROM %s)", args[0], args[1]), true
		}
		if len(args) == 3 {
			return fmt.Sprintf("SUBSTRING(%s FROM %s FOR %s)", args[0], args[1], args[2]), true
		}
	case "INSTR":
		switch len(args) {
		case 2:
			return fmt.Sprintf("POSITION(%s IN %s)", args[1], args[0]), true
		case 3:
			return fmt.Sprintf(
				"CASE WHEN %[2]s > 0 AND %[2]s <= LENGTH(%[1]s) THEN POSITION(%[3]s IN SUBSTRING(%[1]s FROM %[2]s)) + (%[2]s - 1) ELSE 0 END",
				args[0], args[1], args[2],
			), true
		case 4:
			// Requires a user-defined helper (spec.md §4.11); emitted as a
			// call to that helper rather than attempted inline, since the
			// occurrence-counted search has no single-expression PostgreSQL
			// equivalent.
			return fmt.Sprintf("instr_with_occurrence(%s, %s, %s, %s)", args[0], args[1], args[2], args[3]), true
		}
	case "REGEXP_REPLACE":
		if len(args) == 3 {
			return fmt.Sprintf("REGEXP_REPLACE(%s, %s, %s, 'g')", args[0], args[1], args[2]), true
		}
	case "REGEXP_SUBSTR":
		if len(args) == 2 {
			return fmt.Sprintf("(REGEXP_MATCH(%s, %s))[1]", args[0], args[1]), true
		}
	case "ADD_MONTHS":
		if len(args) == 2 {
			return fmt.Sprintf("(%s + (%s || ' months')::INTERVAL)", args[0], args[1]), true
		}
	case "MONTHS_BETWEEN":
		if len(args) == 2 {
			return fmt.Sprintf(
				"(EXTRACT(YEAR FROM AGE(%[1]s, %[2]s)) * 12 + EXTRACT(MONTH FROM AGE(%[1]s, %[2]s)))",
				args[0], args[1],
			), true
		}
	case "LAST_DAY":
		if len(args) == 1 {
			return fmt.Sprintf("(DATE_TRUNC('MONTH', %s) + INTERVAL '1 month' - INTERVAL '1 day')::DATE", args[0]), true
		}
	}
	return "", false
}

// decodeToCase renders DECODE(e, s1,r1, ..., [def]) as a simple CASE
// expression. An even total argument count means a trailing default is
// present (spec.md §4.11's rule for ELSE presence).
func decodeToCase(args []string) string {
	expr := args[0]
	pairs := args[1:]

	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", expr)

	i := 0
	for ; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, " WHEN %s THEN %s", pairs[i], pairs[i+1])
	}
	if i < len(pairs) {
		fmt.Fprintf(&b, " ELSE %s", pairs[i])
	}
	b.WriteString(" END")
	return b.String()
}

// truncOrRoundIsDate applies spec.md §4.11's heuristic: a known
// date-format literal as the second argument, or a date-expression
// marker in the first argument, means treat as the date overload;
// otherwise numeric TRUNC/ROUND pass through unchanged.
func truncOrRoundIsDate(firstArgText, secondArgText string) bool {
	fmtLiteral := strings.Trim(strings.ToUpper(secondArgText), "' ")
	switch fmtLiteral {
	case "YYYY", "YEAR", "MM", "MONTH", "DD", "DAY", "HH", "HH24", "MI", "Q":
		return true
	}
	upperFirst := strings.ToUpper(firstArgText)
	for _, marker := range []string{"SYSDATE", "TO_DATE", "LAST_DAY"} {
		if strings.Contains(upperFirst, marker) {
			return true
		}
	}
	return false
}

// dateTruncField maps an Oracle TRUNC/ROUND format code to the
// PostgreSQL DATE_TRUNC field name.
func dateTruncField(fmtLiteral string) string {
	switch strings.Trim(strings.ToUpper(fmtLiteral), "' ") {
	case "YYYY", "YEAR":
		return "YEAR"
	case "MM", "MONTH":
		return "MONTH"
	case "DD", "DAY":
		return "DAY"
	case "HH", "HH24":
		return "HOUR"
	case "MI":
		return "MINUTE"
	default:
		return "DAY"
	}
}

// toCharDateFormat translates the date-format codes spec.md §4.11 calls
// out: the century-aware RR/RRRR year codes fold to plain YY/YYYY, since
// PostgreSQL's to_char has no RR-equivalent rounding behavior.
// emitToChar applies it to every two-argument TO_CHAR call, number-valued
// ones included, since it cannot tell the two apart.
func toCharDateFormat(oracleFormat string) string {
	f := strings.ReplaceAll(oracleFormat, "RRRR", "YYYY")
	f = strings.ReplaceAll(f, "RR", "YY")
	return f
}

// toCharNumberFormat translates the number-format separator codes
// spec.md §4.11 calls out: Oracle's D/G locale-aware decimal-point and
// group-separator placeholders become PostgreSQL's literal `.`/`,`.
// Nothing in this package calls it: emitToChar does not detect
// number-valued TO_CHAR calls, so their D and G codes are left as they
// are.
func toCharNumberFormat(oracleFormat string) string {
	f := strings.ReplaceAll(oracleFormat, "D", ".")
	f = strings.ReplaceAll(f, "G", ",")
	return f
}
