package server

// Input-validation constants for the translate_sql tool, sized the same
// as the teacher's query_validation.go constants since the DoS concern
// (an absurdly large or absurdly nested statement) is identical even
// though the statement is parsed and rewritten here, never executed.
const (
	MaxStatementLength  = 10000
	MaxParenthesesDepth = 20
)
