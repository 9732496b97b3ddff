package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementValidatorRejectsEmpty(t *testing.T) {
	err := NewStatementValidator("   ").Validate()
	assert.ErrorIs(t, err, ErrQueryEmpty)
}

func TestStatementValidatorRejectsTooLong(t *testing.T) {
	long := "SELECT " + strings.Repeat("a", MaxStatementLength)
	err := NewStatementValidator(long).Validate()
	assert.ErrorIs(t, err, ErrQueryTooLong)
}

func TestStatementValidatorRejectsNonStatementPrefix(t *testing.T) {
	err := NewStatementValidator("hello there").Validate()
	assert.ErrorIs(t, err, ErrNoStatementKeyword)
}

func TestStatementValidatorAcceptsSelectAndWith(t *testing.T) {
	assert.NoError(t, NewStatementValidator("SELECT 1 FROM dual").Validate())
	assert.NoError(t, NewStatementValidator("WITH x AS (SELECT 1) SELECT * FROM x").Validate())
}

func TestStatementValidatorRejectsSuspiciousControlCharacter(t *testing.T) {
	err := NewStatementValidator("SELECT 1\x07FROM dual").Validate()
	assert.ErrorIs(t, err, ErrSuspiciousCharacter)
}

func TestStatementValidatorRejectsUnbalancedParens(t *testing.T) {
	err := NewStatementValidator("SELECT (1 FROM dual").Validate()
	assert.ErrorIs(t, err, ErrUnbalancedParens)
}

func TestStatementValidatorRejectsExcessiveNesting(t *testing.T) {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i := 0; i < MaxParenthesesDepth+1; i++ {
		b.WriteString("(")
	}
	b.WriteString("1")
	for i := 0; i < MaxParenthesesDepth+1; i++ {
		b.WriteString(")")
	}
	b.WriteString(" FROM dual")
	err := NewStatementValidator(b.String()).Validate()
	assert.ErrorIs(t, err, ErrParenthesesTooDeep)
}
