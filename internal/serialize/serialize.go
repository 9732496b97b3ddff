// Package serialize implements the Complex-Value Serializer (C7,
// spec.md §4.7): a stateless value → bulk-load-text encoder used by
// internal/transfer's Producer when streaming Oracle rows into
// PostgreSQL's COPY FROM STDIN format.
package serialize

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

// NullToken is the CSV null sentinel shared by the serializer and the
// COPY ... WITH NULL '...' clause (spec.md §6).
const NullToken = `\N`

// Resolver looks up a composite type's attribute shape so Serialize can
// recurse into UserDefined values.
type Resolver interface {
	Composite(q catalog.QualifiedName) (*catalog.CompositeType, bool)
}

// Value is the dynamically-typed Oracle column value Serialize accepts.
// Exactly one field is meaningful, chosen by the TypeRef passed in.
type Value struct {
	Null       bool
	Scalar     any // already driver-converted (string, int64, float64, time.Time, bool, ...)
	LOB        io.Reader
	Attributes []Value // UserDefined, in attribute order
	Raw        []byte  // ComplexSystem best-effort body
}

// Serialize encodes value according to t into a bulk-load text token.
func Serialize(value Value, t catalog.TypeRef, resolver Resolver) (string, error) {
	if value.Null {
		return NullToken, nil
	}

	switch t.Kind {
	case catalog.TypeBuiltIn:
		return serializeBuiltIn(value, t)
	case catalog.TypeUserDefined:
		return serializeComposite(value, t, resolver)
	case catalog.TypeComplexSystem:
		return serializeComplexSystem(value, t)
	default:
		return "", fmt.Errorf("serialize: unknown TypeRef kind %d", t.Kind)
	}
}

func serializeBuiltIn(value Value, t catalog.TypeRef) (string, error) {
	switch strings.ToUpper(t.OracleName) {
	case "BLOB", "LONG RAW", "RAW":
		if value.LOB == nil {
			return csvEscape(fmt.Sprintf("%v", value.Scalar)), nil
		}
		data, err := io.ReadAll(value.LOB)
		if err != nil {
			return "", fmt.Errorf("serialize: reading BLOB: %w", err)
		}
		return `\x` + hex.EncodeToString(data), nil

	case "CLOB", "NCLOB", "LONG":
		if value.LOB == nil {
			return csvEscape(fmt.Sprintf("%v", value.Scalar)), nil
		}
		data, err := io.ReadAll(value.LOB)
		if err != nil {
			return "", fmt.Errorf("serialize: reading CLOB: %w", err)
		}
		return csvEscape(string(data)), nil

	default:
		return csvEscape(scalarString(value.Scalar)), nil
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// csvEscape applies COPY TEXT format escaping: backslash, newline, tab
// and carriage return are backslash-escaped; PostgreSQL's COPY TEXT
// format has no quoting concept the way CSV does.
func csvEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// serializeComposite emits a PostgreSQL composite literal: "(a1,a2,...)"
// with NULL attributes empty and any attribute containing a comma,
// paren, or quote double-quoted with doubled internal quotes.
func serializeComposite(value Value, t catalog.TypeRef, resolver Resolver) (string, error) {
	ct, ok := resolver.Composite(t.Ref)
	if !ok {
		return "", fmt.Errorf("serialize: unknown composite type %s", t.Ref.String())
	}
	if len(value.Attributes) != len(ct.Attributes) {
		return "", fmt.Errorf("serialize: %s expects %d attributes, got %d", t.Ref.String(), len(ct.Attributes), len(value.Attributes))
	}

	parts := make([]string, len(ct.Attributes))
	for i, attr := range ct.Attributes {
		if value.Attributes[i].Null {
			parts[i] = ""
			continue
		}
		inner, err := Serialize(value.Attributes[i], attr.Type, resolver)
		if err != nil {
			return "", err
		}
		parts[i] = quoteCompositeField(inner)
	}

	return "(" + strings.Join(parts, ",") + ")", nil
}

func quoteCompositeField(s string) string {
	if strings.ContainsAny(s, `,()"\`+"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// complexSystemEnvelope is the discriminated JSON shape every
// ComplexSystem value serializes to, so downstream jsonb consumers have
// one schema to dispatch on (spec.md §4.7, concretized per SPEC_FULL.md
// §3.8): value carries real nested JSON when the dynamic value's
// structure could be recovered, base64 carries the raw bytes otherwise.
type complexSystemEnvelope struct {
	OracleType string          `json:"oracleType"`
	Value      json.RawMessage `json:"value,omitempty"`
	Base64     string          `json:"base64,omitempty"`
}

func serializeComplexSystem(value Value, t catalog.TypeRef) (string, error) {
	env := complexSystemEnvelope{OracleType: t.Ref.String()}
	if value.Raw != nil {
		env.Value = value.Raw
	} else {
		env.Base64 = base64.StdEncoding.EncodeToString([]byte(scalarString(value.Scalar)))
	}

	encoded, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("serialize: encoding ComplexSystem envelope: %w", err)
	}
	return csvEscape(string(encoded)), nil
}
