package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrUnknownParameter is returned when binding a name the query does not use.
	ErrUnknownParameter = errors.New("query does not define parameter")

	// ErrMissingParameter is returned when a parameter has no bound value.
	ErrMissingParameter = errors.New("a value is required for parameter")
)

// CompiledQuery is a ":name" parameterized query rewritten for one driver's
// placeholder style.
type CompiledQuery struct {
	// Text is the query as written.
	Text string
	// SQL is the rewritten query sent to the driver.
	SQL string
	// Names lists every parameter once, in order of first appearance.
	Names []string
	// Params maps each name to its bound value, nil until bound.
	Params map[string]interface{}

	// occurrences holds the name behind each placeholder in SQL.
	occurrences []string
	bound       map[string]bool
}

// CompileNamed rewrites the ":name" placeholders of query for bindType (one
// of the sqlx bind constants). A name must start after a character that is
// neither a word character, a colon nor a backslash, and must not be followed
// by a colon, so "a::int" casts and "12:30" literals are left alone. "\:"
// yields a literal colon. Quoted strings, quoted identifiers and comments are
// copied verbatim.
func CompileNamed(query string, bindType int) (*CompiledQuery, error) {
	cq := &CompiledQuery{
		Text:   query,
		Params: map[string]interface{}{},
		bound:  map[string]bool{},
	}

	var out strings.Builder
	out.Grow(len(query))

	n := len(query)
	for i := 0; i < n; {
		c := query[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end, err := skipQuoted(query, i)
			if err != nil {
				return nil, err
			}
			out.WriteString(query[i:end])
			i = end

		case c == '-' && i+1 < n && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = n
			} else {
				end += i
			}
			out.WriteString(query[i:end])
			i = end

		case c == '/' && i+1 < n && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment at offset %d", i)
			}
			end += i + 4
			out.WriteString(query[i:end])
			i = end

		case c == '\\' && i+1 < n && query[i+1] == ':':
			out.WriteByte(':')
			i += 2

		case c == ':' && isParamStart(query, i):
			j := i + 1
			for j < n && isWordChar(query[j]) {
				j++
			}
			name := query[i+1 : j]
			if _, seen := cq.Params[name]; !seen {
				cq.Names = append(cq.Names, name)
				cq.Params[name] = nil
			}
			cq.occurrences = append(cq.occurrences, name)
			out.WriteString(bindVar(bindType, len(cq.occurrences)))
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}

	cq.SQL = out.String()
	return cq, nil
}

func isParamStart(q string, i int) bool {
	if i+1 >= len(q) || !isWordChar(q[i+1]) {
		return false
	}
	if i > 0 {
		prev := q[i-1]
		if prev == ':' || prev == '\\' || isWordChar(prev) {
			return false
		}
	}
	j := i + 1
	for j < len(q) && isWordChar(q[j]) {
		j++
	}
	return j >= len(q) || q[j] != ':'
}

func isWordChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// skipQuoted returns the offset just past the quoted section starting at i.
// A doubled closing quote is an escaped quote.
func skipQuoted(q string, i int) (int, error) {
	closer := q[i]
	for j := i + 1; j < len(q); j++ {
		if q[j] != closer {
			continue
		}
		if j+1 < len(q) && q[j+1] == closer {
			j++
			continue
		}
		return j + 1, nil
	}
	return 0, fmt.Errorf("unterminated quoted section at offset %d", i)
}

// bindVar renders the n-th (1-based) placeholder in the style sqlx.Rebind uses.
func bindVar(bindType, n int) string {
	switch bindType {
	case sqlx.DOLLAR:
		return "$" + strconv.Itoa(n)
	case sqlx.AT:
		return "@p" + strconv.Itoa(n)
	case sqlx.NAMED:
		return ":arg" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Bind returns a copy of the query with values merged into Params. Binding a
// name the query does not use fails with ErrUnknownParameter.
func (c *CompiledQuery) Bind(values map[string]interface{}) (*CompiledQuery, error) {
	out := &CompiledQuery{
		Text:        c.Text,
		SQL:         c.SQL,
		Names:       append([]string(nil), c.Names...),
		Params:      make(map[string]interface{}, len(c.Params)),
		occurrences: c.occurrences,
		bound:       make(map[string]bool, len(c.bound)+len(values)),
	}
	for k, v := range c.Params {
		out.Params[k] = v
	}
	for k := range c.bound {
		out.bound[k] = true
	}
	for k, v := range values {
		if _, ok := out.Params[k]; !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownParameter, k)
		}
		out.Params[k] = v
		out.bound[k] = true
	}
	return out, nil
}

// IsBound reports whether name has been given a value, nil included.
func (c *CompiledQuery) IsBound(name string) bool {
	return c.bound[name]
}

// Args returns the positional driver arguments, one per placeholder.
func (c *CompiledQuery) Args() ([]interface{}, error) {
	args := make([]interface{}, 0, len(c.occurrences))
	for _, name := range c.occurrences {
		if !c.bound[name] {
			return nil, fmt.Errorf("%w %q", ErrMissingParameter, name)
		}
		args = append(args, c.Params[name])
	}
	return args, nil
}
