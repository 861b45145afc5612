/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

// Package filter provides a small predicate grammar over store records.
//
// An expression is built from comparisons on logical field names (Eq, Blank,
// Range, In) combined with And, Or and Not. The same expression can be
// compiled into a parameterized SQL clause with SQL or evaluated against an
// in-memory record with Match. Field names are never interpolated into SQL:
// they are translated by a Resolver owned by the store.
package filter

import (
	"fmt"
	"strings"
)

// Expr is a node of a filter expression tree.
type Expr interface {
	fmt.Stringer
	expr()
}

// Eq matches records whose field equals Value.
type Eq struct {
	Field string
	Value interface{}
}

// Blank matches records whose field is absent, null or whitespace only.
// Whitespace is ASCII space, tab, line feed, vertical tab, form feed and
// carriage return in both backends.
type Blank struct {
	Field string
}

const blankChars = " \t\n\v\f\r"

// blankCharsSQL lists blankChars for the SQLite TRIM function.
const blankCharsSQL = "char(32, 9, 10, 11, 12, 13)"

// IsBlank reports whether s would be matched by Blank.
func IsBlank(s string) bool {
	return strings.Trim(s, blankChars) == ""
}

// Range matches records whose field lies in [Min, Max). A nil bound is open.
type Range struct {
	Field string
	Min   interface{}
	Max   interface{}
}

// In matches records whose field equals one of Values.
type In struct {
	Field  string
	Values []interface{}
}

// And matches if all sub expressions match. An empty And matches everything.
type And []Expr

// Or matches if any sub expression matches. An empty Or matches nothing.
type Or []Expr

// Not inverts a sub expression. Absent fields never satisfy a comparison,
// so Not of a comparison on an absent field matches.
type Not struct {
	Expr Expr
}

func (Eq) expr()    {}
func (Blank) expr() {}
func (Range) expr() {}
func (In) expr()    {}
func (And) expr()   {}
func (Or) expr()    {}
func (Not) expr()   {}

func (e Eq) String() string    { return fmt.Sprintf("%s = %v", e.Field, e.Value) }
func (e Blank) String() string { return fmt.Sprintf("blank(%s)", e.Field) }
func (e Range) String() string { return fmt.Sprintf("%s in [%v, %v)", e.Field, e.Min, e.Max) }
func (e In) String() string    { return fmt.Sprintf("%s in %v", e.Field, e.Values) }
func (e Not) String() string   { return fmt.Sprintf("not (%s)", e.Expr) }

func (e And) String() string { return join(e, " and ") }
func (e Or) String() string  { return join(e, " or ") }

func join(exprs []Expr, sep string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, "("+e.String()+")")
	}
	return strings.Join(parts, sep)
}

// Ints converts a list of integers into In values.
func Ints[T ~int | ~int32 | ~int64](values ...T) []interface{} {
	l := make([]interface{}, 0, len(values))
	for _, v := range values {
		l = append(l, int64(v))
	}
	return l
}

// Strings converts a list of strings into In values.
func Strings(values ...string) []interface{} {
	l := make([]interface{}, 0, len(values))
	for _, v := range values {
		l = append(l, v)
	}
	return l
}

// Fields returns every field name referenced by e.
func Fields(e Expr) []string {
	seen := map[string]bool{}
	var fields []string
	walk(e, func(field string) {
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	})
	return fields
}

func walk(e Expr, fn func(field string)) {
	switch e := e.(type) {
	case Eq:
		fn(e.Field)
	case Blank:
		fn(e.Field)
	case Range:
		fn(e.Field)
	case In:
		fn(e.Field)
	case And:
		for _, sub := range e {
			walk(sub, fn)
		}
	case Or:
		for _, sub := range e {
			walk(sub, fn)
		}
	case Not:
		walk(e.Expr, fn)
	}
}
