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

package filter

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownField is returned if a resolver does not know a field.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupported is returned for expressions that cannot be compiled.
	ErrUnsupported = errors.New("unsupported expression")
)

// Column is the SQL expression for a logical field. Args are bound in
// order wherever the expression is used.
type Column struct {
	Expr string
	Args []interface{}
}

// Resolver maps a logical field to its column expression.
type Resolver func(field string) (Column, bool)

// Clause is a compiled WHERE condition with bound arguments.
type Clause struct {
	SQL  string
	Args []interface{}
}

// SQL compiles e into a parameterized clause. A nil expression compiles
// to a clause that matches everything.
func SQL(e Expr, resolve Resolver) (Clause, error) {
	c := &compiler{resolve: resolve}
	if e == nil {
		return Clause{SQL: "1"}, nil
	}
	if err := c.compile(e); err != nil {
		return Clause{}, err
	}
	return Clause{SQL: c.sb.String(), Args: c.args}, nil
}

type compiler struct {
	resolve Resolver
	sb      strings.Builder
	args    []interface{}
}

func (c *compiler) column(field string) (Column, error) {
	col, ok := c.resolve(field)
	if !ok {
		return Column{}, errors.Wrap(ErrUnknownField, field)
	}
	return col, nil
}

// emit writes the column expression and binds its arguments.
func (c *compiler) emit(col Column) {
	c.sb.WriteString(col.Expr)
	c.args = append(c.args, col.Args...)
}

func (c *compiler) value(v interface{}) {
	c.sb.WriteString("?")
	c.args = append(c.args, normalize(v))
}

func (c *compiler) compile(e Expr) error { // nolint:gocyclo
	switch e := e.(type) {
	case Eq:
		if e.Value == nil {
			return errors.Wrapf(ErrUnsupported, "nil value for %s, use Blank", e.Field)
		}
		col, err := c.column(e.Field)
		if err != nil {
			return err
		}
		c.sb.WriteString("(")
		c.emit(col)
		c.sb.WriteString(" = ")
		c.value(e.Value)
		c.sb.WriteString(")")
	case Blank:
		col, err := c.column(e.Field)
		if err != nil {
			return err
		}
		c.sb.WriteString("(")
		c.emit(col)
		c.sb.WriteString(" IS NULL OR TRIM(")
		c.emit(col)
		c.sb.WriteString(", " + blankCharsSQL + ") = '')")
	case Range:
		if e.Min == nil && e.Max == nil {
			return errors.Wrapf(ErrUnsupported, "open range for %s", e.Field)
		}
		col, err := c.column(e.Field)
		if err != nil {
			return err
		}
		c.sb.WriteString("(")
		if e.Min != nil {
			c.emit(col)
			c.sb.WriteString(" >= ")
			c.value(e.Min)
		}
		if e.Min != nil && e.Max != nil {
			c.sb.WriteString(" AND ")
		}
		if e.Max != nil {
			c.emit(col)
			c.sb.WriteString(" < ")
			c.value(e.Max)
		}
		c.sb.WriteString(")")
	case In:
		col, err := c.column(e.Field)
		if err != nil {
			return err
		}
		if len(e.Values) == 0 {
			c.sb.WriteString("0")
			return nil
		}
		c.sb.WriteString("(")
		c.emit(col)
		c.sb.WriteString(" IN (")
		for i, v := range e.Values {
			if i > 0 {
				c.sb.WriteString(", ")
			}
			c.value(v)
		}
		c.sb.WriteString("))")
	case And:
		return c.list(e, " AND ", "1")
	case Or:
		return c.list(e, " OR ", "0")
	case Not:
		if e.Expr == nil {
			return errors.Wrap(ErrUnsupported, "empty not")
		}
		// COALESCE folds SQL NULL into false, which keeps NOT two valued
		// like Match.
		c.sb.WriteString("(NOT COALESCE(")
		if err := c.compile(e.Expr); err != nil {
			return err
		}
		c.sb.WriteString(", 0))")
	default:
		return errors.Wrapf(ErrUnsupported, "%T", e)
	}
	return nil
}

func (c *compiler) list(exprs []Expr, sep, empty string) error {
	if len(exprs) == 0 {
		c.sb.WriteString(empty)
		return nil
	}
	c.sb.WriteString("(")
	for i, sub := range exprs {
		if i > 0 {
			c.sb.WriteString(sep)
		}
		if err := c.compile(sub); err != nil {
			return err
		}
	}
	c.sb.WriteString(")")
	return nil
}
