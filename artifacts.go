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

package casestore

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/pkg/errors"

	"github.com/forensicanalysis/casestore/filter"
)

const attributeChunk = 500

var attributeName = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

const artifactSelect = "SELECT a.artifact_id, a.obj_id, a.artifact_type_id, a.data_source_obj_id, " +
	"a.source_obj_type, a.score, a.conclusion, a.configuration, a.justification, a.insert_time, " +
	"COALESCE(f.name, '')"

const artifactFrom = " FROM artifacts a LEFT JOIN files f ON f.obj_id = a.obj_id AND a.source_obj_type = '" +
	SourceFile + "'"

// Page restricts a query to a window of its ordered result. A zero Limit
// means no limit.
type Page struct {
	Offset int64
	Limit  int64
}

func (p Page) args() []interface{} {
	limit := p.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return []interface{}{limit, offset}
}

// artifactColumn resolves the logical artifact fields. Attribute paths are
// bound as parameters and never become part of the statement.
func artifactColumn(field string) (filter.Column, bool) {
	switch field {
	case FieldArtifactID:
		return filter.Column{Expr: "a.artifact_id"}, true
	case FieldObjID:
		return filter.Column{Expr: "a.obj_id"}, true
	case FieldArtifactTypeID:
		return filter.Column{Expr: "a.artifact_type_id"}, true
	case FieldDataSourceID:
		return filter.Column{Expr: "a.data_source_obj_id"}, true
	case FieldScore:
		return filter.Column{Expr: "a.score"}, true
	case FieldSourceName:
		return filter.Column{Expr: "f.name"}, true
	case FieldKeywordTerm:
		return filter.Column{
			Expr: "COALESCE(json_extract(a.attributes, ?), json_extract(a.attributes, ?))",
			Args: []interface{}{"$." + AttrKeywordRegexp, "$." + AttrKeyword},
		}, true
	case FieldKeywordSearchType:
		return filter.Column{Expr: "COALESCE(json_extract(a.attributes, ?), 0)", Args: []interface{}{"$." + AttrKeywordSearchType}}, true
	}
	if strings.HasPrefix(field, attributePrefix) {
		name := strings.TrimPrefix(field, attributePrefix)
		if !attributeName.MatchString(name) {
			return filter.Column{}, false
		}
		return filter.Column{Expr: "json_extract(a.attributes, ?)", Args: []interface{}{"$." + name}}, true
	}
	return filter.Column{}, false
}

/* ################################
#   Insert
################################ */

// PostArtifact validates and inserts a single artifact.
func (store *Store) PostArtifact(ctx context.Context, artifact *Artifact) error {
	return store.PostArtifacts(ctx, []*Artifact{artifact})
}

// PostArtifacts validates and inserts artifacts in one transaction. After
// the commit one ModuleDataEvent is published per artifact type and data
// source.
func (store *Store) PostArtifacts(ctx context.Context, artifacts []*Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	for _, artifact := range artifacts {
		if err := store.validateArtifact(ctx, artifact); err != nil {
			return err
		}
	}

	conn, put, err := store.conn(ctx)
	if err != nil {
		return err
	}
	err = insertArtifacts(conn, artifacts)
	put()
	if err != nil {
		return err
	}

	for _, evt := range moduleDataEvents(artifacts) {
		store.bus.Publish(evt)
	}
	return nil
}

func insertArtifacts(conn *sqlite.Conn, artifacts []*Artifact) (err error) {
	defer sqlitex.Save(conn)(&err)

	insertTime := now()
	query := "INSERT INTO artifacts (obj_id, artifact_type_id, data_source_obj_id, source_obj_type, score, " +
		"conclusion, configuration, justification, attributes, insert_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	for _, a := range artifacts {
		err = sqlitex.Exec(conn, query, nil,
			a.ObjID, a.TypeID, a.DataSourceID, a.SourceObjType, int(a.Score),
			a.Conclusion, a.Configuration, a.Justification, string(a.Attributes), insertTime)
		if err != nil {
			return errors.Wrap(err, "could not insert artifact")
		}
		a.ID = conn.LastInsertRowID()
		a.InsertTime = insertTime
	}
	return nil
}

func moduleDataEvents(artifacts []*Artifact) []ModuleDataEvent {
	type key struct {
		typeID int
		ds     int64
	}
	index := map[key]int{}
	var events []ModuleDataEvent
	for _, a := range artifacts {
		k := key{a.TypeID, a.DataSourceID}
		i, ok := index[k]
		if !ok {
			i = len(events)
			index[k] = i
			events = append(events, ModuleDataEvent{ArtifactTypeID: a.TypeID, DataSourceID: a.DataSourceID})
		}
		events[i].Count++
	}
	return events
}

/* ################################
#   Query
################################ */

// ArtifactsWhere returns the artifacts matching expr ordered by id. The
// attributes are not loaded, see LoadAttributes.
func (store *Store) ArtifactsWhere(ctx context.Context, expr filter.Expr, page Page) ([]*Artifact, error) {
	clause, err := filter.SQL(expr, artifactColumn)
	if err != nil {
		return nil, err
	}

	conn, put, err := store.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()

	query := artifactSelect + artifactFrom + " WHERE " + clause.SQL + " ORDER BY a.artifact_id LIMIT ? OFFSET ?"
	artifacts := []*Artifact{}
	err = sqlitex.ExecTransient(conn, query, func(stmt *sqlite.Stmt) error {
		artifacts = append(artifacts, &Artifact{
			ID:            stmt.ColumnInt64(0),
			ObjID:         stmt.ColumnInt64(1),
			TypeID:        int(stmt.ColumnInt64(2)),
			DataSourceID:  stmt.ColumnInt64(3),
			SourceObjType: stmt.ColumnText(4),
			Score:         Significance(stmt.ColumnInt64(5)),
			Conclusion:    stmt.ColumnText(6),
			Configuration: stmt.ColumnText(7),
			Justification: stmt.ColumnText(8),
			InsertTime:    stmt.ColumnText(9),
			SourceName:    stmt.ColumnText(10),
		})
		return nil
	}, append(clause.Args, page.args()...)...)
	if err != nil {
		return nil, errors.Wrap(err, "could not query artifacts")
	}
	return artifacts, nil
}

// CountArtifactsWhere counts the artifacts matching expr.
func (store *Store) CountArtifactsWhere(ctx context.Context, expr filter.Expr) (int64, error) {
	clause, err := filter.SQL(expr, artifactColumn)
	if err != nil {
		return 0, err
	}

	conn, put, err := store.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer put()

	var count int64
	err = sqlitex.ExecTransient(conn, "SELECT COUNT(*)"+artifactFrom+" WHERE "+clause.SQL, func(stmt *sqlite.Stmt) error {
		count = stmt.ColumnInt64(0)
		return nil
	}, clause.Args...)
	return count, errors.Wrap(err, "could not count artifacts")
}

// LoadAttributes fills the attributes of the given artifacts.
func (store *Store) LoadAttributes(ctx context.Context, artifacts []*Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	conn, put, err := store.conn(ctx)
	if err != nil {
		return err
	}
	defer put()

	byID := make(map[int64][]*Artifact, len(artifacts))
	for _, a := range artifacts {
		byID[a.ID] = append(byID[a.ID], a)
	}

	for start := 0; start < len(artifacts); start += attributeChunk {
		end := start + attributeChunk
		if end > len(artifacts) {
			end = len(artifacts)
		}
		chunk := artifacts[start:end]

		args := make([]interface{}, len(chunk))
		for i, a := range chunk {
			args[i] = a.ID
		}
		query := "SELECT artifact_id, attributes FROM artifacts WHERE artifact_id IN (?" +
			strings.Repeat(", ?", len(chunk)-1) + ")"
		err = sqlitex.ExecTransient(conn, query, func(stmt *sqlite.Stmt) error {
			attributes := Attributes(stmt.ColumnText(1))
			for _, a := range byID[stmt.ColumnInt64(0)] {
				a.Attributes = attributes
			}
			return nil
		}, args...)
		if err != nil {
			return errors.Wrap(err, "could not load attributes")
		}
	}
	return nil
}

/* ################################
#   Group
################################ */

// Grouping describes a group-by over logical artifact fields. If Distinct
// is set, the number of distinct values of that field is counted per
// group.
type Grouping struct {
	Keys     []string
	Distinct string
}

// Group is one row of a grouping. Keys holds nil for SQL NULL, int64,
// float64 or string values.
type Group struct {
	Keys     []interface{}
	Count    int64
	Distinct int64
	FirstID  int64
}

// GroupArtifacts groups the artifacts matching expr. Groups are returned
// in the order of their lowest artifact id.
func (store *Store) GroupArtifacts(ctx context.Context, grouping Grouping, expr filter.Expr) ([]Group, error) { // nolint:funlen
	if len(grouping.Keys) == 0 {
		return nil, errors.Wrap(filter.ErrUnsupported, "grouping requires a key")
	}

	var selects, names []string
	var args []interface{}
	for i, field := range grouping.Keys {
		col, ok := artifactColumn(field)
		if !ok {
			return nil, errors.Wrap(filter.ErrUnknownField, field)
		}
		name := "k" + strconv.Itoa(i)
		selects = append(selects, col.Expr+" AS "+name)
		names = append(names, name)
		args = append(args, col.Args...)
	}
	distinct := "NULL AS d"
	if grouping.Distinct != "" {
		col, ok := artifactColumn(grouping.Distinct)
		if !ok {
			return nil, errors.Wrap(filter.ErrUnknownField, grouping.Distinct)
		}
		distinct = col.Expr + " AS d"
		args = append(args, col.Args...)
	}

	clause, err := filter.SQL(expr, artifactColumn)
	if err != nil {
		return nil, err
	}
	args = append(args, clause.Args...)

	keys := strings.Join(names, ", ")
	query := "SELECT " + keys + ", COUNT(*), COUNT(DISTINCT d), MIN(id) FROM (SELECT " +
		strings.Join(selects, ", ") + ", " + distinct + ", a.artifact_id AS id" + artifactFrom +
		" WHERE " + clause.SQL + ") GROUP BY " + keys + " ORDER BY MIN(id)"

	conn, put, err := store.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()

	n := len(grouping.Keys)
	groups := []Group{}
	err = sqlitex.ExecTransient(conn, query, func(stmt *sqlite.Stmt) error {
		g := Group{Keys: make([]interface{}, n)}
		for i := 0; i < n; i++ {
			g.Keys[i] = columnValue(stmt, i)
		}
		g.Count = stmt.ColumnInt64(n)
		g.Distinct = stmt.ColumnInt64(n + 1)
		g.FirstID = stmt.ColumnInt64(n + 2)
		groups = append(groups, g)
		return nil
	}, args...)
	if err != nil {
		return nil, errors.Wrap(err, "could not group artifacts")
	}
	return groups, nil
}

func columnValue(stmt *sqlite.Stmt, col int) interface{} {
	switch stmt.ColumnType(col) {
	case sqlite.SQLITE_INTEGER:
		return stmt.ColumnInt64(col)
	case sqlite.SQLITE_FLOAT:
		return stmt.ColumnFloat(col)
	case sqlite.SQLITE_TEXT, sqlite.SQLITE_BLOB:
		return stmt.ColumnText(col)
	}
	return nil
}
