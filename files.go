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

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/pkg/errors"

	"github.com/forensicanalysis/casestore/filter"
)

const fileSelect = "SELECT f.obj_id, f.data_source_obj_id, f.name, f.parent_path, f.extension, " +
	"COALESCE(f.mime_type, ''), f.size, f.dir_type, f.type, f.known, f.allocated, f.md5, " +
	"f.mtime, f.ctime, f.atime, f.crtime FROM files f"

func fileColumn(field string) (filter.Column, bool) {
	switch field {
	case FieldObjID, FieldDataSourceID, FieldName, FieldParentPath, FieldMIMEType,
		FieldSize, FieldDirType, FieldType, FieldKnown:
		return filter.Column{Expr: "f." + field}, true
	case FieldExtension:
		return filter.Column{Expr: "LOWER(f.extension)"}, true
	}
	return filter.Column{}, false
}

// AddFile inserts a file and publishes a ContentEvent. The extension is
// derived from the name if it is not set.
func (store *Store) AddFile(ctx context.Context, file *File) error {
	if file.Name == "" {
		return errors.Wrap(ErrValidation, "file requires a name")
	}
	file.Extension = file.NameExtension()

	conn, put, err := store.conn(ctx)
	if err != nil {
		return err
	}

	var mime interface{} // NULL if unknown
	if file.MIMEType != "" {
		mime = file.MIMEType
	}
	err = sqlitex.Exec(conn, "INSERT INTO files (data_source_obj_id, name, parent_path, extension, mime_type, "+
		"size, dir_type, type, known, allocated, md5, mtime, ctime, atime, crtime) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", nil,
		file.DataSourceID, file.Name, file.ParentPath, file.Extension, mime,
		file.Size, int(file.DirType), int(file.Type), int(file.Known), file.Allocated, file.MD5,
		file.Mtime, file.Ctime, file.Atime, file.Crtime)
	if err == nil {
		file.ID = conn.LastInsertRowID()
	}
	put()
	if err != nil {
		return errors.Wrap(err, "could not insert file")
	}

	event := *file
	store.bus.Publish(ContentEvent{File: &event})
	return nil
}

// FilesWhere returns the files matching expr ordered by id.
func (store *Store) FilesWhere(ctx context.Context, expr filter.Expr, page Page) ([]*File, error) {
	clause, err := filter.SQL(expr, fileColumn)
	if err != nil {
		return nil, err
	}

	conn, put, err := store.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()

	files := []*File{}
	err = sqlitex.ExecTransient(conn, fileSelect+" WHERE "+clause.SQL+" ORDER BY f.obj_id LIMIT ? OFFSET ?",
		func(stmt *sqlite.Stmt) error {
			files = append(files, &File{
				ID:           stmt.ColumnInt64(0),
				DataSourceID: stmt.ColumnInt64(1),
				Name:         stmt.ColumnText(2),
				ParentPath:   stmt.ColumnText(3),
				Extension:    stmt.ColumnText(4),
				MIMEType:     stmt.ColumnText(5),
				Size:         stmt.ColumnInt64(6),
				DirType:      NameType(stmt.ColumnInt64(7)),
				Type:         FileType(stmt.ColumnInt64(8)),
				Known:        KnownState(stmt.ColumnInt64(9)),
				Allocated:    stmt.ColumnInt64(10) != 0,
				MD5:          stmt.ColumnText(11),
				Mtime:        stmt.ColumnInt64(12),
				Ctime:        stmt.ColumnInt64(13),
				Atime:        stmt.ColumnInt64(14),
				Crtime:       stmt.ColumnInt64(15),
			})
			return nil
		}, append(clause.Args, page.args()...)...)
	if err != nil {
		return nil, errors.Wrap(err, "could not query files")
	}
	return files, nil
}

// CountFilesWhere counts the files matching expr.
func (store *Store) CountFilesWhere(ctx context.Context, expr filter.Expr) (int64, error) {
	clause, err := filter.SQL(expr, fileColumn)
	if err != nil {
		return 0, err
	}

	conn, put, err := store.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer put()

	var count int64
	err = sqlitex.ExecTransient(conn, "SELECT COUNT(*) FROM files f WHERE "+clause.SQL, func(stmt *sqlite.Stmt) error {
		count = stmt.ColumnInt64(0)
		return nil
	}, clause.Args...)
	return count, errors.Wrap(err, "could not count files")
}
