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
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const casestoreVersion = 3
const elementaryApplicationID = 1701602669
const timeFormat = "2006-01-02T15:04:05.000Z"

var (
	ErrStoreExists         = errors.New("store already exists")
	ErrStoreNotExists      = errors.New("store does not exist")
	ErrStoreClosed         = errors.New("store is closed")
	ErrUnknownArtifactType = errors.New("unknown artifact type")
	ErrValidation          = errors.New("validation failed")
)

const schemaScript = `
CREATE TABLE data_sources (
	obj_id     INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	added_time TEXT NOT NULL
);
CREATE TABLE artifact_types (
	type_id      INTEGER PRIMARY KEY,
	type_name    TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	category     INTEGER NOT NULL
);
CREATE TABLE files (
	obj_id             INTEGER PRIMARY KEY,
	data_source_obj_id INTEGER NOT NULL,
	name               TEXT NOT NULL,
	parent_path        TEXT NOT NULL DEFAULT '',
	extension          TEXT NOT NULL DEFAULT '',
	mime_type          TEXT,
	size               INTEGER NOT NULL DEFAULT 0,
	dir_type           INTEGER NOT NULL DEFAULT 0,
	type               INTEGER NOT NULL DEFAULT 0,
	known              INTEGER NOT NULL DEFAULT 0,
	allocated          INTEGER NOT NULL DEFAULT 1,
	md5                TEXT NOT NULL DEFAULT '',
	mtime              INTEGER NOT NULL DEFAULT 0,
	ctime              INTEGER NOT NULL DEFAULT 0,
	atime              INTEGER NOT NULL DEFAULT 0,
	crtime             INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX files_data_source ON files (data_source_obj_id);
CREATE TABLE artifacts (
	artifact_id        INTEGER PRIMARY KEY,
	obj_id             INTEGER NOT NULL,
	artifact_type_id   INTEGER NOT NULL REFERENCES artifact_types (type_id),
	data_source_obj_id INTEGER NOT NULL,
	source_obj_type    TEXT NOT NULL DEFAULT '',
	score              INTEGER NOT NULL DEFAULT 0,
	conclusion         TEXT NOT NULL DEFAULT '',
	configuration      TEXT NOT NULL DEFAULT '',
	justification      TEXT NOT NULL DEFAULT '',
	attributes         TEXT NOT NULL DEFAULT '{}',
	insert_time        TEXT NOT NULL
);
CREATE INDEX artifacts_type ON artifacts (artifact_type_id, data_source_obj_id);
`

// The Store is the case database of an investigation. It holds the data
// sources, the files found in them and the blackboard: typed artifacts
// whose attributes are stored as JSON documents. Reads run concurrently on
// a pool of connections, every mutation is announced on the event bus.
type Store struct {
	path     string
	pool     *sqlitex.Pool
	poolSize int
	types    *typeMap
	typesMu  sync.Mutex // serializes AddArtifactType
	schemas  *schemaMap
	bus      *Bus
	logger   *zap.Logger
	closed   atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger of the store.
func WithLogger(logger *zap.Logger) Option {
	return func(store *Store) {
		store.logger = logger
	}
}

// WithPoolSize sets the number of database connections.
func WithPoolSize(n int) Option {
	return func(store *Store) {
		if n > 0 {
			store.poolSize = n
		}
	}
}

// WithBus publishes the store events on an existing bus.
func WithBus(bus *Bus) Option {
	return func(store *Store) {
		store.bus = bus
	}
}

// New creates a new case database.
func New(url string, opts ...Option) (*Store, error) {
	return open(url, true, opts)
}

// Open opens an existing case database.
func Open(url string, opts ...Option) (*Store, error) {
	return open(url, false, opts)
}

func open(url string, create bool, opts []Option) (*Store, error) { // nolint:gocyclo,funlen
	store := &Store{
		path:     url,
		poolSize: 8,
		types:    newTypeMap(),
		schemas:  newSchemaMap(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.bus == nil {
		store.bus = NewBus()
	}

	exists := true
	_, err := os.Stat(url)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		exists = false
	}
	if create && exists {
		return nil, ErrStoreExists
	}
	if !create && !exists {
		return nil, ErrStoreNotExists
	}
	if create {
		if err := os.MkdirAll(filepath.Dir(url), 0750); err != nil {
			return nil, err
		}
		store.logger.Info("creating store", zap.String("path", url))
	}

	store.pool, err = sqlitex.Open(url, 0, store.poolSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}

	if err := store.setup(create); err != nil {
		store.pool.Close() // nolint:errcheck
		return nil, err
	}

	if err := store.setupSchemas(); err != nil {
		store.pool.Close() // nolint:errcheck
		return nil, err
	}
	return store, nil
}

func (store *Store) setup(create bool) (err error) {
	conn, put, err := store.conn(context.Background())
	if err != nil {
		return err
	}
	defer put()

	if create {
		defer sqlitex.Save(conn)(&err)
		if err = setPragma(conn, "application_id", elementaryApplicationID); err != nil {
			return err
		}
		if err = setPragma(conn, "user_version", casestoreVersion); err != nil {
			return err
		}
		if err = sqlitex.ExecScript(conn, schemaScript); err != nil {
			return errors.Wrap(err, "could not create tables")
		}
		for _, t := range builtinTypes {
			if err = insertType(conn, t); err != nil {
				return err
			}
		}
	} else {
		applicationID, err := pragma(conn, "application_id")
		if err != nil {
			return err
		}
		if applicationID != elementaryApplicationID {
			msg := "wrong file format (application_id is %d, requires %d)"
			return fmt.Errorf(msg, applicationID, elementaryApplicationID)
		}

		version, err := pragma(conn, "user_version")
		if err != nil {
			return err
		}
		if version != casestoreVersion {
			msg := "wrong file format (user_version is %d, requires %d)"
			return fmt.Errorf(msg, version, casestoreVersion)
		}
	}

	return sqlitex.Exec(conn, "SELECT type_id, type_name, display_name, category FROM artifact_types",
		func(stmt *sqlite.Stmt) error {
			store.types.add(ArtifactType{
				ID:          int(stmt.ColumnInt64(0)),
				Name:        stmt.ColumnText(1),
				DisplayName: stmt.ColumnText(2),
				Category:    Category(stmt.ColumnInt64(3)),
			})
			return nil
		})
}

func pragma(conn *sqlite.Conn, name string) (i int64, err error) {
	err = sqlitex.Exec(conn, "PRAGMA "+name, func(stmt *sqlite.Stmt) error {
		i = stmt.ColumnInt64(0)
		return nil
	})
	return i, err
}

func setPragma(conn *sqlite.Conn, name string, i int64) error {
	return sqlitex.ExecTransient(conn, fmt.Sprintf("PRAGMA %s = %d", name, i), nil)
}

// conn takes a connection from the pool. The returned function puts it back.
func (store *Store) conn(ctx context.Context) (*sqlite.Conn, func(), error) {
	if store.closed.Load() {
		return nil, nil, ErrStoreClosed
	}
	conn := store.pool.Get(ctx)
	if conn == nil {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrStoreClosed
	}
	return conn, func() { store.pool.Put(conn) }, nil
}

// Bus returns the bus the store publishes its events on.
func (store *Store) Bus() *Bus {
	return store.bus
}

// Path returns the location of the database file.
func (store *Store) Path() string {
	return store.path
}

// Close closes all connections of the database.
func (store *Store) Close() error {
	if !store.closed.CompareAndSwap(false, true) {
		return nil
	}
	return store.pool.Close()
}

/* ################################
#   Data sources
################################ */

// AddDataSource registers a new data source.
func (store *Store) AddDataSource(ctx context.Context, name string) (*DataSource, error) {
	conn, put, err := store.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()

	ds := &DataSource{Name: name, AddedTime: now()}
	err = sqlitex.Exec(conn, "INSERT INTO data_sources (name, added_time) VALUES (?, ?)", nil, ds.Name, ds.AddedTime)
	if err != nil {
		return nil, errors.Wrap(err, "could not insert data source")
	}
	ds.ID = conn.LastInsertRowID()
	return ds, nil
}

// DataSources lists all data sources ordered by id.
func (store *Store) DataSources(ctx context.Context) ([]DataSource, error) {
	conn, put, err := store.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()

	dataSources := []DataSource{}
	err = sqlitex.Exec(conn, "SELECT obj_id, name, added_time FROM data_sources ORDER BY obj_id",
		func(stmt *sqlite.Stmt) error {
			dataSources = append(dataSources, DataSource{
				ID:        stmt.ColumnInt64(0),
				Name:      stmt.ColumnText(1),
				AddedTime: stmt.ColumnText(2),
			})
			return nil
		})
	return dataSources, err
}

/* ################################
#   Artifact types
################################ */

// AddArtifactType registers a custom artifact type. Adding an existing
// type name returns the registered type if the category matches.
func (store *Store) AddArtifactType(ctx context.Context, name, displayName string, category Category) (ArtifactType, error) {
	if name == "" {
		return ArtifactType{}, errors.Wrap(ErrValidation, "artifact type requires a name")
	}

	store.typesMu.Lock()
	defer store.typesMu.Unlock()
	if t, ok := store.types.loadName(name); ok {
		if t.Category != category {
			return ArtifactType{}, errors.Wrapf(ErrValidation, "type %s exists as %s", name, t.Category)
		}
		return t, nil
	}

	t, err := store.insertCustomType(ctx, ArtifactType{Name: name, DisplayName: displayName, Category: category})
	if err != nil {
		return ArtifactType{}, err
	}
	store.types.add(t)
	return t, nil
}

// insertCustomType assigns the next free custom id to t and inserts it.
// The id is read and used within one savepoint.
func (store *Store) insertCustomType(ctx context.Context, t ArtifactType) (_ ArtifactType, err error) {
	conn, put, err := store.conn(ctx)
	if err != nil {
		return ArtifactType{}, err
	}
	defer put()
	defer sqlitex.Save(conn)(&err)

	var maxID int64
	err = sqlitex.Exec(conn, "SELECT COALESCE(MAX(type_id), 0) FROM artifact_types", func(stmt *sqlite.Stmt) error {
		maxID = stmt.ColumnInt64(0)
		return nil
	})
	if err != nil {
		return ArtifactType{}, err
	}
	t.ID = int(maxID) + 1
	if t.ID < firstCustomType {
		t.ID = firstCustomType
	}
	if err := insertType(conn, t); err != nil {
		return ArtifactType{}, err
	}
	return t, nil
}

func insertType(conn *sqlite.Conn, t ArtifactType) error {
	err := sqlitex.Exec(conn,
		"INSERT INTO artifact_types (type_id, type_name, display_name, category) VALUES (?, ?, ?, ?)",
		nil, t.ID, t.Name, t.DisplayName, int(t.Category))
	return errors.Wrapf(err, "could not insert type %s", t.Name)
}

// ArtifactType returns a registered artifact type.
func (store *Store) ArtifactType(id int) (ArtifactType, error) {
	if t, ok := store.types.load(id); ok {
		return t, nil
	}
	return ArtifactType{}, errors.Wrapf(ErrUnknownArtifactType, "id %d", id)
}

// ArtifactTypeByName returns a registered artifact type.
func (store *Store) ArtifactTypeByName(name string) (ArtifactType, error) {
	if t, ok := store.types.loadName(name); ok {
		return t, nil
	}
	return ArtifactType{}, errors.Wrapf(ErrUnknownArtifactType, "name %s", name)
}

// ArtifactTypes lists the registered types of a category.
func (store *Store) ArtifactTypes(category Category) []ArtifactType {
	return store.types.all(category)
}

func now() string {
	return time.Now().UTC().Format(timeFormat)
}
