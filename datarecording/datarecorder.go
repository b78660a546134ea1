// Package datarecording stores simulation samples in SQLite databases.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table with the columns of the sample entry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any) error

	// ListTables returns a slice containing names of all tables
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush() error

	// Close flushes and closes the database.
	Close() error
}

// New creates a DataRecorder that writes to <path>.sqlite3. An empty path
// picks a unique name. The recorder is flushed when the program exits through
// atexit.
func New(path string) (DataRecorder, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	return NewWithDB(db), nil
}

// NewWithDB creates a new DataRecorder with a given database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqliteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { _ = w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into SQLite database
type sqliteWriter struct {
	*sql.DB

	lock       sync.Mutex
	tables     map[string]*table
	batchSize  int
	entryCount int
	closed     bool
}

func openDB(path string) (*sql.DB, error) {
	if path == "" {
		path = "simclock_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	return sql.Open("sqlite3", filename)
}

func (t *sqliteWriter) isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func (t *sqliteWriter) checkStructFields(entry any) error {
	types := reflect.TypeOf(entry)
	if types.Kind() != reflect.Struct {
		return errors.New("entry must be a struct")
	}

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)

		if !t.isAllowedType(field.Type.Kind()) {
			return fmt.Errorf("field %s of type %s cannot be recorded",
				field.Name, field.Type)
		}
	}

	return nil
}

func (t *sqliteWriter) CreateTable(tableName string, sampleEntry any) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	err := t.checkStructFields(sampleEntry)
	if err != nil {
		return err
	}

	if _, exists := t.tables[tableName]; exists {
		return fmt.Errorf("table %s already exists", tableName)
	}

	n := structs.Names(sampleEntry)
	fields := strings.Join(n, ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`

	_, err = t.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	t.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}

	return nil
}

func (t *sqliteWriter) InsertData(tableName string, entry any) error {
	t.lock.Lock()

	table, exists := t.tables[tableName]
	if !exists {
		t.lock.Unlock()
		return fmt.Errorf("table %s does not exist", tableName)
	}

	if reflect.TypeOf(entry) != table.structType {
		t.lock.Unlock()
		return fmt.Errorf("entry of type %T does not match table %s",
			entry, tableName)
	}

	table.entries = append(table.entries, entry)
	t.entryCount++
	full := t.entryCount >= t.batchSize

	t.lock.Unlock()

	if full {
		return t.Flush()
	}

	return nil
}

func (t *sqliteWriter) ListTables() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	tables := make([]string, 0, len(t.tables))
	for table := range t.tables {
		tables = append(tables, table)
	}

	return tables
}

func (t *sqliteWriter) Flush() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.entryCount == 0 || t.closed {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return err
	}

	for tableName, table := range t.tables {
		err = t.flushTable(tx, tableName, table)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	// Rows leave the buffers only once they are committed.
	for _, table := range t.tables {
		table.entries = nil
	}

	t.entryCount = 0

	return nil
}

func (t *sqliteWriter) flushTable(
	tx *sql.Tx,
	tableName string,
	table *table,
) error {
	if len(table.entries) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(t.insertStatement(tableName, table.entries[0]))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range table.entries {
		v := []any{}

		values := reflect.ValueOf(entry)
		for i := 0; i < values.NumField(); i++ {
			v = append(v, values.Field(i).Interface())
		}

		_, err = stmt.Exec(v...)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *sqliteWriter) insertStatement(table string, entry any) string {
	n := structs.Names(entry)
	for i := 0; i < len(n); i++ {
		n[i] = "?"
	}

	entryToFill := "(" + strings.Join(n, ", ") + ")"

	return "INSERT INTO " + table + " VALUES " + entryToFill
}

func (t *sqliteWriter) Close() error {
	err := t.Flush()
	if err != nil {
		return err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	return t.DB.Close()
}
