package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/fatih/structs"
)

// QueryParams narrows a table query.
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword.
	Where string

	// Args holds the arguments for the placeholders in Where.
	Args []any

	// Limit is the maximum number of records to return. Zero means no
	// limit.
	Limit int

	// Offset is the number of records to skip.
	Offset int

	// OrderBy specifies sorting, without the "ORDER BY" keywords.
	OrderBy string
}

// DataReader reads recorded experiment output back from a database.
type DataReader interface {
	// MapTable establishes a mapping between a database table and a Go
	// struct type. The mapping is required before querying a table.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns all tables that have been mapped.
	ListTables() []string

	// Query returns the matching rows of a table as values of the mapped
	// struct type, plus the total row count ignoring Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the reader.
	Close() error
}

// NewReader opens a DataReader on the given database file.
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		panic(err)
	}

	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

// NewReaderWithDB creates a DataReader on an already open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

type sqliteReader struct {
	*sql.DB

	typeMap map[string]reflect.Type
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	t := reflect.TypeOf(sampleEntry)
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("table %s must map to a struct, got %s",
			tableName, t.Kind()))
	}

	r.typeMap[tableName] = t
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.typeMap))
	for name := range r.typeMap {
		tables = append(tables, name)
	}

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (results []any, totalCount int, err error) {
	structType, mapped := r.typeMap[tableName]
	if !mapped {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	totalCount, err = r.countRows(ctx, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	columns := structs.Names(reflect.New(structType).Elem().Interface())
	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + tableName
	query += whereClause(params)
	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", params.Limit, params.Offset)
	}

	rows, err := r.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		entry := reflect.New(structType).Elem()

		dest := make([]any, entry.NumField())
		for i := range dest {
			dest[i] = entry.Field(i).Addr().Interface()
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}

		results = append(results, entry.Interface())
	}

	return results, totalCount, rows.Err()
}

func (r *sqliteReader) countRows(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	query := "SELECT COUNT(*) FROM " + tableName + whereClause(params)

	var count int
	err := r.QueryRowContext(ctx, query, params.Args...).Scan(&count)
	return count, err
}

func whereClause(params QueryParams) string {
	if params.Where == "" {
		return ""
	}
	return " WHERE " + params.Where
}
