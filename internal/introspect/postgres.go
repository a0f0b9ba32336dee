package introspect

import (
	"context"
	"database/sql"
	"fmt"
)

const pgEnumsQuery = `
SELECT t.typname
FROM pg_type t
JOIN pg_namespace n ON n.oid = t.typnamespace
WHERE t.typtype = 'e' AND n.nspname = $1`

const pgColumnsQuery = `
SELECT c.table_name, c.column_name, c.data_type, c.udt_name, c.is_nullable
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
ORDER BY c.table_name, c.ordinal_position`

const pgPrimaryKeysQuery = `
SELECT tc.table_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name
 AND kcu.table_schema = tc.table_schema
 AND kcu.table_name = tc.table_name
WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = $1
ORDER BY tc.table_name, kcu.ordinal_position`

const pgForeignKeysQuery = `
SELECT tc.constraint_name, tc.table_name, kcu.column_name, ccu.table_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name
 AND kcu.table_schema = tc.table_schema
 AND kcu.table_name = tc.table_name
JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name
 AND ccu.constraint_schema = tc.constraint_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = $1
ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`

// postgresDialect reads metadata from information_schema and pg_catalog
type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

func (postgresDialect) read(ctx context.Context, db Querier, schema string) (*schemaInfo, error) {
	info := newSchemaInfo()

	enums := make(map[string]bool)
	err := queryEach(ctx, db, pgEnumsQuery, []interface{}{schema}, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		enums[name] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read enum types: %w", err)
	}

	err = queryEach(ctx, db, pgColumnsQuery, []interface{}{schema}, func(rows *sql.Rows) error {
		var table, column, dataType, udtName, nullable string
		if err := rows.Scan(&table, &column, &dataType, &udtName, &nullable); err != nil {
			return err
		}
		kind, typ, list := mapPostgresColumn(dataType, udtName, enums)
		t := info.table(table)
		t.columns = append(t.columns, &columnInfo{
			name:     column,
			kind:     kind,
			typ:      typ,
			list:     list,
			nullable: nullable == "YES",
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	err = queryEach(ctx, db, pgPrimaryKeysQuery, []interface{}{schema}, func(rows *sql.Rows) error {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return err
		}
		if t, ok := info.index[table]; ok {
			t.primaryKey = append(t.primaryKey, column)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read primary keys: %w", err)
	}

	err = queryEach(ctx, db, pgForeignKeysQuery, []interface{}{schema}, func(rows *sql.Rows) error {
		var constraint, table, column, target string
		if err := rows.Scan(&constraint, &table, &column, &target); err != nil {
			return err
		}
		t, ok := info.index[table]
		if !ok {
			return nil
		}
		fk := t.foreignKey(constraint)
		fk.target = target
		// constraint_column_usage repeats rows for composite keys
		for _, c := range fk.columns {
			if c == column {
				return nil
			}
		}
		fk.columns = append(fk.columns, column)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys: %w", err)
	}

	return info, nil
}

// queryEach runs query and calls fn for every row
func queryEach(ctx context.Context, db Querier, query string, args []interface{}, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
