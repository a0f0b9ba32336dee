package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

const sqliteTablesQuery = `
SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

const sqliteColumnsQuery = `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`

const sqliteForeignKeysQuery = `SELECT id, "table", "from" FROM pragma_foreign_key_list(?) ORDER BY id, seq`

// sqliteDialect reads metadata with the table-valued pragma functions.
// SQLite has no schemas; the schema option is ignored.
type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite3" }

func (sqliteDialect) read(ctx context.Context, db Querier, _ string) (*schemaInfo, error) {
	info := newSchemaInfo()

	var tables []string
	err := queryEach(ctx, db, sqliteTablesQuery, nil, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		tables = append(tables, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}

	for _, name := range tables {
		t := info.table(name)

		// pk holds the 1-based position within the primary key, 0 otherwise
		pkColumns := make(map[int]string)
		err := queryEach(ctx, db, sqliteColumnsQuery, []interface{}{name}, func(rows *sql.Rows) error {
			var (
				column, declared string
				notNull, pk      int
			)
			if err := rows.Scan(&column, &declared, &notNull, &pk); err != nil {
				return err
			}
			kind, typ := mapSQLiteColumn(declared)
			t.columns = append(t.columns, &columnInfo{
				name:     column,
				kind:     kind,
				typ:      typ,
				nullable: notNull == 0 && pk == 0,
			})
			if pk > 0 {
				pkColumns[pk] = column
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
		}
		for i := 1; i <= len(pkColumns); i++ {
			t.primaryKey = append(t.primaryKey, pkColumns[i])
		}

		err = queryEach(ctx, db, sqliteForeignKeysQuery, []interface{}{name}, func(rows *sql.Rows) error {
			var (
				id             int
				target, column string
			)
			if err := rows.Scan(&id, &target, &column); err != nil {
				return err
			}
			fk := t.foreignKey(name + "_fk_" + strconv.Itoa(id))
			fk.target = target
			fk.columns = append(fk.columns, column)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", name, err)
		}
	}

	return info, nil
}
