package seeder

import (
	"context"
	"fmt"
	"strings"

	"skillbridge/internal/database"
)

// requireColumns fails when the migrations that create table have not been
// applied yet, naming every absent column.
func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	if table == "" || len(columns) == 0 {
		return fmt.Errorf("require columns: empty table or column list")
	}

	rows, err := db.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, col := range columns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %s; run marketctl migrate first", table, strings.Join(missing, ", "))
	}
	return nil
}
