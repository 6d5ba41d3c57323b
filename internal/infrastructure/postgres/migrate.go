package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
)

// Migrate aplica en orden los archivos *.sql de fsys. Los scripts son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, q Querier, fsys fs.FS) ([]string, error) {
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	sort.Strings(files)
	for _, f := range files {
		sql, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", f, err)
		}
		if _, err := q.Exec(ctx, string(sql)); err != nil {
			return nil, fmt.Errorf("aplicar %s: %w", f, err)
		}
	}
	return files, nil
}
