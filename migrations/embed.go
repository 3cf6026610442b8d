// Package migrations embeds the ordered SQL schema files.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Migration is one schema file
type Migration struct {
	Version string
	SQL     string
}

// All returns every migration ordered by file name
func All() ([]Migration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{Version: name, SQL: string(data)})
	}
	return migrations, nil
}
