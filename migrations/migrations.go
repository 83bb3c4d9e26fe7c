// Package migrations — SQL-миграции схемы архива (goose), встроенные в бинарник.
package migrations

import "embed"

// FS — файлы миграций в корне.
//
//go:embed *.sql
var FS embed.FS
