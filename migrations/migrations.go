// Package migrations expone los scripts SQL de las tablas propias del servicio.
package migrations

import "embed"

// FS contiene los archivos *.sql en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
