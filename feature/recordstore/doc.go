// Package recordstore defines the record store API the sync engine writes to.
//
// A store holds datasets (tables) of records (rows) with typed fields. The
// notion sub-package talks to the Notion REST API and the sqlstore
// sub-package keeps each dataset as a SQL table.
package recordstore
