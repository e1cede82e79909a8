// Package all registers every storage backend via blank imports. The
// command binary imports this package once so any configured backend kind
// resolves through storage.New.
package all

import (
	_ "primesquare/internal/storage/postgres"
	_ "primesquare/internal/storage/sqlite"
)
