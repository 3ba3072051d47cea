//go:build !sqlite

package storage

import (
	"fmt"

	"lgpkit/internal/compress"
)

const sqliteAvailable = false

func newSQLiteStore(_ string, _ compress.Codec) (Store, error) {
	return nil, fmt.Errorf("sqlite backend unavailable in this build; rebuild with -tags sqlite")
}
