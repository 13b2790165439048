//go:build !js && !wasm

package autotabber

import (
	"github.com/himanishpuri/AutoTabber/internal/capture"
	"github.com/himanishpuri/AutoTabber/internal/storage"
)

// NewSQLiteStorage opens recording history in the SQLite file at dbPath.
// An empty path falls back to AUTOTAB_DB_PATH, then to the default file.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	var (
		db  *storage.DBClient
		err error
	)
	if dbPath == "" {
		db, err = storage.NewDBClient()
	} else {
		db, err = storage.NewDBClientWithPath(dbPath)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// OpenMicrophone opens the default input device.
func OpenMicrophone(sampleRate int) (SampleSource, error) {
	src, err := capture.Open(capture.Config{SampleRate: sampleRate})
	if err != nil {
		return nil, err
	}
	return src, nil
}
