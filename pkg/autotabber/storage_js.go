//go:build js || wasm

package autotabber

import "errors"

var errUnsupported = errors.New("not supported in the browser build")

func NewSQLiteStorage(dbPath string) (Storage, error) {
	return nil, errUnsupported
}

func OpenMicrophone(sampleRate int) (SampleSource, error) {
	return nil, errUnsupported
}
