// SPDX-License-Identifier: MIT

package progress

import "fmt"

// OpenStore creates a Store based on the configured backend.
func OpenStore(backend, path string) (Store, error) {
	if backend == "" {
		backend = "badger"
	}

	switch backend {
	case "memory":
		return NewMemoryStore(), nil
	case "badger":
		return OpenBadgerStore(path)
	case "sqlite":
		return OpenSqliteStore(path)
	default:
		return nil, fmt.Errorf("unknown progress backend: %s", backend)
	}
}
