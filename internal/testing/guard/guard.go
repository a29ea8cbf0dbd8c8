// Package guard forces test mode for any test package that imports it,
// so binaries under test never start real servers or workers.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("HELIOS_TEST_MODE") == "" {
			_ = os.Setenv("HELIOS_TEST_MODE", "1")
		}
	})
}
