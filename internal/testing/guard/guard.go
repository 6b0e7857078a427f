// Package guard switches the process into test mode when imported by cmd tests,
// so entrypoints skip dialing PostgreSQL, Redis and the SMS gateway.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GATEKEEP_TEST_MODE") == "" {
			_ = os.Setenv("GATEKEEP_TEST_MODE", "1")
		}
	})
}
