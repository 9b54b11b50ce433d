// Package guard is blank-imported by tests that build the full portal. It
// makes cmd entrypoints exit early and gives config loading usable secrets.
package guard

import "os"

var defaults = [][2]string{
	{"PORTAL_TEST_MODE", "1"},
	{"SESSION_SECRET", "test-session-secret"},
	{"CSRF_SECRET", "test-csrf-secret"},
}

func init() {
	for _, kv := range defaults {
		if _, ok := os.LookupEnv(kv[0]); !ok {
			_ = os.Setenv(kv[0], kv[1])
		}
	}
}
