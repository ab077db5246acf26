// Package lifecycle holds timeouts shared by fx start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds a single start or stop hook.
const DefaultTimeout = 10 * time.Second

// MigrationTimeout bounds the startup migration run, including waiting on the advisory lock.
const MigrationTimeout = 5 * time.Minute
