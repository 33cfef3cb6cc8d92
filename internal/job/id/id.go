// Package id provides unique identifier generation for jobs.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix starts every generated job ID.
const Prefix = "export-"

// Generate creates a new unique job ID.
// Format: export-<timestamp>-<first 8 hex digits of a random UUID>
// Example: export-1701432000-a1b2c3d4
func Generate() string {
	short, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("%s%d-%s", Prefix, time.Now().Unix(), short)
}
