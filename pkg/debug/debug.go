// Package debug provides category-based debug logging for vexgate.
//
// Categories select WHAT to debug and are set via the VEXGATE_DEBUG env
// or logging.debug in the config file. Output is emitted at slog debug
// level, so logging.level must be "debug" for it to appear.
//
// Usage:
//
//	debug.Log("storage", "lookup", "op", "get", "found", true)
//	if debug.Enabled("engine") { /* expensive formatting */ }
//
// Categories: engine, auth, storage, all.
package debug

import (
	"log/slog"
	"os"
	"slices"
	"strings"
)

// EnvVar names the environment variable holding enabled categories.
const EnvVar = "VEXGATE_DEBUG"

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv(EnvVar))
}

// Init configures the enabled categories at startup. The environment
// overrides the configured value.
func Init(configCategories string) {
	cats := os.Getenv(EnvVar)
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Categories returns the enabled categories in sorted order.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	slices.Sort(result)
	return result
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
