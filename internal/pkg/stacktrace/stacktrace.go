// Package stacktrace trims raw goroutine stacks down to project frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/...go:line" locations found in a raw stack
// as produced by runtime/debug.Stack. Frames outside internal packages are dropped.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, marker) {
			continue
		}

		goIdx := strings.Index(line, ".go:")
		if goIdx == -1 {
			continue
		}

		loc, _, _ := strings.Cut(line, " ")
		if idx := strings.Index(loc, marker); idx != -1 && idx < goIdx {
			paths = append(paths, loc[idx+1:])
		}
	}
	return paths
}
