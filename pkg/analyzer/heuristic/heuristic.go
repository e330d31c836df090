// Package heuristic extracts language-agnostic complexity metrics from raw
// file text using regular expressions and brace counting. It does not parse.
package heuristic

import (
	"regexp"
	"strings"

	"github.com/panbanda/complore/pkg/models"
)

var (
	lineSplit = regexp.MustCompile(`\r?\n`)

	// A function keyword, an arrow, a def with an argument list, or a class
	// declaration immediately followed by its opening brace.
	functionPattern = regexp.MustCompile(`\bfunction\b|=>|def\s+\w+\s*\(|class\s+\w+\{`)

	importPattern = regexp.MustCompile(`\bimport\b|require\(|from\s+['"]`)

	// Lines that start a function body for maxfunc tracking. Looser than
	// functionPattern: any named class opens a body.
	bodyStartPattern = regexp.MustCompile(`function\b|=>|def\s+\w+\s*\(|class\s+\w+`)
)

// Extract computes loc, functions, imports and maxfunc for one file's
// content. Activity is left at zero. Empty content yields all zeros.
func Extract(content []byte) models.Counts {
	if len(content) == 0 {
		return models.Counts{}
	}
	text := string(content)
	lines := lineSplit.Split(text, -1)
	return models.Counts{
		LOC:       len(lines),
		Functions: CountFunctions(text),
		Imports:   CountImports(text),
		MaxFunc:   longestBody(lines),
	}
}

// CountLines returns the number of line-terminator separated pieces.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	return len(lineSplit.Split(text, -1))
}

// CountFunctions counts function-like declarations.
func CountFunctions(text string) int {
	return len(functionPattern.FindAllStringIndex(text, -1))
}

// CountImports counts import statements, require calls and from-clauses.
func CountImports(text string) int {
	return len(importPattern.FindAllStringIndex(text, -1))
}

// LongestFunction returns the longest run of lines spent inside a brace
// nested body.
func LongestFunction(text string) int {
	if text == "" {
		return 0
	}
	return longestBody(lineSplit.Split(text, -1))
}

// longestBody tracks a single brace depth across the whole file. A body
// start line resets the current run and forces depth to at least one; the
// run grows while depth stays positive and is recorded when depth drops to
// zero or below. Nested and overlapping bodies are not told apart.
func longestBody(lines []string) int {
	longest, run, depth := 0, 0, 0
	for _, line := range lines {
		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")
		if bodyStartPattern.MatchString(line) {
			run = 0
			depth = max(depth, 1)
		}
		depth += opens - closes
		if depth > 0 {
			run++
		}
		if depth <= 0 {
			longest = max(longest, run)
			run = 0
		}
	}
	return max(longest, run)
}
