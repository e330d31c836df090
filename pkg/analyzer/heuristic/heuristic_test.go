package heuristic

import (
	"strings"
	"testing"

	"github.com/panbanda/complore/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.Counts
	}{
		{
			name:    "empty file",
			content: "",
			want:    models.Counts{},
		},
		{
			name: "javascript module",
			content: strings.Join([]string{
				"import fs from 'fs';",
				"const x = require('y');",
				"function a() {",
				"  return 1;",
				"}",
				"const b = () => 2;",
			}, "\n"),
			// The arrow line restarts the run, and the run still open at
			// the end of the file is a single line.
			want: models.Counts{LOC: 6, Functions: 2, Imports: 3, MaxFunc: 1},
		},
		{
			name: "plain block",
			content: strings.Join([]string{
				"if (x) {",
				"  a();",
				"  b();",
				"}",
				"done();",
			}, "\n"),
			want: models.Counts{LOC: 5, MaxFunc: 3},
		},
		{
			name:    "python",
			content: "from os import path\ndef foo(x):\n    return x\n",
			want:    models.Counts{LOC: 4, Functions: 1, Imports: 1, MaxFunc: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract([]byte(tt.content)))
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("a"))
	assert.Equal(t, 2, CountLines("a\n"))
	assert.Equal(t, 3, CountLines("a\r\nb\r\nc"))
	assert.Equal(t, 3, CountLines("a\nb\r\nc"))
}

func TestCountFunctions(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"function foo() {}", 1},
		{"const f = (a) => a", 1},
		{"def run (self):", 1},
		{"class Foo{", 1},
		{"class Foo {", 0},
		{"functional = 1", 0},
		{"async function a() {}; const b = x => y", 2},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, CountFunctions(tt.text))
		})
	}
}

func TestCountImports(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{`import React from "react"`, 2},
		{`const x = require('x')`, 1},
		{`export { a } from './a'`, 1},
		{`import "fmt"`, 1},
		{`reimported = true`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, CountImports(tt.text))
		})
	}
}

func TestLongestFunction(t *testing.T) {
	t.Run("closed run is recorded", func(t *testing.T) {
		text := "if (x) {\n  a();\n}\nb();"
		assert.Equal(t, 2, LongestFunction(text))
	})

	t.Run("forced depth keeps counting after close", func(t *testing.T) {
		// The body start forces depth to 1 before the brace adds another
		// level, so the closing brace leaves depth at 1.
		text := "function a() {\n  return 1;\n}\n"
		assert.Equal(t, 4, LongestFunction(text))
	})

	t.Run("longest of several runs", func(t *testing.T) {
		text := strings.Join([]string{
			"{",
			"}",
			"{",
			"  x",
			"  y",
			"}",
		}, "\n")
		assert.Equal(t, 3, LongestFunction(text))
	})

	t.Run("no braces no body", func(t *testing.T) {
		assert.Equal(t, 0, LongestFunction("a\nb\nc"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0, LongestFunction(""))
	})
}

func TestExtractNonNegative(t *testing.T) {
	inputs := []string{"}}}}", "}\n}\n{", "=>=>=>", "\n\n\n"}
	for _, in := range inputs {
		c := Extract([]byte(in))
		for _, m := range models.Metrics() {
			v, _ := c.Value(m)
			assert.GreaterOrEqual(t, v, 0, "%q %s", in, m)
		}
	}
}
