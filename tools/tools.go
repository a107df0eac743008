//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// They are installed with `go install` or run through `go run` and are not
// tracked in go.mod.
package tools

// Development tools:
//
// Air - live reload for `DEV=true go run ./cmd/checkin-web`
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
//
// mockgen - regenerates the gomock doubles in internal/mocks
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock v0.6.0 (matches go.mod)
