// Package ui provides small text helpers for terminal output.
package ui
