// Package testutil contains fluent builders shared by package tests.
package testutil
