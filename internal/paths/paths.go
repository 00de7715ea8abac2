// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the ticket-resolve configuration directory.
// An explicit TICKET_RESOLVE_CONFIG_DIR override wins; otherwise the
// user's config directory is used, falling back to the working directory
// when no home is available.
func GetConfigDir() string {
	if dir := os.Getenv("TICKET_RESOLVE_CONFIG_DIR"); dir != "" {
		return dir
	}

	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ticket-resolve")
	}

	return "."
}

// GetConfigFile returns the path to the main config file.
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetLedgerFile returns the path to the corrections ledger file.
func GetLedgerFile() string {
	return filepath.Join(GetConfigDir(), "corrections.jsonl")
}
