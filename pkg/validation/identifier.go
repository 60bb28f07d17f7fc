// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided names and identifiers before they
// reach a storage key or a graph lookup.
//
// Snapshot names become BadgerDB key suffixes, and identifiers arrive from
// CLI arguments and HTTP path parameters. Rejecting malformed input here
// keeps path separators out of keys and control characters out of logs.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// MaxIdentifierLength bounds term and entity identifiers in bytes.
const MaxIdentifierLength = 512

// snapshotNamePattern matches valid snapshot names.
// Allows: letters, digits, dots, underscores, hyphens. Max 128 characters.
var snapshotNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidateSnapshotName validates a snapshot name.
//
// Valid names:
//   - 1-128 characters
//   - Letters, digits, '.', '_' and '-'
//   - Not "." or ".."
//
// Example:
//
//	if err := validation.ValidateSnapshotName(name); err != nil {
//	    return fmt.Errorf("%w: %v", ErrInvalidName, err)
//	}
func ValidateSnapshotName(name string) error {
	if name == "" {
		return fmt.Errorf("snapshot name cannot be empty")
	}
	if !snapshotNamePattern.MatchString(name) {
		return fmt.Errorf("invalid snapshot name: %q (must be 1-128 letters, digits, dots, underscores, or hyphens)", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid snapshot name: %q", name)
	}
	return nil
}

// ValidateIdentifier validates a term or entity identifier.
//
// Identifiers are opaque: any printable text without whitespace is
// accepted, up to MaxIdentifierLength bytes.
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(id) > MaxIdentifierLength {
		return fmt.Errorf("identifier too long: %d bytes (max %d)", len(id), MaxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("invalid identifier: %q (contains whitespace or control characters)", id)
		}
	}
	return nil
}

// ValidateIdentifiers validates multiple identifiers.
// Returns an error listing all invalid identifiers if any fail validation.
func ValidateIdentifiers(ids []string) error {
	var invalid []string
	for _, id := range ids {
		if err := ValidateIdentifier(id); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", id))
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid identifiers: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// SanitizeIdentifier trims surrounding whitespace and validates the result.
//
// Use this for identifiers typed by a user:
//
//	id, err := validation.SanitizeIdentifier(args[0])
//	if err != nil {
//	    return err
//	}
func SanitizeIdentifier(id string) (string, error) {
	id = strings.TrimSpace(id)
	if err := ValidateIdentifier(id); err != nil {
		return "", err
	}
	return id, nil
}

