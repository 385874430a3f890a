// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"net/netip"
	"strings"
)

// IsValidDomain reports whether domain is a syntactically valid domain
// name suitable for a pollution check.
//
// A valid domain has at least two labels separated by dots; each label
// is 1-63 characters of ASCII letters, digits, or hyphens and does not
// start or end with a hyphen. The TLD must be at least two letters.
// IP address literals are not domains and are rejected.
func IsValidDomain(domain string) bool {
	if domain == "" {
		return false
	}
	if _, err := netip.ParseAddr(domain); err == nil {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}

	for i, label := range labels {
		if len(label) < 1 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}

		isTLD := i == len(labels)-1
		if isTLD && len(label) < 2 {
			return false
		}

		for _, c := range label {
			switch {
			case c >= 'a' && c <= 'z':
			case c >= 'A' && c <= 'Z':
			case c >= '0' && c <= '9':
				if isTLD {
					return false // TLD must be letters only.
				}
			case c == '-':
				if isTLD {
					return false // TLD must be letters only.
				}
			default:
				return false
			}
		}
	}

	return true
}

// normalizeDomain lowercases, trims whitespace, and strips a trailing
// dot from a domain name.
func normalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}
