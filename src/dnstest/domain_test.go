// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dnstest/dnstest/src/dnstest"
)

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		want   bool
	}{
		{"valid .com", "example.com", true},
		{"valid subdomain", "sub.example.com", true},
		{"valid hyphen", "my-site.example.com", true},
		{"valid short label", "a.com", true},
		{"valid mixed case", "Example.COM", true},
		{"invalid empty", "", false},
		{"invalid single label", "localhost", false},
		{"invalid IPv4 literal", "8.8.8.8", false},
		{"invalid IPv6 literal", "2001:db8::1", false},
		{"invalid starts with hyphen", "-example.com", false},
		{"invalid ends with hyphen", "example-.com", false},
		{"invalid special chars", "exam!ple.com", false},
		{"invalid spaces", "example .com", false},
		{"invalid single-char TLD", "example.c", false},
		{"invalid TLD with digits", "example.c0m", false},
		{"invalid TLD with hyphen", "example.c-m", false},
		{"invalid empty label", "example..com", false},
		{"invalid label too long", "example." + strings.Repeat("a", 64) + ".com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dnstest.IsValidDomain(tt.domain), "IsValidDomain(%q)", tt.domain)
		})
	}
}
