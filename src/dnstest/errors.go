// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import "errors"

// Sentinel errors for the dnstest package.
//
// Per-target failures (a single timed-out probe, one failed reference
// resolver) are never surfaced as errors; they are encoded in the
// corresponding result record. These sentinels cover setup failures
// that abort an operation before any per-target work begins.
var (
	// ErrMalformedList is returned when a server list entry cannot be
	// parsed, most commonly an invalid IP address literal.
	ErrMalformedList = errors.New("dnstest: malformed server list")

	// ErrEmptyList is returned when an operation that needs at least one
	// target is given a list with zero servers.
	ErrEmptyList = errors.New("dnstest: server list is empty")

	// ErrExport is returned when a server list or result set cannot be
	// written to its destination.
	ErrExport = errors.New("dnstest: export failed")

	// ErrPermissionDenied is returned when no ICMP probe socket can be
	// created because the process lacks the required privilege. It is
	// reported before any network activity so callers can distinguish
	// "no permission" from "network is down".
	ErrPermissionDenied = errors.New("dnstest: ICMP probing requires elevated privileges")

	// ErrInvalidDomain is returned when a domain name fails validation.
	ErrInvalidDomain = errors.New("dnstest: invalid domain name")

	// ErrInternalPanic is returned when an internal panic is recovered
	// during a concurrent test run.
	ErrInternalPanic = errors.New("dnstest: internal panic recovered")
)
