// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

// Package dnstest measures DNS server reachability and detects DNS
// answer tampering ("pollution").
//
// The package has two independent engines:
//
//   - [SpeedTester] probes a list of DNS server endpoints concurrently
//     with ICMP echo requests and reports per-server round-trip latency,
//     packet loss, and status. It measures reachability, not DNS
//     functionality.
//   - [PollutionChecker] resolves a domain through the system's
//     configured resolver and through trusted public reference resolvers
//     and compares the answer sets. Disjoint non-empty answers indicate
//     tampering; an overlap of even one address counts as clean, since
//     legitimate resolvers may return different subsets of a
//     geo-distributed answer set.
//
// Server lists are ordered and round-trip losslessly through the JSON
// (and YAML) exchange format:
//
//	list, err := dnstest.LoadFile("dnslist.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tester, err := dnstest.NewSpeedTester(dnstest.WithSortByLatency(true))
//	if err != nil {
//	    log.Fatal(err) // errors.Is(err, dnstest.ErrPermissionDenied) when not privileged
//	}
//	results, err := tester.TestAll(ctx, list)
//
//	checker := dnstest.NewPollutionChecker()
//	verdict := checker.Check(ctx, "example.com")
//
// Per-server failures never abort a run: timeouts and unreachable
// targets are reported in the corresponding result record. Only setup
// problems (an empty or malformed list, no ICMP socket) surface as
// errors, before any network activity starts.
//
// ICMP probing needs either raw socket privilege or, on Linux, ping
// datagram sockets enabled via the net.ipv4.ping_group_range sysctl.
// [NewSpeedTester] fails with [ErrPermissionDenied] when neither is
// available, so callers can print an actionable message instead of
// reporting every server as down.
package dnstest
