// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"fmt"
	"net/netip"
)

// Status is the lifecycle state of a single server within a test run.
type Status string

// Server statuses.
const (
	// StatusPending means the server has not been tested yet.
	StatusPending Status = "pending"

	// StatusSuccess means the server replied to the echo probe.
	// A server in this state always carries a non-nil, non-negative Delay.
	StatusSuccess Status = "success"

	// StatusTimeout means no reply arrived within the probe timeout.
	StatusTimeout Status = "timeout"

	// StatusUnreachable means the probe could not be delivered at all:
	// the address is invalid or unroutable, or no probe socket exists
	// for its address family.
	StatusUnreachable Status = "unreachable"
)

// IsSuccess reports whether the status indicates a successful test.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// IsFailure reports whether the status indicates a completed, failed test.
// Pending servers are neither successes nor failures.
func (s Status) IsFailure() bool {
	return s == StatusTimeout || s == StatusUnreachable
}

// Family selects an address family when filtering server lists.
type Family int

// Address family predicates for [List.Filter].
const (
	FamilyAny Family = iota
	FamilyIPv4
	FamilyIPv6
)

// Server is a single DNS server endpoint: a display name, an IP address
// literal, and the mutable outcome of the most recent speed test.
//
// The JSON/YAML field names match the external list exchange format.
type Server struct {
	// Name is the display label, e.g. "Cloudflare DNS".
	Name string `json:"name" yaml:"name"`

	// IP is the IPv4 or IPv6 address literal of the server.
	IP string `json:"IP" yaml:"IP"`

	// Delay is the measured round-trip time in milliseconds.
	// Nil means not yet tested or unreachable.
	Delay *float64 `json:"delay" yaml:"delay"`

	// Status is the current test status of the server.
	Status Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// NewServer creates a pending server after validating the address literal.
// An unparsable address is a construction error, not a runtime fault.
func NewServer(name, ip string) (Server, error) {
	if name == "" {
		return Server{}, fmt.Errorf("%w: empty server name", ErrMalformedList)
	}
	if _, err := netip.ParseAddr(ip); err != nil {
		return Server{}, fmt.Errorf("%w: invalid address %q", ErrMalformedList, ip)
	}
	return Server{Name: name, IP: ip, Status: StatusPending}, nil
}

// Addr parses the server's address literal.
func (s Server) Addr() (netip.Addr, error) {
	addr, err := netip.ParseAddr(s.IP)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: invalid address %q", ErrMalformedList, s.IP)
	}
	return addr.Unmap(), nil
}

// IsIPv4 reports whether the server address is an IPv4 address.
func (s Server) IsIPv4() bool {
	addr, err := s.Addr()
	return err == nil && addr.Is4()
}

// IsIPv6 reports whether the server address is an IPv6 address.
func (s Server) IsIPv6() bool {
	addr, err := s.Addr()
	return err == nil && addr.Is6()
}

// List is an ordered collection of DNS servers. Entry order is
// significant and preserved through load, filter, test, and export.
type List struct {
	Servers []Server `json:"list" yaml:"list"`
}

// NewList creates a list from the given servers.
func NewList(servers ...Server) List {
	return List{Servers: servers}
}

// Len returns the number of servers in the list.
func (l List) Len() int { return len(l.Servers) }

// IsEmpty reports whether the list has no servers.
func (l List) IsEmpty() bool { return len(l.Servers) == 0 }

// Filter returns a new list containing only servers of the given
// address family, preserving order. The receiver is not modified.
func (l List) Filter(family Family) List {
	if family == FamilyAny {
		out := make([]Server, len(l.Servers))
		copy(out, l.Servers)
		return List{Servers: out}
	}

	var out []Server
	for _, s := range l.Servers {
		switch family {
		case FamilyIPv4:
			if s.IsIPv4() {
				out = append(out, s)
			}
		case FamilyIPv6:
			if s.IsIPv6() {
				out = append(out, s)
			}
		}
	}
	return List{Servers: out}
}

// Validate checks that every entry has a name and a parseable address.
// It returns [ErrMalformedList] on the first offending entry and leaves
// the list unchanged.
func (l List) Validate() error {
	for i, s := range l.Servers {
		if s.Name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrMalformedList, i)
		}
		if _, err := netip.ParseAddr(s.IP); err != nil {
			return fmt.Errorf("%w: entry %d has invalid address %q", ErrMalformedList, i, s.IP)
		}
	}
	return nil
}

// ApplyResults writes each result's delay and status back onto the
// matching list entry. Results are matched positionally, as produced by
// [SpeedTester.TestAll] without sorting; a mismatched length is ignored
// beyond the shorter of the two.
func (l *List) ApplyResults(results []LatencyResult) {
	for i := range l.Servers {
		if i >= len(results) {
			return
		}
		l.Servers[i].Delay = results[i].LatencyMs
		l.Servers[i].Status = results[i].Status
	}
}

// defaultIPv4Servers is the built-in IPv4 list. Treated as immutable;
// DefaultIPv4 hands out fresh copies.
var defaultIPv4Servers = []Server{
	{Name: "Cloudflare DNS", IP: "1.1.1.1", Status: StatusPending},
	{Name: "Cloudflare DNS 2", IP: "1.0.0.1", Status: StatusPending},
	{Name: "Google Public DNS", IP: "8.8.8.8", Status: StatusPending},
	{Name: "Google Public DNS 2", IP: "8.8.4.4", Status: StatusPending},
	{Name: "Quad9", IP: "9.9.9.9", Status: StatusPending},
	{Name: "OpenDNS", IP: "208.67.222.222", Status: StatusPending},
	{Name: "OpenDNS 2", IP: "208.67.220.220", Status: StatusPending},
	{Name: "AliDNS", IP: "223.5.5.5", Status: StatusPending},
	{Name: "AliDNS 2", IP: "223.6.6.6", Status: StatusPending},
	{Name: "DNSPod", IP: "119.29.29.29", Status: StatusPending},
	{Name: "114DNS", IP: "114.114.114.114", Status: StatusPending},
	{Name: "Baidu DNS", IP: "180.76.76.76", Status: StatusPending},
}

// defaultIPv6Servers is the built-in IPv6 list. Treated as immutable;
// DefaultIPv6 hands out fresh copies.
var defaultIPv6Servers = []Server{
	{Name: "Cloudflare DNS", IP: "2606:4700:4700::1111", Status: StatusPending},
	{Name: "Cloudflare DNS 2", IP: "2606:4700:4700::1001", Status: StatusPending},
	{Name: "Google Public DNS", IP: "2001:4860:4860::8888", Status: StatusPending},
	{Name: "Google Public DNS 2", IP: "2001:4860:4860::8844", Status: StatusPending},
	{Name: "Quad9", IP: "2620:fe::fe", Status: StatusPending},
	{Name: "AliDNS", IP: "2400:3200::1", Status: StatusPending},
	{Name: "DNSPod", IP: "2402:4e00::", Status: StatusPending},
}

// DefaultIPv4 returns a fresh copy of the built-in IPv4 server list.
func DefaultIPv4() List {
	out := make([]Server, len(defaultIPv4Servers))
	copy(out, defaultIPv4Servers)
	return List{Servers: out}
}

// DefaultIPv6 returns a fresh copy of the built-in IPv6 server list.
func DefaultIPv6() List {
	out := make([]Server, len(defaultIPv6Servers))
	copy(out, defaultIPv6Servers)
	return List{Servers: out}
}
