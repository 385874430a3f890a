// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"net"
	"time"

	"github.com/miekg/dns"
)

// SpeedOption is a functional option for configuring a [SpeedTester].
type SpeedOption func(*SpeedTester)

// WithProbeTimeout sets the timeout for each echo probe attempt.
// The default is 2 seconds.
func WithProbeTimeout(d time.Duration) SpeedOption {
	return func(t *SpeedTester) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithProbeCount sets the number of echo requests sent per server; the
// reported latency is the average over the successful ones.
// The default is 3.
func WithProbeCount(n int) SpeedOption {
	return func(t *SpeedTester) {
		if n > 0 {
			t.count = n
		}
	}
}

// WithPacketSize sets the echo payload size in bytes. The default is 32.
func WithPacketSize(n int) SpeedOption {
	return func(t *SpeedTester) {
		if n >= 0 {
			t.packetSize = n
		}
	}
}

// WithConcurrency sets the maximum number of servers probed at once.
// The default of 64 is effectively unbounded for typical list sizes.
func WithConcurrency(n int) SpeedOption {
	return func(t *SpeedTester) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithSortByLatency makes [SpeedTester.TestAll] return results ordered
// by ascending latency with failed servers last, instead of input
// order. Ties and failures keep their original relative order.
func WithSortByLatency(sorted bool) SpeedOption {
	return func(t *SpeedTester) {
		t.sortByLatency = sorted
	}
}

// PollutionOption is a functional option for configuring a
// [PollutionChecker].
type PollutionOption func(*PollutionChecker)

// WithReferenceServers replaces the default reference resolvers.
// Addresses may carry an explicit port; ":53" is assumed otherwise.
// Passing zero servers is a no-op.
func WithReferenceServers(servers ...string) PollutionOption {
	return func(c *PollutionChecker) {
		if len(servers) > 0 {
			c.references = append([]string(nil), servers...)
		}
	}
}

// WithQueryTimeout bounds a whole pollution check and each individual
// DNS query within it. The default is 5 seconds.
//
// This option does not override the timeout of a custom client set via
// [WithDNSClient].
func WithQueryTimeout(d time.Duration) PollutionOption {
	return func(c *PollutionChecker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSystemResolver substitutes the resolver used for the system side
// of the comparison. The default is [net.DefaultResolver].
// Passing nil is a no-op.
func WithSystemResolver(r *net.Resolver) PollutionOption {
	return func(c *PollutionChecker) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithDNSClient sets a custom [dns.Client] for the reference resolver
// queries, allowing full transport control (TCP, DNS-over-TLS, custom
// dialers). Passing nil is a no-op and the default UDP client is used.
func WithDNSClient(client *dns.Client) PollutionOption {
	return func(c *PollutionChecker) {
		if client != nil {
			c.dnsClient = client
		}
	}
}

// WithEDNS0Size sets the EDNS0 UDP buffer size for reference queries.
// The default is 1232 bytes, the recommended size to prevent IP
// fragmentation over UDP.
func WithEDNS0Size(size uint16) PollutionOption {
	return func(c *PollutionChecker) {
		if size > 0 {
			c.edns0Size = size
		}
	}
}
