// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/netip"
	"sync"
	"time"
)

// Default configuration values for the speed tester.
const (
	defaultProbeTimeout = 2 * time.Second
	defaultProbeCount   = 3
	defaultPacketSize   = 32
	defaultConcurrency  = 64
)

// SpeedTester measures round-trip latency to DNS servers with ICMP echo
// probes. This is a reachability and latency measurement, independent of
// whether the target actually answers DNS queries.
//
// Raw ICMP sockets usually require elevated privileges. The constructor
// verifies that a probe socket can be created and fails with
// [ErrPermissionDenied] before any network activity when it cannot, so
// callers can tell "no permission" apart from "servers unreachable".
type SpeedTester struct {
	timeout       time.Duration
	count         int
	packetSize    int
	concurrency   int
	sortByLatency bool

	prober4 *prober
	prober6 *prober
}

// NewSpeedTester creates a [SpeedTester] and verifies ICMP capability
// for both address families. At least one family must yield a usable
// probe socket; when none does because of missing privilege, the error
// wraps [ErrPermissionDenied].
//
//	// Default configuration:
//	t, err := dnstest.NewSpeedTester()
//
//	// Custom configuration:
//	t, err := dnstest.NewSpeedTester(
//	    dnstest.WithProbeTimeout(time.Second),
//	    dnstest.WithSortByLatency(true),
//	)
func NewSpeedTester(opts ...SpeedOption) (*SpeedTester, error) {
	t := &SpeedTester{
		timeout:     defaultProbeTimeout,
		count:       defaultProbeCount,
		packetSize:  defaultPacketSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(t)
	}

	p4, err4 := detectProber(false)
	if err4 == nil {
		t.prober4 = &p4
	}
	p6, err6 := detectProber(true)
	if err6 == nil {
		t.prober6 = &p6
	}

	if t.prober4 == nil && t.prober6 == nil {
		if isPermissionError(err4) || isPermissionError(err6) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err4)
		}
		return nil, fmt.Errorf("dnstest: no ICMP probe socket available: %w", err4)
	}
	return t, nil
}

// proberFor selects the probe socket type for the address family, or
// nil when the family has no usable socket.
func (t *SpeedTester) proberFor(addr netip.Addr) *prober {
	if addr.Is4() {
		return t.prober4
	}
	return t.prober6
}

// TestOne probes a single server and reports the outcome. It sends the
// configured number of echo requests, averages the successful round
// trips, and records the packet loss ratio. Failure is always encoded
// in the result's Status, never raised to the caller.
func (t *SpeedTester) TestOne(ctx context.Context, server Server) LatencyResult {
	addr, err := server.Addr()
	if err != nil {
		return failureResult(server, StatusUnreachable, "invalid IP address")
	}

	p := t.proberFor(addr)
	if p == nil {
		return failureResult(server, StatusUnreachable, "no probe socket for address family")
	}

	conn, err := p.open()
	if err != nil {
		return failureResult(server, StatusUnreachable, fmt.Sprintf("probe socket: %v", err))
	}
	defer conn.Close()

	// Each probe uses its own random echo ID so concurrent probes on
	// raw sockets can tell their replies apart.
	id := rand.IntN(1 << 16)

	var (
		latencies      []float64
		sawUnreachable bool
		attempted      int
	)
	for seq := 1; seq <= t.count; seq++ {
		if ctx.Err() != nil {
			break
		}
		attempted++

		rtt, err := p.echo(conn, addr, id, seq, t.packetSize, t.timeout)
		switch {
		case err == nil:
			latencies = append(latencies, float64(rtt.Microseconds())/1000)
		case errors.Is(err, errUnreachable):
			sawUnreachable = true
		default:
			// No reply within the per-attempt timeout.
		}
	}

	if len(latencies) > 0 {
		var sum float64
		for _, l := range latencies {
			sum += l
		}
		loss := 1 - float64(len(latencies))/float64(attempted)
		return successResult(server, sum/float64(len(latencies)), loss)
	}

	if err := ctx.Err(); err != nil {
		return failureResult(server, StatusTimeout, err.Error())
	}
	if sawUnreachable {
		return failureResult(server, StatusUnreachable, "destination unreachable")
	}
	return failureResult(server, StatusTimeout, "no reply within timeout")
}

// TestAll probes every server in the list concurrently and returns one
// result per entry. Results are indexed by input position, so the output
// order is deterministic regardless of probe completion order; with
// [WithSortByLatency] the stable latency ordering of [SortByLatency] is
// applied instead. Every probe is independent: a hung or unreachable
// server delays nothing beyond its own timeout.
//
// An empty list returns [ErrEmptyList] before any network activity.
func (t *SpeedTester) TestAll(ctx context.Context, list List) ([]LatencyResult, error) {
	if list.IsEmpty() {
		return nil, ErrEmptyList
	}

	results := make([]LatencyResult, list.Len())
	var wg sync.WaitGroup

	// Semaphore to limit concurrency. A buffered channel bounds the
	// number of active goroutines.
	sem := make(chan struct{}, t.concurrency)

Loop:
	for i, server := range list.Servers {
		// Check context before starting new work.
		select {
		case <-ctx.Done():
			// Fill remaining entries without probing them. Do not return
			// yet: active goroutines must settle first.
			for j := i; j < list.Len(); j++ {
				results[j] = LatencyResult{
					Server: list.Servers[j],
					Status: StatusPending,
					Error:  ctx.Err().Error(),
				}
			}
			break Loop
		default:
		}

		wg.Add(1)

		// Acquire semaphore before spawning the goroutine.
		sem <- struct{}{}

		go func(idx int, srv Server) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore
			defer func() {
				if r := recover(); r != nil {
					results[idx] = failureResult(srv, StatusUnreachable,
						fmt.Sprintf("%v: %v", ErrInternalPanic, r))
				}
			}()

			results[idx] = t.TestOne(ctx, srv)
		}(i, server)
	}

	wg.Wait()

	if t.sortByLatency {
		SortByLatency(results)
	}
	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, nil
}
