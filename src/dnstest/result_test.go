// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnstest/dnstest/src/dnstest"
)

func ms(v float64) *float64 { return &v }

func result(name string, latency *float64, status dnstest.Status) dnstest.LatencyResult {
	return dnstest.LatencyResult{
		Server:    dnstest.Server{Name: name, IP: "192.0.2.1", Delay: latency, Status: status},
		LatencyMs: latency,
		Status:    status,
	}
}

func TestSortByLatency(t *testing.T) {
	results := []dnstest.LatencyResult{
		result("timeout-1", nil, dnstest.StatusTimeout),
		result("slow", ms(40), dnstest.StatusSuccess),
		result("fast", ms(5), dnstest.StatusSuccess),
		result("unreachable", nil, dnstest.StatusUnreachable),
		result("tied-a", ms(10), dnstest.StatusSuccess),
		result("tied-b", ms(10), dnstest.StatusSuccess),
	}

	dnstest.SortByLatency(results)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Server.Name
	}
	assert.Equal(t, []string{"fast", "tied-a", "tied-b", "slow", "timeout-1", "unreachable"}, names)

	// Invariant: for all i<j, either both latencies are ordered or the
	// failure is on the right.
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			a, b := results[i].LatencyMs, results[j].LatencyMs
			if a != nil && b != nil {
				assert.LessOrEqual(t, *a, *b)
			} else {
				assert.Nil(t, b, "failure sorted before a success at %d < %d", i, j)
			}
		}
	}
}

func TestSortByLatencyStableAcrossFailures(t *testing.T) {
	results := []dnstest.LatencyResult{
		result("t1", nil, dnstest.StatusTimeout),
		result("u1", nil, dnstest.StatusUnreachable),
		result("t2", nil, dnstest.StatusTimeout),
	}

	dnstest.SortByLatency(results)

	assert.Equal(t, "t1", results[0].Server.Name)
	assert.Equal(t, "u1", results[1].Server.Name)
	assert.Equal(t, "t2", results[2].Server.Name)
}

func TestSummarize(t *testing.T) {
	results := []dnstest.LatencyResult{
		result("a", ms(10), dnstest.StatusSuccess),
		result("b", ms(20), dnstest.StatusSuccess),
		result("c", nil, dnstest.StatusTimeout),
		result("d", nil, dnstest.StatusUnreachable),
	}

	summary := dnstest.Summarize(results)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, 1, summary.Timeout)
	assert.Equal(t, 1, summary.Failed)

	require.NotNil(t, summary.AvgLatency)
	assert.Equal(t, 15.0, *summary.AvgLatency)
	require.NotNil(t, summary.MinLatency)
	assert.Equal(t, 10.0, *summary.MinLatency)
	require.NotNil(t, summary.MaxLatency)
	assert.Equal(t, 20.0, *summary.MaxLatency)
	assert.Equal(t, 50.0, summary.SuccessRate())
}

func TestSummarizeEmpty(t *testing.T) {
	summary := dnstest.Summarize(nil)
	assert.Equal(t, 0, summary.Total)
	assert.Nil(t, summary.AvgLatency)
	assert.Nil(t, summary.MinLatency)
	assert.Nil(t, summary.MaxLatency)
	assert.Equal(t, 0.0, summary.SuccessRate())
}
