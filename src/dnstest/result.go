// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import "sort"

// LatencyResult is the outcome of probing a single server. Results are
// produced fresh each test run and are immutable once produced.
type LatencyResult struct {
	// Server is the probed server with its Delay and Status updated.
	Server Server `json:"server"`

	// LatencyMs is the average round-trip time in milliseconds over the
	// successful probe attempts. Nil on timeout or unreachable.
	LatencyMs *float64 `json:"latency_ms"`

	// PacketLoss is the lost fraction of probe attempts,
	// 0.0 (no loss) to 1.0 (all lost).
	PacketLoss float64 `json:"packet_loss"`

	// Status classifies the outcome.
	Status Status `json:"status"`

	// Error is a human-readable failure description, empty on success.
	Error string `json:"error,omitempty"`
}

// successResult builds a result for a server that replied.
func successResult(server Server, latencyMs, packetLoss float64) LatencyResult {
	server.Delay = &latencyMs
	server.Status = StatusSuccess
	return LatencyResult{
		Server:     server,
		LatencyMs:  &latencyMs,
		PacketLoss: packetLoss,
		Status:     StatusSuccess,
	}
}

// failureResult builds a result for a server that did not reply.
func failureResult(server Server, status Status, detail string) LatencyResult {
	server.Delay = nil
	server.Status = status
	return LatencyResult{
		Server:     server,
		PacketLoss: 1.0,
		Status:     status,
		Error:      detail,
	}
}

// SortByLatency reorders results in place: successful entries ascending
// by latency, then all timeouts and unreachables. The sort is stable, so
// entries with equal latency, and all entries within the failed class,
// keep their original relative order.
func SortByLatency(results []LatencyResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].LatencyMs, results[j].LatencyMs
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
}

// Summary aggregates the outcome of a full test run.
type Summary struct {
	// Total is the number of servers tested.
	Total int `json:"total"`

	// Success is the number of servers that replied.
	Success int `json:"success"`

	// Timeout is the number of servers that did not reply in time.
	Timeout int `json:"timeout"`

	// Failed is the number of servers that were unreachable.
	Failed int `json:"failed"`

	// AvgLatency, MinLatency, and MaxLatency are in milliseconds and
	// nil when no server succeeded.
	AvgLatency *float64 `json:"avg_latency"`
	MinLatency *float64 `json:"min_latency"`
	MaxLatency *float64 `json:"max_latency"`
}

// SuccessRate returns the share of successful tests as a percentage.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total) * 100
}

// Summarize computes aggregate statistics over a result set.
func Summarize(results []LatencyResult) Summary {
	var (
		summary Summary
		sum     float64
	)
	for _, r := range results {
		summary.Total++
		switch {
		case r.Status == StatusSuccess && r.LatencyMs != nil:
			summary.Success++
			latency := *r.LatencyMs
			sum += latency
			if summary.MinLatency == nil || latency < *summary.MinLatency {
				summary.MinLatency = &latency
			}
			if summary.MaxLatency == nil || latency > *summary.MaxLatency {
				summary.MaxLatency = &latency
			}
		case r.Status == StatusTimeout:
			summary.Timeout++
		default:
			summary.Failed++
		}
	}
	if summary.Success > 0 {
		avg := sum / float64(summary.Success)
		summary.AvgLatency = &avg
	}
	return summary
}
