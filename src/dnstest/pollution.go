// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// Default configuration values for the pollution checker.
const (
	defaultQueryTimeout = 5 * time.Second
	defaultEDNS0Size    = 1232 // Recommended size to prevent IP fragmentation
)

// defaultReferenceServers are the trusted public resolvers used as the
// tampering-free baseline: Google Public DNS and Cloudflare.
var defaultReferenceServers = []string{"8.8.8.8", "1.1.1.1"}

// knownPublicDNS are well-known public resolver addresses. A system
// answer equal to one of these is taken as legitimate even when the
// reference answers differ, since resolver self-addresses show up in
// some split-horizon setups.
var knownPublicDNS = map[string]struct{}{
	"8.8.8.8":              {},
	"8.8.4.4":              {},
	"1.1.1.1":              {},
	"1.0.0.1":              {},
	"9.9.9.9":              {},
	"208.67.222.222":       {},
	"208.67.220.220":       {},
	"2001:4860:4860::8888": {},
	"2001:4860:4860::8844": {},
	"2606:4700:4700::1111": {},
	"2606:4700:4700::1001": {},
	"2620:fe::fe":          {},
	"2620:fe::9":           {},
}

// Verdict classifies the outcome of a pollution check.
type Verdict string

// Pollution check verdicts.
const (
	// VerdictClean means the system and reference answers intersect.
	VerdictClean Verdict = "clean"

	// VerdictPolluted means both answer sets are non-empty and disjoint.
	VerdictPolluted Verdict = "polluted"

	// VerdictInconclusive means one side could not be resolved, so
	// pollution can be neither asserted nor ruled out.
	VerdictInconclusive Verdict = "inconclusive"
)

// PollutionResult is the outcome of checking a single domain. The
// Polluted flag is derived from the two address sets at compare time
// and recomputed on every check; nothing persists across checks.
type PollutionResult struct {
	// Domain is the domain name that was checked.
	Domain string `json:"domain"`

	// SystemIPs are the addresses returned by the system resolver
	// (or the caller-supplied override).
	SystemIPs []netip.Addr `json:"system_ips"`

	// ReferenceIPs is the union of addresses returned by the
	// reference resolvers.
	ReferenceIPs []netip.Addr `json:"reference_ips"`

	// Polluted reports whether the answer sets are disjoint.
	// It is true exactly when Verdict is VerdictPolluted.
	Polluted bool `json:"is_polluted"`

	// Verdict classifies the comparison.
	Verdict Verdict `json:"verdict"`

	// Detail is a human-readable explanation of the verdict,
	// including failure causes on inconclusive outcomes.
	Detail string `json:"detail"`
}

// PollutionChecker detects DNS tampering by comparing the answer a
// domain resolves to via the system resolver against the answers from
// trusted public reference resolvers.
type PollutionChecker struct {
	references []string
	timeout    time.Duration
	edns0Size  uint16
	resolver   *net.Resolver
	dnsClient  *dns.Client
}

// NewPollutionChecker creates a [PollutionChecker] querying the host's
// configured resolver and the default reference resolvers. Use
// functional options to customize behavior.
func NewPollutionChecker(opts ...PollutionOption) *PollutionChecker {
	c := &PollutionChecker{
		references: append([]string(nil), defaultReferenceServers...),
		timeout:    defaultQueryTimeout,
		edns0Size:  defaultEDNS0Size,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.resolver == nil {
		c.resolver = net.DefaultResolver
	}
	if c.dnsClient == nil {
		c.dnsClient = &dns.Client{
			Timeout: c.timeout,
			Net:     "udp",
		}
	}
	return c
}

// ReferenceServers returns a copy of the configured reference resolver
// addresses.
func (c *PollutionChecker) ReferenceServers() []string {
	return append([]string(nil), c.references...)
}

// Check resolves domain via the system resolver and the reference
// resolvers and compares the answers. Failures never surface as errors;
// they are encoded in the result's Verdict and Detail.
func (c *PollutionChecker) Check(ctx context.Context, domain string) PollutionResult {
	return c.check(ctx, domain, "")
}

// CheckWith behaves like [PollutionChecker.Check] but queries the given
// DNS server address in place of the system resolver. This lets callers
// test a specific, possibly suspect, resolver without touching the host
// configuration. The address may carry an explicit port; ":53" is
// assumed otherwise.
func (c *PollutionChecker) CheckWith(ctx context.Context, domain, resolverAddr string) PollutionResult {
	return c.check(ctx, domain, resolverAddr)
}

func (c *PollutionChecker) check(ctx context.Context, domain, resolverAddr string) PollutionResult {
	domain = normalizeDomain(domain)
	result := PollutionResult{
		Domain:  domain,
		Verdict: VerdictInconclusive,
	}

	if !IsValidDomain(domain) {
		result.Detail = fmt.Sprintf("%v: %q", ErrInvalidDomain, domain)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// QuerySystem: without a baseline, pollution cannot be asserted.
	systemIPs, err := c.resolveSystem(ctx, domain, resolverAddr)
	if err != nil {
		if resolverAddr != "" {
			result.Detail = fmt.Sprintf("resolver %s failed: %v", resolverAddr, err)
		} else {
			result.Detail = fmt.Sprintf("system resolver failed: %v", err)
		}
		return result
	}
	result.SystemIPs = systemIPs

	// QueryReference: failed reference resolvers are excluded; only a
	// total failure makes the check inconclusive.
	referenceIPs, refErrs := c.resolveReferences(ctx, domain)
	result.ReferenceIPs = referenceIPs
	if len(referenceIPs) == 0 && len(refErrs) == len(c.references) {
		result.Detail = fmt.Sprintf("all reference resolvers failed: %v", joinErrors(refErrs))
		return result
	}

	result.Verdict, result.Detail = compareAnswers(systemIPs, referenceIPs)
	result.Polluted = result.Verdict == VerdictPolluted
	return result
}

// resolveSystem resolves domain via the system resolver, or via the
// override server when one is given.
func (c *PollutionChecker) resolveSystem(ctx context.Context, domain, resolverAddr string) ([]netip.Addr, error) {
	if resolverAddr != "" {
		return c.queryServer(ctx, resolverAddr, domain)
	}

	addrs, err := c.resolver.LookupNetIP(ctx, "ip", domain)
	if err != nil {
		return nil, err
	}
	out := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Unmap())
	}
	return out, nil
}

// resolveReferences queries every reference resolver concurrently and
// returns the union of their answers in resolver order. There is no
// ordering dependency between the resolvers themselves; answers are
// merged only after all queries settle.
func (c *PollutionChecker) resolveReferences(ctx context.Context, domain string) ([]netip.Addr, []error) {
	type answer struct {
		addrs []netip.Addr
		err   error
	}

	answers := make([]answer, len(c.references))
	var wg sync.WaitGroup
	for i, ref := range c.references {
		wg.Add(1)
		go func(idx int, server string) {
			defer wg.Done()
			addrs, err := c.queryServer(ctx, server, domain)
			answers[idx] = answer{addrs: addrs, err: err}
		}(i, ref)
	}
	wg.Wait()

	var (
		union []netip.Addr
		errs  []error
		seen  = make(map[netip.Addr]struct{})
	)
	for _, a := range answers {
		if a.err != nil {
			errs = append(errs, a.err)
			continue
		}
		for _, addr := range a.addrs {
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			union = append(union, addr)
		}
	}
	return union, errs
}

// queryServer resolves domain against a specific DNS server. A records
// are tried first; AAAA only when the A answer is empty.
func (c *PollutionChecker) queryServer(ctx context.Context, server, domain string) ([]netip.Addr, error) {
	addrs, err := c.query(ctx, server, domain, dns.TypeA)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return c.query(ctx, server, domain, dns.TypeAAAA)
	}
	return addrs, nil
}

// query sends a single DNS query to the given server and extracts the
// addresses from the answer section. It respects context cancellation
// in addition to the client timeout.
func (c *PollutionChecker) query(ctx context.Context, server, domain string, qtype uint16) ([]netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true
	msg.SetEdns0(c.edns0Size, false)

	// Run the exchange in a goroutine so a cancelled context does not
	// leave the caller waiting on the network.
	type reply struct {
		msg *dns.Msg
		err error
	}
	ch := make(chan reply, 1)

	go func() {
		resp, _, err := c.dnsClient.ExchangeContext(ctx, msg, withDefaultPort(server))
		ch <- reply{msg: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if r.msg.Rcode != dns.RcodeSuccess {
			return nil, fmt.Errorf("%s answered %s", server, dns.RcodeToString[r.msg.Rcode])
		}

		var out []netip.Addr
		for _, rr := range r.msg.Answer {
			switch rec := rr.(type) {
			case *dns.A:
				if addr, ok := netip.AddrFromSlice(rec.A); ok {
					out = append(out, addr.Unmap())
				}
			case *dns.AAAA:
				if addr, ok := netip.AddrFromSlice(rec.AAAA); ok {
					out = append(out, addr.Unmap())
				}
			}
		}
		return out, nil
	}
}

// compareAnswers classifies the two answer sets. Intersection counts as
// clean; exact equality is not required because legitimate resolvers may
// return different subsets of a geo-distributed answer set. Only
// disjoint non-empty sets count as polluted.
func compareAnswers(system, reference []netip.Addr) (Verdict, string) {
	if len(system) == 0 {
		return VerdictInconclusive, "system resolver returned no addresses"
	}
	if len(reference) == 0 {
		return VerdictInconclusive, "reference resolvers returned no addresses"
	}

	refSet := make(map[netip.Addr]struct{}, len(reference))
	for _, addr := range reference {
		refSet[addr] = struct{}{}
	}
	for _, addr := range system {
		if _, ok := refSet[addr]; ok {
			return VerdictClean, fmt.Sprintf("system and reference answers share %s", addr)
		}
		if _, ok := knownPublicDNS[addr.String()]; ok {
			return VerdictClean, fmt.Sprintf("system answer %s is a well-known public DNS address", addr)
		}
	}

	return VerdictPolluted, fmt.Sprintf(
		"system resolver returned %v, reference resolvers returned %v, no overlap",
		system, reference)
}

// withDefaultPort appends ":53" to a server address that has no
// explicit port, bracketing IPv6 literals as needed.
func withDefaultPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

// joinErrors renders a list of per-resolver errors for a detail string.
func joinErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
