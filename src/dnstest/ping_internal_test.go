// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// quotedEcho builds the payload of a destination-unreachable message
// quoting an echo request: the original IP header followed by the echo
// header, as routers copy it back.
func quotedEcho(t *testing.T, v6 bool, id, seq int) []byte {
	t.Helper()

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte("ping")},
	}
	if v6 {
		msg.Type = ipv6.ICMPTypeEchoRequest
	}
	echo, err := msg.Marshal(nil)
	require.NoError(t, err)

	if v6 {
		hdr := make([]byte, ipv6.HeaderLen)
		hdr[0] = 6 << 4
		hdr[6] = protocolICMPv6
		return append(hdr, echo...)
	}
	hdr := make([]byte, ipv4.HeaderLen)
	hdr[0] = 0x45
	hdr[9] = protocolICMP
	return append(hdr, echo...)
}

func TestQuotesEcho(t *testing.T) {
	body := &icmp.DstUnreach{Data: quotedEcho(t, false, 7, 3)}
	assert.True(t, quotesEcho(body, protocolICMP, 7, 3))
	assert.False(t, quotesEcho(body, protocolICMP, 8, 3), "foreign echo ID")
	assert.False(t, quotesEcho(body, protocolICMP, 7, 4), "foreign sequence")

	body6 := &icmp.DstUnreach{Data: quotedEcho(t, true, 7, 3)}
	assert.True(t, quotesEcho(body6, protocolICMPv6, 7, 3))
	assert.False(t, quotesEcho(body6, protocolICMPv6, 8, 3), "foreign echo ID")

	assert.False(t, quotesEcho(&icmp.DstUnreach{Data: []byte{0x45}}, protocolICMP, 7, 3), "truncated quote")
	assert.False(t, quotesEcho(&icmp.Echo{ID: 7, Seq: 3}, protocolICMP, 7, 3), "not an unreachable body")
}

func TestSentBy(t *testing.T) {
	target := netip.MustParseAddr("192.0.2.1")

	assert.True(t, sentBy(&net.IPAddr{IP: net.ParseIP("192.0.2.1")}, target))
	assert.False(t, sentBy(&net.IPAddr{IP: net.ParseIP("192.0.2.2")}, target))
	assert.True(t, sentBy(&net.UDPAddr{IP: net.ParseIP("192.0.2.1")}, target))
	assert.False(t, sentBy(&net.TCPAddr{IP: net.ParseIP("192.0.2.1")}, target), "unexpected address type")
}

// Raw sockets receive every ICMP packet on the host, so a probe to a
// server that never answers must not adopt the reply another concurrent
// probe is waiting for, even when both use the same ID and sequence.
func TestRawProbesIgnoreForeignReplies(t *testing.T) {
	p := prober{network: "ip4:icmp", raw: true}

	blackholeConn, err := p.open()
	if err != nil {
		t.Skipf("raw ICMP socket unavailable: %v", err)
	}
	defer blackholeConn.Close()

	loopbackConn, err := p.open()
	require.NoError(t, err)
	defer loopbackConn.Close()

	loopback := netip.MustParseAddr("127.0.0.1")
	// 192.0.2.1 (TEST-NET-1) never answers.
	blackhole := netip.MustParseAddr("192.0.2.1")

	var wg sync.WaitGroup
	var blackholeErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, blackholeErr = p.echo(blackholeConn, blackhole, 4242, 1, 32, 2*time.Second)
	}()

	// Keep loopback replies arriving on the host while the blackhole
	// probe waits for its own.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := p.echo(loopbackConn, loopback, 4242, 1, 32, 200*time.Millisecond); err != nil {
			break
		}
	}
	wg.Wait()

	require.Error(t, blackholeErr, "blackhole probe settled on a foreign reply")
}
