// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package dnstest

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// IANA protocol numbers for parsing received ICMP messages.
const (
	protocolICMP   = 1
	protocolICMPv6 = 58
)

// errUnreachable marks a probe attempt that was answered with a
// destination-unreachable message or failed to send at all.
var errUnreachable = errors.New("destination unreachable")

// prober knows how to open ICMP sockets for one address family.
// Each probe opens its own socket: unprivileged ICMP datagram sockets
// are demultiplexed per socket by the kernel, and raw sockets filter
// replies by source address and echo ID, so concurrent probes never
// steal each other's replies.
type prober struct {
	network string // "udp4", "ip4:icmp", "udp6", or "ip6:ipv6-icmp"
	raw     bool
}

// probeNetworks lists the candidate socket types for a family in
// preference order: unprivileged datagram sockets first, raw second.
func probeNetworks(v6 bool) []prober {
	if v6 {
		return []prober{{network: "udp6"}, {network: "ip6:ipv6-icmp", raw: true}}
	}
	return []prober{{network: "udp4"}, {network: "ip4:icmp", raw: true}}
}

// detectProber finds a usable socket type for the family by opening and
// immediately closing a socket of each candidate kind. It returns
// os.ErrPermission-wrapping errors unchanged so callers can map them to
// [ErrPermissionDenied].
func detectProber(v6 bool) (prober, error) {
	var lastErr error
	for _, p := range probeNetworks(v6) {
		conn, err := icmp.ListenPacket(p.network, "")
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close()
		return p, nil
	}
	return prober{}, lastErr
}

// isPermissionError reports whether a socket error means the process
// lacks the privilege to create ICMP sockets.
func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission)
}

// open creates a fresh probe socket.
func (p prober) open() (*icmp.PacketConn, error) {
	return icmp.ListenPacket(p.network, "")
}

// dest builds the WriteTo address for the socket type: raw sockets
// address by IP, datagram ICMP sockets use a UDP address with port 0.
func (p prober) dest(addr netip.Addr) net.Addr {
	if p.raw {
		return &net.IPAddr{IP: addr.AsSlice(), Zone: addr.Zone()}
	}
	return &net.UDPAddr{IP: addr.AsSlice(), Zone: addr.Zone()}
}

// echo performs a single echo round trip on conn and returns the
// elapsed time. A missing reply surfaces as the deadline error from
// ReadFrom; anything answered with destination-unreachable, or that
// cannot be sent, returns errUnreachable.
func (p prober) echo(conn *icmp.PacketConn, addr netip.Addr, id, seq, size int, timeout time.Duration) (time.Duration, error) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: make([]byte, size),
		},
	}
	proto := protocolICMP
	if addr.Is6() {
		msg.Type = ipv6.ICMPTypeEchoRequest
		proto = protocolICMPv6
	}

	packet, err := msg.Marshal(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build echo request: %w", err)
	}

	start := time.Now()
	if err := conn.SetReadDeadline(start.Add(timeout)); err != nil {
		return 0, err
	}
	if _, err := conn.WriteTo(packet, p.dest(addr)); err != nil {
		return 0, fmt.Errorf("%w: %v", errUnreachable, err)
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return 0, err // Deadline exceeded: no reply in time.
		}

		reply, err := icmp.ParseMessage(proto, buf[:n])
		if err != nil {
			continue
		}

		// Raw sockets see every ICMP packet on the host, so a reply
		// belongs to this probe only when it comes from the probed
		// address and carries our echo ID, and an unreachable message
		// only when it quotes our request. Datagram sockets are
		// demultiplexed by the kernel, which also rewrites the ID.
		switch reply.Type {
		case ipv4.ICMPTypeEchoReply, ipv6.ICMPTypeEchoReply:
			if p.raw && !sentBy(peer, addr) {
				continue
			}
		case ipv4.ICMPTypeDestinationUnreachable, ipv6.ICMPTypeDestinationUnreachable:
			if p.raw && !quotesEcho(reply.Body, proto, id, seq) {
				continue
			}
			return 0, errUnreachable
		default:
			continue
		}

		body, ok := reply.Body.(*icmp.Echo)
		if !ok || body.Seq != seq {
			continue
		}
		if p.raw && body.ID != id {
			continue
		}

		return time.Since(start), nil
	}
}

// sentBy reports whether a ReadFrom peer address is the probed target.
func sentBy(peer net.Addr, target netip.Addr) bool {
	var ip net.IP
	switch v := peer.(type) {
	case *net.IPAddr:
		ip = v.IP
	case *net.UDPAddr:
		ip = v.IP
	default:
		return false
	}
	from, ok := netip.AddrFromSlice(ip)
	return ok && from.Unmap() == target.Unmap()
}

// quotesEcho reports whether an ICMP error message quotes the echo
// request identified by id and seq. The error body carries the original
// IP header followed by the leading bytes of the offending datagram,
// which for our probes is the echo request header.
func quotesEcho(body icmp.MessageBody, proto, id, seq int) bool {
	du, ok := body.(*icmp.DstUnreach)
	if !ok {
		return false
	}

	data := du.Data
	if proto == protocolICMPv6 {
		if len(data) < ipv6.HeaderLen || int(data[6]) != protocolICMPv6 {
			return false
		}
		data = data[ipv6.HeaderLen:]
	} else {
		if len(data) < ipv4.HeaderLen {
			return false
		}
		hlen := int(data[0]&0x0f) * 4
		if hlen < ipv4.HeaderLen || len(data) < hlen || int(data[9]) != protocolICMP {
			return false
		}
		data = data[hlen:]
	}

	inner, err := icmp.ParseMessage(proto, data)
	if err != nil {
		return false
	}
	if inner.Type != ipv4.ICMPTypeEcho && inner.Type != ipv6.ICMPTypeEchoRequest {
		return false
	}
	echo, ok := inner.Body.(*icmp.Echo)
	return ok && echo.ID == id && echo.Seq == seq
}
