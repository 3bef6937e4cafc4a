// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"fmt"
	"net"
	"strings"
)

// rejectOutboundIPRange returns an error unless hostname resolves and one of
// its addresses falls inside allowedIPs. An empty allowedIPs accepts any
// resolvable host.
func rejectOutboundIPRange(allowedIPs []string, hostname string) error {
	if strings.Contains(hostname, ":") {
		host, _, err := net.SplitHostPort(hostname)
		if err != nil {
			return err
		}
		hostname = host
	}
	addrs, err := net.LookupIP(hostname)
	if len(addrs) == 0 || err != nil {
		return fmt.Errorf("unable to resolve (found %d) %s: %v", len(addrs), hostname, err)
	}
	if len(allowedIPs) == 0 {
		return nil
	}

	var nets []*net.IPNet
	var ips []net.IP
	for i := range allowedIPs {
		if strings.Contains(allowedIPs[i], "/") {
			_, ipnet, err := net.ParseCIDR(allowedIPs[i])
			if err != nil {
				return err
			}
			nets = append(nets, ipnet)
			continue
		}
		ip := net.ParseIP(allowedIPs[i])
		if ip == nil {
			return fmt.Errorf("invalid IP address %q", allowedIPs[i])
		}
		ips = append(ips, ip)
	}

	for _, addr := range addrs {
		for i := range nets {
			if nets[i].Contains(addr) {
				return nil
			}
		}
		for i := range ips {
			if ips[i].Equal(addr) {
				return nil
			}
		}
	}
	return fmt.Errorf("%s is not an allowed address", addrs[0].String())
}
