// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnstest/dnstest/src/dnstest"
)

var (
	speedFile    string
	speedDNS     []string
	speedSort    bool
	speedTimeout time.Duration
	speedCount   int
	speedOutput  string
	speedIPv4    bool
	speedIPv6    bool

	speedCmd = &cobra.Command{
		Use:   "speed",
		Short: "Measure round-trip latency to every server in the list",
		RunE:  runSpeed,
	}
)

func init() {
	flags := speedCmd.Flags()
	flags.StringVarP(&speedFile, "file", "f", "", "server list file (JSON or YAML)")
	flags.StringArrayVar(&speedDNS, "dns", nil, "custom server spec IP#Name (repeatable)")
	flags.BoolVarP(&speedSort, "sort", "s", false, "sort results by ascending latency")
	flags.DurationVarP(&speedTimeout, "timeout", "t", 2*time.Second, "per-probe timeout")
	flags.IntVarP(&speedCount, "count", "c", 3, "echo requests per server")
	flags.StringVarP(&speedOutput, "output", "o", "", "write results to a file (.xlsx for Excel)")
	flags.BoolVar(&speedIPv4, "ipv4", false, "test IPv4 servers only")
	flags.BoolVar(&speedIPv6, "ipv6", false, "test IPv6 servers only")
	rootCmd.AddCommand(speedCmd)
}

// loadServers resolves the server list from, in order of precedence,
// --dns specs, --file, or the built-in default lists.
func loadServers(file string, specs []string, ipv4, ipv6 bool) (dnstest.List, error) {
	var (
		list dnstest.List
		err  error
	)
	switch {
	case len(specs) > 0:
		list, err = dnstest.FromSpecs(specs...)
	case file != "":
		list, err = dnstest.LoadFile(file)
	default:
		list = dnstest.Merge(dnstest.DefaultIPv4(), dnstest.DefaultIPv6())
	}
	if err != nil {
		return dnstest.List{}, err
	}

	switch {
	case ipv4 && !ipv6:
		list = list.Filter(dnstest.FamilyIPv4)
	case ipv6 && !ipv4:
		list = list.Filter(dnstest.FamilyIPv6)
	}
	return list, nil
}

func runSpeed(cmd *cobra.Command, args []string) error {
	list, err := loadServers(speedFile, speedDNS, speedIPv4, speedIPv6)
	if err != nil {
		return err
	}

	tester, err := dnstest.NewSpeedTester(
		dnstest.WithProbeTimeout(speedTimeout),
		dnstest.WithProbeCount(speedCount),
		dnstest.WithSortByLatency(speedSort),
	)
	if err != nil {
		if errors.Is(err, dnstest.ErrPermissionDenied) {
			return fmt.Errorf("%w; run as root or enable ping sockets (sysctl net.ipv4.ping_group_range)", err)
		}
		return err
	}

	slog.Info("testing servers", "count", list.Len(), "timeout", speedTimeout)
	results, err := tester.TestAll(cmd.Context(), list)
	if err != nil {
		return err
	}

	if strings.HasSuffix(strings.ToLower(speedOutput), ".xlsx") {
		if err := writeResultsXLSX(speedOutput, results); err != nil {
			return err
		}
		slog.Info("results written", "path", speedOutput)
	} else if err := writeResults(os.Stdout, outputFormat, results); err != nil {
		return err
	}

	if outputFormat == "table" {
		printSummary(os.Stdout, dnstest.Summarize(results))
	}
	return nil
}
