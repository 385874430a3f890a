// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnstest/dnstest/src/dnstest"
)

var (
	checkResolver   string
	checkReferences []string
	checkTimeout    time.Duration

	checkCmd = &cobra.Command{
		Use:   "check <domain>",
		Short: "Check a domain for DNS pollution",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
)

func init() {
	flags := checkCmd.Flags()
	flags.StringVarP(&checkResolver, "resolver", "r", "", "query this DNS server instead of the system resolver")
	flags.StringArrayVar(&checkReferences, "reference", nil, "trusted reference resolver (repeatable)")
	flags.DurationVarP(&checkTimeout, "timeout", "t", 5*time.Second, "query timeout")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts := []dnstest.PollutionOption{dnstest.WithQueryTimeout(checkTimeout)}
	if len(checkReferences) > 0 {
		opts = append(opts, dnstest.WithReferenceServers(checkReferences...))
	}
	checker := dnstest.NewPollutionChecker(opts...)

	var result dnstest.PollutionResult
	if checkResolver != "" {
		result = checker.CheckWith(cmd.Context(), args[0], checkResolver)
	} else {
		result = checker.Check(cmd.Context(), args[0])
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Domain:     %s\n", result.Domain)
	fmt.Printf("System:     %v\n", result.SystemIPs)
	fmt.Printf("Reference:  %v\n", result.ReferenceIPs)
	fmt.Printf("Verdict:    %s\n", result.Verdict)
	fmt.Printf("Detail:     %s\n", result.Detail)
	return nil
}
