// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

// Command dnstest measures DNS server latency and checks domains for
// DNS pollution.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "dnstest",
		Short:         "DNS speed testing and pollution detection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose      bool
	quiet        bool
	outputFormat string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	flags.StringVar(&outputFormat, "format", "table", "output format: table, json, csv, tsv")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging()
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
