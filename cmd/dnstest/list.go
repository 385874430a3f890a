// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dnstest/dnstest/src/dnstest"
)

var (
	listFile string
	listIPv4 bool
	listIPv6 bool

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Show the configured DNS servers",
		RunE:  runList,
	}

	exportOutput      string
	exportFile        string
	exportIncludeIPv6 bool

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the server list to a file",
		RunE:  runExport,
	}
)

func init() {
	flags := listCmd.Flags()
	flags.StringVarP(&listFile, "file", "f", "", "server list file (JSON or YAML)")
	flags.BoolVar(&listIPv4, "ipv4", false, "show IPv4 servers only")
	flags.BoolVar(&listIPv6, "ipv6", false, "show IPv6 servers only")
	rootCmd.AddCommand(listCmd)

	eflags := exportCmd.Flags()
	eflags.StringVarP(&exportOutput, "output", "o", "dnslist.json", "destination path (.json, .yaml, or .xlsx)")
	eflags.StringVarP(&exportFile, "file", "f", "", "source list file instead of the built-in defaults")
	eflags.BoolVar(&exportIncludeIPv6, "include-ipv6", false, "include the built-in IPv6 defaults")
	rootCmd.AddCommand(exportCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	list, err := loadServers(listFile, nil, listIPv4, listIPv6)
	if err != nil {
		return err
	}

	fmt.Printf("DNS servers (%d):\n\n", list.Len())
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tName\tIP")
	for i, s := range list.Servers {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, s.Name, s.IP)
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	var (
		list dnstest.List
		err  error
	)
	if exportFile != "" {
		list, err = dnstest.LoadFile(exportFile)
		if err != nil {
			return err
		}
	} else {
		list = dnstest.DefaultIPv4()
		if exportIncludeIPv6 {
			list = dnstest.Merge(list, dnstest.DefaultIPv6())
		}
	}

	if strings.HasSuffix(strings.ToLower(exportOutput), ".xlsx") {
		err = writeServersXLSX(exportOutput, list)
	} else {
		err = dnstest.ExportFile(list, exportOutput)
	}
	if err != nil {
		return err
	}

	slog.Info("list exported", "path", exportOutput, "servers", list.Len())
	return nil
}
