// Copyright (c) 2026 the dnstest authors. All rights reserved.
//
// Use of this source code is governed by the MIT license,
// which can be found in the LICENSE file.

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"

	"github.com/dnstest/dnstest/src/dnstest"
)

// writeResults renders latency results in the selected format.
// The result order is already final; no re-sorting happens here.
func writeResults(w io.Writer, format string, results []dnstest.LatencyResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "csv":
		return writeResultsCSV(w, results, ',')
	case "tsv":
		return writeResultsCSV(w, results, '\t')
	case "table":
		return writeResultsTable(w, results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeResultsTable(w io.Writer, results []dnstest.LatencyResult) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tName\tIP\tLatency\tStatus")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1, r.Server.Name, r.Server.IP, latencyCell(r), r.Status)
	}
	return tw.Flush()
}

func writeResultsCSV(w io.Writer, results []dnstest.LatencyResult, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write([]string{"#", "Name", "IP", "Latency(ms)", "Status", "PacketLoss"}); err != nil {
		return err
	}
	for i, r := range results {
		latency := ""
		if r.LatencyMs != nil {
			latency = strconv.FormatFloat(*r.LatencyMs, 'f', 1, 64)
		}
		record := []string{
			strconv.Itoa(i + 1),
			r.Server.Name,
			r.Server.IP,
			latency,
			string(r.Status),
			strconv.FormatFloat(r.PacketLoss, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func latencyCell(r dnstest.LatencyResult) string {
	if r.LatencyMs == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f ms", *r.LatencyMs)
}

func printSummary(w io.Writer, s dnstest.Summary) {
	fmt.Fprintf(w, "\nTested %d servers: %d ok, %d timeout, %d unreachable (%.0f%%)\n",
		s.Total, s.Success, s.Timeout, s.Failed, s.SuccessRate())
	if s.AvgLatency != nil {
		fmt.Fprintf(w, "Latency min/avg/max: %.1f/%.1f/%.1f ms\n",
			*s.MinLatency, *s.AvgLatency, *s.MaxLatency)
	}
}

// writeResultsXLSX writes latency results to an Excel workbook.
func writeResultsXLSX(path string, results []dnstest.LatencyResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	rows := [][]any{{"#", "Name", "IP", "Latency(ms)", "Status", "PacketLoss"}}
	for i, r := range results {
		var latency any
		if r.LatencyMs != nil {
			latency = *r.LatencyMs
		}
		rows = append(rows, []any{i + 1, r.Server.Name, r.Server.IP, latency, string(r.Status), r.PacketLoss})
	}

	if err := writeXLSXRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %v", dnstest.ErrExport, err)
	}
	return nil
}

// writeServersXLSX writes a server list to an Excel workbook.
func writeServersXLSX(path string, list dnstest.List) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	rows := [][]any{{"Name", "IP", "Delay(ms)", "Status"}}
	for _, s := range list.Servers {
		var delay any
		if s.Delay != nil {
			delay = *s.Delay
		}
		rows = append(rows, []any{s.Name, s.IP, delay, string(s.Status)})
	}

	if err := writeXLSXRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %v", dnstest.ErrExport, err)
	}
	return nil
}

func writeXLSXRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
