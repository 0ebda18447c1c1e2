package main

import (
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	ruad "github.com/taoxinyi/ruad/framework"
	"os"
	"sort"
	"strings"
	"time"
)

type Printer struct{}

var printer Printer

func (p *Printer) print(stats *ruad.Stats, duration time.Duration) {
	seconds := duration.Seconds()
	if seconds <= 0 {
		seconds = 1
	}
	var headers []string
	var data [][]string

	headers = []string{"", "Accepted", "Served", "Dropped", "I/O", "Panics"}
	data = [][]string{{
		"Connections",
		fmt.Sprintf("%d", stats.Connections),
		fmt.Sprintf("%d", stats.Responses),
		fmt.Sprintf("%d", stats.Dropped),
		fmt.Sprintf("%d", stats.IOErrors),
		fmt.Sprintf("%d", stats.Panics),
	}}
	printTable(headers, data)

	if len(stats.Statuses) > 0 {
		codes := make([]int, 0, len(stats.Statuses))
		for code := range stats.Statuses {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		headers = []string{""}
		row := []string{"Status"}
		for _, code := range codes {
			headers = append(headers, fmt.Sprintf("%d", code))
			row = append(row, fmt.Sprintf("%d", stats.Statuses[code]))
		}
		printTable(headers, [][]string{row})
	}

	headers = []string{"", "Avg", "Min", "Max", "Stdev", "+/- Stdev"}
	data = [][]string{{
		"Latency",
		fmt.Sprintf("%.3fms", stats.LatencyMean()/1000.0),
		fmt.Sprintf("%.3fms", float64(stats.Min())/1000.0),
		fmt.Sprintf("%.3fms", float64(stats.MaxLatency)/1000.0),
		fmt.Sprintf("%.3fms", stats.LatencyStdev()/1000.0),
		fmt.Sprintf("%.3f%%", stats.LatencyPercentageWithinStdev(1)),
	}}
	printTable(headers, data)

	headers = []string{"", "50%", "75%", "90%", "99%", "99.9%"}
	data = [][]string{{
		"Latency",
		fmt.Sprintf("%.3fms", float64(stats.LatencyPercentile(50))/1000.0),
		fmt.Sprintf("%.3fms", float64(stats.LatencyPercentile(75))/1000.0),
		fmt.Sprintf("%.3fms", float64(stats.LatencyPercentile(90))/1000.0),
		fmt.Sprintf("%.3fms", float64(stats.LatencyPercentile(99))/1000.0),
		fmt.Sprintf("%.3fms", float64(stats.LatencyPercentile(99.9))/1000.0),
	}}
	printTable(headers, data)

	headers = []string{"", "Count", "Count/s", "Size", "Throughput"}
	data = [][]string{{
		"Requests",
		fmt.Sprintf("%d", stats.Connections-stats.Dropped),
		fmt.Sprintf("%.2f", float64(stats.Connections-stats.Dropped)/seconds),
		humanize.IBytes(uint64(stats.BytesRecv)),
		fmt.Sprintf("%s/s", humanize.IBytes(uint64(float64(stats.BytesRecv)/seconds))),
	}, {
		"Responses",
		fmt.Sprintf("%d", stats.Responses),
		fmt.Sprintf("%.2f", float64(stats.Responses)/seconds),
		humanize.IBytes(uint64(stats.BytesSent)),
		fmt.Sprintf("%s/s", humanize.IBytes(uint64(float64(stats.BytesSent)/seconds))),
	},
	}
	printTable(headers, data)

	fmt.Printf("\n%d responses sent in %s, %s written\n", stats.Responses, duration, humanize.IBytes(uint64(stats.BytesSent)))
}

func printTable(headers []string, data [][]string) {
	fmt.Println(strings.Repeat("-", 72))
	table := tablewriter.NewWriter(os.Stdout)
	for i := 0; i < len(headers); i++ {
		table.SetColMinWidth(i, 12)
	}
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.AppendBulk(data)

	table.Render()
}
