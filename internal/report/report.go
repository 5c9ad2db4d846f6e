// Package report renders per-booth marking progress for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nhle/voter-roll/internal/store"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	warn    = color.New(color.FgYellow)
)

// Totals sums the tallies of every booth.
func Totals(tallies []store.BoothTally) store.BoothTally {
	var sum store.BoothTally
	for _, t := range tallies {
		sum.Total += t.Total
		sum.Voted += t.Voted
		sum.LDF += t.LDF
		sum.UDF += t.UDF
		sum.BJP += t.BJP
		sum.Unknown += t.Unknown
		sum.Unmarked += t.Unmarked
	}
	return sum
}

// Turnout returns voted/total as a percentage string with one decimal.
func Turnout(t store.BoothTally) string {
	if t.Total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(t.Voted)*100/float64(t.Total))
}

// Render writes the ward tally table to w.
func Render(w io.Writer, wardNo int, tallies []store.BoothTally) {
	heading.Fprintf(w, "\n=== Ward %d marking progress ===\n", wardNo)

	if len(tallies) == 0 {
		warn.Fprintln(w, "No booths found for this ward.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Booth", "Location", "Voters", "Voted", "Turnout",
		"LDF", "UDF", "BJP", "Unknown", "Unmarked",
	})

	for _, t := range tallies {
		table.Append(row(strconv.Itoa(t.BoothNumber), t.Location, t))
	}

	sum := Totals(tallies)
	table.SetFooter(row("", "Total", sum))
	table.Render()
}

func row(booth, location string, t store.BoothTally) []string {
	return []string{
		booth,
		location,
		strconv.Itoa(t.Total),
		strconv.Itoa(t.Voted),
		Turnout(t),
		strconv.Itoa(t.LDF),
		strconv.Itoa(t.UDF),
		strconv.Itoa(t.BJP),
		strconv.Itoa(t.Unknown),
		strconv.Itoa(t.Unmarked),
	}
}
