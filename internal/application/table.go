package application

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/maruel/natural"

	"github.com/ericfisherdev/octa/internal/domain/model"
)

// TableHeaders are the fixed report columns.
var TableHeaders = [4]string{"Username/Email", "Hash", "Password", "Comments"}

type tableRow [4]string

// RenderTable renders matches then mismatches as a pipe-delimited table.
// Mismatches are rendered in the order given; callers sort them with
// SortMismatches first. Returns "" when both lists are empty.
func RenderTable(matches []model.MatchEntry, mismatches []model.MismatchEntry) string {
	return renderRows(buildRows(matches, mismatches, false))
}

// buildRows converts entries to cells. With tagSources set, match rows carry
// their source label in the Comments column.
func buildRows(matches []model.MatchEntry, mismatches []model.MismatchEntry, tagSources bool) []tableRow {
	rows := make([]tableRow, 0, len(matches)+len(mismatches))
	for _, m := range matches {
		comment := ""
		if tagSources {
			comment = "Found in " + m.Source + "."
		}
		rows = append(rows, tableRow{m.Username, m.Hash, m.Password, comment})
	}
	for _, m := range mismatches {
		rows = append(rows, tableRow{m.Username, m.Hash, m.Password, m.Comment})
	}
	return rows
}

// columnWidths returns, per column, the longest cell across rows floored at
// the header length. Lengths are counted in runes.
func columnWidths(rows []tableRow) [4]int {
	var widths [4]int
	for i, h := range TableHeaders {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func renderRows(rows []tableRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := columnWidths(rows)
	var sb strings.Builder

	writeLine := func(cells [4]string) {
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(pad(cell, widths[i]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeLine(TableHeaders)
	var sep [4]string
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeLine(sep)
	for _, row := range rows {
		writeLine(row)
	}
	return sb.String()
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// SortMismatches returns mismatches in display order: entries are grouped by
// source in order of first appearance, each group is naturally sorted by
// username ("user2" before "user10"), and the group order is then reversed so
// the last-seen source comes first. The input slice is not modified.
func SortMismatches(mismatches []model.MismatchEntry) []model.MismatchEntry {
	if len(mismatches) == 0 {
		return nil
	}

	var order []string
	groups := make(map[string][]model.MismatchEntry)
	for _, m := range mismatches {
		if _, ok := groups[m.Source]; !ok {
			order = append(order, m.Source)
		}
		groups[m.Source] = append(groups[m.Source], m)
	}

	out := make([]model.MismatchEntry, 0, len(mismatches))
	for i := len(order) - 1; i >= 0; i-- {
		group := groups[order[i]]
		sort.SliceStable(group, func(a, b int) bool {
			return natural.Less(group[a].Username, group[b].Username)
		})
		out = append(out, group...)
	}
	return out
}
