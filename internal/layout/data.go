package layout

import (
	"fmt"
	"regexp"
	"strings"

	"abkpi/domain/experiment"
	"abkpi/domain/grid"
)

var duplicateSuffix = regexp.MustCompile(`\s*\(\d+\)$`)

// isCommentLabel matches separator and comment rows of report exports.
func isCommentLabel(label string) bool {
	return label == "" ||
		strings.HasPrefix(label, "#") ||
		strings.HasPrefix(label, "=") ||
		strings.Contains(label, "====") ||
		strings.Contains(label, "####")
}

// DataGrid returns the rows below the anchor with comment rows dropped and
// repeated labels disambiguated as "label (2)", "label (3)", ...
func DataGrid(g *grid.Grid, info *experiment.AnchorInfo) *grid.Grid {
	seen := make(map[string]int)
	var rows [][]string
	for r := info.DataStart; r < g.Rows(); r++ {
		label := g.Label(r)
		if isCommentLabel(label) {
			continue
		}
		base := strings.TrimSpace(duplicateSuffix.ReplaceAllString(label, ""))
		if base == "" {
			base = label
		}
		seen[base]++
		row := g.Row(r)
		if n := seen[base]; n > 1 {
			row[0] = fmt.Sprintf("%s (%d)", base, n)
		} else {
			row[0] = base
		}
		rows = append(rows, row)
	}
	return grid.New(rows)
}
