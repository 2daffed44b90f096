package insights

import (
	"fmt"
	"regexp"
	"strings"

	"abkpi/domain/experiment"
)

// MaxPromptResults caps the per-result detail sent to the model.
const MaxPromptResults = 15

// BuildPrompt asks a language model for a short experiment readout.
func BuildPrompt(results []experiment.KPIResult, s Summary) string {
	var b strings.Builder
	b.WriteString("You are an experimentation analyst. Write a concise readout of this A/B test ")
	b.WriteString("in markdown: key findings, risks, and a recommendation. Do not invent numbers.\n\n")

	b.WriteString("Summary:\n")
	for _, l := range s.Lines() {
		b.WriteString("- " + l + "\n")
	}
	fmt.Fprintf(&b, "- Rule-based recommendation: %s (%s)\n\n", s.Recommendation, s.Reason)

	b.WriteString("Results:\n")
	n := 0
	for _, r := range results {
		for _, c := range r.Comparisons() {
			if n == MaxPromptResults {
				break
			}
			fmt.Fprintf(&b, "- %s | %s | %s | %s | variation %d | uplift %s | confidence %s | %s\n",
				orDash(r.ReportOrder), r.Country, r.Segment, r.KPIName, c.VariationNum,
				formatUplift(c.Uplift), formatConfidence(c.Confidence), verdictText(c))
			n++
		}
	}

	if cmp := compareReportOrders(results); len(cmp) > 0 {
		b.WriteString("\nChange between report orders:\n")
		for _, l := range cmp {
			b.WriteString("- " + l + "\n")
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatConfidence(c *float64) string {
	if c == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *c)
}

func verdictText(c experiment.VariationResult) string {
	if c.Verdict == nil {
		return "no verdict"
	}
	return c.Verdict.String()
}

// compareReportOrders lines up the first two report orders per (country, KPI, segment).
func compareReportOrders(results []experiment.KPIResult) []string {
	var orders []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.ReportOrder != "" && !seen[r.ReportOrder] {
			seen[r.ReportOrder] = true
			orders = append(orders, r.ReportOrder)
		}
	}
	if len(orders) < 2 {
		return nil
	}
	first, second := orders[0], orders[1]

	type key struct{ country, kpi, segment string }
	earlier := make(map[key]*float64)
	for _, r := range results {
		if r.ReportOrder == first {
			earlier[key{r.Country, r.KPIName, r.Segment}] = r.Comparisons()[0].Uplift
		}
	}
	var out []string
	for _, r := range results {
		if r.ReportOrder != second {
			continue
		}
		before, ok := earlier[key{r.Country, r.KPIName, r.Segment}]
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("%s %s %s: %s -> %s", r.Country, r.KPIName, r.Segment,
			formatUplift(before), formatUplift(r.Comparisons()[0].Uplift)))
	}
	return out
}

var fence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```\\s*$")

// CleanResponse strips a surrounding markdown code fence from a model reply.
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if m := fence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
