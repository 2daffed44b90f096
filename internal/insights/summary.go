// Package insights turns KPI results into a short narrative: per-KPI verdict
// counts, a revenue section, an overall recommendation and, optionally, a
// prompt for a language model.
package insights

import (
	"fmt"
	"strings"

	"abkpi/domain/experiment"
	"abkpi/domain/verdict"

	"github.com/montanaflynn/stats"
)

// Recommendation is the overall call for the experiment.
type Recommendation string

const (
	Rollout            Recommendation = "Rollout"
	RolloutConditional Recommendation = "Rollout (conditional)"
	Hold               Recommendation = "Hold"
	Iterate            Recommendation = "Iterate"
)

// KPISummary counts verdicts for one KPI across segments, countries and report orders.
type KPISummary struct {
	KPIName       string   `json:"kpiName"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	NoDifference  int      `json:"noDifference"`
	Insufficient  int      `json:"insufficient"`
	Provisional   int      `json:"provisional"`
	Comparisons   int      `json:"comparisons"`
	AverageUplift *float64 `json:"averageUplift"`
	MedianUplift  *float64 `json:"medianUplift"`
}

// Summary is the rule-based narrative over a set of results.
type Summary struct {
	KPIs           []KPISummary   `json:"kpis"`
	Revenue        []string       `json:"revenue"`
	Recommendation Recommendation `json:"recommendation"`
	Reason         string         `json:"reason"`
}

// Summarize counts verdicts per KPI in first-seen order and derives the recommendation.
func Summarize(results []experiment.KPIResult) Summary {
	var s Summary
	index := make(map[string]int)
	uplifts := make(map[string][]float64)

	for _, r := range results {
		i, ok := index[r.KPIName]
		if !ok {
			i = len(s.KPIs)
			index[r.KPIName] = i
			s.KPIs = append(s.KPIs, KPISummary{KPIName: r.KPIName})
		}
		k := &s.KPIs[i]
		for _, c := range r.Comparisons() {
			if c.Uplift != nil {
				uplifts[r.KPIName] = append(uplifts[r.KPIName], *c.Uplift)
			}
			if c.Verdict == nil {
				continue
			}
			k.Comparisons++
			v := *c.Verdict
			switch {
			case v.IsWin():
				k.Wins++
			case v.IsLoss():
				k.Losses++
			case v == verdict.InsufficientSample:
				k.Insufficient++
			default:
				k.NoDifference++
			}
			if v.IsProvisional() {
				k.Provisional++
			}
		}
		if r.KPIType == experiment.KPIRevenue || r.KPIType == experiment.KPIRPV {
			s.Revenue = append(s.Revenue, revenueLine(r))
		}
	}

	for i := range s.KPIs {
		data := stats.Float64Data(uplifts[s.KPIs[i].KPIName])
		if mean, err := stats.Mean(data); err == nil {
			s.KPIs[i].AverageUplift = &mean
		}
		if median, err := stats.Median(data); err == nil {
			s.KPIs[i].MedianUplift = &median
		}
	}

	s.Recommendation, s.Reason = recommend(s.KPIs)
	return s
}

func recommend(kpis []KPISummary) (Recommendation, string) {
	var wins, losses, provisional, neutral int
	for _, k := range kpis {
		wins += k.Wins
		losses += k.Losses
		provisional += k.Provisional
		neutral += k.NoDifference + k.Insufficient
	}
	switch {
	case losses > 0:
		return Hold, fmt.Sprintf("control wins in %d comparison(s); review before any rollout", losses)
	case wins > 0 && provisional > 0:
		return RolloutConditional, fmt.Sprintf("%d win(s), %d provisional; confirm with more traffic", wins, provisional)
	case wins > 0:
		return Rollout, fmt.Sprintf("%d significant win(s) and no losses", wins)
	case neutral > 0:
		return Iterate, "no significant difference detected; iterate on the variation"
	}
	return Iterate, "no comparable results"
}

func revenueLine(r experiment.KPIResult) string {
	var parts []string
	for _, c := range r.Comparisons() {
		part := fmt.Sprintf("variation %d: %s", c.VariationNum, formatUplift(c.Uplift))
		if c.ControlValue != nil && c.VariationValue != nil {
			part += fmt.Sprintf(" (%.2f vs %.2f)", *c.ControlValue, *c.VariationValue)
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf("%s, %s, %s: %s", r.KPIName, r.Country, r.Segment, strings.Join(parts, "; "))
}

func formatUplift(u *float64) string {
	if u == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *u)
}

// Lines renders the summary as plain bullet lines.
func (s Summary) Lines() []string {
	var out []string
	for _, k := range s.KPIs {
		line := fmt.Sprintf("%s: %d win(s), %d loss(es), %d no difference, %d insufficient",
			k.KPIName, k.Wins, k.Losses, k.NoDifference, k.Insufficient)
		if k.Provisional > 0 {
			line += fmt.Sprintf(" (%d provisional)", k.Provisional)
		}
		if k.AverageUplift != nil {
			line += fmt.Sprintf(", average uplift %s", formatUplift(k.AverageUplift))
		}
		out = append(out, line)
	}
	return out
}

// Markdown renders the summary, the revenue section and an optional AI section.
func (s Summary) Markdown(ai string) string {
	var b strings.Builder
	b.WriteString("## KPI summary\n\n")
	for _, l := range s.Lines() {
		b.WriteString("- " + l + "\n")
	}
	if len(s.Revenue) > 0 {
		b.WriteString("\n## Revenue\n\n")
		for _, l := range s.Revenue {
			b.WriteString("- " + l + "\n")
		}
	}
	fmt.Fprintf(&b, "\n## Recommendation\n\n**%s**: %s\n", s.Recommendation, s.Reason)
	if strings.TrimSpace(ai) != "" {
		b.WriteString("\n## AI Analysis\n\n" + strings.TrimSpace(ai) + "\n")
	}
	return b.String()
}
