package analysis

import (
	"sort"

	"abkpi/domain/experiment"
)

// Report is the merged, canonically ordered output of all partitions.
type Report struct {
	Results []experiment.KPIResult     `json:"results"`
	Missing []experiment.MissingMetric `json:"missingMetrics"`
	Notices []string                   `json:"notices"`
}

func partitionLess(a, b experiment.Partition) (less, equal bool) {
	ra, rb := experiment.ReportOrderRank(a.ReportOrder), experiment.ReportOrderRank(b.ReportOrder)
	switch {
	case ra != rb:
		return ra < rb, false
	case a.FileIndex != b.FileIndex:
		return a.FileIndex < b.FileIndex, false
	case a.CountryIndex != b.CountryIndex:
		return a.CountryIndex < b.CountryIndex, false
	}
	return false, true
}

// Aggregate merges partition outputs ordered by report order, file, country,
// KPI declaration, segment and variation number. The order of outputs does
// not affect the result; nil outputs are skipped and outputs are not modified.
func Aggregate(outputs []*Output) *Report {
	rep := &Report{Results: []experiment.KPIResult{}, Missing: []experiment.MissingMetric{}, Notices: []string{}}
	for _, o := range outputs {
		if o == nil {
			continue
		}
		rep.Results = append(rep.Results, o.Results...)
		rep.Missing = append(rep.Missing, o.Missing...)
	}

	sort.SliceStable(rep.Results, func(i, j int) bool {
		a, b := rep.Results[i], rep.Results[j]
		if less, equal := partitionLess(a.Partition, b.Partition); !equal {
			return less
		}
		if a.KPIIndex != b.KPIIndex {
			return a.KPIIndex < b.KPIIndex
		}
		return a.SegmentIndex < b.SegmentIndex
	})
	for i := range rep.Results {
		vars := append([]experiment.VariationResult(nil), rep.Results[i].Variations...)
		rep.Results[i].Variations = vars
		sort.SliceStable(vars, func(a, b int) bool { return vars[a].VariationNum < vars[b].VariationNum })
	}

	sort.SliceStable(rep.Missing, func(i, j int) bool {
		less, _ := partitionLess(rep.Missing[i].Partition, rep.Missing[j].Partition)
		return less
	})
	for _, m := range rep.Missing {
		rep.Notices = append(rep.Notices, m.Notice())
	}
	return rep
}
