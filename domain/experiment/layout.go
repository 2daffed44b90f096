package experiment

// DetectedSegment is a segment name read from the segment-name row with its column pair.
type DetectedSegment struct {
	Name      string `json:"name"`
	Control   int    `json:"control"`
	Variation int    `json:"variation"`
}

// ColumnGroup is one (label, control, variation) column pair of a country.
type ColumnGroup struct {
	Label     string `json:"label"`
	Control   int    `json:"control"`
	Variation int    `json:"variation"`
}

// AnchorInfo is everything the layout detector learned about a grid.
type AnchorInfo struct {
	AnchorRow     int                      `json:"anchorRow"`
	SegmentRow    int                      `json:"segmentRow"`
	DataStart     int                      `json:"dataStart"`
	Segments      []DetectedSegment        `json:"segments"`
	Countries     []string                 `json:"countries"`
	MultiCountry  bool                     `json:"multiCountry"`
	Country       string                   `json:"country"`
	CountryGroups map[string][]ColumnGroup `json:"countryGroups,omitempty"`
}

// HasSegmentRow reports whether a segment-name row exists above the anchor.
func (a *AnchorInfo) HasSegmentRow() bool {
	return a.SegmentRow >= 0
}
