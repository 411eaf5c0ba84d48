package render

// Theme holds the colors and sizes the HTML template is rendered with.
type Theme struct {
	TextColor    string
	MutedColor   string
	HeadingColor string
	RuleColor    string
	ChipColor    string
	BaseSizePt   int
	NameSizePt   int
	HeadingPt    int
}

// DefaultTheme is a single-column, ATS-friendly layout.
var DefaultTheme = Theme{
	TextColor:    "#333333",
	MutedColor:   "#666666",
	HeadingColor: "#111111",
	RuleColor:    "#dddddd",
	ChipColor:    "#f3f4f6",
	BaseSizePt:   10,
	NameSizePt:   22,
	HeadingPt:    12,
}
