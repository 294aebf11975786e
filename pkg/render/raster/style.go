package raster

// Style controls how cards and edges are drawn. Colors are hex strings.
type Style struct {
	CardFill       string
	CardBorder     string
	SelectedBorder string
	Text           string
	Muted          string
	Edge           string
	EdgeLabelFill  string
	UploadingBadge string

	CornerRadius float64
	BorderWidth  float64
	EdgeWidth    float64
	TitleSize    float64
	FontSize     float64
	Padding      float64
}

// DefaultStyle mirrors the editor's light theme.
func DefaultStyle() Style {
	return Style{
		CardFill:       "#ffffff",
		CardBorder:     "#1a192b",
		SelectedBorder: "#ff0072",
		Text:           "#1a192b",
		Muted:          "#6b7280",
		Edge:           "#b1b1b7",
		EdgeLabelFill:  "#ffffff",
		UploadingBadge: "#2563eb",

		CornerRadius: 6,
		BorderWidth:  1,
		EdgeWidth:    1.5,
		TitleSize:    14,
		FontSize:     11,
		Padding:      10,
	}
}
