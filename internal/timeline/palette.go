package timeline

// Plotly's default qualitative colors, so browser and terminal agree on colors.
var qualitative = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Palette assigns colors to categories in order of first appearance.
type Palette struct {
	order  []string
	colors map[string]string
}

func NewPalette(rows []Row) Palette {
	p := Palette{colors: map[string]string{}}
	for i, c := range Categories(rows) {
		p.order = append(p.order, c)
		p.colors[c] = qualitative[i%len(qualitative)]
	}
	return p
}

// Color returns the hex color for category (the first palette color if unknown).
func (p Palette) Color(category string) string {
	if c, ok := p.colors[category]; ok {
		return c
	}
	return qualitative[0]
}

func (p Palette) Categories() []string {
	return append([]string{}, p.order...)
}
