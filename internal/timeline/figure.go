package timeline

import (
	"encoding/json"
	"strings"
	"time"
)

const DefaultTitle = "Project Timeline"

// hoverTemplate shows task, dates, notes and users. The category is left out: it is
// already shown by color and legend.
const hoverTemplate = "Start=%{base|%Y-%m-%d}<br>Finish=%{customdata[2]}<br>Task=%{y}<br>" +
	"Notes=%{customdata[0]}<br>Users=%{customdata[1]}<extra></extra>"

type FigureOptions struct {
	Title string
}

// Figure is a plotly figure description (data + layout) for a timeline.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type          string      `json:"type"`
	Orientation   string      `json:"orientation"`
	Name          string      `json:"name"`
	LegendGroup   string      `json:"legendgroup"`
	OffsetGroup   string      `json:"offsetgroup"`
	ShowLegend    bool        `json:"showlegend"`
	Base          []string    `json:"base"`
	X             []int64     `json:"x"`
	Y             []string    `json:"y"`
	CustomData    [][3]string `json:"customdata"`
	HoverTemplate string      `json:"hovertemplate"`
	Marker        Marker      `json:"marker"`
}

type Marker struct {
	Color string `json:"color"`
}

type Layout struct {
	Title   Title  `json:"title"`
	BarMode string `json:"barmode"`
	XAxis   Axis   `json:"xaxis"`
	YAxis   Axis   `json:"yaxis"`
	Legend  Legend `json:"legend"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Type  string `json:"type,omitempty"`
	Title Title  `json:"title"`
}

type Legend struct {
	Title         Title  `json:"title"`
	TraceGroupGap int    `json:"tracegroupgap"`
	ItemSizing    string `json:"itemsizing,omitempty"`
}

const msPerDay = int64(24 * time.Hour / time.Millisecond)

// BuildFigure groups rows into one horizontal bar trace per category.
// Each bar starts at Start and is Finish-Start long.
func BuildFigure(rows []Row, opt FigureOptions) Figure {
	title := opt.Title
	if title == "" {
		title = DefaultTitle
	}
	pal := NewPalette(rows)

	byCat := map[string]*Trace{}
	var traces []*Trace
	for _, r := range rows {
		tr := byCat[r.Resource]
		if tr == nil {
			tr = &Trace{
				Type:          "bar",
				Orientation:   "h",
				Name:          r.Resource,
				LegendGroup:   r.Resource,
				OffsetGroup:   r.Resource,
				ShowLegend:    true,
				HoverTemplate: hoverTemplate,
				Marker:        Marker{Color: pal.Color(r.Resource)},
				Base:          []string{},
				X:             []int64{},
				Y:             []string{},
				CustomData:    [][3]string{},
			}
			byCat[r.Resource] = tr
			traces = append(traces, tr)
		}
		tr.Base = append(tr.Base, r.Start.String())
		tr.X = append(tr.X, int64(r.Start.Days(r.Finish))*msPerDay)
		tr.Y = append(tr.Y, r.Task)
		tr.CustomData = append(tr.CustomData, [3]string{hoverText(r.Notes), hoverText(r.Users), r.Finish.String()})
	}

	fig := Figure{
		Data: make([]Trace, 0, len(traces)),
		Layout: Layout{
			Title:   Title{Text: title},
			BarMode: "overlay",
			XAxis:   Axis{Type: "date"},
			YAxis:   Axis{Title: Title{Text: "Task"}},
			Legend:  Legend{Title: Title{Text: "Resource"}, ItemSizing: "constant"},
		},
	}
	for _, tr := range traces {
		fig.Data = append(fig.Data, *tr)
	}
	return fig
}

// plotly renders a subset of HTML in hover labels; user text is shown literally.
var hoverEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func hoverText(s string) string { return hoverEscaper.Replace(s) }

func (f Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}
