package publish

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	rendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided: it queries the terminal.
	renderers = map[string]*glamour.TermRenderer{}
)

// MarkdownStyle is "light" when TASKLINE_THEME=light, "notty" when NO_COLOR is set,
// and "dark" otherwise.
func MarkdownStyle() string {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TASKLINE_THEME")), "light") {
		return "light"
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return "notty"
	}
	return "dark"
}

// RenderTerminal renders markdown for a terminal of the given width. On renderer
// errors the input is returned unchanged.
func RenderTerminal(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	style := MarkdownStyle()
	key := style + ":" + strconv.Itoa(width)

	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
