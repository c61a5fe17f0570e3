package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/series"
)

// Entry is one result shown by the browser, e.g. one exercise or one
// longitude column.
type Entry struct {
	Title string
	Stock series.Series
	EWS   *ews.Result
}

type Browser struct {
	entries       []Entry
	entry, facet  int
	showStock     bool
	width, height int
}

func NewBrowser(entries []Entry) Browser {
	return Browser{entries: entries, width: DefaultWidth, height: 24}
}

// Browse runs the browser full screen until the user quits.
func Browse(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("viz: nothing to browse")
	}
	_, err := tea.NewProgram(NewBrowser(entries), tea.WithAltScreen()).Run()
	return err
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return b, tea.Quit
		case "right", "l":
			if n := b.facets(); n > 0 {
				b.facet = (b.facet + 1) % n
			}
		case "left", "h":
			if n := b.facets(); n > 0 {
				b.facet = (b.facet - 1 + n) % n
			}
		case "down", "j":
			if b.entry < len(b.entries)-1 {
				b.entry++
				b.facet = min(b.facet, max(b.facets()-1, 0))
			}
		case "up", "k":
			if b.entry > 0 {
				b.entry--
				b.facet = min(b.facet, max(b.facets()-1, 0))
			}
		case "s":
			b.showStock = !b.showStock
		}
	}
	return b, nil
}

func (b Browser) facets() int {
	if len(b.entries) == 0 || b.entries[b.entry].EWS == nil {
		return 0
	}
	return len(b.entries[b.entry].EWS.Order)
}

// Current returns the selected entry index and indicator name.
func (b Browser) Current() (int, string) {
	if b.facets() == 0 {
		return b.entry, ""
	}
	return b.entry, b.entries[b.entry].EWS.Order[b.facet]
}

func (b Browser) View() string {
	if len(b.entries) == 0 {
		return "nothing to browse\n"
	}
	e := b.entries[b.entry]
	chartW := max(b.width-12, 20)
	chartH := max((b.height-10)/2, 4)

	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("%s  (%d/%d)", e.Title, b.entry+1, len(b.entries))))
	sb.WriteString("\n")

	if b.showStock {
		sb.WriteString(PlotSeries(e.Stock, "stock", chartW, chartH))
		sb.WriteString("\n\n")
	}

	if _, name := b.Current(); name != "" {
		sb.WriteString(Facet(e.EWS, name, chartW, chartH))
	} else {
		sb.WriteString(Subtle.Render("no indicators"))
	}

	sb.WriteString("\n\n")
	sb.WriteString(KeyHint.Render("←/→ indicator  ↑/↓ result  s stock  q quit"))
	return sb.String()
}
