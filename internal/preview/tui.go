// Package preview is the interactive terminal view used to check how a source
// is extracted and scored before it goes into the daily run.
package preview

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobalert/jobalert/internal/pipeline"
)

// Lines per listing in the list view (title + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

const (
	paneAll = iota
	paneQualified
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	qualifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	excludedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	belowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type previewModel struct {
	sourceName    string
	minScore      int
	all           []pipeline.Evaluation
	qualified     []pipeline.Evaluation
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view           viewState
	detail         pipeline.Evaluation
	detailViewport viewport.Model
	showBody       bool

	openURL  func(string)
	wantQuit bool
}

// newPreviewModel keeps the left pane in extraction order and ranks the
// right pane the way the digest would.
func newPreviewModel(sourceName string, minScore int, evals []pipeline.Evaluation) previewModel {
	var qualified []pipeline.Evaluation
	for _, e := range evals {
		if e.Qualified {
			qualified = append(qualified, e)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].Result.Score > qualified[j].Result.Score
	})
	return previewModel{
		sourceName: sourceName,
		minScore:   minScore,
		all:        evals,
		qualified:  qualified,
		openURL:    openURL,
	}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m previewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView(), nil
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == paneAll {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m previewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if m.openURL != nil {
			m.openURL(m.detail.Listing.URL)
		}
		return m, nil
	case "r":
		if m.detail.Body != "" {
			m.showBody = !m.showBody
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *previewModel) moveCursor(delta int) {
	if m.activePane == paneAll {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.all)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.qualified)-1, 0))
	}
}

func (m *previewModel) ensureCursorVisible() {
	vp, cursor := &m.leftViewport, m.leftCursor
	if m.activePane == paneQualified {
		vp, cursor = &m.rightViewport, m.rightCursor
	}

	top := cursor * itemHeight
	bottom := top + itemHeight - 1

	if top < vp.YOffset {
		vp.SetYOffset(top)
	} else if bottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(bottom - vp.Height + 1)
	}
}

func (m previewModel) openDetailView() previewModel {
	items, cursor := m.activeItems()
	if len(items) == 0 {
		return m
	}

	m.view = viewDetail
	m.detail = items[cursor]
	m.showBody = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m
}

func (m *previewModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *previewModel) recalcContent() {
	m.leftViewport.SetContent(renderItems(m.all, m.leftCursor, m.activePane == paneAll))
	m.rightViewport.SetContent(renderItems(m.qualified, m.rightCursor, m.activePane == paneQualified))
}

func (m previewModel) activeItems() ([]pipeline.Evaluation, int) {
	if m.activePane == paneAll {
		return m.all, m.leftCursor
	}
	return m.qualified, m.rightCursor
}

func (m previewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m previewModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" %s: all listings (%d)", m.sourceName, len(m.all))
	rightHeader := fmt.Sprintf(" Qualified, score ≥ %d (%d)", m.minScore, len(m.qualified))

	leftHeaderStyle, rightHeaderStyle := activeHeaderStyle, inactiveHeaderStyle
	leftBorder, rightBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == paneQualified {
		leftHeaderStyle, rightHeaderStyle = inactiveHeaderStyle, activeHeaderStyle
		leftBorder, rightBorder = inactiveBorderStyle, activeBorderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderStyle.Render(leftHeader)),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderStyle.Render(rightHeader)),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Width(paneWidth).Render(m.leftViewport.View()),
		" ",
		rightBorder.Width(paneWidth).Render(m.rightViewport.View()),
	)

	excluded := 0
	for _, e := range m.all {
		if e.Result.Excluded {
			excluded++
		}
	}
	statusText := fmt.Sprintf(" %d listings | %d qualified | %d excluded    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit",
		len(m.all), len(m.qualified), excluded)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m previewModel) viewDetail() string {
	title := detailTitleStyle.Render("Listing Details")
	content := activeBorderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	statusText := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detail.Body != "" {
		statusText = " o open URL  r body text  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m previewModel) renderDetail() string {
	e := m.detail
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", e.Listing.Title)
	addField("Source", e.Listing.SourceName)
	addField("URL", e.Listing.URL)
	b.WriteByte('\n')
	addField("Score", fmt.Sprintf("%d", e.Result.Score))
	addField("Verdict", verdict(e))
	addField("Reason", e.Result.Reason)

	wrapWidth := max(m.width-8, 20)
	b.WriteByte('\n')
	switch {
	case e.Body == "":
		b.WriteString(hintStyle.Render("  no body text (detail page empty or failed to load); scored on title only") + "\n")
	case m.showBody:
		fill := strings.Repeat("─", max(wrapWidth-len("── Body Text "), 3))
		b.WriteString(dividerStyle.Render("── Body Text "+fill) + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(e.Body, wrapWidth)) + "\n")
	default:
		b.WriteString(hintStyle.Render("  press r to read the scored body text") + "\n")
	}

	return b.String()
}

func verdict(e pipeline.Evaluation) string {
	switch {
	case e.Qualified:
		return qualifiedStyle.Render("qualified")
	case e.Result.Excluded:
		return excludedStyle.Render("excluded")
	default:
		return belowStyle.Render("below threshold")
	}
}

func renderItems(items []pipeline.Evaluation, cursor int, isActive bool) string {
	if len(items) == 0 {
		return "  (no listings)"
	}

	var b strings.Builder
	for i, e := range items {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if isActive && i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(e.Listing.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("score %d · %s", e.Result.Score, e.Result.Reason)))
		b.WriteByte('\n')

		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wordWrap re-flows each line of text to width, keeping the line breaks the
// detail extractor produced.
func wordWrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if lipgloss.Width(line)+1+lipgloss.Width(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunPreviewTUI launches the split-pane preview of one evaluated source.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to return to the picker.
func RunPreviewTUI(sourceName string, minScore int, evals []pipeline.Evaluation) (bool, error) {
	m := newPreviewModel(sourceName, minScore, evals)

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	return result.(previewModel).wantQuit, nil
}
