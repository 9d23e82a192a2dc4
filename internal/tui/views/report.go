package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/report"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

// ReportModel shows a graded report in a scrollable viewport.
type ReportModel struct {
	tr       *i18n.Translator
	keys     tui.KeyMap
	viewport viewport.Model
	reportID string
	loaded   bool
	err      error
	width    int
	height   int
}

// NewReportModel creates a ReportModel waiting for reportID.
func NewReportModel(tr *i18n.Translator, reportID string, width, height int) ReportModel {
	m := ReportModel{
		tr:       tr,
		keys:     tui.DefaultKeyMap,
		viewport: viewport.New(width, height),
		reportID: reportID,
		width:    width,
		height:   height,
	}
	m.resize()
	return m
}

// SetDocument renders doc into the viewport.
func (m *ReportModel) SetDocument(doc report.Document) {
	m.loaded = true
	m.err = nil
	m.viewport.SetContent(report.FormatReport(doc, m.tr))
	m.viewport.GotoTop()
}

// SetError shows a fetch failure.
func (m *ReportModel) SetError(err error) {
	m.err = err
}

// ReportID returns the id of the report on screen.
func (m ReportModel) ReportID() string {
	return m.reportID
}

// Update handles messages for the report view.
func (m ReportModel) Update(msg tea.Msg) (ReportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "q" || key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return tui.GoHomeMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ReportModel) resize() {
	// Title line, blank line and footer.
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

// View renders the report view.
func (m ReportModel) View(spinnerView string) string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render(m.tr.T("reports.viewReport") + " " + m.reportID))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(tui.ErrorStyle.Render(m.tr.T("common.error") + " " + api.DetailOrError(m.err)))
	case !m.loaded:
		b.WriteString(spinnerView + " " + m.tr.T("common.loading"))
	default:
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render(m.tr.T("keys.scroll") + " · " + m.tr.T("keys.back")))
	return b.String()
}
