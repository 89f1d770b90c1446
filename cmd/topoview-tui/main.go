package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/netobserve/topoview/pkg/model"
	"github.com/netobserve/topoview/pkg/session"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#005FFF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	zoneBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	statusUpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	statusSlowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	statusDownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	statusUnknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	devicesView view = iota
	zonesView
	edgesView
)

const viewCount = 3

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Zoned    key.Binding
	Free     key.Binding
	Wireless key.Binding
	Fit      key.Binding
	Refresh  key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Zoned: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "zoned mode"),
	),
	Free: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "free mode"),
	),
	Wireless: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "wireless filter"),
	),
	Fit: key.NewBinding(
		key.WithKeys("F"),
		key.WithHelp("F", "fit view"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Zoned, k.Free, k.Wireless, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Zoned, k.Free, k.Wireless, k.Fit},
		{k.Refresh, k.Up, k.Down, k.Quit},
	}
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) layout() (*session.View, error) {
	resp, err := c.http.Get(c.baseURL + "/api/layout")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layout fetch: status %d", resp.StatusCode)
	}
	var v session.View
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *apiClient) putJSON(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	return nil
}

func (c *apiClient) post(path string) error {
	resp, err := c.http.Post(c.baseURL+path, "application/json", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	return nil
}

type tuiModel struct {
	client      *apiClient
	currentView view
	deviceTable table.Model
	edgeTable   table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	layout      *session.View
	wireless    bool
	errMsg      string
	lastFetch   time.Time
}

type tickMsg time.Time

type layoutMsg struct {
	view *session.View
	err  error
}

func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) fetchCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		v, err := client.layout()
		return layoutMsg{view: v, err: err}
	}
}

func initialModel(client *apiClient) tuiModel {
	deviceCols := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Type", Width: 14},
		{Title: "Zone", Width: 12},
		{Title: "Status", Width: 8},
		{Title: "RT (ms)", Width: 9},
	}
	dt := table.New(
		table.WithColumns(deviceCols),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	edgeCols := []table.Column{
		{Title: "Edge", Width: 18},
		{Title: "View", Width: 10},
		{Title: "Curve", Width: 10},
		{Title: "Roundness", Width: 10},
	}
	et := table.New(
		table.WithColumns(edgeCols),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#005FFF")).
		Bold(false)
	dt.SetStyles(s)
	et.SetStyles(s)

	return tuiModel{
		client:      client,
		currentView: devicesView,
		deviceTable: dt,
		edgeTable:   et,
		help:        help.New(),
		keys:        keys,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tickCmd())
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tickCmd())

	case layoutMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.layout = msg.view
		m.lastFetch = time.Now()
		m.refreshTables()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount

		case key.Matches(msg, m.keys.Zoned):
			return m, m.modeCmd("zoned")

		case key.Matches(msg, m.keys.Free):
			return m, m.modeCmd("free")

		case key.Matches(msg, m.keys.Wireless):
			m.wireless = !m.wireless
			client, enabled := m.client, m.wireless
			return m, func() tea.Msg {
				if err := client.putJSON("/api/layout/filter", map[string]bool{"wireless": enabled}); err != nil {
					return layoutMsg{err: err}
				}
				v, err := client.layout()
				return layoutMsg{view: v, err: err}
			}

		case key.Matches(msg, m.keys.Fit):
			client := m.client
			return m, func() tea.Msg {
				if err := client.post("/api/layout/fit"); err != nil {
					return layoutMsg{err: err}
				}
				return nil
			}

		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetchCmd()
		}
	}

	switch m.currentView {
	case devicesView:
		m.deviceTable, cmd = m.deviceTable.Update(msg)
		cmds = append(cmds, cmd)
	case edgesView:
		m.edgeTable, cmd = m.edgeTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m tuiModel) modeCmd(mode string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if err := client.putJSON("/api/layout/mode", map[string]string{"mode": mode}); err != nil {
			return layoutMsg{err: err}
		}
		v, err := client.layout()
		return layoutMsg{view: v, err: err}
	}
}

func (m *tuiModel) refreshTables() {
	if m.layout == nil {
		return
	}

	deviceRows := make([]table.Row, 0, len(m.layout.Devices))
	for _, d := range m.layout.Devices {
		rt := "-"
		if d.ResponseTimeMs != nil {
			rt = fmt.Sprintf("%.1f", *d.ResponseTimeMs)
		}
		deviceRows = append(deviceRows, table.Row{
			fmt.Sprintf("%d", d.ID),
			d.Name,
			d.DeviceType,
			string(d.LocationType.Normalize()),
			string(d.Status),
			rt,
		})
	}
	m.deviceTable.SetRows(deviceRows)

	edgeRows := make([]table.Row, 0, len(m.layout.Edges))
	for _, e := range m.layout.Edges {
		curve := "-"
		if e.Routing.CurveType != "" {
			curve = string(e.Routing.CurveType)
		}
		edgeRows = append(edgeRows, table.Row{
			fmt.Sprintf("%d - %d", e.From, e.To),
			string(e.ViewType),
			curve,
			fmt.Sprintf("%.2f", e.Routing.Roundness),
		})
	}
	m.edgeTable.SetRows(edgeRows)
}

func (m tuiModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	title := "Topoview - Live Topology"
	if m.layout != nil {
		title = fmt.Sprintf("Topoview - Live Topology [%s mode]", m.layout.Mode)
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case devicesView:
		s.WriteString(m.renderDevices())
	case zonesView:
		s.WriteString(m.renderZones())
	case edgesView:
		s.WriteString(m.renderEdges())
	}

	if m.errMsg != "" {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("x " + m.errMsg))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m tuiModel) renderTabs() string {
	tabs := []string{"Devices", "Zones", "Edges"}
	var rendered []string
	for i, tab := range tabs {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m tuiModel) renderDevices() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Devices"))
	s.WriteString("\n\n")
	s.WriteString(m.deviceTable.View())

	if m.layout != nil {
		counts := map[model.DeviceStatus]int{}
		for _, d := range m.layout.Devices {
			counts[d.Status]++
		}
		s.WriteString("\n\n")
		s.WriteString(statusUpStyle.Render(fmt.Sprintf("up: %d  ", counts[model.StatusUp])))
		s.WriteString(statusSlowStyle.Render(fmt.Sprintf("slow: %d  ", counts[model.StatusSlow])))
		s.WriteString(statusDownStyle.Render(fmt.Sprintf("down: %d  ", counts[model.StatusDown])))
		s.WriteString(statusUnknownStyle.Render(fmt.Sprintf("unknown: %d", counts[model.StatusUnknown])))
	}

	return contentStyle.Render(s.String())
}

func (m tuiModel) renderZones() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Zone Grid"))
	s.WriteString("\n\n")

	if m.layout == nil || len(m.layout.Zones) == 0 {
		s.WriteString(helpStyle.Render("No zones to display (free mode, or no devices yet)"))
		return contentStyle.Render(s.String())
	}

	var boxes []string
	for _, z := range m.layout.Zones {
		content := fmt.Sprintf("%s\n\ndevices:  %d\nper row:  %d\nbounds:   %.0fx%.0f",
			z.Label, z.DeviceCount, z.DevicesPerRow, z.Bounds.Width, z.Bounds.Height)
		if len(z.SubZones) > 0 {
			content += "\n\nsub-zones:"
			for _, sz := range z.SubZones {
				content += fmt.Sprintf("\n  %s (%d)", sz.Label, sz.DeviceCount)
			}
		}
		boxes = append(boxes, zoneBoxStyle.Render(content))
	}

	// Two boxes per row, matching the coupled-column grid.
	for i := 0; i < len(boxes); i += 2 {
		row := boxes[i : min(i+2, len(boxes))]
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		s.WriteString("\n")
	}

	return contentStyle.Render(s.String())
}

func (m tuiModel) renderEdges() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Edges"))
	s.WriteString("\n\n")
	s.WriteString(m.edgeTable.View())

	if m.layout != nil {
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render(fmt.Sprintf("%d edges after dedup", len(m.layout.Edges))))
	}

	return contentStyle.Render(s.String())
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "topoviewd base URL")
	flag.Parse()

	client := &apiClient{
		baseURL: strings.TrimRight(*addr, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}

	p := tea.NewProgram(initialModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
