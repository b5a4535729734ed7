package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/plaidlibs/internal/handlers"
	"github.com/jwebster45206/plaidlibs/pkg/engine"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

const PlaceHolderText = "Type your answer here..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *apiClient
	sessionID    uuid.UUID
	view         engine.View
	mainViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	notice       string
	loading      bool

	// Workflow selection state
	showWorkflowModal bool
	workflows         []handlers.WorkflowSummary
	narrators         []string
	selectedWorkflow  int
	loadingWorkflows  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type sessionMsg struct {
	resp *handlers.SessionResponse
	err  error
}

type workflowsLoadedMsg struct {
	resp *handlers.WorkflowsResponse
	err  error
}

type savedMsg struct {
	path string
	err  error
}

type progressTickMsg struct{}

var (
	mainPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	mainVp := viewport.New(50, 20)
	mainVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:            cfg,
		api:               api,
		textarea:          ta,
		mainViewport:      mainVp,
		metaViewport:      viewport.New(20, 20),
		showWorkflowModal: true,
		loadingWorkflows:  true,
	}
}

// renderView formats a session view for the main panel.
func renderView(v engine.View, width int) string {
	if width < 10 {
		width = 10
	}
	var content strings.Builder
	content.WriteString(titleStyle.Render("PLAIDLIBS") + "\n\n")
	content.WriteString(stepStyle.Render(v.Title) + "\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	text := wordwrap.String(v.Text, width)
	if v.Terminal {
		text = storyStyle.Render(text)
	}
	content.WriteString(text + "\n")

	if v.Error != "" {
		content.WriteString("\n" + errorStyle.Render(wordwrap.String("! "+v.Error, width)) + "\n")
	}
	return content.String()
}

func writeMetadata(sessionID string, v engine.View) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	if len(sessionID) >= 8 {
		content.WriteString("Session ID:\n")
		content.WriteString(sessionID[:8] + "...\n\n")
	}

	content.WriteString("Workflow:\n")
	content.WriteString(v.Workflow + "\n\n")

	content.WriteString("Narrator:\n")
	content.WriteString(v.Narrator + "\n\n")

	content.WriteString("Progress:\n")
	switch v.Phase {
	case state.PhaseGenerated:
		content.WriteString("Done\n\n")
	case state.PhaseAssembling:
		content.WriteString("Generating\n\n")
	default:
		content.WriteString(fmt.Sprintf("Step %d of %d\n\n", v.Step, v.Steps))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy result\n")
	content.WriteString("• /save: Save result\n")

	return content.String()
}

// layout sizes the panels for the current window.
func (m *ConsoleUI) layout() {
	mainWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - mainWidth - 6

	m.mainViewport.Width = mainWidth - 2
	m.mainViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(mainWidth - 4)
}

// writeContent redraws both panels from the current view.
func (m *ConsoleUI) writeContent() {
	width := m.mainViewport.Width - 6
	content := renderView(m.view, width)
	if m.notice != "" {
		content += "\n" + noticeStyle.Render(wordwrap.String(m.notice, width)) + "\n"
	}
	if m.err != nil {
		content += "\n" + errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n"
	}
	if m.loading {
		content += "\n" + m.renderProgressBar()
	}
	m.mainViewport.SetContent(content)
	m.mainViewport.GotoBottom()
	m.metaViewport.SetContent(writeMetadata(m.sessionID.String(), m.view))
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadWorkflows()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showWorkflowModal {
		return m.updateWorkflowModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.mainViewport, vpCmd = m.mainViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			// blank answers are meaningful on optional steps
			return m.send(func() (*handlers.SessionResponse, error) {
				return m.api.answer(m.id(), input)
			})
		}

	case sessionMsg:
		m.loading = false
		m.err = msg.err
		if msg.resp != nil {
			m.sessionID = msg.resp.ID
			m.view = msg.resp.View
			if msg.err != nil && msg.resp.Error != "" {
				// the view already shows it
				m.err = nil
			}
		}
		m.writeContent()
		return m, nil

	case savedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.notice = "Saved to " + msg.path
		}
		m.writeContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.mainViewport, vpCmd = m.mainViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) id() uuid.UUID {
	return m.sessionID
}

// send runs call in the background with the progress bar showing.
func (m ConsoleUI) send(call func() (*handlers.SessionResponse, error)) (tea.Model, tea.Cmd) {
	m.loading = true
	m.notice = ""
	m.err = nil
	m.progressTick = 0
	m.writeContent()
	return m, tea.Batch(func() tea.Msg {
		resp, err := call()
		return sessionMsg{resp: resp, err: err}
	}, progressTick())
}

const helpText = `Commands:
• /help - Show this help
• /restart - Start this workflow over
• /workflow - Pick another workflow
• /narrator <name> - Change narrator
• /retry - Retry a failed generation
• /remix <option> - Remix the result
• /upload <path> - Attach a picture (PlaidPic step 1)
• /copy - Copy the result to the clipboard
• /save [txt|pdf] - Save the result to a file
• Ctrl+C - Quit

Answer with a number, an option name or its first letters.`

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)
	m.notice = ""
	m.err = nil

	switch strings.ToLower(cmd) {
	case "/help":
		m.notice = helpText
		if len(m.narrators) > 0 {
			m.notice += "\n\nNarrators: " + strings.Join(m.narrators, ", ")
		}
	case "/restart":
		return m.send(func() (*handlers.SessionResponse, error) { return m.api.restart(m.id()) })
	case "/workflow":
		m.showWorkflowModal = true
		return m, nil
	case "/narrator":
		if arg == "" {
			m.notice = "Usage: /narrator <name>"
			break
		}
		return m.send(func() (*handlers.SessionResponse, error) { return m.api.setNarrator(m.id(), arg) })
	case "/retry":
		return m.send(func() (*handlers.SessionResponse, error) { return m.api.generate(m.id()) })
	case "/remix":
		return m.send(func() (*handlers.SessionResponse, error) { return m.api.remix(m.id(), arg) })
	case "/upload":
		if arg == "" {
			m.notice = "Usage: /upload <path to png, jpeg or webp>"
			break
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			m.err = fmt.Errorf("failed to read %s: %w", arg, err)
			break
		}
		return m.send(func() (*handlers.SessionResponse, error) { return m.api.uploadImage(m.id(), data) })
	case "/copy":
		if !m.view.Terminal {
			m.notice = "Nothing to copy yet."
			break
		}
		if err := clipboard.WriteAll(m.view.Text); err != nil {
			m.err = fmt.Errorf("failed to copy: %w", err)
			break
		}
		m.notice = "Copied to clipboard."
	case "/save":
		format := strings.ToLower(arg)
		if format == "" {
			format = "txt"
		}
		return m, m.save(format)
	default:
		m.notice = "Unknown command. Type /help for help."
	}
	m.writeContent()
	return m, nil
}

func (m ConsoleUI) save(format string) tea.Cmd {
	id := m.id()
	return func() tea.Msg {
		data, err := m.api.download(id, format)
		if err != nil {
			return savedMsg{err: err}
		}
		path := fmt.Sprintf("plaidlibs-%s.%s", m.sessionID.String()[:8], format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return savedMsg{err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		return savedMsg{path: path}
	}
}

func (m ConsoleUI) loadWorkflows() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.workflows()
		return workflowsLoadedMsg{resp: resp, err: err}
	}
}

// startWorkflow creates the session, or switches the current one.
func (m ConsoleUI) startWorkflow(workflow string) tea.Cmd {
	return func() tea.Msg {
		if m.sessionID != uuid.Nil {
			resp, err := m.api.switchWorkflow(m.id(), workflow)
			return sessionMsg{resp: resp, err: err}
		}
		resp, err := m.api.createSession(workflow, m.config.Narrator)
		return sessionMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) updateWorkflowModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case workflowsLoadedMsg:
		m.loadingWorkflows = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.workflows = msg.resp.Workflows
			m.narrators = msg.resp.Narrators
		}

	case sessionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sessionID = msg.resp.ID
		m.view = msg.resp.View
		m.showWorkflowModal = false
		if m.width > 0 && m.height > 0 {
			m.layout()
		}
		m.writeContent()
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingWorkflows {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			// back to the current session, if any
			if m.sessionID != uuid.Nil {
				m.showWorkflowModal = false
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedWorkflow > 0 {
				m.selectedWorkflow--
			}
		case tea.KeyDown:
			if m.selectedWorkflow < len(m.workflows)-1 {
				m.selectedWorkflow++
			}
		case tea.KeyEnter:
			if len(m.workflows) > 0 && !m.loading {
				m.loading = true
				m.err = nil
				return m, m.startWorkflow(m.workflows[m.selectedWorkflow].ID)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit PlaidLibs?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderWorkflowModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingWorkflows:
		content.WriteString(modalTitleStyle.Render("Loading Workflows..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available workflows..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Something went wrong: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Starting..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your session..."))
	default:
		content.WriteString(modalTitleStyle.Render("Choose a Workflow"))
		content.WriteString("\n\n")

		for i, wf := range m.workflows {
			line := fmt.Sprintf("%-14s %s", wf.Name, wf.Description)
			if i == m.selectedWorkflow {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
			} else {
				content.WriteString(modalItemStyle.Render("  " + line))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(72).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showWorkflowModal {
		return m.renderWorkflowModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	mainWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - mainWidth - 6

	mainPanel := mainPanelStyle.Width(mainWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.mainViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", mainWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, mainPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.mainViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	usable = min(max(usable, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := range usable {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
