package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textvec/internal/domain"
	"textvec/internal/embedding/semantic"
	"textvec/internal/embedding/tfidf"
	"textvec/internal/service"
)

// DefaultExportPath is where ctrl+e writes the result table.
const DefaultExportPath = "my_text_vectors.csv"

const neighborCount = 3

const helpText = "ctrl+s convert · tab switch method · ctrl+o next model · esc browse results · ctrl+e export · ctrl+r clear · ctrl+c quit"

// SampleTexts pre-fill the editor.
var SampleTexts = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Machine learning is a subset of artificial intelligence.",
	"Natural language processing helps computers understand human language.",
	"Deep learning uses neural networks with multiple layers.",
	"Python is a popular programming language for data science.",
	"Go makes it easy to build fast command line tools.",
	"Text embeddings convert words into numerical vectors.",
	"Semantic similarity measures how related two texts are.",
}

// Converter is the TUI-facing subset of the service.
type Converter interface {
	DefaultMethod() string
	Split(raw string) []string
	Convert(ctx context.Context, method, model string, texts []string) (*service.Result, error)
	Neighbors(i, k int) ([]domain.Neighbor, error)
	Reset() error
}

type convertedMsg struct {
	res *service.Result
	err error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx        context.Context
	service    Converter
	editor     textarea.Model
	method     string
	model      string
	result     *service.Result
	neighbors  []domain.Neighbor
	selected   int
	busy       bool
	status     string
	exportPath string
	width      int
	ready      bool
}

// New creates a new TUI model instance. model names the semantic model.
func New(ctx context.Context, svc Converter, model string) Model {
	ta := textarea.New()
	ta.Placeholder = "One text per line"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetHeight(len(SampleTexts) + 1)
	ta.SetValue(strings.Join(SampleTexts, "\n"))
	ta.Focus()
	return Model{
		ctx:        ctx,
		service:    svc,
		editor:     ta,
		method:     svc.DefaultMethod(),
		model:      model,
		status:     helpText,
		exportPath: DefaultExportPath,
	}
}

// WithExportPath returns a copy of m that exports to path.
func (m Model) WithExportPath(path string) Model {
	m.exportPath = path
	return m
}

// Init initializes the model (editor cursor blink).
func (m Model) Init() tea.Cmd { return textarea.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		fw, _ := boxStyle.GetFrameSize()
		m.editor.SetWidth(max(20, msg.Width-fw))
		return m, nil
	case convertedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + describeError(msg.err)
			return m, nil
		}
		m.result = msg.res
		m.selected = 0
		m.refreshNeighbors()
		m.status = fmt.Sprintf("Converted %d texts with %s", len(msg.res.Texts), msg.res.Metadata.Method)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit
		case "ctrl+s":
			return m.convert()
		case "tab":
			m.toggleMethod()
			return m, nil
		case "ctrl+o":
			m.cycleModel()
			return m, nil
		case "ctrl+e":
			m.export()
			return m, nil
		case "ctrl+r":
			m.reset()
			return m, nil
		case "esc":
			if m.editor.Focused() {
				m.editor.Blur()
				return m, nil
			}
			return m, m.editor.Focus()
		}
		if !m.editor.Focused() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "down", "j":
				m.moveSelection(1)
			case "up", "k":
				m.moveSelection(-1)
			case "e":
				m.export()
			case "m":
				m.cycleModel()
			case "r":
				m.reset()
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) convert() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	texts := m.service.Split(m.editor.Value())
	switch len(texts) {
	case 0:
		m.status = "Please add some text first"
		return m, nil
	case 1:
		m.status = "Please add at least 2 texts to compare"
		return m, nil
	}
	m.busy = true
	m.status = fmt.Sprintf("Converting %d texts with %s...", len(texts), m.method)
	ctx, svc, method, model := m.ctx, m.service, m.method, m.model
	return m, func() tea.Msg {
		res, err := svc.Convert(ctx, method, model, texts)
		return convertedMsg{res: res, err: err}
	}
}

func (m *Model) toggleMethod() {
	if m.method == semantic.Name {
		m.method = tfidf.Name
	} else {
		m.method = semantic.Name
	}
	m.status = "Method: " + methodTitle(m.method, m.model)
}

// cycleModel selects the next catalog model, wrapping around, and switches
// to the semantic method. A model outside the catalog moves to the first entry.
func (m *Model) cycleModel() {
	names := semantic.ListAvailableModels()
	next := names[0]
	for i, n := range names {
		if n == m.model {
			next = names[(i+1)%len(names)]
			break
		}
	}
	m.model = next
	m.method = semantic.Name
	info := semantic.ModelDetails(next)
	m.status = fmt.Sprintf("Model: %s · %s dims · speed %s · quality %s", next, info.Dimensions, info.Speed, info.Quality)
}

func (m *Model) reset() {
	if m.result == nil {
		m.status = "Nothing to clear"
		return
	}
	if err := m.service.Reset(); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.result = nil
	m.neighbors = nil
	m.selected = 0
	m.status = "Cleared the results"
}

func (m *Model) moveSelection(delta int) {
	if m.result == nil || len(m.result.Rows) == 0 {
		return
	}
	n := len(m.result.Rows)
	m.selected = (m.selected + delta + n) % n
	m.refreshNeighbors()
}

func (m *Model) refreshNeighbors() {
	ns, err := m.service.Neighbors(m.selected, neighborCount)
	if err != nil {
		m.neighbors = nil
		m.status = "Error: " + err.Error()
		return
	}
	m.neighbors = ns
}

func (m *Model) export() {
	if m.result == nil {
		m.status = "Nothing to export yet"
		return
	}
	f, err := os.Create(m.exportPath)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	err = service.WriteCSV(f, m.result)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.status = "Saved results to " + m.exportPath
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Text to Vectors"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(methodTitle(m.method, m.model)))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.editor.View()))
	b.WriteString("\n")
	if m.result != nil {
		b.WriteString(m.renderResult())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

func (m Model) renderResult() string {
	fw, _ := boxStyle.GetFrameSize()
	plotW := max(20, min(60, m.width-fw))
	plot := boxStyle.Render(Scatter(m.result.Points, plotW, 12, m.selected))

	var table strings.Builder
	table.WriteString(headerStyle.Render(fmt.Sprintf("%-3s %-53s %9s %9s %9s", "#", "Text", "X", "Y", "|v|")))
	for i, r := range m.result.Rows {
		line := fmt.Sprintf("%-3c %-53s %9.4f %9.4f %9.4f", Label(i), r.Text, r.X, r.Y, r.Magnitude)
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		table.WriteString("\n" + line)
	}

	meta := m.result.Metadata
	info := fmt.Sprintf("%s · %d → %d dims · explained variance %.1f%% (%.1f%% + %.1f%%)",
		meta.Method, meta.OriginalDimensions, meta.ReducedDimensions,
		meta.TotalExplainedVariance*100, meta.ExplainedVarianceRatio[0]*100, meta.ExplainedVarianceRatio[1]*100)
	if meta.ModelName != "" {
		info += " · model " + meta.ModelName
	}
	if meta.VocabularySize > 0 {
		info += fmt.Sprintf(" · vocabulary %d", meta.VocabularySize)
	}

	var near strings.Builder
	near.WriteString(fmt.Sprintf("Closest to %c:", Label(m.selected)))
	for _, n := range m.neighbors {
		near.WriteString(fmt.Sprintf("\n  %c  %.4f  %s", Label(n.Index), n.Distance, service.Truncate(n.Text, 50)))
	}

	explain := dimStyle.Copy().Width(max(20, m.width-fw)).Render(m.result.Explanation)

	return lipgloss.JoinVertical(lipgloss.Left,
		plot,
		table.String(),
		dimStyle.Render(info),
		explain,
		near.String(),
	)
}

func methodTitle(method, model string) string {
	if method == semantic.Name {
		return semantic.Method + " (" + model + ")"
	}
	return tfidf.Method
}

func describeError(err error) string {
	var dim *domain.DimensionError
	switch {
	case errors.As(err, &dim):
		return "not enough distinct words or texts to draw a 2D map: " + err.Error()
	case errors.Is(err, domain.ErrModelUnavailable):
		return "the model could not be loaded: " + err.Error()
	default:
		return err.Error()
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
