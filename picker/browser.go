package picker

import "io"
import "path/filepath"

import "github.com/charmbracelet/bubbles/filepicker"
import tea "github.com/charmbracelet/bubbletea"
import "github.com/charmbracelet/lipgloss"

var titleStyle = lipgloss.NewStyle().Bold(true)
var hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// model wraps a directory-only file picker. Enter picks the highlighted
// folder, "." the folder being browsed, Esc and ctrl+c cancel.
type model struct {
	picker    filepicker.Model
	selected  string
	cancelled bool
}

func newModel(start string) model {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	if abs, err := filepath.Abs(start); err == nil {
		start = abs
	}
	fp.CurrentDirectory = start
	fp.Height = 12
	return model{picker: fp}
}

func (m model) Init() tea.Cmd {
	return m.picker.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyRunes:
			if string(k.Runes) == "." {
				m.selected = m.picker.CurrentDirectory
				return m, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.selected = path
		return m, tea.Quit
	}
	return m, cmd
}

func (m model) View() string {
	if m.cancelled || m.selected != "" {
		return ""
	}
	return titleStyle.Render("Save results to folder") + "\n" +
		hintStyle.Render(m.picker.CurrentDirectory) + "\n" +
		hintStyle.Render("enter: pick folder  .: pick this folder  esc: skip saving") + "\n\n" +
		m.picker.View() + "\n"
}

// Pick runs an interactive folder browser starting at start
func Pick(in io.Reader, out io.Writer, start string) (dir string, ok bool, err error) {
	p := tea.NewProgram(newModel(start), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m := final.(model)
	if m.cancelled || m.selected == "" {
		return "", false, nil
	}
	return m.selected, true, nil
}
