package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/circuit"
	"github.com/voltlab/cdckit/pkg/codec"
	"github.com/voltlab/cdckit/pkg/graph"
)

// newEditCmd opens the interactive circuit editor.
func newEditCmd() *cobra.Command {
	var defs string

	cmd := &cobra.Command{
		Use:   "edit [cdc]",
		Short: "Edit a circuit interactively with live validation",
		Long: `Open a line editor for circuit description code. The circuit is
re-validated on every keystroke: syntax errors are flagged at their
position, and valid circuits show their canonical form and a grid
preview of the generated graph. Press enter to accept, esc to abort.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(defs)
			if err != nil {
				return err
			}
			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}

			p := tea.NewProgram(newEditModel(reg, initial))
			final, err := p.Run()
			if err != nil {
				return err
			}
			m, ok := final.(editModel)
			if !ok || !m.accepted {
				printInfo("edit aborted")
				return nil
			}

			c, err := cdc.Parse(string(m.input), reg)
			if err != nil {
				return err
			}
			printSuccess("circuit accepted")
			printKeyValue("canonical", c.CDC())
			printKeyValue("extended", c.Extended())
			return nil
		},
	}

	cmd.Flags().StringVar(&defs, "defs", "", "TOML file with custom element definitions")
	return cmd
}

// editModel is the bubbletea model for the live circuit editor.
type editModel struct {
	reg      *circuit.Registry
	input    []rune
	cursor   int
	accepted bool

	// derived from input on every change
	valid     bool
	status    string
	errPos    int // byte offset of the error, -1 when not applicable
	canonical string
	preview   string
}

func newEditModel(reg *circuit.Registry, initial string) editModel {
	m := editModel{
		reg:    reg,
		input:  []rune(initial),
		cursor: len([]rune(initial)),
	}
	m.revalidate()
	return m
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if m.valid {
			m.accepted = true
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyBackspace:
		if m.cursor > 0 {
			m.input = append(m.input[:m.cursor-1], m.input[m.cursor:]...)
			m.cursor--
			m.revalidate()
		}
	case tea.KeyLeft:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyRight:
		if m.cursor < len(m.input) {
			m.cursor++
		}
	case tea.KeyHome:
		m.cursor = 0
	case tea.KeyEnd:
		m.cursor = len(m.input)
	case tea.KeySpace:
		m.insert(' ')
	case tea.KeyRunes:
		for _, r := range key.Runes {
			m.insert(r)
		}
	}
	return m, nil
}

func (m *editModel) insert(r rune) {
	m.input = append(m.input[:m.cursor], append([]rune{r}, m.input[m.cursor:]...)...)
	m.cursor++
	m.revalidate()
}

// revalidate reparses the buffer and refreshes the derived display state.
func (m *editModel) revalidate() {
	m.valid = false
	m.errPos = -1
	m.canonical = ""
	m.preview = ""

	text := string(m.input)
	if strings.TrimSpace(text) == "" {
		m.status = "enter a circuit, e.g. [R(RC)]"
		return
	}

	c, err := cdc.Parse(text, m.reg)
	if err != nil {
		m.status = err.Error()
		var perr *cdc.ParseError
		if errors.As(err, &perr) {
			m.errPos = perr.Pos
		}
		return
	}

	gen, err := codec.Generate(c)
	if err != nil {
		m.status = err.Error()
		return
	}

	m.valid = true
	m.canonical = c.CDC()
	m.status = "valid"
	m.preview = renderPreview(gen)
}

func (m editModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Circuit Editor"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("type CDC text  ⏎ accept  esc abort"))
	b.WriteString("\n\n")

	b.WriteString("  " + m.viewInput())
	b.WriteString("\n\n")

	if m.valid {
		b.WriteString("  " + styleIconSuccess.Render(iconSuccess) + " " + StyleValue.Render(m.canonical))
		b.WriteString("\n\n")
		b.WriteString(m.preview)
	} else {
		b.WriteString("  " + styleIconError.Render(iconError) + " " + StyleWarning.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

// viewInput renders the buffer with a block cursor and, when the parser
// reported a position, the offending character highlighted.
func (m editModel) viewInput() string {
	var b strings.Builder
	for i, r := range m.input {
		s := string(r)
		switch {
		case i == m.cursor:
			s = StyleHighlight.Reverse(true).Render(s)
		case m.errPos >= 0 && i == runeIndex(m.input, m.errPos):
			s = StyleError.Underline(true).Render(s)
		}
		b.WriteString(s)
	}
	if m.cursor == len(m.input) {
		b.WriteString(StyleHighlight.Reverse(true).Render(" "))
	}
	return b.String()
}

// runeIndex converts a byte offset into the buffer to a rune index.
func runeIndex(input []rune, byteOffset int) int {
	n := 0
	for i, r := range input {
		if n >= byteOffset {
			return i
		}
		n += len(string(r))
	}
	return len(input)
}

// renderPreview draws the generated graph as a text grid, one column per
// series step and one row per parallel branch.
func renderPreview(gen *codec.Generated) string {
	const cellWidth = 8

	cells := make(map[codec.Point]string)
	for _, n := range gen.Graph.Nodes() {
		p := gen.Positions[n.ID()]
		label := n.Label()
		if n.Kind() == graph.KindJunction {
			label = "*"
		}
		cells[p] = label
	}

	var b strings.Builder
	for row := 0; row < gen.Height; row++ {
		b.WriteString("  ")
		for col := 0; col < gen.Width; col++ {
			label := cells[codec.Point{Col: col, Row: row}]
			b.WriteString(StyleDim.Render(fmt.Sprintf("%-*s", cellWidth, label)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
