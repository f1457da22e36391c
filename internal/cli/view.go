package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poagraph/pkg/alphabet"
	pkgio "github.com/matzehuels/poagraph/pkg/io"
	"github.com/matzehuels/poagraph/pkg/pipeline"
	"github.com/matzehuels/poagraph/pkg/render/nodelink"
)

const (
	viewLabelWidth = 14
	viewChrome     = 5 // title, help, ruler, blank line, footer
)

// Viewer styles
var (
	viewLabelStyle     = lipgloss.NewStyle().Foreground(colorGray).Width(viewLabelWidth)
	viewConsensusLabel = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Width(viewLabelWidth)
	viewGapStyle       = lipgloss.NewStyle().Foreground(colorDim)
	viewHelpStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// baseCells holds the pre-rendered cell for every alignment character.
var baseCells = func() map[byte]string {
	cells := make(map[byte]string, 6)
	for sym, color := range nodelink.BaseColors {
		c := sym.String()
		cells[c[0]] = lipgloss.NewStyle().
			Background(lipgloss.Color(color)).
			Foreground(lipgloss.Color("0")).
			Render(c)
	}
	cells['-'] = viewGapStyle.Render(alphabet.Gap.String())
	return cells
}()

// MSAViewModel is the bubbletea model for browsing an alignment.
type MSAViewModel struct {
	IDs       []string
	Rows      []string
	Consensus string // gapped consensus row; empty if none
	Columns   int

	OffsetX int
	OffsetY int
	Width   int
	Height  int
}

// NewMSAViewModel creates a viewer for the given alignment rows.
func NewMSAViewModel(ids, rows []string, consensus string, columns int) MSAViewModel {
	return MSAViewModel{
		IDs:       ids,
		Rows:      rows,
		Consensus: consensus,
		Columns:   columns,
		Width:     80,
		Height:    24,
	}
}

func (m MSAViewModel) Init() tea.Cmd {
	return nil
}

// seqWidth is the number of alignment columns that fit on screen.
func (m MSAViewModel) seqWidth() int {
	return max(m.Width-viewLabelWidth-1, 1)
}

// seqHeight is the number of sequence rows that fit on screen.
func (m MSAViewModel) seqHeight() int {
	h := m.Height - viewChrome
	if m.Consensus != "" {
		h--
	}
	return max(h, 1)
}

func (m MSAViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.OffsetX--
		case "right", "l":
			m.OffsetX++
		case "up", "k":
			m.OffsetY--
		case "down", "j":
			m.OffsetY++
		case "pgup", "b":
			m.OffsetX -= m.seqWidth()
		case "pgdown", "f", " ":
			m.OffsetX += m.seqWidth()
		case "home", "g":
			m.OffsetX = 0
		case "end", "G":
			m.OffsetX = m.Columns
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	m.clamp()
	return m, nil
}

func (m *MSAViewModel) clamp() {
	m.OffsetX = max(min(m.OffsetX, m.Columns-m.seqWidth()), 0)
	m.OffsetY = max(min(m.OffsetY, len(m.Rows)-m.seqHeight()), 0)
}

func (m MSAViewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Alignment · %d sequences · %d columns", len(m.Rows), m.Columns)))
	b.WriteString("\n")
	b.WriteString(viewHelpStyle.Render("←/→ scroll  ↑/↓ rows  pgup/pgdn page  g/G start/end  q quit"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", viewLabelWidth+1))
	b.WriteString(StyleDim.Render(ruler(m.OffsetX, m.seqWidth())))
	b.WriteString("\n")

	end := min(m.OffsetY+m.seqHeight(), len(m.Rows))
	for i := m.OffsetY; i < end; i++ {
		b.WriteString(viewLabelStyle.Render(truncate(m.label(i), viewLabelWidth-1)))
		b.WriteString(" ")
		b.WriteString(m.segment(m.Rows[i]))
		b.WriteString("\n")
	}
	if m.Consensus != "" {
		b.WriteString(viewConsensusLabel.Render(pkgio.ConsensusID))
		b.WriteString(" ")
		b.WriteString(m.segment(m.Consensus))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	last := min(m.OffsetX+m.seqWidth(), m.Columns)
	b.WriteString(viewHelpStyle.Render(fmt.Sprintf("  columns %d-%d  rows %d-%d of %d",
		m.OffsetX+1, last, m.OffsetY+1, end, len(m.Rows))))
	return b.String()
}

func (m MSAViewModel) label(i int) string {
	if i < len(m.IDs) && m.IDs[i] != "" {
		return m.IDs[i]
	}
	return fmt.Sprintf("seq%d", i+1)
}

func (m MSAViewModel) segment(row string) string {
	start := min(m.OffsetX, len(row))
	stop := min(start+m.seqWidth(), len(row))
	var b strings.Builder
	for i := start; i < stop; i++ {
		if cell, ok := baseCells[row[i]]; ok {
			b.WriteString(cell)
		} else {
			b.WriteByte(row[i])
		}
	}
	return b.String()
}

// ruler marks every tenth column with its 1-based number.
func ruler(offset, width int) string {
	line := []byte(strings.Repeat(" ", width))
	for col := offset; col < offset+width; col++ {
		if (col+1)%10 != 0 {
			continue
		}
		num := fmt.Sprint(col + 1)
		pos := col - offset - len(num) + 1
		if pos < 0 {
			continue
		}
		copy(line[pos:], num)
	}
	return string(line)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

type viewOpts struct {
	align alignFlags
}

func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [file...]",
		Short: "Browse an alignment in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd, args, &opts)
		},
	}
	opts.align.register(cmd)
	return cmd
}

func (c *CLI) runView(cmd *cobra.Command, args []string, opts *viewOpts) error {
	cfg, err := c.effectiveConfig(cmd, &opts.align)
	if err != nil {
		return err
	}
	recs, err := readInputs(cmd.Context(), args)
	if err != nil {
		return err
	}
	ids := recordIDs(recs)
	res, err := c.execute(cmd.Context(), pipeline.Options{
		Sequences:        pkgio.Sequences(recs),
		IDs:              ids,
		IncludeConsensus: true,
		RequireSequences: true,
		Config:           cfg,
	})
	if err != nil {
		return err
	}

	model := NewMSAViewModel(ids, res.MSA.Rows, res.MSA.Extra, res.MSA.Length)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
