package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poagraph/pkg/cache"
	"github.com/matzehuels/poagraph/pkg/config"
	pkgio "github.com/matzehuels/poagraph/pkg/io"
)

func TestRecordIDs(t *testing.T) {
	recs := []pkgio.Record{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "a"}}
	got := recordIDs(recs)
	want := []string{"a", "b", "a_2", "a_3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recordIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAlignFlagsApply(t *testing.T) {
	var f alignFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--match", "3", "--band", "exact", "--no-progressive"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg := config.Default()
	cfg.Scoring.Mismatch = 7 // as if read from a config file
	if err := f.apply(cmd, cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Scoring.Match != 3 {
		t.Errorf("Match = %d, want 3", cfg.Scoring.Match)
	}
	if cfg.Scoring.Mismatch != 7 {
		t.Errorf("Mismatch = %d, unset flag must not override", cfg.Scoring.Mismatch)
	}
	if cfg.Band.Mode != "exact" {
		t.Errorf("Band.Mode = %q, want exact", cfg.Band.Mode)
	}
	if cfg.Order.Progressive {
		t.Error("Order.Progressive should be false")
	}
}

func TestAlignFlagsApplyInvalid(t *testing.T) {
	var f alignFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--band", "sideways"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if err := f.apply(cmd, config.Default()); err == nil {
		t.Error("apply should reject an unknown band mode")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(io.Discard, log.InfoLevel)

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() without file: %v", err)
	}
	if cfg.Scoring != config.Default().Scoring {
		t.Errorf("loadConfig() = %+v, want defaults", cfg.Scoring)
	}

	path, err := c.configFile(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeDefaultConfig(path, false); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	if err := writeDefaultConfig(path, false); err == nil {
		t.Error("writeDefaultConfig should refuse to overwrite without force")
	}
	if err := writeDefaultConfig(path, true); err != nil {
		t.Errorf("writeDefaultConfig(force): %v", err)
	}

	cfg, err = c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() with file: %v", err)
	}
	if cfg.Band != config.Default().Band {
		t.Errorf("Band = %+v, want defaults", cfg.Band)
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[scoring]\nmatch = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, log.InfoLevel)
	c.configPath = path

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig(): %v", err)
	}
	if cfg.Scoring.Match != 4 {
		t.Errorf("Match = %d, want 4", cfg.Scoring.Match)
	}
	if got, _ := c.configFile(nil); got != path {
		t.Errorf("configFile() = %q, want %q", got, path)
	}
}

func TestCacheLocation(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/srv/cache")
	tests := []struct {
		url, want string
	}{
		{"", filepath.Join("/srv/cache", appName)},
		{"file:///tmp/poa", "/tmp/poa"},
		{"redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"none", "none"},
	}
	for _, tt := range tests {
		c := New(io.Discard, log.InfoLevel)
		c.cacheURL = tt.url
		if got, err := c.cacheLocation(); err != nil || got != tt.want {
			t.Errorf("cacheLocation(%q) = %q, %v; want %q", tt.url, got, err, tt.want)
		}
	}
}

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b"} {
		if err := fc.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	captureStatus(t)

	c := New(io.Discard, log.InfoLevel)
	c.cacheURL = "file://" + dir
	if err := c.clearCache(); err != nil {
		t.Fatalf("clearCache(): %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "a"); hit {
		t.Error("entry survived clear")
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := writeOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "ACGT\n")
		return err
	})
	if err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ACGT\n" {
		t.Errorf("file = %q, want %q", data, "ACGT\n")
	}

	if err := writeOutput(filepath.Join(t.TempDir(), "missing", "out.txt"), func(io.Writer) error { return nil }); err == nil {
		t.Error("writeOutput into a missing directory should fail")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", diagramDOT},
		{"graph.dot", diagramDOT},
		{"graph.svg", diagramSVG},
		{"graph.PDF", diagramPDF},
		{"out/graph.png", diagramPNG},
		{"graph.txt", diagramDOT},
	}
	for _, tt := range tests {
		if got := formatFromPath(tt.path); got != tt.want {
			t.Errorf("formatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	for _, name := range []string{"msa", "consensus", "dot", "view", "serve", "config", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestMSACommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reads.fa")
	out := filepath.Join(dir, "aligned.txt")
	if err := os.WriteFile(in, []byte(">r1\nACGTACGT\n>r2\nACGTACGT\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	old := statusOut
	statusOut = io.Discard
	defer func() { statusOut = old }()

	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"--no-cache", "msa", "-f", "text", "-o", out, in})
	if err := root.Execute(); err != nil {
		t.Fatalf("msa: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ACGTACGT") {
		t.Errorf("output = %q, want aligned rows", data)
	}
}

func TestRuler(t *testing.T) {
	got := ruler(0, 20)
	if len(got) != 20 {
		t.Fatalf("len(ruler) = %d, want 20", len(got))
	}
	if strings.TrimSpace(got[:10]) != "10" || got[8:10] != "10" {
		t.Errorf("ruler(0, 20) = %q, want 10 ending at column 10", got)
	}
	if got[18:20] != "20" {
		t.Errorf("ruler(0, 20) = %q, want 20 ending at column 20", got)
	}
	// Numbers that would start left of the window are dropped.
	if got := ruler(9, 5); strings.TrimSpace(got) != "" {
		t.Errorf("ruler(9, 5) = %q, want blank", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 5, "trun…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func newTestViewModel() MSAViewModel {
	rows := []string{
		strings.Repeat("ACGT", 50),
		strings.Repeat("AC-T", 50),
		strings.Repeat("ACGA", 50),
	}
	return NewMSAViewModel([]string{"read1", "read2", "read3"}, rows, strings.Repeat("ACGT", 50), 200)
}

func press(m MSAViewModel, key string) MSAViewModel {
	var msg tea.KeyMsg
	switch key {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(MSAViewModel)
}

func TestMSAViewModelScroll(t *testing.T) {
	m := newTestViewModel()

	m = press(m, "right")
	if m.OffsetX != 1 {
		t.Errorf("OffsetX after right = %d, want 1", m.OffsetX)
	}
	m = press(m, "left")
	m = press(m, "left")
	if m.OffsetX != 0 {
		t.Errorf("OffsetX should clamp at 0, got %d", m.OffsetX)
	}

	m = press(m, "G")
	if want := m.Columns - m.seqWidth(); m.OffsetX != want {
		t.Errorf("OffsetX after G = %d, want %d", m.OffsetX, want)
	}
	m = press(m, "l")
	if want := m.Columns - m.seqWidth(); m.OffsetX != want {
		t.Errorf("OffsetX should clamp at %d, got %d", want, m.OffsetX)
	}
	m = press(m, "g")
	if m.OffsetX != 0 {
		t.Errorf("OffsetX after g = %d, want 0", m.OffsetX)
	}

	// All rows fit, so vertical scrolling is a no-op.
	m = press(m, "j")
	if m.OffsetY != 0 {
		t.Errorf("OffsetY = %d, want 0", m.OffsetY)
	}
}

func TestMSAViewModelResize(t *testing.T) {
	m := newTestViewModel()
	m = press(m, "G")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 300, Height: 40})
	m = next.(MSAViewModel)
	if m.OffsetX != 0 {
		t.Errorf("OffsetX = %d, want 0 once every column fits", m.OffsetX)
	}
}

func TestMSAViewModelQuit(t *testing.T) {
	_, cmd := newTestViewModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestMSAViewModelView(t *testing.T) {
	view := newTestViewModel().View()
	for _, want := range []string{"read1", "read3", pkgio.ConsensusID, "3 sequences", "200 columns"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	old := statusOut
	statusOut = &buf
	defer func() { statusOut = old }()

	printStats(alignStats{sequences: 4, columns: 9, cached: true})
	out := buf.String()
	for _, want := range []string{"4 sequences", "9 columns", labelCached} {
		if !strings.Contains(out, want) {
			t.Errorf("printStats() = %q, missing %q", out, want)
		}
	}
	if strings.Contains(out, "nodes") {
		t.Errorf("printStats() = %q, zero counts should be omitted", out)
	}
}
