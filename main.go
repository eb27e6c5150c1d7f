package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
	"wirecanvas/render/rastersurface"
	"wirecanvas/render/svgsurface"
)

var version = "0.3.0"

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "wirecanvas: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wirecanvas [file]",
		Short: "wirecanvas: connect documents, images and threads on a terminal canvas",
		Long: brand.Sprint("wirecanvas") + " draws nodes and the connectors between them\n" +
			subtle.Sprint("Documents are YAML, or JSON when the file name ends in .json"),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(Load(), args)
		},
	}
	root.SetVersionTemplate("wirecanvas {{ .Version }}\n")
	root.AddCommand(exportCmd())
	return root
}

func exportCmd() *cobra.Command {
	var (
		output    string
		scale     float64
		hideNodes bool
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a document to SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := Load()
			doc, err := LoadDocument(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".svg"
			}
			format, err := exportFormat(output)
			if err != nil {
				return err
			}

			opts := cfg.EngineOptions()
			switch format {
			case "svg":
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				err = exportSVG(doc, opts, svgsurface.Options{ShowNodes: !hideNodes, Background: "#ffffff"}, f)
				if err != nil {
					return err
				}
			case "png":
				err = exportPNG(doc, opts, rastersurface.Options{Scale: scale, ShowNodes: !hideNodes}, output)
				if err != nil {
					return err
				}
			}
			good.Fprintf(cmd.OutOrStdout(), "exported %d nodes, %d edges to %s\n", len(doc.Nodes), len(doc.Edges), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.svg or .png)")
	cmd.Flags().Float64Var(&scale, "scale", 2, "Pixel scale for PNG output")
	cmd.Flags().BoolVar(&hideNodes, "edges-only", false, "Draw only the connectors")
	return cmd
}

func runTUI(cfg *Config, args []string) error {
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "wirecanvas")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m, err := initialModel(cfg, args)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func initialModel(cfg *Config, args []string) (model, error) {
	m := model{
		config: cfg,
		engine: cfg.EngineOptions(),
		styles: defaultStyles(),
		mode:   ModeNormal,
	}
	if len(args) == 0 {
		m.addNewBuffer(NewCanvas(), "")
		return m, nil
	}

	path := args[0]
	doc, err := LoadDocument(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		m.addNewBuffer(NewCanvas(), path)
		m.successMessage = "New file " + filepath.Base(path)
	case err != nil:
		return m, err
	default:
		m.addNewBuffer(NewCanvasFromDocument(doc), path)
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, buf := range m.buffers {
			buf.Resize(m.width, m.canvasRows())
			buf.ctrl.Render()
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode == ModeNormal || m.mode == ModeMove {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeFileInput:
			return m.handleFileInput(msg)
		case ModeConfirm:
			return m.handleConfirm(msg)
		}
		if m.help {
			if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
				m.help = false
			}
			return m, nil
		}
		m.errorMessage, m.successMessage = "", ""
		return m.handleKey(msg.String())
	}
	return m, nil
}

func modifiers(msg tea.MouseMsg) connector.Modifiers {
	var mods connector.Modifiers
	if msg.Alt {
		mods |= connector.ModAlt
	}
	if msg.Shift {
		mods |= connector.ModShift
	}
	if msg.Ctrl {
		mods |= connector.ModCtrl
	}
	return mods
}

// handleMouse turns terminal mouse reports into pointer gestures. Presses on
// a node body that the engine leaves alone start a node drag instead.
func (m *model) handleMouse(msg tea.MouseMsg) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	if msg.Y >= m.canvasRows() && msg.Type != tea.MouseRelease {
		return
	}
	screen := cellCenter(msg.X, msg.Y)
	m.cursor = screen
	mods := modifiers(msg)

	switch msg.Type {
	case tea.MouseWheelUp:
		buf.ZoomAt(screen, zoomStep)
		buf.ctrl.Render()

	case tea.MouseWheelDown:
		buf.ZoomAt(screen, 1/zoomStep)
		buf.ctrl.Render()

	case tea.MouseLeft:
		hit := buf.ctrl.HitTest(screen, mods)
		buf.bus.Emit(connector.PointerEvent{Kind: connector.PointerDown, Screen: screen, Modifiers: mods})
		m.hoverNode = hit.NodeID
		if hit.Kind == connector.HitNode && buf.ctrl.State().Mode == connector.ModeIdle {
			n, _ := buf.canvas.Node(hit.NodeID)
			buf.drag = &nodeDrag{
				id:     n.ID,
				grab:   hit.Point,
				origin: geometry.Pt(n.Bounds.X, n.Bounds.Y),
				before: buf.canvas.Document(),
			}
			m.mode = ModeMove
		}

	case tea.MouseMotion:
		if d := buf.drag; d != nil {
			p := buf.view.ToCanvas(screen)
			buf.canvas.SetNodePosition(d.id, d.origin.Add(p.Sub(d.grab)))
			d.moved = true
			buf.sync()
			return
		}
		buf.bus.Emit(connector.PointerEvent{Kind: connector.PointerMove, Screen: screen, Modifiers: mods})

	case tea.MouseRelease:
		if d := buf.drag; d != nil {
			if d.moved {
				buf.recordAction(ActionMoveNode, d.before, buf.canvas.Document())
			}
			buf.drag = nil
			m.mode = ModeNormal
			return
		}
		buf.bus.Emit(connector.PointerEvent{Kind: connector.PointerUp, Screen: screen, Modifiers: mods})
	}
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return m, tea.Quit
	}

	switch key {
	case "q", "ctrl+c":
		if m.config.Files.Confirmations && m.dirty() {
			m.mode, m.confirmAction = ModeConfirm, ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.help = true
	case "esc":
		if buf.drag != nil {
			buf.restore(buf.drag.before)
			m.mode = ModeNormal
		}
		buf.bus.Emit(connector.PointerEvent{Kind: connector.PointerCancel, Screen: m.cursor})
		m.hoverNode = ""
	case "b":
		m.addNode()
	case "A":
		m.arrangeTree()
	case "d", "delete", "backspace":
		if buf.ctrl.DeleteSelected() {
			m.successMessage = "Deleted edge"
			break
		}
		if m.hoverNode == "" {
			m.errorMessage = "Nothing selected"
			break
		}
		if m.config.Files.Confirmations {
			m.mode, m.confirmAction, m.confirmNodeID = ModeConfirm, ConfirmDeleteNode, m.hoverNode
			break
		}
		m.deleteNode(m.hoverNode)
		m.hoverNode = ""
	case "p":
		if !m.restyleSelected(cyclePath) {
			m.errorMessage = "Select an edge first"
		}
	case "m":
		if !m.restyleSelected(cycleMarker) {
			m.errorMessage = "Select an edge first"
		}
	case "u":
		if t, ok := buf.undo(); ok {
			m.successMessage = "Undid " + t.String()
		}
	case "U", "ctrl+r":
		if t, ok := buf.redo(); ok {
			m.successMessage = "Redid " + t.String()
		}
	case "s":
		if buf.filename != "" {
			m.saveDocument(buf.filename)
			break
		}
		m.startFileInput(FileOpSave)
	case "S":
		m.startFileInput(FileOpSavePNG)
	case "V":
		m.startFileInput(FileOpSaveSVG)
	case "o":
		m.startFileInput(FileOpOpen)
	case "y":
		if err := m.copySVG(); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "Copied SVG to clipboard"
		}
	case "Y":
		if err := m.copySelectedEdge(); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "Copied edge to clipboard"
		}
	case "n":
		m.addNewBuffer(NewCanvas(), "")
	case "tab":
		if len(m.buffers) > 1 {
			buf.ctrl.Cancel()
			m.currentBufferIndex = (m.currentBufferIndex + 1) % len(m.buffers)
			m.hoverNode = ""
		}
	case "x":
		if m.config.Files.Confirmations && len(buf.undoStack) > 0 {
			m.mode, m.confirmAction = ModeConfirm, ConfirmCloseBuffer
			break
		}
		m.closeCurrentBuffer()
	default:
		m.handleNavigation(key)
	}
	return m, nil
}

func (m *model) dirty() bool {
	for _, buf := range m.buffers {
		if len(buf.undoStack) > 0 {
			return true
		}
	}
	return false
}

func (m *model) startFileInput(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.filename = ""
	if buf := m.getCurrentBuffer(); buf != nil && buf.filename != "" && op != FileOpOpen {
		base := strings.TrimSuffix(buf.filename, filepath.Ext(buf.filename))
		switch op {
		case FileOpSavePNG:
			m.filename = base + ".png"
		case FileOpSaveSVG:
			m.filename = base + ".svg"
		default:
			m.filename = buf.filename
		}
	}
}

func (m model) handleFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
	case "enter":
		name := strings.TrimSpace(m.filename)
		if name == "" {
			m.errorMessage = "File name required"
			m.mode = ModeNormal
			break
		}
		path := m.config.GetSavePath(withExtension(name, m.fileOp))
		m.filename = path
		if m.fileOp != FileOpOpen && m.config.Files.Confirmations {
			if _, err := os.Stat(path); err == nil {
				m.mode, m.confirmAction = ModeConfirm, ConfirmOverwriteFile
				break
			}
		}
		m.mode = ModeNormal
		m.performFileOp(path)
	case "backspace":
		if len(m.filename) > 0 {
			r := []rune(m.filename)
			m.filename = string(r[:len(r)-1])
		}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.filename += string(msg.Runes)
		}
	}
	return m, nil
}

func withExtension(name string, op FileOperation) string {
	if filepath.Ext(name) != "" {
		return name
	}
	switch op {
	case FileOpSavePNG:
		return name + ".png"
	case FileOpSaveSVG:
		return name + ".svg"
	}
	return name + ".yaml"
}

func (m *model) performFileOp(path string) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	var err error
	switch m.fileOp {
	case FileOpSave:
		m.saveDocument(path)
		return
	case FileOpSavePNG:
		err = exportPNG(buf.canvas.Document(), m.engine, rastersurface.Options{Scale: 2, ShowNodes: true}, path)
	case FileOpSaveSVG:
		var f *os.File
		if f, err = os.Create(path); err == nil {
			err = exportSVG(buf.canvas.Document(), m.engine, svgsurface.Options{ShowNodes: true, Background: "#ffffff"}, f)
			f.Close()
		}
	case FileOpOpen:
		var doc Document
		if doc, err = LoadDocument(path); err == nil {
			m.addNewBuffer(NewCanvasFromDocument(doc), path)
			m.hoverNode = ""
		}
	}
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "Wrote " + filepath.Base(path)
	if m.fileOp == FileOpOpen {
		m.successMessage = "Opened " + filepath.Base(path)
	}
}

func (m *model) saveDocument(path string) {
	buf := m.getCurrentBuffer()
	if err := SaveDocument(path, buf.canvas.Document()); err != nil {
		m.errorMessage = err.Error()
		return
	}
	buf.filename = path
	buf.undoStack, buf.redoStack = nil, nil
	m.successMessage = "Saved " + filepath.Base(path)
}

func (m model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmDeleteNode:
			m.deleteNode(m.confirmNodeID)
			m.hoverNode = ""
		case ConfirmCloseBuffer:
			m.closeCurrentBuffer()
		case ConfirmOverwriteFile:
			m.performFileOp(m.filename)
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

// canvasRows is the number of terminal rows the canvas is drawn into.
func (m model) canvasRows() int {
	rows := m.height - 1
	if len(m.buffers) > 1 {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	buf := m.getCurrentBuffer()
	if buf == nil {
		return ""
	}

	lines := buf.canvas.Render(m.width, m.canvasRows(), buf.view, buf.displayList(), m.hoverNode, m.styles)
	if len(m.buffers) > 1 {
		lines = append(lines, m.renderBufferBar())
	}
	lines = append(lines, m.statusLine())
	return strings.Join(lines, "\n")
}

func (m model) renderBufferBar() string {
	var parts []string
	for i, buf := range m.buffers {
		name := "[untitled]"
		if buf.filename != "" {
			name = filepath.Base(buf.filename)
		}
		label := fmt.Sprintf(" %d:%s ", i+1, name)
		if i == m.currentBufferIndex {
			label = m.styles.status.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

func (m model) statusLine() string {
	switch m.mode {
	case ModeFileInput:
		return m.styles.status.Width(m.width).Render(m.filePrompt() + m.filename + "█")
	case ModeConfirm:
		return m.styles.status.Width(m.width).Render(m.confirmPrompt() + " (y/n)")
	}

	buf := m.getCurrentBuffer()
	left := fmt.Sprintf(" %s │ %s │ %d%% ", m.modeString(), buf.ctrl.State().Mode, int(buf.view.Scale*100+0.5))
	if sel := buf.ctrl.State().Selected; sel != "" {
		if e, ok := buf.canvas.Edge(sel); ok {
			left += fmt.Sprintf("│ %s %s→%s ", e.Style.Path, e.Source.Side, e.Target.Side)
		}
	}
	msg := ""
	switch {
	case m.errorMessage != "":
		msg = m.styles.errorText.Render(m.errorMessage)
	case m.successMessage != "":
		msg = m.styles.successText.Render(m.successMessage)
	default:
		msg = "? for help"
	}
	bar := m.styles.status.Render(left)
	gap := m.width - lipgloss.Width(bar) - lipgloss.Width(msg) - 1
	if gap < 1 {
		gap = 1
	}
	return bar + strings.Repeat(" ", gap) + msg
}

func (m model) filePrompt() string {
	switch m.fileOp {
	case FileOpSavePNG:
		return "Export PNG: "
	case FileOpSaveSVG:
		return "Export SVG: "
	case FileOpOpen:
		return "Open: "
	}
	return "Save as: "
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmDeleteNode:
		return "Delete node and its edges?"
	case ConfirmQuit:
		return "Quit with unsaved changes?"
	case ConfirmCloseBuffer:
		return "Close buffer with unsaved changes?"
	case ConfirmOverwriteFile:
		return "Overwrite " + filepath.Base(m.filename) + "?"
	}
	return "Are you sure?"
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeMove:
		return "MOVE"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) helpView() string {
	helpLines := []string{
		"wirecanvas help",
		"===============",
		"",
		"Mouse:",
		"  drag from a side handle (┤ ├ ┴ ┬)  Connect two nodes",
		"  click an edge                      Select it",
		"  drag a selected edge's ◆ handle    Slide the anchor along the side",
		"  alt+drag an edge end               Reconnect it, drop on empty canvas to delete",
		"  drag a node body                   Move the node",
		"  wheel                              Zoom",
		"",
		"Keys:",
		"  b          Add a node under the pointer (document, image, thread)",
		"  d          Delete the selected edge, or the last clicked node",
		"  p / m      Cycle the selected edge's path type / end marker",
		"  A          Arrange connected nodes as left to right trees",
		"  u / U      Undo / redo",
		"  h j k l    Pan (shift for faster), + - 0 zoom",
		"  esc        Cancel the current gesture",
		"",
		"Files:",
		"  s          Save document (.yaml or .json)",
		"  o          Open document in a new buffer",
		"  S / V      Export PNG / SVG",
		"  y / Y      Copy SVG / selected edge to the clipboard",
		"  n / tab / x  New buffer / next buffer / close buffer",
		"",
		"  q          Quit",
		"",
		"Press ? or esc to close help",
	}
	return m.styles.help.Render(strings.Join(helpLines, "\n"))
}
