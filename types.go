package main

import (
	"github.com/charmbracelet/lipgloss"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
)

// Buffer is one open document with its own engine, viewport and history.
type Buffer struct {
	canvas    *Canvas
	undoStack []Action
	redoStack []Action
	filename  string
	view      connector.Viewport

	mgr     *connector.Manager
	ctrl    *connector.Controller
	bus     *connector.GestureBus
	display *connector.DisplayList

	drag *nodeDrag
}

// nodeDrag is a node body being moved with the mouse.
type nodeDrag struct {
	id     string
	grab   geometry.Point
	origin geometry.Point
	moved  bool
	before Document
}

type model struct {
	width              int
	height             int
	buffers            []*Buffer
	currentBufferIndex int
	mode               Mode
	help               bool
	cursor             geometry.Point // last mouse position, screen pixels
	hoverNode          string
	nextKind           int
	filename           string
	fileOp             FileOperation
	openInNewBuffer    bool
	confirmAction      ConfirmAction
	confirmNodeID      string
	errorMessage       string
	successMessage     string
	config             *Config
	engine             connector.Options
	styles             styles
}

// Action is one undoable change. Data is the document after the change,
// Inverse the document before it.
type Action struct {
	Type    ActionType
	Data    Document
	Inverse Document
}

type styles struct {
	node         lipgloss.Style
	nodeSelected lipgloss.Style
	edge         lipgloss.Style
	edgeSelected lipgloss.Style
	preview      lipgloss.Style
	handle       lipgloss.Style
	status       lipgloss.Style
	errorText    lipgloss.Style
	successText  lipgloss.Style
	help         lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		node:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		nodeSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		edge:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		edgeSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		preview:      lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Faint(true),
		handle:       lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		status:       lipgloss.NewStyle().Reverse(true),
		errorText:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		successText:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		help:         lipgloss.NewStyle().Padding(1, 2),
	}
}
