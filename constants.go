package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeMove
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveSVG
	FileOpOpen
)

type ConfirmAction int

const (
	ConfirmDeleteNode ConfirmAction = iota
	ConfirmQuit
	ConfirmCloseBuffer
	ConfirmOverwriteFile
)

type ActionType int

const (
	ActionAddNode ActionType = iota
	ActionDeleteNode
	ActionMoveNode
	ActionEditEdges
	ActionStyleEdge
	ActionArrange
)

func (a ActionType) String() string {
	switch a {
	case ActionAddNode:
		return "add node"
	case ActionDeleteNode:
		return "delete node"
	case ActionMoveNode:
		return "move node"
	case ActionEditEdges:
		return "edit edges"
	case ActionStyleEdge:
		return "restyle edge"
	case ActionArrange:
		return "arrange"
	}
	return "unknown"
}

// A terminal cell covers cellWidth x cellHeight canvas pixels at zoom 1.
const (
	cellWidth  = 8
	cellHeight = 16
)

const (
	defaultNodeWidth  = 20 * cellWidth
	defaultNodeHeight = 4 * cellHeight
	minZoom           = 0.25
	maxZoom           = 4.0
	zoomStep          = 1.25
)
