package main

// recordAction pushes a change onto the undo stack and clears the redo stack.
func (b *Buffer) recordAction(actionType ActionType, before, after Document) {
	b.undoStack = append(b.undoStack, Action{Type: actionType, Data: after.Clone(), Inverse: before.Clone()})
	b.redoStack = b.redoStack[:0]
}

// undo restores the document as it was before the last action.
func (b *Buffer) undo() (ActionType, bool) {
	if len(b.undoStack) == 0 {
		return 0, false
	}
	last := len(b.undoStack) - 1
	action := b.undoStack[last]
	b.undoStack = b.undoStack[:last]

	b.restore(action.Inverse)
	b.redoStack = append(b.redoStack, action)
	return action.Type, true
}

func (b *Buffer) redo() (ActionType, bool) {
	if len(b.redoStack) == 0 {
		return 0, false
	}
	last := len(b.redoStack) - 1
	action := b.redoStack[last]
	b.redoStack = b.redoStack[:last]

	b.restore(action.Data)
	b.undoStack = append(b.undoStack, action)
	return action.Type, true
}

func (b *Buffer) restore(doc Document) {
	b.drag = nil
	b.canvas.Restore(doc)
	b.ctrl.Cancel()
	b.sync()
}
