package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/interaction"
	"SketchBoard/internal/session"
)

var toolLabels = []struct {
	label string
	tool  interaction.Tool
}{
	{"Line", interaction.ToolLine},
	{"Rectangle", interaction.ToolRectangle},
	{"Pencil", interaction.ToolFreedraw},
	{"Selection", interaction.ToolSelect},
}

// Actions are toolbar commands that go beyond the session's own events.
// Nil actions hide their button.
type Actions struct {
	Save   func()
	Export func()
}

// newToolPicker offers one radio choice per tool and posts the choice to
// the board.
func newToolPicker(board *BoardWidget, initial interaction.Tool) *widget.RadioGroup {
	options := make([]string, len(toolLabels))
	for i, tl := range toolLabels {
		options[i] = tl.label
	}
	picker := widget.NewRadioGroup(options, func(label string) {
		for _, tl := range toolLabels {
			if tl.label == label {
				board.post(session.SelectTool{Tool: tl.tool})
				return
			}
		}
	})
	picker.Horizontal = true
	picker.Required = true
	for _, tl := range toolLabels {
		if tl.tool == initial {
			picker.Selected = tl.label
		}
	}
	return picker
}

// NewToolbar builds the row above the board.
func NewToolbar(board *BoardWidget, initial interaction.Tool, actions Actions) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { board.post(session.Undo{}) }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { board.post(session.Redo{}) }),
	)
	if actions.Save != nil || actions.Export != nil {
		tb.Append(widget.NewToolbarSeparator())
	}
	if actions.Save != nil {
		tb.Append(widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.Save))
	}
	if actions.Export != nil {
		tb.Append(widget.NewToolbarAction(theme.DocumentPrintIcon(), actions.Export))
	}

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		newToolPicker(board, initial),
		widget.NewSeparator(),
		tb,
		layout.NewSpacer(),
	)
}
