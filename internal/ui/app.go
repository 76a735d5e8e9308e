package ui

import (
	"fmt"
	"io"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/interaction"
	"SketchBoard/internal/session"
)

// Options configure the app window.
type Options struct {
	Title     string
	ShareLink string
	Tool      interaction.Tool
	// Save persists the canvas. Nil hides the save button.
	Save func() error
	// Export writes the canvas as a PDF. Nil hides the export button.
	Export func(w io.Writer) error
}

// RunApp shows board in a window and blocks until the window closes.
func RunApp(board *BoardWidget, opts Options) {
	myApp := app.NewWithID("io.sketchboard")
	myWindow := myApp.NewWindow(opts.Title)
	myWindow.Resize(fyne.NewSize(1024, 768))
	myWindow.SetContent(newContent(board, myWindow, opts))
	addShortcuts(board, myWindow)
	myWindow.ShowAndRun()
}

func newContent(board *BoardWidget, win fyne.Window, opts Options) fyne.CanvasObject {
	status := widget.NewLabel("Ready")
	setStatus := func(text string) { fyne.Do(func() { status.SetText(text) }) }

	var actions Actions
	if opts.Save != nil {
		actions.Save = func() {
			go func() {
				if err := opts.Save(); err != nil {
					log.Printf("[UI] save failed: %v", err)
					setStatus("Save failed")
					return
				}
				setStatus("Saved")
			}()
		}
	}
	if opts.Export != nil {
		actions.Export = func() {
			d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if wc == nil {
					return
				}
				go func() {
					defer wc.Close()
					if err := opts.Export(wc); err != nil {
						log.Printf("[UI] export failed: %v", err)
						setStatus("Export failed")
						return
					}
					setStatus(fmt.Sprintf("Exported %s", wc.URI().Name()))
				}()
			}, win)
			d.SetFileName("sketch.pdf")
			d.Show()
		}
	}

	bottom := fyne.CanvasObject(status)
	if opts.ShareLink != "" {
		link := widget.NewLabel("Share: " + opts.ShareLink)
		link.Selectable = true
		copyBtn := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			win.Clipboard().SetContent(opts.ShareLink)
			status.SetText("Link copied")
		})
		bottom = container.NewBorder(nil, nil, nil, container.NewHBox(link, copyBtn), status)
	}

	toolbar := NewToolbar(board, opts.Tool, actions)
	return container.NewBorder(toolbar, bottom, nil, nil, board)
}

func addShortcuts(board *BoardWidget, win fyne.Window) {
	undo := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redo := &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
	redoShift := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}

	win.Canvas().AddShortcut(undo, func(fyne.Shortcut) { board.post(session.Undo{}) })
	win.Canvas().AddShortcut(redo, func(fyne.Shortcut) { board.post(session.Redo{}) })
	win.Canvas().AddShortcut(redoShift, func(fyne.Shortcut) { board.post(session.Redo{}) })
}
