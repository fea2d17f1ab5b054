// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"vecdraw/internal/app"
	"vecdraw/internal/codec"
	"vecdraw/internal/logging"
	"vecdraw/internal/shape"
	"vecdraw/internal/version"
	"vecdraw/pkg/colorutil"
	"vecdraw/ui/canvas"
	"vecdraw/ui/dialogs"
	"vecdraw/ui/prefs"
)

const appTitle = "Vector Draw"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.DrawingCanvas
	prompt    *dialogs.Prompter
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		prompt: dialogs.NewPrompter(win, p),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.updateTitle()

	win.Resize(fyne.NewSize(
		float32(p.Float(prefs.KeyWindowWidth, 1000)),
		float32(p.Float(prefs.KeyWindowHeight, 720)),
	))
	win.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	cfg := mw.state.Config
	mw.canvas = canvas.NewDrawingCanvas(mw.state.Layer, mw.state.Registry, cfg.CanvasWidth, cfg.CanvasHeight)
	mw.canvas.OnMoved(func() { mw.state.SetModified(true) })
	mw.canvas.OnSelect(func(n int) { mw.updateStatus(fmt.Sprintf("%d selected", n)) })

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
	mw.canvas.SetZoom(mw.prefs.Float(prefs.KeyZoom, 1.0))

	content := container.NewBorder(
		mw.createToolbar(),
		container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar),
		nil,
		nil,
		mw.canvas,
	)
	mw.SetContent(content)

	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onClearSelected()
		case fyne.KeyEscape:
			mw.state.Layer.ClearSelection()
			mw.updateStatus("0 selected")
		}
	})
}

// createToolbar creates the row of editing buttons.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	step := mw.state.Config.RotateStep
	row := container.NewHBox()
	for _, k := range shape.Kinds {
		kind := k
		row.Add(widget.NewButton(kind.String(), func() { mw.state.AddShape(kind) }))
	}
	row.Add(widget.NewSeparator())
	row.Add(widget.NewButton("Group", mw.onGroup))
	row.Add(widget.NewButton("Ungroup", mw.onUngroup))
	row.Add(widget.NewButton("Color", mw.onColor))
	row.Add(widget.NewButton("Rotate Left", func() { mw.onRotate(-step) }))
	row.Add(widget.NewButton("Rotate Right", func() { mw.onRotate(step) }))
	row.Add(widget.NewButton("Scale", mw.onScale))
	row.Add(widget.NewSeparator())
	row.Add(widget.NewButton("Clear All", mw.onClearAll))
	row.Add(widget.NewButton("Clear Selected", mw.onClearSelected))
	row.Add(widget.NewSeparator())
	row.Add(widget.NewButton("Save", mw.onSave))
	row.Add(widget.NewButton("Load", mw.onOpen))
	return container.NewHScroll(row)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Drawing", mw.onNew),
		fyne.NewMenuItem("Open...", mw.onOpen),
		fyne.NewMenuItem("Import...", mw.onImport),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Save As...", mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", mw.onClose),
	)

	libraryMenu := fyne.NewMenu("Library",
		fyne.NewMenuItem("Save Snapshot...", mw.onSaveSnapshot),
		fyne.NewMenuItem("Load Snapshot...", mw.onLoadSnapshot),
		fyne.NewMenuItem("Delete Snapshot...", mw.onDeleteSnapshot),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1.0) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, libraryMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventModified, func(interface{}) {
		mw.updateTitle()
	})

	mw.state.On(app.EventSceneChanged, func(data interface{}) {
		mw.canvas.Refresh()
		if n, ok := data.(int); ok {
			mw.updateStatus(fmt.Sprintf("%d shapes", n))
		}
	})

	mw.state.On(app.EventDrawingLoaded, func(interface{}) {
		mw.updateTitle()
	})

	mw.state.On(app.EventDrawingSaved, func(data interface{}) {
		mw.updateTitle()
		if path, ok := data.(string); ok {
			mw.updateStatus("Saved " + path)
		}
	})

	mw.state.On(app.EventSnapshotSaved, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.updateStatus("Snapshot saved: " + name)
		}
	})

	mw.state.On(app.EventFileChanged, func(data interface{}) {
		path, _ := data.(string)
		mw.prompt.Confirm("Drawing Changed",
			fmt.Sprintf("%s was changed by another program.\nReload it and discard your edits?", path),
			func() { mw.load(path) })
	})
}

func (mw *MainWindow) updateTitle() {
	mw.SetTitle(appTitle + " - " + mw.state.DisplayName())
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) showError(err error) {
	logging.Logger().Error("action failed", "err", err)
	dialog.ShowError(err, mw.Window)
}

// reportSkipped tells the user about records that could not be read.
func (mw *MainWindow) reportSkipped(res codec.Result) {
	if len(res.Skipped) == 0 {
		mw.updateStatus(fmt.Sprintf("%d shapes loaded", len(res.Shapes)))
		return
	}
	kinds := make([]string, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		kinds = append(kinds, s.Type)
	}
	mw.updateStatus(fmt.Sprintf("%d shapes loaded, %d skipped (%s)",
		len(res.Shapes), len(res.Skipped), strings.Join(kinds, ", ")))
}

// confirmDiscard runs next, first asking when there are unsaved edits.
func (mw *MainWindow) confirmDiscard(next func()) {
	if !mw.state.Modified {
		next()
		return
	}
	mw.prompt.Confirm("Unsaved Changes", "Discard the changes to "+mw.state.DisplayName()+"?", next)
}

// Toolbar actions

func (mw *MainWindow) onGroup() {
	if _, ok := mw.state.GroupSelected(); !ok {
		mw.updateStatus("Nothing selected")
	}
}

func (mw *MainWindow) onUngroup() {
	n := mw.state.UngroupSelected()
	mw.updateStatus(fmt.Sprintf("%d shapes ungrouped", n))
}

func (mw *MainWindow) onColor() {
	sel := mw.state.Registry.Selected()
	if len(sel) == 0 {
		mw.updateStatus("Nothing selected")
		return
	}
	mw.prompt.PickColor("Color", sel[0].Shape.Style.Fill, func(c colorutil.RGB) {
		mw.state.RecolorSelected(c)
	})
}

func (mw *MainWindow) onRotate(degrees float64) {
	if mw.state.RotateSelected(degrees) == 0 {
		mw.updateStatus("Nothing selected")
	}
}

func (mw *MainWindow) onScale() {
	if len(mw.state.Registry.Selected()) == 0 {
		mw.updateStatus("Nothing selected")
		return
	}
	cfg := mw.state.Config
	mw.prompt.PickNumber("Scale", "Factor", cfg.ScaleMin, cfg.ScaleMax, cfg.ScaleDefault, func(f float64) {
		if _, err := mw.state.ScaleSelected(f); err != nil {
			mw.showError(err)
		}
	})
}

func (mw *MainWindow) onClearAll() {
	mw.state.ClearAll()
}

func (mw *MainWindow) onClearSelected() {
	mw.state.RemoveSelected()
}

// File actions

func (mw *MainWindow) onNew() {
	mw.confirmDiscard(mw.state.NewDrawing)
}

func (mw *MainWindow) onOpen() {
	mw.confirmDiscard(func() {
		mw.prompt.PickOpenPath([]string{dialogs.DrawingExt}, mw.load)
	})
}

func (mw *MainWindow) load(path string) {
	res, err := mw.state.LoadDrawing(path)
	if err != nil {
		mw.showError(err)
		return
	}
	mw.reportSkipped(res)
}

func (mw *MainWindow) onImport() {
	mw.prompt.PickOpenPath([]string{dialogs.DrawingExt}, func(path string) {
		res, err := mw.state.ImportDrawing(path)
		if err != nil {
			mw.showError(err)
			return
		}
		mw.reportSkipped(res)
	})
}

func (mw *MainWindow) onSave() {
	if mw.state.FilePath == "" {
		mw.onSaveAs()
		return
	}
	if err := mw.state.SaveDrawing(mw.state.FilePath); err != nil {
		mw.showError(err)
	}
}

func (mw *MainWindow) onSaveAs() {
	mw.prompt.PickSavePath("drawing", dialogs.DrawingExt, func(path string) {
		if err := mw.state.SaveDrawing(path); err != nil {
			mw.showError(err)
		}
	})
}

func (mw *MainWindow) onExportPNG() {
	mw.prompt.PickSavePath("drawing", ".png", func(path string) {
		if err := mw.state.ExportPNG(path); err != nil {
			mw.showError(err)
			return
		}
		mw.updateStatus("Exported " + path)
	})
}

// Library actions

func (mw *MainWindow) snapshotNames(onNames func([]string)) {
	snaps, err := mw.state.ListSnapshots(context.Background())
	if err != nil {
		mw.showError(err)
		return
	}
	names := make([]string, 0, len(snaps))
	for _, s := range snaps {
		names = append(names, s.Name)
	}
	onNames(names)
}

func (mw *MainWindow) onSaveSnapshot() {
	def := strings.TrimSuffix(mw.state.DisplayName(), " *")
	mw.prompt.PickName("Save Snapshot", def, func(name string) {
		if err := mw.state.SaveSnapshot(context.Background(), name); err != nil {
			mw.showError(err)
		}
	})
}

func (mw *MainWindow) onLoadSnapshot() {
	mw.snapshotNames(func(names []string) {
		mw.prompt.PickChoice("Load Snapshot", "Snapshot", names, func(name string) {
			mw.confirmDiscard(func() {
				res, err := mw.state.LoadSnapshot(context.Background(), name)
				if err != nil {
					mw.showError(err)
					return
				}
				mw.reportSkipped(res)
			})
		})
	})
}

func (mw *MainWindow) onDeleteSnapshot() {
	mw.snapshotNames(func(names []string) {
		mw.prompt.PickChoice("Delete Snapshot", "Snapshot", names, func(name string) {
			err := mw.state.DeleteSnapshot(context.Background(), name)
			switch {
			case errors.Is(err, app.ErrNoLibrary):
				mw.updateStatus("No drawing library")
			case err != nil:
				mw.showError(err)
			default:
				mw.updateStatus("Snapshot deleted: " + name)
			}
		})
	})
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\nA vector drawing editor with grouped shapes.", appTitle, version.String()),
		mw.Window)
}

// SavePreferences stores the window size and zoom.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	}
	mw.prefs.SetFloat(prefs.KeyZoom, mw.canvas.GetZoom())
}

func (mw *MainWindow) onClose() {
	mw.confirmDiscard(func() {
		mw.SavePreferences()
		mw.Close()
	})
}
