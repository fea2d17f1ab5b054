// Package dialogs provides the input dialogs used by the editor actions.
// Each prompt calls back only when the user confirms; cancelling leaves the
// originating action undone.
package dialogs

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"vecdraw/pkg/colorutil"
	"vecdraw/ui/prefs"
)

// DrawingExt is the file extension of saved drawings.
const DrawingExt = ".json"

// Prompter shows modal input dialogs over a window.
type Prompter struct {
	window fyne.Window
	prefs  *prefs.Prefs
}

// NewPrompter creates a prompter for window. p remembers the last
// directory used by the file dialogs and may be nil.
func NewPrompter(window fyne.Window, p *prefs.Prefs) *Prompter {
	return &Prompter{window: window, prefs: p}
}

// PickColor asks for a color, starting from initial.
func (p *Prompter) PickColor(title string, initial colorutil.RGB, onPick func(colorutil.RGB)) {
	picker := dialog.NewColorPicker(title, "Fill color for the selection", func(c color.Color) {
		onPick(colorutil.FromColor(c))
	}, p.window)
	picker.Advanced = true
	picker.SetColor(initial.NRGBA(0xFF))
	picker.Show()
}

// PickNumber asks for a number in [min, max], prefilled with def.
func (p *Prompter) PickNumber(title, label string, min, max, def float64, onPick func(float64)) {
	entry := widget.NewEntry()
	entry.SetText(strconv.FormatFloat(def, 'g', -1, 64))
	entry.Validator = func(s string) error {
		_, err := ParseNumber(s, min, max)
		return err
	}
	items := []*widget.FormItem{
		widget.NewFormItem(label, entry),
	}
	dialog.ShowForm(title, "OK", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		v, err := ParseNumber(entry.Text, min, max)
		if err != nil {
			dialog.ShowError(err, p.window)
			return
		}
		onPick(v)
	}, p.window)
}

// ParseNumber parses s as a number within [min, max].
func ParseNumber(s string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%v is outside %v to %v", v, min, max)
	}
	return v, nil
}

// PickName asks for a non-empty name, prefilled with def.
func (p *Prompter) PickName(title, def string, onPick func(string)) {
	entry := widget.NewEntry()
	entry.SetText(def)
	entry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("name is required")
		}
		return nil
	}
	dialog.ShowForm(title, "OK", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Name", entry),
	}, func(ok bool) {
		if ok {
			onPick(strings.TrimSpace(entry.Text))
		}
	}, p.window)
}

// PickChoice asks the user to choose one of options.
func (p *Prompter) PickChoice(title, label string, options []string, onPick func(string)) {
	if len(options) == 0 {
		dialog.ShowInformation(title, "Nothing to choose from.", p.window)
		return
	}
	sel := widget.NewSelect(options, nil)
	sel.SetSelectedIndex(0)
	dialog.ShowForm(title, "OK", "Cancel", []*widget.FormItem{
		widget.NewFormItem(label, sel),
	}, func(ok bool) {
		if ok && sel.Selected != "" {
			onPick(sel.Selected)
		}
	}, p.window)
}

// PickOpenPath asks for an existing file with one of exts.
func (p *Prompter) PickOpenPath(exts []string, onPick func(string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.window)
			return
		}
		if reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		p.saveLastDir(path)
		onPick(path)
	}, p.window)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if loc := p.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// PickSavePath asks for a destination file. ext is appended when the chosen
// name lacks it.
func (p *Prompter) PickSavePath(name, ext string, onPick func(string)) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.window)
			return
		}
		if writer == nil {
			return
		}
		writer.Close()
		path := WithExt(writer.URI().Path(), ext)
		p.saveLastDir(path)
		onPick(path)
	}, p.window)
	fd.SetFileName(WithExt(name, ext))
	if loc := p.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// WithExt returns path with ext appended unless it already ends in ext.
func WithExt(path, ext string) string {
	if ext == "" || strings.EqualFold(filepath.Ext(path), ext) {
		return path
	}
	return path + ext
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(title, message string, onYes func()) {
	dialog.ShowConfirm(title, message, func(ok bool) {
		if ok {
			onYes()
		}
	}, p.window)
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (p *Prompter) lastDir() fyne.ListableURI {
	if p.prefs == nil {
		return nil
	}
	path := p.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (p *Prompter) saveLastDir(path string) {
	if p.prefs != nil {
		p.prefs.SetString(prefs.KeyLastDir, filepath.Dir(path))
	}
}
