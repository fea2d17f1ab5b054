package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"vecdraw/pkg/colorutil"
)

// EditorTheme is the fyne theme of the editor window. It uses the shape
// palette for its accents.
type EditorTheme struct{}

var _ fyne.Theme = (*EditorTheme)(nil)

func (t *EditorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.Blue.NRGBA(0xFF)
	case theme.ColorNameSelection:
		return colorutil.Gold.NRGBA(0x80)
	case theme.ColorNameFocus:
		return colorutil.LightBlue.NRGBA(0x80)
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *EditorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *EditorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *EditorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	default:
		return theme.DefaultTheme().Size(name)
	}
}
