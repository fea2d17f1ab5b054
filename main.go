// Package main provides the entry point for the Vector Draw application.
package main

import (
	"context"
	"fmt"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"vecdraw/internal/app"
	"vecdraw/internal/config"
	"vecdraw/internal/library"
	"vecdraw/internal/logging"
	"vecdraw/internal/version"
	"vecdraw/ui/mainwindow"
	"vecdraw/ui/prefs"
)

const appID = "io.github.vecdraw"

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "vecdraw: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "vecdraw: %v\n", err)
		os.Exit(1)
	}
	log := logging.Logger()
	log.Info("starting", "version", version.String(), "config", config.Path())

	state := app.NewState(cfg)
	openLibrary(state, cfg.LibraryPath)

	appPrefs := prefs.Load()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.EditorTheme{})

	win := mainwindow.New(fyneApp, state, appPrefs)
	win.SetMaster()

	if len(os.Args) > 1 {
		path := os.Args[1]
		if _, err := state.LoadDrawing(path); err != nil {
			log.Error("failed to open drawing", "path", path, "err", err)
		}
	}

	win.ShowAndRun()

	if err := appPrefs.Save(); err != nil {
		log.Warn("saving preferences", "err", err)
	}
	if err := state.Close(); err != nil {
		log.Warn("shutdown", "err", err)
	}
}

// openLibrary attaches the snapshot library. The editor runs without one
// if the database cannot be opened.
func openLibrary(state *app.State, path string) {
	lib, err := library.Open(path)
	if err != nil {
		logging.Logger().Warn("drawing library unavailable", "path", path, "err", err)
		return
	}
	if err := lib.Init(context.Background()); err != nil {
		logging.Logger().Warn("drawing library unavailable", "path", path, "err", err)
		lib.Close()
		return
	}
	state.AttachLibrary(lib)
}
