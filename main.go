// Package main provides the entry point for the Spline Annotator client.
package main

import (
	"log"
	"time"

	"fyne.io/fyne/v2/app"

	"spline-annotator/internal/config"
	"spline-annotator/internal/session"
	"spline-annotator/internal/version"
	"spline-annotator/internal/viewport"
	uicanvas "spline-annotator/ui/canvas"
	"spline-annotator/ui/mainwindow"
	"spline-annotator/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Spline Annotator v%s", version.Version)

	cfg := config.Load()
	appPrefs := prefs.Load()

	fyneApp := app.New()

	cam := viewport.NewCamera()
	cv := uicanvas.New(cam)
	client := session.New(cfg.ServiceURL, time.Duration(cfg.HTTPTimeout)*time.Second, cv)

	win := mainwindow.New(fyneApp, cam, cv, client, appPrefs)
	win.ShowAndRun()
}
