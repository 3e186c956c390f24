// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"spline-annotator/internal/imaging"
	"spline-annotator/internal/scene"
	"spline-annotator/internal/session"
	"spline-annotator/internal/viewport"
	"spline-annotator/pkg/geometry"
	uicanvas "spline-annotator/ui/canvas"
	"spline-annotator/ui/prefs"
)

// opTimeout bounds every remote round trip started from the UI.
const opTimeout = 30 * time.Second

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	cam    *viewport.Camera
	canvas *uicanvas.AnnotationCanvas
	client *session.Client
	prefs  *prefs.Prefs

	pixelEntry *widget.Entry
	depthEntry *widget.Entry
	statusBar  *widget.Label
}

// New creates the main window and wires the gestures to the session client.
func New(fyneApp fyne.App, cam *viewport.Camera, cv *uicanvas.AnnotationCanvas, client *session.Client, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Spline Annotator")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		cam:    cam,
		canvas: cv,
		client: client,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupGestures()

	// Initial load: whatever state the service already holds.
	go mw.initialSync()

	return mw
}

// setupUI creates the toolbar, calibration inputs, and canvas layout.
func (mw *MainWindow) setupUI() {
	mw.pixelEntry = widget.NewEntry()
	mw.pixelEntry.SetText(strconv.FormatFloat(mw.prefs.Float(prefs.KeyPixelMicrons, 1), 'f', -1, 64))
	mw.depthEntry = widget.NewEntry()
	mw.depthEntry.SetText(strconv.FormatFloat(mw.prefs.Float(prefs.KeyDepthMicrons, 10), 'f', -1, 64))

	mw.statusBar = widget.NewLabel("Ready")

	openBtn := widget.NewButton("Open Image...", mw.onOpenImage)
	createBtn := widget.NewButton("Create ROI", mw.onCreateROI)
	resetROIBtn := widget.NewButton("Reset ROI", mw.onResetROI)
	resetViewBtn := widget.NewButton("Reset View", mw.onResetView)
	zoomOutBtn := widget.NewButton("-", mw.onZoomOut)
	zoomInBtn := widget.NewButton("+", mw.onZoomIn)

	toolbar := container.NewHBox(
		openBtn,
		widget.NewSeparator(),
		widget.NewLabel("pixel/um:"),
		mw.pixelEntry,
		widget.NewLabel("depth [um]:"),
		mw.depthEntry,
		widget.NewSeparator(),
		createBtn,
		resetROIBtn,
		widget.NewSeparator(),
		resetViewBtn,
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
	)

	content := container.NewBorder(
		toolbar,                              // top
		container.NewPadded(mw.statusBar),    // bottom
		nil,                                  // left
		nil,                                  // right
		mw.canvas,                            // center
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1100, 760))
}

// setupGestures wires canvas callbacks and the pan modifier key.
func (mw *MainWindow) setupGestures() {
	mw.canvas.OnAddPoint(func(p geometry.Point2D) {
		go mw.runOp("add point", func(ctx context.Context) error {
			return mw.client.AddPoint(ctx, p)
		})
	})
	mw.canvas.OnRemovePoint(func(p geometry.Point2D) {
		go mw.runOp("remove point", func(ctx context.Context) error {
			return mw.client.RemovePoint(ctx, p)
		})
	})

	// Pan while Space is held and the pointer drags.
	if deskCanvas, ok := mw.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if ev.Name == fyne.KeySpace {
				mw.canvas.SetPanActive(true)
			}
		})
		deskCanvas.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if ev.Name == fyne.KeySpace {
				mw.canvas.SetPanActive(false)
			}
		})
	}
}

// runOp executes one remote operation with a bounded context. Failures only
// reach the log; the previously rendered scene stays on screen.
func (mw *MainWindow) runOp(name string, op func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := op(ctx); err != nil {
		log.Printf("%s: %v", name, err)
	}
}

// initialSync fetches the snapshot and, if the service already holds an
// image, installs it as the base layer.
func (mw *MainWindow) initialSync() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	img, err := mw.client.FetchImage(ctx)
	switch {
	case err == nil:
		w, h := mw.canvas.ViewSize()
		mw.canvas.SetBaseLayer(imaging.Fit(img, w, h))
	case errors.Is(err, session.ErrNoImage):
		// Fresh session; nothing to show yet.
	default:
		log.Printf("initial image fetch: %v", err)
	}

	if err := mw.client.Refresh(ctx); err != nil {
		log.Printf("initial refresh: %v", err)
	}
}

// onOpenImage uploads a picked file and installs the service's re-encoded
// copy as the new base layer.
func (mw *MainWindow) onOpenImage() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		name := reader.URI().Name()
		data, err := io.ReadAll(reader)
		if err != nil {
			log.Printf("read %s: %v", name, err)
			dialog.ShowError(fmt.Errorf("failed to read %s: %w", name, err), mw.Window)
			return
		}

		mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(reader.URI().Path()))
		if err := mw.prefs.Save(); err != nil {
			log.Printf("save prefs: %v", err)
		}

		go mw.uploadFlow(name, data)
	}, mw.Window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}))
	if last := mw.prefs.String(prefs.KeyLastDir, ""); last != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(last)); err == nil {
			fileDialog.SetLocation(uri)
		}
	}
	fileDialog.Show()
}

// uploadFlow is the bootstrap sequence: upload, fetch the re-encoded image,
// fit it to the canvas, reset the view, and render the empty state. The
// service clears points and ROI when it accepts an upload, so no snapshot
// fetch is needed here.
func (mw *MainWindow) uploadFlow(name string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := mw.client.UploadImage(ctx, name, data); err != nil {
		log.Printf("upload %s: %v", name, err)
		dialog.ShowError(fmt.Errorf("image upload failed: %w", err), mw.Window)
		return
	}

	img, err := mw.client.FetchImage(ctx)
	if err != nil {
		log.Printf("fetch image after upload: %v", err)
		dialog.ShowError(fmt.Errorf("failed to fetch uploaded image: %w", err), mw.Window)
		return
	}

	w, h := mw.canvas.ViewSize()
	mw.canvas.SetBaseLayer(imaging.Fit(img, w, h))
	mw.cam.Reset()
	mw.canvas.RenderSnapshot(scene.Snapshot{})
	log.Printf("loaded %s (%dx%d)", name, img.Bounds().Dx(), img.Bounds().Dy())
}

// onCreateROI validates the calibration inputs and runs the two-step ROI
// sequence. A bad input never reaches the wire.
func (mw *MainWindow) onCreateROI() {
	pixelUM, err1 := strconv.ParseFloat(mw.pixelEntry.Text, 64)
	depthUM, err2 := strconv.ParseFloat(mw.depthEntry.Text, 64)
	if err1 != nil || err2 != nil {
		mw.statusBar.SetText("Invalid input for pixel/um or depth [um]")
		return
	}
	mw.statusBar.SetText("Ready")

	mw.prefs.SetFloat(prefs.KeyPixelMicrons, pixelUM)
	mw.prefs.SetFloat(prefs.KeyDepthMicrons, depthUM)
	if err := mw.prefs.Save(); err != nil {
		log.Printf("save prefs: %v", err)
	}

	params := session.Params{PixelMicrons: pixelUM, DepthMicrons: depthUM}
	go mw.runOp("create roi", func(ctx context.Context) error {
		return mw.client.CreateROI(ctx, params)
	})
}

func (mw *MainWindow) onResetROI() {
	go mw.runOp("reset roi", func(ctx context.Context) error {
		return mw.client.ResetROI(ctx)
	})
}

// onResetView restores zoom 1 and centered pan in one step.
func (mw *MainWindow) onResetView() {
	mw.cam.Reset()
	mw.canvas.Refresh()
}

func (mw *MainWindow) onZoomIn() {
	mw.cam.ZoomIn()
	mw.canvas.Refresh()
}

func (mw *MainWindow) onZoomOut() {
	mw.cam.ZoomOut()
	mw.canvas.Refresh()
}
