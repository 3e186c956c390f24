package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"spline-annotator/internal/scene"
)

func newTestApp() (*fiber.App, *Store) {
	store := NewStore()
	app := fiber.New()
	NewHandler(store).Register(app)
	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func getSnapshot(t *testing.T, app *fiber.App) scene.Snapshot {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/get_data", nil))
	if err != nil {
		t.Fatalf("GET /get_data: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /get_data status = %d", resp.StatusCode)
	}
	var snap scene.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestClickThenGetData(t *testing.T) {
	app, _ := newTestApp()

	resp := postJSON(t, app, "/click", `{"x": 25, "y": 50}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("click status = %d", resp.StatusCode)
	}

	snap := getSnapshot(t, app)
	if len(snap.Points) != 1 || snap.Points[0].X != 25 || snap.Points[0].Y != 50 {
		t.Fatalf("points = %+v", snap.Points)
	}
	if len(snap.Spline) != 0 {
		t.Fatalf("one point must not produce a spline, got %d samples", len(snap.Spline))
	}
}

func TestClickRejectsInvalidBody(t *testing.T) {
	app, _ := newTestApp()
	for _, body := range []string{``, `{}`, `{"x": 1}`, `not json`} {
		resp := postJSON(t, app, "/click", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestRemovePointEndpoint(t *testing.T) {
	app, _ := newTestApp()
	postJSON(t, app, "/click", `{"x": 100, "y": 100}`)
	postJSON(t, app, "/remove_point", `{"x": 104, "y": 97}`)

	if snap := getSnapshot(t, app); len(snap.Points) != 0 {
		t.Fatalf("points = %+v, want none", snap.Points)
	}
}

func TestCreateROIFlow(t *testing.T) {
	app, _ := newTestApp()
	postJSON(t, app, "/click", `{"x": 0, "y": 0}`)
	postJSON(t, app, "/click", `{"x": 10, "y": 0}`)

	if resp := postJSON(t, app, "/update_params", `{"pixel_um": 1, "depth_um": 20}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("update_params status = %d", resp.StatusCode)
	}
	if resp := postJSON(t, app, "/create_roi", ``); resp.StatusCode != http.StatusOK {
		t.Fatalf("create_roi status = %d", resp.StatusCode)
	}

	snap := getSnapshot(t, app)
	if len(snap.ROILines) != 3 {
		t.Fatalf("roi_lines = %+v, want 3 segments", snap.ROILines)
	}

	if resp := postJSON(t, app, "/reset_roi", ``); resp.StatusCode != http.StatusOK {
		t.Fatalf("reset_roi status = %d", resp.StatusCode)
	}
	if snap := getSnapshot(t, app); len(snap.ROILines) != 0 {
		t.Fatalf("roi_lines after reset = %+v", snap.ROILines)
	}
}

func TestCreateROIWithTooFewPoints(t *testing.T) {
	app, _ := newTestApp()
	postJSON(t, app, "/click", `{"x": 5, "y": 5}`)
	if resp := postJSON(t, app, "/create_roi", ``); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("create_roi status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateParamsRejectsPartialBody(t *testing.T) {
	app, _ := newTestApp()
	if resp := postJSON(t, app, "/update_params", `{"pixel_um": 1}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadReencodesAndClearsState(t *testing.T) {
	app, _ := newTestApp()
	postJSON(t, app, "/click", `{"x": 1, "y": 1}`)

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "tiny.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(pngBuf.Bytes())
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}

	// Accepting an image clears the prior annotation state.
	if snap := getSnapshot(t, app); len(snap.Points) != 0 {
		t.Fatalf("points survived upload: %+v", snap.Points)
	}

	imgResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/get_image", nil))
	if err != nil {
		t.Fatalf("get_image: %v", err)
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode != http.StatusOK {
		t.Fatalf("get_image status = %d", imgResp.StatusCode)
	}
	var payload struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(imgResp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode get_image: %v", err)
	}
	if payload.Image == "" {
		t.Fatal("get_image returned empty payload")
	}
}

func TestUploadRejectsMissingPartAndGarbage(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("plain"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing part status = %d, want 400", resp.StatusCode)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", "junk.png")
	part.Write([]byte("this is not an image"))
	writer.Close()

	req = httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("garbage upload status = %d, want 500", resp.StatusCode)
	}
}

func TestGetImageNoContent(t *testing.T) {
	app, _ := newTestApp()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/get_image", nil))
	if err != nil {
		t.Fatalf("get_image: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
}
