package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	_ "golang.org/x/image/tiff"

	"spline-annotator/pkg/geometry"
)

// Handler exposes the annotation session over HTTP.
type Handler struct {
	store *Store
}

// NewHandler creates a handler around the given session store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Register mounts all annotation routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/get_data", h.GetData)
	app.Post("/click", h.Click)
	app.Post("/remove_point", h.RemovePoint)
	app.Post("/update_params", h.UpdateParams)
	app.Post("/create_roi", h.CreateROI)
	app.Post("/reset_roi", h.ResetROI)
	app.Post("/upload", h.Upload)
	app.Get("/get_image", h.GetImage)
}

// pointRequest uses pointers so a missing coordinate is distinguishable from
// an explicit zero.
type pointRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type paramsRequest struct {
	PixelMicrons *float64 `json:"pixel_um"`
	DepthMicrons *float64 `json:"depth_um"`
}

// GetData returns the complete authoritative snapshot.
func (h *Handler) GetData(c fiber.Ctx) error {
	return c.JSON(h.store.Snapshot())
}

// Click adds a point at the posted logical coordinate.
func (h *Handler) Click(c fiber.Ctx) error {
	var req pointRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.X == nil || req.Y == nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid data"})
	}
	h.store.AddPoint(geometry.NewPoint2D(*req.X, *req.Y))
	return c.JSON(fiber.Map{"message": "Point added"})
}

// RemovePoint deletes every point within tolerance of the posted coordinate.
// The client sends raw coordinates; matching happens only here.
func (h *Handler) RemovePoint(c fiber.Ctx) error {
	var req pointRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.X == nil || req.Y == nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid data"})
	}
	removed := h.store.RemoveNear(geometry.NewPoint2D(*req.X, *req.Y))
	log.Printf("remove_point (%.1f, %.1f): %d removed", *req.X, *req.Y, removed)
	return c.JSON(fiber.Map{"message": "Point removed"})
}

// UpdateParams stores new calibration constants.
func (h *Handler) UpdateParams(c fiber.Ctx) error {
	var req paramsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.PixelMicrons == nil || req.DepthMicrons == nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid data"})
	}
	h.store.SetParams(Params{PixelMicrons: *req.PixelMicrons, DepthMicrons: *req.DepthMicrons})
	return c.JSON(fiber.Map{"message": "Parameters updated"})
}

// CreateROI computes and stores the region boundary.
func (h *Handler) CreateROI(c fiber.Ctx) error {
	if err := h.store.CreateROI(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "ROI created"})
}

// ResetROI clears the region boundary.
func (h *Handler) ResetROI(c fiber.Ctx) error {
	h.store.ResetROI()
	return c.JSON(fiber.Map{"message": "ROI Reset"})
}

// Upload accepts a multipart image, re-encodes it as PNG, and installs it.
// Accepting a new image clears all previous annotation state.
func (h *Handler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "No image part"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open upload"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read upload"})
	}

	encoded, err := reencodePNG(data)
	if err != nil {
		log.Printf("upload %s: %v", fileHeader.Filename, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h.store.SetImage(encoded)
	log.Printf("upload %s: %d bytes accepted", fileHeader.Filename, fileHeader.Size)
	return c.JSON(fiber.Map{"message": "Image uploaded"})
}

// GetImage returns the current image as base64 PNG, or 204 when none exists.
func (h *Handler) GetImage(c fiber.Ctx) error {
	encoded, ok := h.store.Image()
	if !ok {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.JSON(fiber.Map{"image": encoded})
}

// reencodePNG decodes any supported format, flattens it to RGBA, and returns
// the result as base64-encoded PNG.
func reencodePNG(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
