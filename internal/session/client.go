// Package session implements the synchronization core: it turns user intents
// into annotation-service mutations and feeds the authoritative snapshot back
// to the renderer.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"spline-annotator/internal/imaging"
	"spline-annotator/internal/scene"
	"spline-annotator/pkg/geometry"
)

// ErrNoImage is returned by FetchImage when the service has no uploaded image
// yet (HTTP 204).
var ErrNoImage = errors.New("no image uploaded")

// Params are the user-supplied calibration constants. They are pushed to the
// service verbatim before an ROI request and never interpreted locally.
type Params struct {
	PixelMicrons float64 `json:"pixel_um"`
	DepthMicrons float64 `json:"depth_um"`
}

// Renderer receives each freshly fetched snapshot. The canvas widget
// implements it; the client knows nothing about cameras or pixels.
type Renderer interface {
	RenderSnapshot(scene.Snapshot)
}

// Client talks to the annotation service. Every mutating operation awaits the
// mutation response before fetching the snapshot, so the renderer is only
// ever shown post-mutation authoritative state. Rapid successive operations
// are not serialized against each other; the service's last-write-wins
// behavior governs that case.
type Client struct {
	baseURL  string
	http     *http.Client
	renderer Renderer
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration, renderer Renderer) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		renderer: renderer,
	}
}

// Refresh fetches the current snapshot and hands it to the renderer.
func (c *Client) Refresh(ctx context.Context) error {
	var snap scene.Snapshot
	if err := c.getJSON(ctx, "/get_data", &snap); err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	c.renderer.RenderSnapshot(snap)
	return nil
}

// AddPoint registers a new marker at a logical image coordinate, then
// refreshes. On transport failure nothing is rendered; the previous scene
// stays on screen.
func (c *Client) AddPoint(ctx context.Context, p geometry.Point2D) error {
	if err := c.postJSON(ctx, "/click", p); err != nil {
		return fmt.Errorf("add point: %w", err)
	}
	return c.Refresh(ctx)
}

// RemovePoint asks the service to delete whatever points match the logical
// coordinate. Matching (nearest-within-tolerance) is the service's job; no
// pre-filtering happens here.
func (c *Client) RemovePoint(ctx context.Context, p geometry.Point2D) error {
	if err := c.postJSON(ctx, "/remove_point", p); err != nil {
		return fmt.Errorf("remove point: %w", err)
	}
	return c.Refresh(ctx)
}

// CreateROI pushes the calibration parameters and then requests ROI
// computation. The two calls are strictly sequential, and a failed parameter
// push aborts the operation so the ROI is never computed against stale
// calibration.
func (c *Client) CreateROI(ctx context.Context, params Params) error {
	if err := c.postJSON(ctx, "/update_params", params); err != nil {
		return fmt.Errorf("push params: %w", err)
	}
	if err := c.postJSON(ctx, "/create_roi", nil); err != nil {
		return fmt.Errorf("create roi: %w", err)
	}
	return c.Refresh(ctx)
}

// ResetROI clears the spline/ROI state remotely, then refreshes.
func (c *Client) ResetROI(ctx context.Context) error {
	if err := c.postJSON(ctx, "/reset_roi", nil); err != nil {
		return fmt.Errorf("reset roi: %w", err)
	}
	return c.Refresh(ctx)
}

// UploadImage sends raw image bytes as multipart form data. The service
// re-encodes the image and clears all annotation state as a side effect.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload: unexpected status %s", resp.Status)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// FetchImage retrieves the service's re-encoded copy of the current image.
func (c *Client) FetchImage(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get_image", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, ErrNoImage
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %s", resp.Status)
	}

	var payload struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	if payload.Image == "" {
		return nil, ErrNoImage
	}
	return imaging.DecodeBase64(payload.Image)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
