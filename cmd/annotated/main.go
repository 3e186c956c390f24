// Command annotated runs the annotation service: the authoritative holder of
// the point/spline/ROI session state consumed by the desktop client.
package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"spline-annotator/internal/config"
	"spline-annotator/internal/server"
	"spline-annotator/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Annotation Service " + version.Version,
		// Uploaded scans can be large.
		BodyLimit: 64 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	store := server.NewStore()
	server.NewHandler(store).Register(app)

	log.Printf("annotation service v%s listening on :%s", version.Version, cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
