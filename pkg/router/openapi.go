package router

import (
	"os"
	"path/filepath"

	"mindmate-chat/backend/pkg/validator"
)

// AddOpenAPIValidation installs request validation against the schema at the
// given path. A missing or broken schema disables validation rather than
// blocking startup.
func (r *Router) AddOpenAPIValidation(schemaPath string) {
	if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
		r.Logger.Warn("OpenAPI schema file not found, skipping validation", "path", schemaPath)
		return
	}

	v, err := validator.NewOpenAPIValidator(schemaPath)
	if err != nil {
		r.Logger.Error("Failed to initialize OpenAPI validator", "error", err)
		return
	}

	r.Engine.Use(v.Middleware())
	r.Logger.Info("OpenAPI validation enabled", "schema", schemaPath)

	// Serve the schema so clients can fetch it
	r.Engine.Static("/api/docs", filepath.Dir(schemaPath))
}
