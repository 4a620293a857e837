// Command seed loads the course catalog from a YAML file into the configured
// store. Existing courses with the same slug are replaced.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angleinstitute/backend/internal/config"
	"github.com/angleinstitute/backend/internal/logging"
	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/service"
)

type catalog struct {
	Courses []model.Course `yaml:"courses"`
}

var levels = map[string]bool{
	model.LevelBeginner:     true,
	model.LevelIntermediate: true,
	model.LevelAdvanced:     true,
}

// parseCatalog decodes and checks a catalog payload.
func parseCatalog(data []byte) ([]model.Course, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("seed: catalog is empty")
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("seed: decode catalog: %w", err)
	}
	for i, course := range c.Courses {
		if strings.TrimSpace(course.Title) == "" {
			return nil, fmt.Errorf("seed: course %d has no title", i+1)
		}
		if !levels[course.Level] {
			return nil, fmt.Errorf("seed: course %q has invalid level %q", course.Title, course.Level)
		}
		if course.Price < 0 {
			return nil, fmt.Errorf("seed: course %q has negative price", course.Title)
		}
	}
	return c.Courses, nil
}

func seed(ctx context.Context, courses service.CourseService, list []model.Course) error {
	for i := range list {
		c := list[i]
		if err := courses.Upsert(ctx, &c); err != nil {
			return fmt.Errorf("upsert %q: %w", c.Title, err)
		}
		slog.Info("course seeded", "slug", c.Slug)
	}
	return nil
}

func main() {
	file := flag.String("file", "data/courses.yaml", "course catalog YAML")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	flush := logging.Setup(logging.Options{Level: cfg.LogLevel, RollbarToken: cfg.RollbarToken, Environment: cfg.AppEnv})
	defer flush()

	data, err := os.ReadFile(*file)
	if err != nil {
		logging.Fatal("read catalog failed", "file", *file, "error", err)
	}
	list, err := parseCatalog(data)
	if err != nil {
		logging.Fatal("invalid catalog", "file", *file, "error", err)
	}

	ctx := context.Background()
	stores, err := repository.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer stores.Close(ctx)

	if err := seed(ctx, service.NewCourseService(stores.Courses), list); err != nil {
		logging.Fatal("seed failed", "error", err)
	}
	slog.Info("catalog seeded", "count", len(list), "backend", stores.Backend)
}
