package plan

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/shapes2video/internal/system"
)

// GeneratePlanPath creates a timestamped plan filename in dir.
func GeneratePlanPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("plan_%s.json", timestamp))
}

// FindLatestPlan finds the most recently modified plan file in dir.
func FindLatestPlan(dir string) (string, error) {
	return system.FindLatestFile(dir, ".json", ".yaml", ".yml")
}
