package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// AudioPath and VideoPath are the deterministic artefact locations of a sample.
func AudioPath(dataDir string, id int) string {
	return filepath.Join(dataDir, "audio", strconv.Itoa(id)+".mp3")
}

func VideoPath(dataDir string, id int) string {
	return filepath.Join(dataDir, "video", strconv.Itoa(id)+".mp4")
}

// FailedIDs lists plan ids whose audio file is missing, ascending.
func FailedIDs(p *Plan, dataDir string) ([]int, error) {
	var failed []int
	for _, id := range p.IDs() {
		_, err := os.Stat(AudioPath(dataDir, id))
		switch {
		case errors.Is(err, os.ErrNotExist):
			failed = append(failed, id)
		case err != nil:
			return nil, err
		}
	}
	return failed, nil
}

// Split shuffles ids with seed and cuts off the last testRatio share,
// rounded up, as the test set. The input order does not matter.
func Split(ids []int, seed int64, testRatio float64) (train, test []int, err error) {
	if testRatio < 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio %v outside [0, 1)", testRatio)
	}
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })

	nTest := int(math.Ceil(float64(len(sorted))*testRatio - 1e-9))
	cut := len(sorted) - nTest
	return sorted[:cut], sorted[cut:], nil
}

// WriteJSON stores v indented; used for failed_ids.json and split.json.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
