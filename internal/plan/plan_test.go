package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/shapes2video/internal/shape"
)

func TestGenerateRegular(t *testing.T) {
	p, err := Generate(Options{Seed: 42, Relation: "subset"})
	require.NoError(t, err)

	// polygons and ellipse: 9 motions, circle: 7; times 8 fg x 5 bg x 2 speeds
	assert.Len(t, p.Content, (4*9+7+9)*8*5*2)
	assert.Equal(t, "regular", p.Mode)

	ids := p.IDs()
	assert.Equal(t, StartID, ids[0])
	assert.Equal(t, StartID+len(ids)-1, ids[len(ids)-1])

	require.NoError(t, p.Validate())
	for _, id := range ids {
		r := p.Content[id]
		assert.GreaterOrEqual(t, r.Duration, 2.0)
		assert.Less(t, r.Duration, 5.0)
		assert.NotEmpty(t, r.Accent)
		assert.NotEmpty(t, r.Points)
		if r.Shape == "circle" {
			assert.NotEqual(t, "rotate", r.Action, "id %d", id)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(Options{Seed: 7, Limit: 50})
	require.NoError(t, err)
	b, err := Generate(Options{Seed: 7, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.Content, 50)
}

func TestGenerateLegacy(t *testing.T) {
	p, err := Generate(Options{Seed: 1, Mode: shape.ModeLegacy})
	require.NoError(t, err)
	assert.Len(t, p.Content, (6+6)*8*5*2)

	st, err := p.Settings()
	require.NoError(t, err)
	assert.True(t, st.Single)
	assert.Equal(t, shape.ModeLegacy, st.Mode)

	for _, id := range p.IDs() {
		r := p.Content[id]
		assert.Empty(t, r.Accent)
		s, err := r.Parse(id, st.Mode)
		require.NoError(t, err)
		switch s.Kind {
		case shape.Triangle:
			assert.IsType(t, shape.TriangleGeom{}, s.Geometry)
		case shape.Circle:
			assert.IsType(t, shape.CircleGeom{}, s.Geometry)
		default:
			t.Fatalf("unexpected legacy shape %s", s.Kind)
		}
	}
}

func TestGenerateDeferredAndBadRelation(t *testing.T) {
	p, err := Generate(Options{Seed: 3, Deferred: true, Limit: 10})
	require.NoError(t, err)
	for _, r := range p.Content {
		assert.Empty(t, r.Points)
	}

	_, err = Generate(Options{Relation: "partial"})
	assert.ErrorIs(t, err, shape.ErrConfig)
}

func TestRecordParseErrors(t *testing.T) {
	good := Record{Shape: "square", FGColor: "red", BGColor: "white", Action: "shift", Speed: "slow", Dir: "right", Duration: 3}
	_, err := good.Parse(1, shape.ModeRegular)
	require.NoError(t, err)

	cases := map[string]func(r *Record){
		"shape":  func(r *Record) { r.Shape = "star" },
		"fg":     func(r *Record) { r.FGColor = "white" },
		"bg":     func(r *Record) { r.BGColor = "red" },
		"action": func(r *Record) { r.Action = "spin" },
		"dir":    func(r *Record) { r.Dir = "sideways" },
		"speed":  func(r *Record) { r.Speed = "medium" },
		"accent": func(r *Record) { r.Accent = "fr" },
		"points": func(r *Record) { r.Points = []float64{0.5} },
	}
	for name, mutate := range cases {
		r := good
		mutate(&r)
		_, err := r.Parse(1, shape.ModeRegular)
		assert.ErrorIs(t, err, shape.ErrConfig, name)
	}
}

func TestPlanWriteRead(t *testing.T) {
	p, err := Generate(Options{Seed: 42, Relation: "same", Limit: 20})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"plan.json", "plan.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Write(p, path); err != nil {
			t.Fatalf("Write %s failed: %v", name, err)
		}

		got, err := Read(path)
		if err != nil {
			t.Fatalf("Read %s failed: %v", name, err)
		}
		if got.Relation != p.Relation || got.Seed != p.Seed {
			t.Errorf("%s: header mismatch: %+v", name, got)
		}
		if len(got.Content) != len(p.Content) {
			t.Errorf("%s: expected %d records, got %d", name, len(p.Content), len(got.Content))
		}
		for id, r := range p.Content {
			if got.Content[id].Shape != r.Shape || len(got.Content[id].Points) != len(r.Points) {
				t.Errorf("%s: record %d mismatch", name, id)
			}
		}
	}

	if err := Write(p, filepath.Join(t.TempDir(), "plan.toml")); err == nil {
		t.Error("expected an error for an unknown extension")
	}
}

func TestReadBrokenPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := Read(path)
	assert.ErrorIs(t, err, shape.ErrConfig)
}

func TestGeneratePlanPath(t *testing.T) {
	path := GeneratePlanPath("data/plans")
	if !strings.HasPrefix(path, filepath.Join("data", "plans", "plan_")) || !strings.HasSuffix(path, ".json") {
		t.Errorf("unexpected plan path %s", path)
	}
}

func TestFindLatestPlan(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "plan_2026-02-12_10-00-00.json"),
		filepath.Join(dir, "plan_2026-02-13_01-00-00.yaml"),
		filepath.Join(dir, "plan_2026-02-11_15-30-00.json"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}

	latest, err := FindLatestPlan(dir)
	if err != nil {
		t.Fatalf("FindLatestPlan failed: %v", err)
	}
	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}
}
