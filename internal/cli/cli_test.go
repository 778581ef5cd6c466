package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestBodyCompCommand(t *testing.T) {
	g := newGoldie(t)

	t.Run("male", func(t *testing.T) {
		out, err := run(t, "bodycomp",
			"--weight", "80", "--height", "180", "--age", "25", "--sex", "male",
			"--chest", "10", "--abdominal", "20", "--thigh", "15", "--tricep", "12",
			"--subscapular", "15", "--suprailiac", "18", "--midaxillary", "10",
		)
		require.NoError(t, err)
		g.Assert(t, "bodycomp_male", []byte(out))
	})

	t.Run("female", func(t *testing.T) {
		out, err := run(t, "bodycomp",
			"--weight", "62.5", "--height", "165", "--age", "30", "--sex", "female",
			"--chest", "15", "--abdominal", "25", "--thigh", "25", "--tricep", "18",
			"--subscapular", "12", "--suprailiac", "15", "--midaxillary", "10",
		)
		require.NoError(t, err)
		g.Assert(t, "bodycomp_female", []byte(out))
	})

	t.Run("json output is unrounded", func(t *testing.T) {
		out, err := run(t, "--format", "json", "bodycomp",
			"--weight", "80", "--height", "180", "--age", "25",
			"--chest", "10", "--abdominal", "20", "--thigh", "15", "--tricep", "12",
			"--subscapular", "15", "--suprailiac", "18", "--midaxillary", "10",
		)
		require.NoError(t, err)

		var got map[string]float64
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.InDelta(t, 100.0, got["skinfoldSum"], 1e-9)
		assert.InDelta(t, 1.0667945, got["bodyDensity"], 1e-7)
		assert.InDelta(t, 14.006892, got["bodyFatPercentage"], 1e-5)
		assert.InDelta(t, 80.0, got["fatMassKg"]+got["leanMassKg"], 1e-9)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := run(t, "bodycomp", "--weight", "80", "--height", "180", "--age", "25", "--chest=-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chest")
	})

	t.Run("missing required flag", func(t *testing.T) {
		_, err := run(t, "bodycomp", "--weight", "80", "--height", "180")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "age")
	})
}

func TestScheduleCommand(t *testing.T) {
	t.Run("yaml text", func(t *testing.T) {
		out, err := run(t, "schedule", "--file", filepath.Join("testdata", "plans.yaml"))
		require.NoError(t, err)
		newGoldie(t).Assert(t, "schedule_text", []byte(out))
	})

	t.Run("json english", func(t *testing.T) {
		out, err := run(t, "--format", "json", "schedule", "--locale", "en", "-f", filepath.Join("testdata", "plans.json"))
		require.NoError(t, err)

		var report ScheduleReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		require.Len(t, report.Week, 7)
		assert.Equal(t, "Monday", report.Week[0].Name)
		assert.Equal(t, "monday push", report.Week[0].Title)
		assert.Equal(t, "Tuesday legs", report.Week[1].Title)
		assert.Empty(t, report.Week[2].Title)

		assert.Equal(t, []OrderEntry{
			{SortKey: 0, Title: "monday push"},
			{SortKey: 1, Title: "Tuesday legs"},
			{SortKey: 999, Title: "Stretching"},
		}, report.Order)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

		out, err := run(t, "--format", "json", "schedule", "--file", path)
		require.NoError(t, err)

		var report ScheduleReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Len(t, report.Week, 7)
		assert.Empty(t, report.Order)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := run(t, "schedule", "--file", "testdata/missing.yaml")
		assert.ErrorContains(t, err, "read plans")

		txt := filepath.Join(t.TempDir(), "plans.txt")
		require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))
		_, err = run(t, "schedule", "--file", txt)
		assert.ErrorContains(t, err, "unsupported plans file")

		_, err = run(t, "schedule", "--locale", "fr", "--file", "testdata/plans.yaml")
		assert.ErrorContains(t, err, "unknown locale")
	})
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "schedule", "--file", "testdata/plans.yaml")
	assert.ErrorContains(t, err, "invalid format")
}
