package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args in a temp dir without config.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	oldOutput := outputFlag
	t.Cleanup(func() { outputFlag = oldOutput })

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestDistanceCommand(t *testing.T) {
	out, err := execute(t, "distance", "48.8566,2.3522", "52.52,13.405", "--unit", "km")
	require.NoError(t, err)

	var res distanceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Distance)
	assert.InDelta(t, 878, *res.Distance, 5)
	assert.Equal(t, "km", res.Unit)
}

func TestDistanceCommand_Matrix(t *testing.T) {
	out, err := execute(t, "distance", "48.8566,2.3522", "52.52,13.405", "41.9028,12.4964", "-u", "mi")
	require.NoError(t, err)

	var res distanceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Matrix, 3)
	assert.Zero(t, res.Matrix[1][1])
	assert.InDelta(t, res.Matrix[0][2], res.Matrix[2][0], 1e-9)
}

func TestConvertDistanceCommand(t *testing.T) {
	out, err := execute(t, "convert", "distance", "10", "mi", "ft")
	require.NoError(t, err)

	var res convertResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 52800, res.Value, 1e-6)
	assert.Equal(t, "ft", res.Unit)
}

func TestConvertAngleCommand_YAML(t *testing.T) {
	out, err := execute(t, "convert", "angle", "48.864716", "deg", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "unit: rad")
	assert.Contains(t, out, "degrees: 48")
}

func TestProvidersCommand(t *testing.T) {
	out, err := execute(t, "providers")
	require.NoError(t, err)
	for _, name := range []string{"gisco", "osm", "google", "geonames", "bing", "opencage"} {
		assert.Contains(t, out, `"`+name+`"`)
	}
}

func TestDistanceCommand_BadCoordinate(t *testing.T) {
	_, err := execute(t, "distance", "north", "52.52,13.405")
	assert.Error(t, err)
}
