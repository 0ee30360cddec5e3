package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/vprofile/internal/vector"
)

func TestParseFlags_Defaults(t *testing.T) {
	cli, err := parseFlags([]string{"-input", "wells", "-east_north", "0,0,10,0"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "wells", cli.opts.Input)
	assert.Equal(t, vector.AllTypes, cli.opts.Types)
	assert.Equal(t, []float64{0, 0, 10, 0}, cli.opts.Coordinates)
	assert.Equal(t, 10.0, cli.opts.Buffer)
	assert.Equal(t, "|", cli.opts.Separator)
	assert.Equal(t, 2, cli.opts.Precision)
	assert.Equal(t, 1, cli.opts.Layer)
	assert.Equal(t, 1, cli.opts.ProfileLayer)
	assert.Equal(t, "-", cli.opts.Output)
	assert.False(t, cli.verbose)
	assert.NoError(t, cli.opts.Validate())
}

func TestParseFlags_All(t *testing.T) {
	cli, err := parseFlags([]string{
		"-input", "wells",
		"-type", "line",
		"-profile_map", "roads",
		"-profile_where", "name = 'Main'",
		"-profile_layer", "2",
		"-buffer", "2.5",
		"-output", "out.txt",
		"-separator", "tab",
		"-dp", "4",
		"-where", "depth > 10",
		"-layer", "3",
		"-map_output", "corridor",
		"-c", "-z", "-v",
		"-config", "vprofile.yaml",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, vector.TypeMask(vector.TypeLine), cli.opts.Types)
	assert.Equal(t, "roads", cli.opts.ProfileMap)
	assert.Equal(t, "name = 'Main'", cli.opts.ProfileWhere)
	assert.Equal(t, 2, cli.opts.ProfileLayer)
	assert.Equal(t, 2.5, cli.opts.Buffer)
	assert.Equal(t, "\t", cli.opts.Separator)
	assert.Equal(t, 4, cli.opts.Precision)
	assert.Equal(t, 3, cli.opts.Layer)
	assert.True(t, cli.opts.NoHeader)
	assert.True(t, cli.opts.NoZ)
	assert.True(t, cli.verbose)
	assert.Equal(t, "vprofile.yaml", cli.configPath)
}

func TestParseFlags_RepeatedCoordinates(t *testing.T) {
	cli, err := parseFlags([]string{"-input", "wells", "-east_north", "1,2", "-east_north", "3.5,4"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3.5, 4}, cli.opts.Coordinates)
}

func TestParseFlags_Errors(t *testing.T) {
	for name, args := range map[string][]string{
		"bad coordinate": {"-east_north", "1,north"},
		"bad type":       {"-type", "area"},
		"unknown flag":   {"-nope"},
		"extra argument": {"-input", "wells", "extra"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseFlags(args, io.Discard)
			assert.Error(t, err)
		})
	}
}
