package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(zap.NewNop())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestManifestCommandJSON(t *testing.T) {
	out, err := execute(t, "manifest")
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	assert.Equal(t, "raindrop-mcp", manifest["name"])
	tools, ok := manifest["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 12)
}

func TestManifestCommandYAML(t *testing.T) {
	out, err := execute(t, "manifest", "--format", "yaml")
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &manifest))
	assert.Equal(t, "raindrop-mcp", manifest["name"])
}

func TestManifestCommandRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "manifest", "--format", "xml")
	require.Error(t, err)
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "bulk_edit_raindrops")
	assert.Contains(t, out, "write")
	assert.Contains(t, out, "collection_list")
}

func TestValidateCommandRequiresToken(t *testing.T) {
	t.Setenv("RAINDROP_ACCESS_TOKEN", "")
	_, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAINDROP_ACCESS_TOKEN")
}

func TestValidateCommandRedactsSecrets(t *testing.T) {
	t.Setenv("RAINDROP_ACCESS_TOKEN", "super-secret")
	out, err := execute(t, "validate", "--transport", "stdio")
	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "[redacted]")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "raindropmcp dev")
}
