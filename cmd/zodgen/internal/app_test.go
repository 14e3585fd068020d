package internal_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/zodgen/cmd/zodgen/internal"
)

const api = `openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Node:
      type: object
      properties:
        next: {$ref: "#/components/schemas/Node"}
    Name: {type: string}
`

func setup(t *testing.T) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	input = filepath.Join(dir, "Api.yaml")
	require.NoError(t, os.WriteFile(input, []byte(api), 0o600))
	return dir, input
}

func TestGenerateToStdout(t *testing.T) {
	_, input := setup(t)
	var out bytes.Buffer
	err := internal.Run(context.Background(), []string{"generate", input, "-o", "-", "--strict"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "import { z } from \"zod\";\n")
	assert.Contains(t, out.String(), "export const Node: z.ZodType<Node> = z.lazy(() => z.strictObject({\n")
	assert.Contains(t, out.String(), "export const Name = z.string();\n")
}

func TestGenerateDerivesOutputPath(t *testing.T) {
	dir, input := setup(t)
	var out bytes.Buffer
	require.NoError(t, internal.Run(context.Background(), []string{"generate", input}, &out))
	assert.Empty(t, out.String())

	code, err := os.ReadFile(filepath.Join(dir, "api.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "z.looseObject")
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir, input := setup(t)
	config := filepath.Join(dir, "zodgen.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"input: "+input+"\noutput: "+filepath.Join(dir, "gen", "api.ts")+"\nwriter: {strictObjectsByDefault: true}\n",
	), 0o600))

	var out bytes.Buffer
	err := internal.Run(context.Background(), []string{"generate", "-c", config, "-o", "-", "--strict=false"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "z.looseObject")
	assert.NoFileExists(t, filepath.Join(dir, "gen", "api.ts"))

	out.Reset()
	require.NoError(t, internal.Run(context.Background(), []string{"generate", "-c", config}, &out))
	assert.FileExists(t, filepath.Join(dir, "gen", "api.ts"))
}

func TestDiagnosticsAndIR(t *testing.T) {
	dir, input := setup(t)
	diag := filepath.Join(dir, "cycles.json")
	dump := filepath.Join(dir, "ir.json")
	var out bytes.Buffer
	err := internal.Run(context.Background(), []string{
		"generate", input, "-o", "-", "--diagnostics", diag, "--dump-ir", dump,
	}, &out)
	require.NoError(t, err)

	data, err := os.ReadFile(diag)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order": ["Node", "Name"],
		"circular": [{"component": "Node", "paths": [["Node"]]}]
	}`, string(data))

	data, err = os.ReadFile(dump)
	require.NoError(t, err)
	var ir struct {
		Components []struct {
			Name string `json:"name"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(data, &ir))
	require.Len(t, ir.Components, 2)
	assert.Equal(t, "Node", ir.Components[0].Name)
}

func TestCheck(t *testing.T) {
	_, input := setup(t)
	var out bytes.Buffer
	require.NoError(t, internal.Run(context.Background(), []string{"check", input}, &out))
	assert.Equal(t, "Node: Node -> Node\n", out.String())
}

func TestErrors(t *testing.T) {
	_, input := setup(t)
	var out bytes.Buffer
	err := internal.Run(context.Background(), []string{"generate", input, "--format", "swagger"}, &out)
	assert.ErrorContains(t, err, "must be one of openapi, jsonschema")

	err = internal.Run(context.Background(), []string{"generate"}, &out)
	assert.ErrorContains(t, err, "config")

	err = internal.Run(context.Background(), []string{"generate", "a", "b"}, &out)
	assert.Error(t, err)
}
