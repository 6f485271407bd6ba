package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexlit-dev/hexlit/internal/cli/output"
	"github.com/hexlit-dev/hexlit/internal/cli/testutil"
	"github.com/hexlit-dev/hexlit/internal/engine"
)

func runScanWith(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewScanCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestScanCommandExecute(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	setProjectEnv(t, projectDir)

	out, err := runScanWith(t)
	require.NoError(t, err)

	assert.Contains(t, out, "# Manifests (2 total)")
	assert.Contains(t, out, "## world.hexlit")
	assert.Contains(t, out, filepath.Join("sui", "tokens.hexlit"))
	assert.Contains(t, out, "- **Package:** world")
	assert.Contains(t, out, "- **Package:** tokens")
	assert.Contains(t, out, "- **Qualifier:** ids")
	assert.Contains(t, out, "- Clock: Object, 1 bytes (2:9)")
	assert.Contains(t, out, "- Treasury: Address, 2 bytes (5:12)")
	assert.Contains(t, out, "- USDC: Object, 32 bytes")
	testutil.AssertValidMarkdown(t, out)
}

func TestScanCommandJSON(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	setProjectEnv(t, projectDir)
	t.Setenv("HEXLIT_OUTPUT", "json")

	out, err := runScanWith(t)
	require.NoError(t, err)

	var res output.ScanOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	assert.Equal(t, 2, res.Summary.Total)
	assert.Equal(t, 2, res.Summary.Parsed)
	assert.Equal(t, 0, res.Summary.Failed)
	require.Len(t, res.Manifests, 2)

	var world *output.ManifestDetail
	for i := range res.Manifests {
		if res.Manifests[i].Path == "world.hexlit" {
			world = &res.Manifests[i]
		}
	}
	require.NotNil(t, world, "world.hexlit should be discovered")
	require.Len(t, world.Entries, 2)
	assert.Equal(t, "Clock", world.Entries[0].Name)
	require.Len(t, world.Entries[0].Literals, 1)
	assert.Equal(t, "object", world.Entries[0].Literals[0].Kind)
	assert.Equal(t, 1, world.Entries[0].Literals[0].Payload)
	assert.Equal(t, 9, world.Entries[0].Literals[0].Column)
	assert.Equal(t, 20, world.Entries[0].Literals[0].EndColumn)
}

func TestScanTextTable(t *testing.T) {
	tr := testutil.NewTestRendererText()
	res := &engine.DiscoveryResult{Total: 2, Parsed: 1, Failed: 1}
	details := []output.ManifestDetail{
		{
			Path:    "world.hexlit",
			Package: "world",
			Entries: []output.EntryDetail{
				{Name: "Clock", Line: 2, Literals: []output.LiteralDetail{
					{Text: "0x06_object", Kind: "object", Payload: 1, Line: 2, Column: 9},
				}},
			},
		},
		{Path: "broken.hexlit", Error: `unclosed "("`},
	}

	require.NoError(t, scanText(tr.Renderer, res, details))

	out := tr.Output()
	assert.Contains(t, out, "Manifests (2 total)")
	assert.Contains(t, out, "Clock")
	assert.Contains(t, out, "Object")
	assert.Contains(t, out, "1 bytes")
	assert.Contains(t, out, "2:9")
	assert.Contains(t, out, "(1 literals)")
	assert.Contains(t, out, "Parse Errors")
	assert.Contains(t, out, "broken.hexlit")
}

func TestScanCommandReportsParseErrors(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	setProjectEnv(t, projectDir)

	testutil.WriteManifest(t, filepath.Join(projectDir, "literals"), "broken.hexlit",
		"Broken = (0x01_object\n")

	out, err := runScanWith(t)
	require.NoError(t, err, "scan reports parse errors without failing")

	assert.Contains(t, out, "# Manifests (3 total)")
	assert.Contains(t, out, "## broken.hexlit")
	assert.Contains(t, out, "- **Error:**")
}
