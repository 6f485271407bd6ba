package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexlit-dev/hexlit/internal/cli/testutil"
	"github.com/hexlit-dev/hexlit/internal/engine"
	"github.com/hexlit-dev/hexlit/internal/state"
)

// setProjectEnv points the env-fallback configuration at a test project.
func setProjectEnv(t *testing.T, projectDir string) {
	t.Helper()
	t.Setenv("HEXLIT_LITERALS_DIR", filepath.Join(projectDir, "literals"))
	t.Setenv("HEXLIT_OUT_DIR", filepath.Join(projectDir, "gen"))
	t.Setenv("HEXLIT_STATE_PATH", filepath.Join(projectDir, ".hexlit", "state.db"))
}

func runExpandWith(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewExpandCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestExpandCommandExecute(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	setProjectEnv(t, projectDir)

	out, err := runExpandWith(t)
	require.NoError(t, err)

	// Piped output renders markdown
	assert.Contains(t, out, "# Expansion Results")
	assert.Contains(t, out, "world.hexlit")
	testutil.AssertNoANSI(t, out)

	content, err := os.ReadFile(filepath.Join(projectDir, "gen", "world", "world.hexlit.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "var Clock = oid.NewObjectID(")
	assert.Contains(t, string(content), "var Treasury = oid.AddressFromObject(")

	content, err = os.ReadFile(filepath.Join(projectDir, "gen", "sui", "tokens", "tokens.hexlit.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "package tokens")
	assert.Contains(t, string(content), "ids.NewObjectID(")
}

func TestExpandCommandSkipsUnchanged(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	setProjectEnv(t, projectDir)

	_, err := runExpandWith(t)
	require.NoError(t, err)

	// Unchanged manifests are skipped on the second run
	out, err := runExpandWith(t)
	require.NoError(t, err)
	assert.Contains(t, out, "- **Written:** 0")
	assert.Contains(t, out, "- **Skipped:** 2")

	// --force regenerates everything
	out, err = runExpandWith(t, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "- **Written:** 2")
	assert.Contains(t, out, "- **Skipped:** 0")
}

func TestExpandCommandSelect(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	setProjectEnv(t, projectDir)

	out, err := runExpandWith(t, "--select", "world.hexlit")
	require.NoError(t, err)
	assert.Contains(t, out, "world.hexlit")
	testutil.AssertNotContains(t, out, "tokens.hexlit")

	// Only the selected manifest was generated
	_, err = os.Stat(filepath.Join(projectDir, "gen", "world", "world.hexlit.go"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(projectDir, "gen", "sui", "tokens", "tokens.hexlit.go"))
	assert.True(t, os.IsNotExist(err), "unselected manifest should not be generated")
}

func TestExpandCommandFailureExitsNonZero(t *testing.T) {
	projectDir := testutil.SetupTestProject(t)
	setProjectEnv(t, projectDir)

	testutil.WriteManifest(t, filepath.Join(projectDir, "literals"), "broken.hexlit",
		"Broken = 0x06_objec\n")

	out, err := runExpandWith(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to expand")
	assert.Contains(t, out, "broken.hexlit")

	// The broken manifest still gets a generated file carrying a compile error
	content, readErr := os.ReadFile(filepath.Join(projectDir, "gen", "broken", "broken.hexlit.go"))
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "__hexlit_compile_error")
}

func TestRenderExpandText(t *testing.T) {
	tr := testutil.NewTestRendererText()
	res := &engine.RunResult{
		RunID:   "run-1",
		Total:   2,
		Written: 1,
		Failed:  1,
		Files: []engine.FileResult{
			{Path: filepath.Join("lit", "world.hexlit"), Status: state.FileStatusWritten, Entries: 2},
			{Path: filepath.Join("lit", "bad.hexlit"), Status: state.FileStatusFailed, Message: "unknown suffix"},
		},
	}

	require.NoError(t, renderExpand(tr.Renderer, "lit", res))

	out := tr.Output()
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "world.hexlit")
	assert.Contains(t, out, "unknown suffix")
	assert.Contains(t, out, "2 total")
}

func TestRenderExpandMarkdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	res := &engine.RunResult{
		RunID:   "run-1",
		Total:   1,
		Written: 1,
		Files: []engine.FileResult{
			{Path: "world.hexlit", Status: state.FileStatusWritten, Entries: 2},
		},
	}

	require.NoError(t, renderExpand(tr.Renderer, ".", res))

	out := tr.Output()
	assert.Contains(t, out, "# Expansion Results")
	assert.Contains(t, out, "- **Run ID:** run-1")
	assert.Contains(t, out, "- world.hexlit: written (2 entries)")
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertNoANSI(t, out)
}

func TestFileDetail(t *testing.T) {
	tests := []struct {
		name string
		fr   engine.FileResult
		want string
	}{
		{
			name: "single entry",
			fr:   engine.FileResult{Status: state.FileStatusWritten, Entries: 1},
			want: "1 entry",
		},
		{
			name: "multiple entries",
			fr:   engine.FileResult{Status: state.FileStatusSkipped, Entries: 3},
			want: "3 entries",
		},
		{
			name: "failure shows message",
			fr:   engine.FileResult{Status: state.FileStatusFailed, Message: "bad payload", Entries: 2},
			want: "bad payload",
		},
		{
			name: "failure without message falls back to entry count",
			fr:   engine.FileResult{Status: state.FileStatusFailed, Entries: 2},
			want: "2 entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fileDetail(tt.fr))
		})
	}
}

func TestDisplayPath(t *testing.T) {
	literalsDir := filepath.Join("proj", "literals")

	assert.Equal(t, "world.hexlit",
		displayPath(literalsDir, filepath.Join(literalsDir, "world.hexlit")))
	assert.Equal(t, filepath.Join("sui", "tokens.hexlit"),
		displayPath(literalsDir, filepath.Join(literalsDir, "sui", "tokens.hexlit")))

	// Paths outside the literals tree stay as given
	outside := filepath.Join("elsewhere", "x.hexlit")
	assert.Equal(t, outside, displayPath(literalsDir, outside))
}
