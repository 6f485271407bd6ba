package engine

import (
	"path/filepath"
	"strings"
	"testing"
)

const validManifest = `// Clock is the singleton shared clock object.
Clock = 0x06_object
Treasury = 0xdead_address
`

func TestDiscover(t *testing.T) {
	eng, literals := newTestEngine(t)

	writeManifest(t, literals, "world.hexlit", validManifest)
	writeManifest(t, literals, "broken.hexlit", "Clock 0x06_object\n")
	writeManifest(t, literals, "notes.txt", "not a manifest\n")

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	if result.Parsed != 1 {
		t.Errorf("Parsed = %d, want 1", result.Parsed)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if !result.HasErrors() {
		t.Error("HasErrors() should be true")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(result.Errors))
	}
	if !strings.HasSuffix(result.Errors[0].Path, "broken.hexlit") {
		t.Errorf("Errors[0].Path = %q, want broken.hexlit", result.Errors[0].Path)
	}

	// Manifests are sorted by path, so broken comes first.
	if len(result.Manifests) != 2 {
		t.Fatalf("len(Manifests) = %d, want 2", len(result.Manifests))
	}
	broken, world := result.Manifests[0], result.Manifests[1]

	if broken.Err == "" {
		t.Error("broken manifest should carry a parse error")
	}
	if world.Err != "" {
		t.Errorf("world manifest should parse cleanly, got error %q", world.Err)
	}
	if world.Package != "world" {
		t.Errorf("Package = %q, want %q", world.Package, "world")
	}
	if world.Entries != 2 {
		t.Errorf("Entries = %d, want 2", world.Entries)
	}
	if world.RelPath != "world.hexlit" {
		t.Errorf("RelPath = %q, want %q", world.RelPath, "world.hexlit")
	}
	wantOut := filepath.Join(eng.outDir, "world", "world.hexlit.go")
	if world.OutputPath != wantOut {
		t.Errorf("OutputPath = %q, want %q", world.OutputPath, wantOut)
	}
}

func TestDiscover_HeaderOverrides(t *testing.T) {
	eng, literals := newTestEngine(t)

	writeManifest(t, literals, "world.hexlit", `/*---
package: worldids
qualifier: ids
description: World object identifiers.
---*/
Clock = 0x06_object
`)

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(result.Manifests) != 1 {
		t.Fatalf("len(Manifests) = %d, want 1", len(result.Manifests))
	}

	info := result.Manifests[0]
	if info.Package != "worldids" {
		t.Errorf("Package = %q, want %q", info.Package, "worldids")
	}
	if info.Qualifier != "ids" {
		t.Errorf("Qualifier = %q, want %q", info.Qualifier, "ids")
	}
	if info.Description != "World object identifiers." {
		t.Errorf("Description = %q, want %q", info.Description, "World object identifiers.")
	}
}

func TestDiscover_Nested(t *testing.T) {
	eng, literals := newTestEngine(t)

	writeManifest(t, literals, filepath.Join("sui", "tokens.hexlit"), "Gas = 0x02_object\n")

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(result.Manifests) != 1 {
		t.Fatalf("len(Manifests) = %d, want 1", len(result.Manifests))
	}

	info := result.Manifests[0]
	if info.RelPath != filepath.Join("sui", "tokens.hexlit") {
		t.Errorf("RelPath = %q, want sui/tokens.hexlit", info.RelPath)
	}
	wantOut := filepath.Join(eng.outDir, "sui", "tokens", "tokens.hexlit.go")
	if info.OutputPath != wantOut {
		t.Errorf("OutputPath = %q, want %q", info.OutputPath, wantOut)
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	eng, _ := newTestEngine(t)

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
	if result.HasErrors() {
		t.Error("HasErrors() should be false for an empty directory")
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Discover(DiscoveryOptions{LiteralsDir: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("Discover() should fail for a missing directory")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %q, want mention of missing directory", err.Error())
	}
}

func TestDiscoveryResult_Summary(t *testing.T) {
	eng, literals := newTestEngine(t)

	writeManifest(t, literals, "a.hexlit", "A = 0x01_object\n")
	writeManifest(t, literals, "b.hexlit", "B 0x02\n")

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	summary := result.Summary()
	if !strings.Contains(summary, "2 total (1 parsed, 1 failed)") {
		t.Errorf("Summary() = %q, want counts in it", summary)
	}
}

func TestOutputPathFor(t *testing.T) {
	eng, literals := newTestEngine(t)

	tests := []struct {
		name string
		rel  string
		want string
	}{
		{
			name: "top level manifest",
			rel:  "world.hexlit",
			want: filepath.Join(eng.outDir, "world", "world.hexlit.go"),
		},
		{
			name: "nested manifest",
			rel:  filepath.Join("sui", "world.hexlit"),
			want: filepath.Join(eng.outDir, "sui", "world", "world.hexlit.go"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eng.outputPathFor(literals, filepath.Join(literals, tt.rel))
			if got != tt.want {
				t.Errorf("outputPathFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeHash(t *testing.T) {
	h1 := computeHash([]byte("Clock = 0x06_object"))
	h2 := computeHash([]byte("Clock = 0x06_object"))
	h3 := computeHash([]byte("Clock = 0x07_object"))

	if h1 != h2 {
		t.Errorf("same content should hash equal: %q vs %q", h1, h2)
	}
	if h1 == h3 {
		t.Error("different content should hash differently")
	}
	if len(h1) != 16 {
		t.Errorf("hash length = %d, want 16 hex chars", len(h1))
	}
}
