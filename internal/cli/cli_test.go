package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/sankey/pkg/cache"
)

const flowsCSV = "count,from,to\n3,a,x\n1,a,y\n2,b,x\n"

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"render", "inspect", "serve", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}
}

func TestCacheDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, "sankey"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCachePathAndClear(t *testing.T) {
	xdg := t.TempDir()
	out, err := execute(t, nil, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "sankey") {
		t.Errorf("cache path = %q", out)
	}

	// Fill the cache with one render, then clear it.
	t.Setenv("XDG_CACHE_HOME", xdg)
	path := writeFile(t, "flows.csv", flowsCSV)
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"render", path})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}

	root = c.RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(buf.String(), "Cleared") || strings.Contains(buf.String(), "Cleared 0 ") {
		t.Errorf("cache clear output = %q, want a non-zero count", buf.String())
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, nil, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "sankey") {
		t.Error("bash completion should mention the command name")
	}

	if _, err := execute(t, nil, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func TestServeKeyer(t *testing.T) {
	if serveKeyer("") != nil {
		t.Error("empty scope should select the default keyer")
	}

	k := serveKeyer("staging:")
	want := "staging:" + cache.NewDefaultKeyer().TableKey("abc", "csv")
	if got := k.TableKey("abc", "csv"); got != want {
		t.Errorf("TableKey = %q, want %q", got, want)
	}
}
