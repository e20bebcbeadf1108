package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/hymnal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testSource = `# GHS 1
Title: Amazing Grace
Amazing grace how sweet the sound
That saved a wretch like me

# GHS 2
Title: It Is Well
When peace like a river attendeth my way
It is well with my soul
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hymns.txt")
	require.NoError(t, os.WriteFile(path, []byte(testSource), 0o644))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"hymnal"}, args...))
	return out.String(), err
}

func findStringFlag(flags []cli.Flag, name string) *cli.StringFlag {
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	return nil
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func TestGlobalFlags(t *testing.T) {
	app := newApp()

	t.Run("embedding-host has default value", func(t *testing.T) {
		f := findStringFlag(app.Flags, "embedding-host")
		require.NotNil(t, f)
		assert.Equal(t, "http://localhost:11434/v1", f.Value)
		assert.Equal(t, []string{"HYMNAL_EMBEDDING_HOST"}, f.EnvVars)
	})

	t.Run("corpus reads HYMNAL_CORPUS", func(t *testing.T) {
		f := findStringFlag(app.Flags, "corpus")
		require.NotNil(t, f)
		assert.Equal(t, []string{"HYMNAL_CORPUS"}, f.EnvVars)
	})

	t.Run("corpus defaults to hymns.txt", func(t *testing.T) {
		f := findStringFlag(app.Flags, "corpus")
		require.NotNil(t, f)
		assert.Equal(t, "hymns.txt", f.Value)
	})

	t.Run("cache-dir has no default value", func(t *testing.T) {
		f := findStringFlag(app.Flags, "cache-dir")
		require.NotNil(t, f)
		assert.Empty(t, f.Value)
	})

	t.Run("commands are registered", func(t *testing.T) {
		for _, name := range []string{"search", "show", "index"} {
			assert.NotNil(t, findCommand(app, name), name)
		}
	})
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	_, err := runApp(t, "--log-level", "loud", "show", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestShowCommand(t *testing.T) {
	corpusPath := writeCorpus(t)

	t.Run("prints hymn", func(t *testing.T) {
		out, err := runApp(t, "--corpus", corpusPath, "show", "2")
		require.NoError(t, err)
		assert.Equal(t, "GHS 2 - It Is Well\n\nWhen peace like a river attendeth my way\nIt is well with my soul\n", out)
	})

	t.Run("accepts catalog prefix", func(t *testing.T) {
		out, err := runApp(t, "--corpus", corpusPath, "show", "ghs", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "GHS 1 - Amazing Grace")
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := runApp(t, "--corpus", corpusPath, "show", "99")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("number is required", func(t *testing.T) {
		_, err := runApp(t, "--corpus", corpusPath, "show")
		require.Error(t, err)
	})

	t.Run("corpus from environment", func(t *testing.T) {
		t.Setenv("HYMNAL_CORPUS", corpusPath)
		out, err := runApp(t, "show", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "Amazing Grace")
	})
}

func TestSearchCommand(t *testing.T) {
	corpusPath := writeCorpus(t)

	t.Run("number", func(t *testing.T) {
		out, err := runApp(t, "--corpus", corpusPath, "--no-scripture", "search", "GHS", "1")
		require.NoError(t, err)
		assert.Equal(t, "1. GHS 1 - Amazing Grace [number 1.000]\n", out)
	})

	t.Run("substring", func(t *testing.T) {
		out, err := runApp(t, "--corpus", corpusPath, "--no-scripture", "search", "--trace", "river")
		require.NoError(t, err)
		assert.Equal(t, "1. GHS 2 - It Is Well [substring 1.000]\n", out)
	})

	t.Run("query is required", func(t *testing.T) {
		_, err := runApp(t, "--corpus", corpusPath, "search")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("max-hits must be positive", func(t *testing.T) {
		_, err := runApp(t, "--corpus", corpusPath, "search", "--max-hits", "0", "grace")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max-hits")
	})
}

func TestIndexCommandValidation(t *testing.T) {
	corpusPath := writeCorpus(t)

	t.Run("cache-dir is required", func(t *testing.T) {
		_, err := runApp(t, "--corpus", corpusPath, "index")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache-dir")
	})

	t.Run("batch-size must be positive", func(t *testing.T) {
		_, err := runApp(t, "--corpus", corpusPath, "--cache-dir", t.TempDir(), "index", "--batch-size", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})
}

func TestPrintResult(t *testing.T) {
	hymn := &core.Hymn{Number: "7", Title: "Be Thou My Vision"}

	t.Run("shows rewritten text", func(t *testing.T) {
		var buf bytes.Buffer
		printResult(&buf, &core.Result{
			Query:      "John 3:16",
			SearchText: "For God so loved the world",
			Matches:    []core.Match{{Hymn: hymn, Kind: core.MatchSemantic, Score: 0.8123}},
		})
		assert.Equal(t, "Searching for: \"For God so loved the world\"\n1. GHS 7 - Be Thou My Vision [semantic 0.812]\n", buf.String())
	})

	t.Run("no matches", func(t *testing.T) {
		var buf bytes.Buffer
		printResult(&buf, &core.Result{Query: "vision", SearchText: "vision"})
		assert.Equal(t, "No hymns found\n", buf.String())
	})
}
