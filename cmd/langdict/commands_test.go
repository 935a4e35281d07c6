package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/langdict/internal/bundle"
	"github.com/at-ishikawa/langdict/internal/dictionary"
	"github.com/at-ishikawa/langdict/internal/testutil"
)

func TestCommands_DictionaryLifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := testutil.SetupTestConfig(t, tmpDir)

	out, err := execute(t, "--config", configPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Persisted 5 entries from 3 bundles")
	assert.Contains(t, out, "Missing bundles (1)")
	assert.Contains(t, out, "mail_da.properties")

	out, err = execute(t, "--config", configPath, "names")
	require.NoError(t, err)
	assert.Equal(t, "mail\nweb\n", out)

	out, err = execute(t, "--config", configPath, "value", "web", "da", "title")
	require.NoError(t, err)
	assert.Equal(t, "Titel\n", out)

	_, err = execute(t, "--config", configPath, "value", "web", "da", "missing")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
	assert.ErrorContains(t, err, "entry missing in web")

	_, err = execute(t, "--config", configPath, "value", "unknown", "en", "title")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)

	_, err = execute(t, "--config", configPath, "value", "mail", "da", "mail.subject")
	require.Error(t, err)
	assert.NotErrorIs(t, err, dictionary.ErrNotFound)
	assert.ErrorContains(t, err, "no da value")

	out, err = execute(t, "--config", configPath, "entry", "create", "web", "greeting", "--desc", "en=Hello", "--desc", "da=Hej")
	require.NoError(t, err)
	assert.Contains(t, out, "Created entry greeting in web")
	assert.Contains(t, out, "da: Hej")

	_, err = execute(t, "--config", configPath, "entry", "create", "web", "greeting", "--desc", "en=Hi")
	assert.ErrorIs(t, err, dictionary.ErrConflict)

	_, err = execute(t, "--config", configPath, "entry", "create", "web", "blank", "--desc", "en= ")
	assert.ErrorIs(t, err, dictionary.ErrValidation)

	_, err = execute(t, "--config", configPath, "entry", "create", "missing", "greeting", "--desc", "en=Hi")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)

	out, err = execute(t, "--config", configPath, "entry", "update", "web", "title", "--desc", "en=Edited")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated entry title in web")
	assert.Contains(t, out, "en: Edited")
	assert.Contains(t, out, "da: Titel")

	out, err = execute(t, "--config", configPath, "bundles", "load")
	require.NoError(t, err)
	assert.Contains(t, out, "Persisted 0 entries from 3 bundles")

	out, err = execute(t, "--config", configPath, "value", "web", "en", "title")
	require.NoError(t, err)
	assert.Equal(t, "Edited\n", out)

	out, err = execute(t, "--config", configPath, "bundles", "load", "--override", "web")
	require.NoError(t, err)
	assert.Contains(t, out, "Persisted 4 entries from 2 bundles")

	out, err = execute(t, "--config", configPath, "value", "web", "en", "title")
	require.NoError(t, err)
	assert.Equal(t, "Title\n", out)

	out, err = execute(t, "--config", configPath, "entry", "delete", "web", "greeting")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted entry greeting from web")

	out, err = execute(t, "--config", configPath, "entry", "delete", "web", "greeting")
	require.NoError(t, err)
	assert.Contains(t, out, "Entry greeting does not exist in web")

	out, err = execute(t, "--config", configPath, "show", "web", "--lang", "en")
	require.NoError(t, err)
	assert.Equal(t, "btn.save=Save\ntitle=Title\n", out)

	out, err = execute(t, "--config", configPath, "show", "web")
	require.NoError(t, err)
	assert.Equal(t, "btn.save\n  da: Gem\n  en: Save\ntitle\n  da: Titel\n  en: Title\n", out)

	_, err = execute(t, "--config", configPath, "show", "missing")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestCommands_Export(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := testutil.SetupTestConfig(t, tmpDir)

	_, err := execute(t, "--config", configPath, "bundles", "load")
	require.NoError(t, err)

	want := map[string]string{"title": "Titel", "btn.save": "Gem"}

	out, err := execute(t, "--config", configPath, "export", "--lang", "da", "web", "mail")
	require.NoError(t, err)
	exported, err := bundle.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"btn.save", "title"}, exported.Keys())
	v, _ := exported.Get("title")
	assert.Equal(t, "Titel", v)

	out, err = execute(t, "--config", configPath, "export", "--lang", "da", "--format", "json", "web")
	require.NoError(t, err)
	var gotJSON map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &gotJSON))
	assert.Equal(t, want, gotJSON)

	out, err = execute(t, "--config", configPath, "export", "--lang", "da", "--format", "yaml", "web")
	require.NoError(t, err)
	var gotYAML map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &gotYAML))
	assert.Equal(t, want, gotYAML)

	_, err = execute(t, "--config", configPath, "export", "--format", "csv", "web")
	assert.Error(t, err)
}

func TestCommands_BundlesImport(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := testutil.SetupTestConfig(t, tmpDir)

	file := filepath.Join(tmpDir, "extra.properties")
	require.NoError(t, os.WriteFile(file, []byte("footer=Made in Denmark\n"), 0644))

	out, err := execute(t, "--config", configPath, "bundles", "import", "site", "en", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Persisted 1 entries into site")

	out, err = execute(t, "--config", configPath, "value", "site", "en", "footer")
	require.NoError(t, err)
	assert.Equal(t, "Made in Denmark\n", out)

	_, err = execute(t, "--config", configPath, "bundles", "import", "site", "en", filepath.Join(tmpDir, "missing.properties"))
	assert.Error(t, err)

	_, err = execute(t, "--config", configPath, "bundles", "import", "../site", "en", file)
	assert.ErrorIs(t, err, dictionary.ErrValidation)
	_, statErr := os.Stat(filepath.Join(tmpDir, "site.yml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCommands_Migrate(t *testing.T) {
	t.Run("sqlite3", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := testutil.SetupSQLiteTestConfig(t, tmpDir)

		out, err := execute(t, "--config", configPath, "migrate")
		require.NoError(t, err)
		assert.Equal(t, "Schema is at version 1\n", out)

		out, err = execute(t, "--config", configPath, "bundles", "load")
		require.NoError(t, err)
		assert.Contains(t, out, "Persisted 5 entries from 3 bundles")

		out, err = execute(t, "--config", configPath, "value", "web", "da", "btn.save")
		require.NoError(t, err)
		assert.Equal(t, "Gem\n", out)
	})

	t.Run("store without schema", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := testutil.SetupTestConfig(t, tmpDir)

		_, err := execute(t, "--config", configPath, "migrate")
		assert.ErrorContains(t, err, "has no database schema")
	})
}

func TestCommands_Datasync(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := testutil.SetupSQLiteTestConfig(t, tmpDir)
	yamlDir := filepath.Join(tmpDir, "yaml")

	seedPath := testutil.SetupTestConfig(t, filepath.Join(tmpDir, "seed"))
	_, err := execute(t, "--config", seedPath, "bundles", "load")
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "datasync", "import", "--dry-run", filepath.Join(tmpDir, "seed", "dictionaries"))
	require.NoError(t, err)
	assert.Contains(t, out, "[dry run] dictionaries: 2 new; entries: 3 new")

	out, err = execute(t, "--config", configPath, "datasync", "import", filepath.Join(tmpDir, "seed", "dictionaries"))
	require.NoError(t, err)
	assert.Contains(t, out, "dictionaries: 2 new; entries: 3 new, 0 updated, 0 skipped, 0 invalid")

	out, err = execute(t, "--config", configPath, "value", "web", "da", "title")
	require.NoError(t, err)
	assert.Equal(t, "Titel\n", out)

	out, err = execute(t, "--config", configPath, "datasync", "export", yamlDir)
	require.NoError(t, err)
	assert.Contains(t, out, "dictionaries: 2 new; entries: 3 new")
	assert.FileExists(t, filepath.Join(yamlDir, "web.yml"))
	assert.FileExists(t, filepath.Join(yamlDir, "mail.yml"))
}
