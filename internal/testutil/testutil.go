// Package testutil provides shared test helpers for config files and bundle fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// DefaultBundleFiles are the bundle fixtures written by SetupTestConfig.
var DefaultBundleFiles = map[string]string{
	"web_en.properties":  "title=Title\nbtn.save=Save\n",
	"web_da.properties":  "title=Titel\nbtn.save=Gem\n",
	"mail_en.properties": "mail.subject=Welcome\n",
}

// SetupTestConfig creates a config file that keeps dictionaries as YAML files
// in tmpDir and reads bundles from tmpDir/bundles.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return setupConfig(t, tmpDir, fmt.Sprintf(`store:
  driver: yaml
yaml:
  directory: %s
`, filepath.Join(tmpDir, "dictionaries")))
}

// SetupSQLiteTestConfig is like SetupTestConfig with an SQLite database in tmpDir.
func SetupSQLiteTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return setupConfig(t, tmpDir, fmt.Sprintf(`store:
  driver: sqlite3
sqlite:
  path: %s
`, filepath.Join(tmpDir, "langdict.db")))
}

func setupConfig(t *testing.T, tmpDir string, storeSection string) string {
	t.Helper()

	bundleDir := filepath.Join(tmpDir, "bundles")
	require.NoError(t, os.MkdirAll(bundleDir, 0755))
	for name, content := range DefaultBundleFiles {
		WriteBundle(t, bundleDir, name, content)
	}

	configContent := fmt.Sprintf(`languages:
  - en
  - da
bundles:
  source: directory
  directory: %s
  names:
    - web
    - mail
cache:
  prewarm: false
%s`, bundleDir, storeSection)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}

// WriteBundle writes one properties file into dir.
func WriteBundle(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
