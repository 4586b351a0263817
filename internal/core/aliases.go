package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const aliasFileName = "aliases.yaml"

// builtinAliases maps import names to the PyPI package that provides
// them, for the well-known cases where the two differ.
var builtinAliases = map[string]string{
	"yaml":     "pyyaml",
	"PIL":      "pillow",
	"cv2":      "opencv-python",
	"sklearn":  "scikit-learn",
	"bs4":      "beautifulsoup4",
	"dotenv":   "python-dotenv",
	"dateutil": "python-dateutil",
}

// LoadAliases returns the import-name to package-name table: the
// built-in entries overlaid with any user overrides from
// ~/.pythrun/aliases.yaml (a flat string-to-string mapping).
func (cm *ConfigManager) LoadAliases() (map[string]string, error) {
	aliases := make(map[string]string, len(builtinAliases))
	for k, v := range builtinAliases {
		aliases[k] = v
	}

	path := filepath.Join(cm.configDir, aliasFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return aliases, nil
		}
		return nil, fmt.Errorf("reading aliases: %w", err)
	}

	overrides := make(map[string]string)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for k, v := range overrides {
		aliases[k] = v
	}
	return aliases, nil
}
