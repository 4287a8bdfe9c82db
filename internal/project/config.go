package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/CutLearn/internal/model"
)

// SaveSettings persists training settings to the given path as YAML.
// It creates any missing parent directories automatically.
func SaveSettings(path string, settings model.TrainSettings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return writeFileAtomic(path, data)
}

// LoadSettings reads training settings from the given path. If the file
// does not exist, it returns DefaultSettings with no error. Fields absent
// from the file keep their defaults.
func LoadSettings(path string) (model.TrainSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultSettings(), nil
		}
		return model.TrainSettings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	settings := model.DefaultSettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return model.TrainSettings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}
