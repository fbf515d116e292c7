package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ModelFileSuffix is appended to the upper-cased symbol to name a model file.
const ModelFileSuffix = "_lgbm.json"

// ModelPath returns the model file for symbol inside dir.
func ModelPath(dir, symbol string) string {
	return filepath.Join(dir, strings.ToUpper(symbol)+ModelFileSuffix)
}

// LoadModel reads and validates a model file.
func LoadModel(filePath string) (*LinearModel, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveModel writes the model to a JSON file.
func SaveModel(filePath string, m *LinearModel) error {
	if m.TrainedAt.IsZero() {
		m.TrainedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
