package traffic

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

//go:embed seed/areas.json
var defaultSeed []byte

type seedFile struct {
	Areas []domain.Area `json:"areas"`
}

// LoadSeed reads the startup area set. An empty path selects the embedded default.
func LoadSeed(path string) ([]domain.Area, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
	}
	return ParseSeed(data)
}

// ParseSeed decodes a seed document of the form {"areas":[{id,name,congestion}]}.
func ParseSeed(data []byte) ([]domain.Area, error) {
	var f seedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return f.Areas, nil
}
