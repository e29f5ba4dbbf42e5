package formats

import (
	"encoding/json"
	"fmt"
)

// ParseJSON parses a JSON stage file. The structure matches the YAML
// schema field for field, so stages can ship in either format.
func ParseJSON(data []byte) (Stage, error) {
	var s Stage
	if err := json.Unmarshal(data, &s); err != nil {
		return Stage{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return s, nil
}
