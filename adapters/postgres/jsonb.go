package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"abkpi/domain/experiment"
)

// runPayload is a JSONB column holding a whole run document.
type runPayload struct {
	Run *experiment.Run
}

// Value implements driver.Valuer interface
func (p runPayload) Value() (driver.Value, error) {
	if p.Run == nil {
		return nil, nil
	}
	return json.Marshal(p.Run)
}

// Scan implements sql.Scanner interface
func (p *runPayload) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		p.Run = nil
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported payload type %T", value)
	}

	var run experiment.Run
	if err := json.Unmarshal(bytes, &run); err != nil {
		return err
	}
	p.Run = &run
	return nil
}
