package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// WriteJSON writes leads as a pretty-printed JSON array.
func WriteJSON(leads []model.Lead, path string) error {
	if leads == nil {
		leads = []model.Lead{}
	}
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal leads")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// ReadJSON reads a JSON lead file: either a bare array or an object with a
// top-level "leads" key, which is what the original exporter produced.
func ReadJSON(path string) ([]model.Lead, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}

	var leads []model.Lead
	if err := json.Unmarshal(raw, &leads); err == nil {
		return leads, nil
	}

	var wrapped struct {
		Leads []model.Lead `json:"leads"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, eris.Wrapf(err, "export: parse %s", path)
	}
	return wrapped.Leads, nil
}
