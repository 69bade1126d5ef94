package cli

import (
	"fmt"
	"os"

	"github.com/goliatone/go-formdispatch/pkg/orchestrator"
)

func loadPresets(paths []string) ([]orchestrator.Transformer, error) {
	out := make([]orchestrator.Transformer, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", path, err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", path, err)
		}
		out = append(out, preset)
	}
	return out, nil
}
