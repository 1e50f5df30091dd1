package utils

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"fincast/models"
)

// Score algorithm version bounds. Versions below the minimum are no
// longer served; requests for them fall back to the current default.
var (
	currentAlgorithm = version.Must(version.NewVersion("2.0.0"))
	minimumAlgorithm = version.Must(version.NewVersion("1.0.0"))
)

// NormalizeAlgorithm validates a client-supplied algorithm tag ("v1",
// "v2", "1.0", "2.0.0"...) and returns the canonical short form.
func NormalizeAlgorithm(tag string) (string, error) {
	if tag == "" {
		return models.AlgorithmV2, nil
	}

	v, err := version.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return "", fmt.Errorf("invalid algorithm version %q: %w", tag, err)
	}

	if v.LessThan(minimumAlgorithm) {
		return "", fmt.Errorf("algorithm version %q is no longer supported", tag)
	}
	if v.GreaterThan(currentAlgorithm) {
		return "", fmt.Errorf("algorithm version %q does not exist yet", tag)
	}

	if v.Segments()[0] >= 2 {
		return models.AlgorithmV2, nil
	}
	return models.AlgorithmV1, nil
}
