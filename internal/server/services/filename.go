package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/minibi/internal/common"
)

// ValidateFileName trims name and checks it is "<stem>.csv": the one
// recognised extension in any case, exactly one dot, a non-empty stem and
// no path separators.
func ValidateFileName(name string) (string, error) {
	name = strings.TrimSpace(name)

	switch {
	case strings.Count(name, ".") != 1:
		return "", fmt.Errorf("%w: %q must contain exactly one dot", common.ErrInvalidName, name)
	case !strings.HasSuffix(strings.ToLower(name), common.CSVExtension):
		return "", fmt.Errorf("%w: %q must end in %s", common.ErrInvalidName, name, common.CSVExtension)
	case len(name) == len(common.CSVExtension):
		return "", fmt.Errorf("%w: %q has no name before the extension", common.ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("%w: %q contains a path separator", common.ErrInvalidName, name)
	}
	return name, nil
}
