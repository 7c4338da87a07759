// Package pagination normalizes page size and page token inputs shared by
// list endpoints.
package pagination

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// ParsePageSize parses a raw page_size query value and clamps it. An empty
// value yields the default.
func ParsePageSize(raw string, cfg PageSizeConfig) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClampPageSize(0, cfg), nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInvalidArgument, "page_size must be an integer", err)
	}
	return ClampPageSize(value, cfg), nil
}
