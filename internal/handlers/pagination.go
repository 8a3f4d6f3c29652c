package handlers

import (
	"strconv"
	"strings"

	"github.com/djenkins26/products-app/internal/repository"
)

const maxPageLimit = 200

// parseListOptions reads the optional listing window. A missing or invalid
// limit means the whole collection; a present one is capped at maxLimit.
func parseListOptions(rawLimit string, rawOffset string, maxLimit int) repository.ListOptions {
	limit := 0
	if parsedLimit, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil && parsedLimit > 0 {
		limit = parsedLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	offset := 0
	if parsedOffset, err := strconv.Atoi(strings.TrimSpace(rawOffset)); err == nil && parsedOffset >= 0 {
		offset = parsedOffset
	}

	return repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	}
}
