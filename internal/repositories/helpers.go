package repositories

import (
	"strings"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
)

// nullIfEmpty helps store optional strings without writing empty values.
func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func domainPage(page, size int) domain.Pagination {
	return domain.Pagination{Page: page, PageSize: size}.Clamp()
}

func statusPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
