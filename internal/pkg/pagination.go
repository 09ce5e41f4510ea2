package pkg

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/shopadmin/internal/domain"
)

const (
	defaultPage = 1
	// DefaultPageSize is used when the caller passes no configured size.
	DefaultPageSize = 20
	// MaxPageSize caps page_size on every list.
	MaxPageSize = 100
)

// reservedParams are query names consumed by the console itself and never
// forwarded as filters. q is the in-page text search.
var reservedParams = map[string]bool{
	"page":      true,
	"page_size": true,
	"sort":      true,
	"q":         true,
	"_csrf":     true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest reads page, page_size, sort and filters from the query
// string. pageSize is the fallback size; values <= 0 use DefaultPageSize.
func ParsePageRequest(c *gin.Context, pageSize int) domain.PageRequest {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = defaultPage
	}

	size, _ := strconv.Atoi(c.Query("page_size"))
	if size < 1 {
		size = pageSize
	}
	size = min(size, MaxPageSize)

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] || !validFilterKey(key) {
			continue
		}
		if len(values) > 0 && strings.TrimSpace(values[0]) != "" {
			filter[key] = strings.TrimSpace(values[0])
		}
	}

	return domain.PageRequest{
		Page:     page,
		PageSize: size,
		Sort:     strings.TrimSpace(c.Query("sort")),
		Filter:   filter,
	}
}

// validFilterKey accepts plain field names and the "__like" form.
func validFilterKey(key string) bool {
	return validFieldName.MatchString(strings.TrimSuffix(key, "__like"))
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the page request.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page := max(req.Page, 1)
		return db.Offset((page - 1) * req.PageSize).Limit(req.PageSize)
	}
}

// Sort returns a GORM scope ordering by "field:asc|desc". Fields outside
// allowed are ignored and fallback is used instead (may be empty).
func Sort(req domain.PageRequest, allowed []string, fallback string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if order, ok := orderClause(req.Sort, allowed); ok {
			return db.Order(order)
		}
		if order, ok := orderClause(fallback, allowed); ok {
			return db.Order(order)
		}
		return db
	}
}

func orderClause(sort string, allowed []string) (string, bool) {
	field, direction, ok := strings.Cut(sort, ":")
	if !ok {
		return "", false
	}
	field = strings.TrimSpace(field)
	direction = strings.ToLower(strings.TrimSpace(direction))

	if direction != "asc" && direction != "desc" {
		return "", false
	}
	if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
		return "", false
	}
	return field + " " + direction, true
}

// Filter returns a GORM scope that applies WHERE conditions based on the page request filters.
// Only filter keys present in the allowed list are applied; others are silently ignored.
// Keys ending with "__like" produce a LIKE '%value%' condition; others use exact match.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			field, like := strings.CutSuffix(key, "__like")
			if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
				continue
			}
			if like {
				db = db.Where(field+" LIKE ?", "%"+value+"%")
			} else {
				db = db.Where(field+" = ?", value)
			}
		}
		return db
	}
}

// NewPage builds a canonical page from a database query result.
func NewPage[T any](items []T, total int64, req domain.PageRequest) *domain.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &domain.Page[T]{
		Items:      items,
		PageNumber: req.Page,
		PageSize:   req.PageSize,
		TotalCount: total,
		TotalPages: domain.TotalPagesFor(total, req.PageSize),
	}
}

// AllowedFilters returns the subset of req.Filter whose keys appear in
// allowed. The backend receives only these.
func AllowedFilters(req domain.PageRequest, allowed []string) map[string]string {
	out := make(map[string]string, len(req.Filter))
	for k, v := range req.Filter {
		if slices.Contains(allowed, k) {
			out[k] = v
		}
	}
	return out
}
