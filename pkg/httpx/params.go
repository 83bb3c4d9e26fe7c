package httpx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrBadPage — limit/offset не являются целыми числами.
var ErrBadPage = errors.New("invalid pagination")

// Page — окно выборки архива.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage — limit/offset из query. Пустое значение → дефолт, limit зажимается в [1, maxLimit],
// отрицательный offset → 0. Не число → ErrBadPage.
func ParsePage(c *gin.Context, defaultLimit, maxLimit int) (Page, error) {
	p := Page{Limit: defaultLimit}

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, fmt.Errorf("%w: limit=%q", ErrBadPage, raw)
		}
		p.Limit = min(max(v, 1), maxLimit)
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, fmt.Errorf("%w: offset=%q", ErrBadPage, raw)
		}
		p.Offset = max(v, 0)
	}
	return p, nil
}
