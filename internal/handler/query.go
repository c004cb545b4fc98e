package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tradinghub/backend/internal/catalog"
	"github.com/tradinghub/backend/internal/model"
)

// openEndedPrice は価格帯の上限がないことを表す値。
const openEndedPrice = 9999

// filterValue はクエリパラメータを取得する。"all"は未指定として扱う。
func filterValue(r *http.Request, key string) string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// queryInt は整数のクエリパラメータを取得する。未指定の場合はdefを返す。
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError(fmt.Sprintf("%s must be an integer", key))
	}
	return v, nil
}

// queryBounded は範囲付き整数クエリパラメータを取得する。
func queryBounded(r *http.Request, key string, def, lo, hi int) (int, error) {
	v, err := queryInt(r, key, def)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, model.NewValidationError(fmt.Sprintf("%s must be between %d and %d", key, lo, hi))
	}
	return v, nil
}

// paging はlimitとskipを取得する。
func paging(r *http.Request) (limit, skip int, err error) {
	limit, err = queryBounded(r, "limit", catalog.DefaultListLimit, 1, catalog.MaxListLimit)
	if err != nil {
		return 0, 0, err
	}
	skip, err = queryInt(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, model.NewValidationError("skip must be non-negative")
	}
	return limit, skip, nil
}

// searchParams は検索エンドポイントのqとlimitを取得する。
func searchParams(r *http.Request) (string, int, error) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		return "", 0, model.NewValidationError("q is required")
	}
	limit, err := queryBounded(r, "limit", catalog.DefaultSearchLimit, 1, catalog.MaxSearchLimit)
	if err != nil {
		return "", 0, err
	}
	return q, limit, nil
}

// parsePriceRange は"min-max"形式の価格帯を解析する。
// 上限が9999の場合は上限なしとする。
func parsePriceRange(raw string) (lo, hi *int, err error) {
	if raw == "" {
		return nil, nil, nil
	}
	minStr, maxStr, ok := strings.Cut(raw, "-")
	if !ok {
		return nil, nil, model.NewValidationError("priceRange must be in the form min-max")
	}
	minVal, err1 := strconv.Atoi(strings.TrimSpace(minStr))
	maxVal, err2 := strconv.Atoi(strings.TrimSpace(maxStr))
	if err1 != nil || err2 != nil || minVal < 0 || maxVal < minVal {
		return nil, nil, model.NewValidationError("priceRange must be in the form min-max")
	}
	lo = &minVal
	if maxVal != openEndedPrice {
		hi = &maxVal
	}
	return lo, hi, nil
}

// parseApproved はapprovedクエリを解析する。未指定はtrue、"all"は絞り込みなし。
func parseApproved(r *http.Request) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("approved"))
	if raw == "" {
		v := true
		return &v, nil
	}
	if strings.EqualFold(raw, "all") {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, model.NewValidationError("approved must be a boolean")
	}
	return &v, nil
}
