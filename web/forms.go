package web

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itsneelabh/storefront/api"
)

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formInt64(c *gin.Context, key string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(c.PostForm(key)), 10, 64)
	return n
}

func formInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	return n
}

func formFloat(c *gin.Context, key string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(c.PostForm(key)), 64)
	return f
}

func formBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.PostForm(key))
	return b
}

// optionalFloat is nil when the field is absent or blank
func optionalFloat(c *gin.Context, key string) *float64 {
	v, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return &f
}

func optionalInt(c *gin.Context, key string) *int {
	v, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func optionalInt64(c *gin.Context, key string) *int64 {
	v, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func optionalString(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

func tags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// productInput reads the merchant's new-product form
func productInput(c *gin.Context) api.ProductInput {
	return api.ProductInput{
		Name:           strings.TrimSpace(c.PostForm("name")),
		Description:    strings.TrimSpace(c.PostForm("description")),
		Price:          formFloat(c, "price"),
		CompareAtPrice: optionalFloat(c, "compare_at_price"),
		Stock:          formInt(c, "stock"),
		Brand:          strings.TrimSpace(c.PostForm("brand")),
		SKU:            strings.TrimSpace(c.PostForm("sku")),
		Tags:           tags(c.PostForm("tags")),
		ImageURL:       strings.TrimSpace(c.PostForm("image_url")),
		CategoryID:     optionalInt64(c, "category_id"),
	}
}

// productUpdate reads only the fields the edit form actually posted
func productUpdate(c *gin.Context) api.ProductUpdate {
	upd := api.ProductUpdate{
		Name:        optionalString(c, "name"),
		Description: optionalString(c, "description"),
		Price:       optionalFloat(c, "price"),
		Stock:       optionalInt(c, "stock"),
		ImageURL:    optionalString(c, "image_url"),
		CategoryID:  optionalInt64(c, "category_id"),
	}
	if upd.Name != nil && *upd.Name == "" {
		upd.Name = nil
	}
	if v, ok := c.GetPostForm("is_active"); ok {
		active, _ := strconv.ParseBool(v)
		upd.IsActive = &active
	}
	return upd
}
