package model

import (
	"strconv"
	"strings"
)

const (
	DefaultRegion   = "us"
	DefaultCategory = "general"
	FirstPage       = 1

	keyDelimiter = "-"
)

// Selection is the canonical (region, category, page) triple a page of
// headlines is addressed by. Build one with Normalize.
type Selection struct {
	Region   string
	Category string
	Page     int
}

// Normalize defaults blank inputs and clamps the page number.
// Non-blank region and category codes are passed through as-is; the
// upstream API decides whether they are valid.
func Normalize(region, category string, page int) Selection {
	if strings.TrimSpace(region) == "" {
		region = DefaultRegion
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	if page < FirstPage {
		page = FirstPage
	}
	return Selection{Region: region, Category: category, Page: page}
}

// Key is the cache key for the selection, e.g. "us-business-1".
func (s Selection) Key() string {
	return s.Region + keyDelimiter + s.Category + keyDelimiter + strconv.Itoa(s.Page)
}
