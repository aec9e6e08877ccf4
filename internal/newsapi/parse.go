package newsapi

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"newsdesk/internal/model"
)

var ErrMalformed = errors.New("malformed news api response")

// ParseTop maps a top-stories body to articles.
//
// A body that is not valid JSON is an error. A body without a "data" array
// (an upstream error payload, for instance) is simply empty. Within each
// element, missing or non-scalar fields become "".
func ParseTop(body []byte) ([]model.Article, error) {
	if !jsoniter.Valid(body) {
		return nil, ErrMalformed
	}

	data := jsoniter.Get(body, "data")
	if data.ValueType() != jsoniter.ArrayValue {
		return nil, nil
	}

	articles := make([]model.Article, 0, data.Size())
	for i := 0; i < data.Size(); i++ {
		item := data.Get(i)
		articles = append(articles, model.Article{
			Title:       text(item, "title"),
			Description: text(item, "description"),
			URL:         text(item, "url"),
			ImageURL:    text(item, "image_url"),
			PublishedAt: text(item, "published_at"),
			Source:      text(item, "source"),
		})
	}
	return articles, nil
}

func text(item jsoniter.Any, field string) string {
	v := item.Get(field)
	switch v.ValueType() {
	case jsoniter.StringValue, jsoniter.NumberValue, jsoniter.BoolValue:
		return v.ToString()
	default:
		return ""
	}
}
