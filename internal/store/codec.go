package store

import (
	jsoniter "github.com/json-iterator/go"

	"newsdesk/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encode(articles []model.Article) ([]byte, error) {
	return json.Marshal(articles)
}

func decode(data []byte) ([]model.Article, error) {
	var articles []model.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
