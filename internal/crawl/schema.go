package crawl

// ArticleSchema is the JSON schema requested from extraction backends: an
// object whose "articles" field is an array of string-valued article records.
func ArticleSchema() map[string]any {
	field := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"articles": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":   field,
						"summary": field,
						"url":     field,
						"source":  field,
						"date":    field,
					},
					"required": []string{"title", "url"},
				},
			},
		},
		"required": []string{"articles"},
	}
}
