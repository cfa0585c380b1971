package main

import "strings"

// Handle counts the words in payload["text"].
func Handle(payload map[string]any) (map[string]any, error) {
	text, _ := payload["text"].(string)
	words := len(strings.Fields(text))
	return map[string]any{
		"words": words,
		"evidence": []any{
			map[string]any{
				"kind": "wordcount-report",
				"payload": map[string]any{
					"words": words,
					"chars": len(text),
				},
			},
		},
	}, nil
}
