package db

import (
	"fmt"
	"iter"
	"time"

	"github.com/tekpartner/topic-importer/internal/models"
)

// FormatTopic renders one stored topic for the list command.
func FormatTopic(t models.Topic) string {
	if t.Done {
		return fmt.Sprintf("%s : %s (done)", t.ID, t.Description)
	}
	return fmt.Sprintf("%s : %s (created %s)", t.ID, t.Description, t.Created.Format(time.RFC3339))
}

// FormatTopics drains topics into display lines, stopping at the first error.
func FormatTopics(topics iter.Seq2[models.Topic, error]) ([]string, error) {
	var lines []string
	for t, err := range topics {
		if err != nil {
			return lines, err
		}
		lines = append(lines, FormatTopic(t))
	}
	return lines, nil
}
