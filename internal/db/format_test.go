package db

import (
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekpartner/topic-importer/internal/models"
)

func TestFormatTopic(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "7 : Paid time off (created 2024-03-01T09:30:00Z)",
		FormatTopic(models.Topic{ID: "7", Description: "Paid time off", Created: created}))
	assert.Equal(t, "7 : Paid time off (done)",
		FormatTopic(models.Topic{ID: "7", Description: "Paid time off", Created: created, Done: true}))
}

func TestFormatTopics_StopsAtError(t *testing.T) {
	t.Parallel()

	boom := errors.New("page failed")
	var seq iter.Seq2[models.Topic, error] = func(yield func(models.Topic, error) bool) {
		if !yield(models.Topic{ID: "1", Description: "first", Done: true}, nil) {
			return
		}
		if !yield(models.Topic{}, boom) {
			return
		}
		yield(models.Topic{ID: "3"}, nil)
	}

	lines, err := FormatTopics(seq)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"1 : first (done)"}, lines)
}
