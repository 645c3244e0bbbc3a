package songs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSearchFilterEmptyQueryMatchesEverything(t *testing.T) {
	assert.Equal(t, bson.M{}, searchFilter(""))
	assert.Equal(t, bson.M{}, searchFilter("   "))
	assert.Equal(t, bson.M{}, searchFilter("\t\n"))
}

func TestSearchFilterTrimsAndBuildsTextPredicate(t *testing.T) {
	want := bson.M{"$text": bson.M{"$search": "daft punk"}}
	assert.Equal(t, want, searchFilter("  daft punk  "))
}

func TestSortNewestFirst(t *testing.T) {
	want := bson.D{{Key: "createdAt", Value: -1}}
	assert.Equal(t, want, sortNewestFirst())
}
