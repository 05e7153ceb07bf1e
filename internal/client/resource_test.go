package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panel/internal/models"
)

func TestCollectionDiscardsStaleResponses(t *testing.T) {
	var c collection[string]

	first := c.begin()
	second := c.begin()

	// The slower first fetch lands after the second started; it must
	// not clobber the newer state.
	applied := c.finish(first, []string{"stale"}, models.PageOf(1, 1, 10), nil)
	assert.False(t, applied)

	items, _, loading, _ := c.snapshot()
	assert.Empty(t, items)
	assert.True(t, loading, "loading stays set until the latest fetch lands")

	applied = c.finish(second, []string{"fresh"}, models.PageOf(1, 1, 10), nil)
	assert.True(t, applied)

	items, page, loading, errMsg := c.snapshot()
	require.Equal(t, []string{"fresh"}, items)
	assert.Equal(t, 1, page.TotalCount)
	assert.False(t, loading)
	assert.Empty(t, errMsg)
}

func TestCollectionRetainsItemsOnError(t *testing.T) {
	var c collection[string]

	gen := c.begin()
	require.True(t, c.finish(gen, []string{"a", "b"}, models.PageOf(2, 1, 10), nil))

	gen = c.begin()
	require.True(t, c.finish(gen, nil, models.Page{}, errors.New("boom")))

	items, _, loading, errMsg := c.snapshot()
	assert.Equal(t, []string{"a", "b"}, items, "error must not clear prior items")
	assert.False(t, loading)
	assert.Equal(t, "boom", errMsg)

	gen = c.begin()
	require.True(t, c.finish(gen, []string{"c"}, models.PageOf(1, 1, 10), nil))
	_, _, _, errMsg = c.snapshot()
	assert.Empty(t, errMsg, "success clears the retained error")
}

func TestListParamsEncode(t *testing.T) {
	assert.Empty(t, ListParams{}.encode())

	got := ListParams{
		Search:    "acme corp",
		Status:    "active",
		SortBy:    "name",
		SortOrder: "desc",
		Page:      2,
		Limit:     25,
	}.encode()
	assert.Equal(t, "?limit=25&page=2&search=acme+corp&sortBy=name&sortOrder=desc&status=active", got)
}
