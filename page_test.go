package serp_test

import (
	"testing"

	"github.com/fwojciec/serp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingLevel_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "h1", serp.H1.String())
	assert.Equal(t, "h6", serp.H6.String())
	assert.True(t, serp.H3.Valid())
	assert.False(t, serp.HeadingLevel(7).Valid())
	assert.False(t, serp.HeadingLevel(0).Valid())
}

func TestHeadings_Add(t *testing.T) {
	t.Parallel()

	t.Run("trims text and keeps document order", func(t *testing.T) {
		t.Parallel()

		h := serp.NewHeadings()
		h.Add(serp.H2, "  First  ")
		h.Add(serp.H2, "Second")

		assert.Equal(t, []string{"First", "Second"}, h.Level(serp.H2))
	})

	t.Run("drops blank and whitespace-only text", func(t *testing.T) {
		t.Parallel()

		h := serp.NewHeadings()

		assert.False(t, h.Add(serp.H1, ""))
		assert.False(t, h.Add(serp.H1, " \n\t "))
		assert.Empty(t, h.Level(serp.H1))
		assert.NotNil(t, h.Level(serp.H1))
	})

	t.Run("ignores invalid level", func(t *testing.T) {
		t.Parallel()

		h := serp.NewHeadings()

		assert.False(t, h.Add(serp.HeadingLevel(9), "Nope"))
		assert.Nil(t, h.Level(serp.HeadingLevel(9)))
		assert.Equal(t, 0, h.Total())
	})

	t.Run("counts per level and in total", func(t *testing.T) {
		t.Parallel()

		h := serp.NewHeadings()
		h.Add(serp.H1, "Title")
		h.Add(serp.H3, "A")
		h.Add(serp.H3, "B")

		assert.Equal(t, 1, h.Count(serp.H1))
		assert.Equal(t, 2, h.Count(serp.H3))
		assert.Equal(t, 3, h.Total())
	})
}

func TestNewPageRecord(t *testing.T) {
	t.Parallel()

	t.Run("copies elements and filters blank headings", func(t *testing.T) {
		t.Parallel()

		e := &serp.Elements{
			Title:           "Title",
			MetaDescription: "Description",
			Headings: serp.Headings{
				H1: []string{"Main", "  "},
				H2: []string{" Sub "},
			},
		}

		rec := serp.NewPageRecord("https://example.com", e)

		assert.Equal(t, "https://example.com", rec.URL)
		assert.Equal(t, "Title", rec.Title)
		assert.Equal(t, "Description", rec.MetaDescription)
		assert.Equal(t, []string{"Main"}, rec.H1)
		assert.Equal(t, []string{"Sub"}, rec.H2)
		assert.Equal(t, []string{}, rec.H6)
		assert.Zero(t, rec.Rank)
	})
}

func TestPageRecord_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *serp.PageRecord {
		rec := serp.NewPageRecord("https://example.com", &serp.Elements{})
		rec.Rank = 1
		return rec
	}

	t.Run("accepts a ranked record", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, valid().Validate())
	})

	t.Run("requires URL", func(t *testing.T) {
		t.Parallel()

		rec := valid()
		rec.URL = ""

		err := rec.Validate()
		assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
	})

	t.Run("requires positive rank", func(t *testing.T) {
		t.Parallel()

		rec := valid()
		rec.Rank = 0

		err := rec.Validate()
		assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
	})

	t.Run("rejects blank heading", func(t *testing.T) {
		t.Parallel()

		rec := valid()
		rec.H4 = []string{"ok", "   "}

		err := rec.Validate()
		assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
		assert.Contains(t, serp.ErrorMessage(err), "h4")
	})
}
