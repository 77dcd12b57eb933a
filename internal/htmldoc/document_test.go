package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<div class="job-card"><a href="/jobs/1">First</a></div>
<div class="job-card"><a href="/jobs/2">Second</a></div>
<div class="job-card"><a href="/jobs/1">First again</a></div>
</body></html>`

func TestDocumentValues(t *testing.T) {
	doc, err := Parse([]byte(listingPage))
	require.NoError(t, err)

	hrefs, err := doc.Values(`//div[@class='job-card']//a/@href`)
	require.NoError(t, err)
	require.Equal(t, []string{"/jobs/1", "/jobs/2", "/jobs/1"}, hrefs)
}

func TestDocumentValuesTrimsText(t *testing.T) {
	doc, err := Parse([]byte(`<html><body><h1>  Senior Gopher  </h1></body></html>`))
	require.NoError(t, err)

	titles, err := doc.Values("//h1")
	require.NoError(t, err)
	require.Equal(t, []string{"Senior Gopher"}, titles)
}

func TestDocumentFirst(t *testing.T) {
	doc, err := Parse([]byte(listingPage))
	require.NoError(t, err)

	val, ok, err := doc.First(`//div[@class='job-card']//a`)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "First", val)

	_, ok, err = doc.First("//article")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDocumentMatches(t *testing.T) {
	doc, err := Parse([]byte(listingPage))
	require.NoError(t, err)

	ok, err := doc.Matches(`//div[@class='job-card']`)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = doc.Matches(`//div[@class='job-details']`)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckExpr(t *testing.T) {
	require.NoError(t, CheckExpr(`//div[@class='job-card']//a/@href`))
	require.Error(t, CheckExpr("//div["))
}

func TestDocumentBadExpression(t *testing.T) {
	doc, err := Parse([]byte(listingPage))
	require.NoError(t, err)

	_, err = doc.Values("//div[")
	require.Error(t, err)
}
