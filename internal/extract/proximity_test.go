package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/execdiscovery/internal/model"
)

func newTestAttributor(t *testing.T, window int) (*Attributor, *NameExtractor, *ContactExtractor) {
	t.Helper()
	rules, err := DefaultRules()
	require.NoError(t, err)
	titles := NewTitleClassifier(rules.Titles)
	return NewAttributor(window, titles), NewNameExtractor(rules), NewContactExtractor()
}

func TestAttribute_NameTitleAndContactsInOneSentence(t *testing.T) {
	attr, nx, cx := newTestAttributor(t, 250)

	text := "Our Managing Director John Smith can be reached at john.smith@acmeplumbing.co.uk or 020 7946 0958."
	names := nx.Extract(text)
	contacts := cx.Extract(text, "acmeplumbing.co.uk")

	execs := attr.Attribute(text, names, contacts)

	require.Len(t, execs, 1)
	e := execs[0]
	assert.Equal(t, "John Smith", e.Candidate.Raw)
	assert.Equal(t, "Managing Director", e.Title)
	assert.Equal(t, model.TierTopLeadership, e.Tier)

	require.NotNil(t, e.Email)
	assert.Equal(t, "john.smith@acmeplumbing.co.uk", e.Email.Value)
	assert.GreaterOrEqual(t, e.Email.Confidence, 0.9)

	require.NotNil(t, e.Phone)
	assert.Equal(t, "020 7946 0958", e.Phone.Raw)

	assert.Nil(t, e.LinkedIn)
	assert.Equal(t, 80, e.CompletenessPercentage)
	// Known first name (0.80) plus the title bonus.
	assert.InDelta(t, 0.90, e.Confidence, 1e-9)
}

func TestAttribute_ContactOutsideWindowNotAttributed(t *testing.T) {
	attr, nx, cx := newTestAttributor(t, 100)

	filler := strings.Repeat("We cover boiler repairs across the region. ", 10)
	text := "John Smith founded the company. " + filler + "General enquiries: office@acmeplumbing.co.uk"
	names := nx.Extract(text)
	contacts := cx.Extract(text, "acmeplumbing.co.uk")

	require.NotEmpty(t, names)
	require.NotEmpty(t, contacts)

	execs := attr.Attribute(text, names, contacts)

	require.Len(t, execs, 1)
	assert.Nil(t, execs[0].Email)
	assert.Equal(t, 0, execs[0].CompletenessPercentage)
}

func TestAttribute_SharedContactAttachesToBothPeople(t *testing.T) {
	attr, nx, cx := newTestAttributor(t, 250)

	text := "John Smith and Sarah Jones run the firm. Email: office@acmeplumbing.co.uk"
	names := nx.Extract(text)
	require.Len(t, names, 2)
	contacts := cx.Extract(text, "acmeplumbing.co.uk")

	execs := attr.Attribute(text, names, contacts)

	require.Len(t, execs, 2)
	for _, e := range execs {
		require.NotNil(t, e.Email, "contact within both windows attaches to both: %s", e.Candidate.Raw)
		assert.Equal(t, "office@acmeplumbing.co.uk", e.Email.Value)
	}
}

func TestAttribute_BestContactPerTypeWins(t *testing.T) {
	attr, nx, cx := newTestAttributor(t, 250)

	text := "Director Sarah Jones: sarah@acmeplumbing.co.uk or sarah.j@gmail.com"
	names := nx.Extract(text)
	contacts := cx.Extract(text, "acmeplumbing.co.uk")

	execs := attr.Attribute(text, names, contacts)

	require.Len(t, execs, 1)
	require.NotNil(t, execs[0].Email)
	assert.Equal(t, "sarah@acmeplumbing.co.uk", execs[0].Email.Value)
}

func TestAttribute_NoTitleLowerConfidence(t *testing.T) {
	attr, nx, cx := newTestAttributor(t, 250)

	withTitle := attr.Attribute("Owner John Smith welcomes you.", nx.Extract("Owner John Smith welcomes you."), nil)
	without := attr.Attribute("John Smith welcomes you.", nx.Extract("John Smith welcomes you."), cx.Extract("John Smith welcomes you.", ""))

	require.Len(t, withTitle, 1)
	require.Len(t, without, 1)
	assert.Greater(t, withTitle[0].Confidence, without[0].Confidence)
	assert.Equal(t, model.TierOther, without[0].Tier)
	assert.Empty(t, without[0].Title)
}

func TestAttribute_DefaultWindow(t *testing.T) {
	attr, _, _ := newTestAttributor(t, 0)
	assert.Equal(t, 250, attr.Window)
}
