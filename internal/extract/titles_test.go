package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/execdiscovery/internal/model"
)

func newTestClassifier(t *testing.T) *TitleClassifier {
	t.Helper()
	rules, err := DefaultRules()
	require.NoError(t, err)
	return NewTitleClassifier(rules.Titles)
}

func TestClassify_Tiers(t *testing.T) {
	tc := newTestClassifier(t)

	assert.Equal(t, model.TierTopLeadership, tc.Classify("Managing Director"))
	assert.Equal(t, model.TierTopLeadership, tc.Classify("CEO"))
	assert.Equal(t, model.TierTopLeadership, tc.Classify("Founder & Owner"))
	assert.Equal(t, model.TierMidManagement, tc.Classify("Director"))
	assert.Equal(t, model.TierMidManagement, tc.Classify("Head of Sales"))
	assert.Equal(t, model.TierOther, tc.Classify("Site Supervisor"))
	assert.Equal(t, model.TierOther, tc.Classify("Apprentice Electrician"))
	assert.Equal(t, model.TierOther, tc.Classify(""))
}

func TestClassify_CaseInsensitive(t *testing.T) {
	tc := newTestClassifier(t)

	assert.Equal(t, model.TierTopLeadership, tc.Classify("managing director"))
	assert.Equal(t, model.TierTopLeadership, tc.Classify("MANAGING DIRECTOR"))
}

func TestFindNearby_LongestMatchWins(t *testing.T) {
	tc := newTestClassifier(t)

	text := "Our Managing Director John Smith looks after every project."
	title, tier, ok := tc.FindNearby(text, 22, 80)

	require.True(t, ok)
	assert.Equal(t, "Managing Director", title)
	assert.Equal(t, model.TierTopLeadership, tier)
}

func TestFindNearby_OutsideWindow(t *testing.T) {
	tc := newTestClassifier(t)

	pad := make([]byte, 200)
	for i := range pad {
		pad[i] = 'x'
	}
	text := "Director " + string(pad) + " John Smith"

	_, _, ok := tc.FindNearby(text, len(text)-10, 80)
	assert.False(t, ok)
}

func TestFindNearby_NoTitle(t *testing.T) {
	tc := newTestClassifier(t)

	_, tier, ok := tc.FindNearby("John Smith enjoys long walks.", 0, 80)
	assert.False(t, ok)
	assert.Equal(t, model.TierOther, tier)
}
