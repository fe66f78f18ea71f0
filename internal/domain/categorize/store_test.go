package categorize

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileRuleStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")

	store, err := NewFileRuleStore(path, "", testLogger())
	require.NoError(t, err)
	assert.Empty(t, store.Rules())

	added, err := store.Add("bunnings", SectionOpex, CatMaintenance)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add("stratacare australia", SectionOpex, CatStrata)
	require.NoError(t, err)
	assert.True(t, added)

	// A second process loading the same file sees both rules.
	reloaded, err := NewFileRuleStore(path, "", testLogger())
	require.NoError(t, err)

	rules := reloaded.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "bunnings", rules[0].Keyword)
	assert.Equal(t, CatMaintenance, rules[0].Category)
	assert.True(t, rules[0].Learned)
	assert.Equal(t, "stratacare australia", rules[1].Keyword)
}

func TestFileRuleStoreDedupe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	store, err := NewFileRuleStore(path, "", testLogger())
	require.NoError(t, err)

	added, err := store.Add("bunnings", SectionOpex, CatMaintenance)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add("Bunnings", SectionOpex, CatCleaning)
	require.NoError(t, err)
	assert.False(t, added, "same keyword must not be re-minted")
	assert.Len(t, store.Rules(), 1)
}

func TestFileRuleStoreValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	store, err := NewFileRuleStore(path, "", testLogger())
	require.NoError(t, err)

	_, err = store.Add("ab", SectionOpex, CatMaintenance)
	assert.Error(t, err, "keyword under 3 characters")

	_, err = store.Add("groceries", SectionOpex, "Groceries")
	assert.Error(t, err, "category outside the vocabulary")

	_, err = store.Add("whatever", SectionOpex, CatMiscellaneous)
	assert.Error(t, err, "miscellaneous is the fallback, never a rule")
}

func TestFileRuleStoreSectionIsCanonical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	store, err := NewFileRuleStore(path, "", testLogger())
	require.NoError(t, err)

	// Caller claims income; Electricity is a utility and stays one.
	_, err = store.Add("powershop", SectionIncome, CatElectricity)
	require.NoError(t, err)

	rules := store.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, SectionUtilities, rules[0].Section)
}

func TestFileRuleStoreSkipsInvalidEntriesOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	raw := []LearnedRule{
		{Keyword: "bunnings", Section: SectionOpex, Category: CatMaintenance},
		{Keyword: "x", Section: SectionOpex, Category: CatMaintenance},
		{Keyword: "badcat", Section: SectionOpex, Category: "Nonsense"},
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store, err := NewFileRuleStore(path, "", testLogger())
	require.NoError(t, err)
	assert.Len(t, store.Rules(), 1)
}

func TestFileRuleStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileRuleStore(path, "", testLogger())
	assert.Error(t, err)
}

func TestFileRuleStoreMirror(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "rules.json")
	store, err := NewFileRuleStore(path, srv.URL, testLogger())
	require.NoError(t, err)

	_, err = store.Add("bunnings", SectionOpex, CatMaintenance)
	require.NoError(t, err)

	select {
	case body := <-received:
		var mirrored []LearnedRule
		require.NoError(t, json.Unmarshal(body, &mirrored))
		require.Len(t, mirrored, 1)
		assert.Equal(t, "bunnings", mirrored[0].Keyword)
	case <-time.After(5 * time.Second):
		t.Fatal("mirror upload never arrived")
	}
}

func TestFileRuleStoreMirrorFailureDoesNotBlockAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	store, err := NewFileRuleStore(path, "http://127.0.0.1:1/unreachable", testLogger())
	require.NoError(t, err)

	added, err := store.Add("bunnings", SectionOpex, CatMaintenance)
	require.NoError(t, err)
	assert.True(t, added)
}
