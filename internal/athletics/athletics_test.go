package athletics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/pfrederiksen/du-scraper/internal/fetch"
	"github.com/pfrederiksen/du-scraper/internal/markup"
	"github.com/pfrederiksen/du-scraper/internal/storage"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/athletics_home.html")
	require.NoError(t, err, "failed to load test fixture")
	return data
}

func TestDefaultLocators_Valid(t *testing.T) {
	require.NoError(t, DefaultLocators.Validate())
}

func TestExtract_Fixture(t *testing.T) {
	doc, err := markup.ParseBytes(loadFixture(t))
	require.NoError(t, err)

	evt, missing := Extract(doc, DefaultLocators)

	require.Equal(t, Event{
		DUTeam:   "Men's Ice Hockey",
		Opponent: "Colorado College",
		Date:     "Fri, Jan 24 / 7:00 PM MT",
	}, evt)
	require.Empty(t, missing)
}

func TestExtract_LayoutShifted(t *testing.T) {
	doc, err := markup.ParseString(`
		<main id="main-content">
		  <section>
		    <div class="c-scoreboard__team--away"><span class="c-scoreboard__sport">Gymnastics</span></div>
		  </section>
		</main>`)
	require.NoError(t, err)

	evt, missing := Extract(doc, DefaultLocators)

	require.Equal(t, "Gymnastics", evt.DUTeam)
	require.Equal(t, "", evt.Opponent)
	require.Equal(t, "", evt.Date)
	require.Equal(t, []string{FieldOpponent, FieldDate}, missing)
}

func TestExtract_OverriddenLocator(t *testing.T) {
	locators, err := DefaultLocators.Override(map[string]string{
		FieldDate: ".slick-current .c-scoreboard__datetime > div",
	})
	require.NoError(t, err)

	doc, err := markup.ParseBytes(loadFixture(t))
	require.NoError(t, err)

	evt, _ := Extract(doc, locators)
	require.Equal(t, "Fri, Jan 24 / 7:00 PM MT", evt.Date)
}

func TestTaskRun(t *testing.T) {
	page := loadFixture(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(page) // nolint:errcheck
	}))
	defer server.Close()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	res, err := NewTask(fetch.New(fetch.Options{}), store, server.URL, nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Records)

	var out Result
	require.NoError(t, store.ReadJSON(OutputFile, &out))
	require.Equal(t, Result{Events: []Event{{
		DUTeam:   "Men's Ice Hockey",
		Opponent: "Colorado College",
		Date:     "Fri, Jan 24 / 7:00 PM MT",
	}}}, out)
}

func TestTaskRun_EmptyPageStillWrites(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>")) // nolint:errcheck
	}))
	defer server.Close()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	_, err = NewTask(fetch.New(fetch.Options{}), store, server.URL, nil).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(store.Dir() + "/" + OutputFile)
	require.NoError(t, err)
	require.JSONEq(t, `{"events":[{"duTeam":"","opponent":"","date":""}]}`, string(data))
}

func TestTaskRun_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	_, err = NewTask(fetch.New(fetch.Options{}), store, server.URL, nil).Run(context.Background())
	require.Error(t, err)

	var fe *fetch.FetchError
	require.ErrorAs(t, err, &fe)
}
