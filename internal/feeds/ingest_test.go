package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/dailybrief/internal/database"
	"github.com/zfogg/dailybrief/internal/repository"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test feed</title>
<link>https://example.com</link>
<description>Test</description>
%s
</channel>
</rss>`

func rssItem(title, description, pubDate string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>https://example.com/%s</link><description><![CDATA[%s]]></description><pubDate>%s</pubDate></item>`,
		title, uuid.NewString(), description, pubDate)
}

type IngestTestSuite struct {
	suite.Suite
	store  *repository.Store
	server *httptest.Server
}

func TestIngestSuite(t *testing.T) {
	suite.Run(t, new(IngestTestSuite))
}

func (suite *IngestTestSuite) SetupTest() {
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), nil)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), database.MigrateDB(db))
	suite.store = repository.NewGormStore(db)

	items := rssItem("Rover finds ancient lake bed", "<p>Scientists <b>confirm</b> the find.</p><script>x()</script>", "Sat, 13 Apr 2024 09:00:00 GMT") +
		rssItem("Best telescopes for beginners", "Shopping", "Sat, 13 Apr 2024 10:00:00 GMT") +
		rssItem("Probe launches toward Europa", "Launch day", "Sat, 13 Apr 2024 12:00:00 GMT") +
		rssItem("Old story", "Yesterday", "Fri, 12 Apr 2024 12:00:00 GMT")

	mux := http.NewServeMux()
	mux.HandleFunc("/science.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssTemplate, items)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	mux.HandleFunc("/slow.xml", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	suite.server = httptest.NewServer(mux)
}

func (suite *IngestTestSuite) TearDownTest() {
	suite.server.Close()
	_ = suite.store.Close()
}

func (suite *IngestTestSuite) ingester(paths ...string) *Ingester {
	var urls []string
	for _, p := range paths {
		urls = append(urls, suite.server.URL+p)
	}
	return NewIngester(suite.server.Client(), suite.store.Articles, Options{
		Sources:     map[string][]string{"science": urls},
		FeedTimeout: 200 * time.Millisecond,
		MaxPerTopic: 5,
	})
}

func (suite *IngestTestSuite) TestKeepsInterestingEntriesFromTheDate() {
	in := suite.ingester("/science.xml", "/broken.xml", "/slow.xml")

	report, err := in.IngestTopic(context.Background(), "science", "2024-04-13")
	suite.Require().NoError(err)
	suite.Equal(1, report.Fetched)
	suite.Equal(2, report.Failed)
	suite.Equal(2, report.Stored)

	articles, err := suite.store.Articles.Find(context.Background(), "2024-04-13", "science")
	suite.Require().NoError(err)
	suite.Require().Len(articles, 2)

	// Newest entry first
	suite.Equal("Probe launches toward Europa", articles[0].Headline)
	suite.Equal("Rover finds ancient lake bed", articles[1].Headline)
	suite.Equal("Scientists confirm the find.", articles[1].Text)
	suite.Equal([]string{suite.server.URL + "/science.xml"}, []string(articles[1].Sources))
	suite.Equal("🔬", articles[1].Emoji)
}

func (suite *IngestTestSuite) TestRerunDoesNotDuplicate() {
	in := suite.ingester("/science.xml")

	_, err := in.IngestTopic(context.Background(), "science", "2024-04-13")
	suite.Require().NoError(err)
	report, err := in.IngestTopic(context.Background(), "science", "2024-04-13")
	suite.Require().NoError(err)
	suite.Equal(0, report.Stored)

	articles, err := suite.store.Articles.Find(context.Background(), "2024-04-13", "science")
	suite.Require().NoError(err)
	suite.Len(articles, 2)
}

func (suite *IngestTestSuite) TestMaxPerTopic() {
	in := suite.ingester("/science.xml")
	in.opts.MaxPerTopic = 1

	report, err := in.IngestTopic(context.Background(), "science", "2024-04-13")
	suite.Require().NoError(err)
	suite.Equal(1, report.Stored)
}

func (suite *IngestTestSuite) TestAllFeedsFailing() {
	in := suite.ingester("/broken.xml")

	_, err := in.IngestTopic(context.Background(), "science", "2024-04-13")
	suite.Error(err)
}

func (suite *IngestTestSuite) TestRejectsUnknownTopicAndBadDate() {
	in := suite.ingester("/science.xml")

	_, err := in.IngestTopic(context.Background(), "knitting", "2024-04-13")
	suite.Error(err)
	_, err = in.IngestTopic(context.Background(), "science", "13/04/2024")
	suite.Error(err)
	_, err = in.IngestAll(context.Background(), "13/04/2024")
	suite.Error(err)
}

func (suite *IngestTestSuite) TestIngestAllSkipsTopicsWithoutFeeds() {
	in := suite.ingester("/science.xml")

	reports, err := in.IngestAll(context.Background(), "2024-04-13")
	suite.Require().NoError(err)
	suite.Len(reports, 8)
	for _, r := range reports {
		if r.Topic == "science" {
			suite.Equal(2, r.Stored)
		} else {
			suite.Zero(r.Stored)
		}
	}
}

func TestInteresting(t *testing.T) {
	tests := []struct {
		headline string
		want     bool
	}{
		{"Central bank holds rates steady", true},
		{"The 10 best laptops of 2024", false},
		{"Save $200 on noise-cancelling headphones", false},
		{"Everything you need to know about the eclipse", false},
		{"  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.headline, func(t *testing.T) {
			assert.Equal(t, tt.want, Interesting(tt.headline))
		})
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "", StripHTML("   "))
	assert.Equal(t, "plain text", StripHTML("plain   text"))
	assert.Equal(t, "Hello world", StripHTML("<div><p>Hello</p> <style>p{}</style><em>world</em></div>"))
}
