package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/client"
)

var sixDigitPIN = regexp.MustCompile(`^[0-9]{6}$`)

func TestIssueAndFetchActiveShare(t *testing.T) {
	ts := newTestServer(t)
	shares := ts.Client.Shares()
	ctx := context.Background()

	expires := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	g, err := shares.Issue(ctx, "proj-2", client.IssueOptions{ExpiresAt: &expires})
	require.NoError(t, err)

	assert.NotEmpty(t, g.ShareLink)
	assert.Regexp(t, sixDigitPIN, g.PIN)
	assert.True(t, g.ExpiresAt.Equal(expires), "expiresAt = %s", g.ExpiresAt)

	active, err := shares.FetchActive(ctx, "proj-2")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, g.Token, active.Token)
	assert.Equal(t, g.PIN, active.PIN)
	assert.Equal(t, g.ShareLink, active.ShareLink)

	cur, ok := shares.Current("proj-2")
	require.True(t, ok)
	assert.Equal(t, g.Token, cur.Token)
}

func TestFetchActiveWithoutGrantIsNil(t *testing.T) {
	ts := newTestServer(t)

	g, err := ts.Client.Shares().FetchActive(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestReissueReplacesOnlyThatProject(t *testing.T) {
	ts := newTestServer(t)
	shares := ts.Client.Shares()
	ctx := context.Background()

	a1, err := shares.Issue(ctx, "proj-a", client.IssueOptions{})
	require.NoError(t, err)

	b, err := shares.Issue(ctx, "proj-b", client.IssueOptions{})
	require.NoError(t, err)

	a2, err := shares.Issue(ctx, "proj-a", client.IssueOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, a1.Token, a2.Token)

	curA, _ := shares.Current("proj-a")
	curB, _ := shares.Current("proj-b")
	assert.Equal(t, a2.Token, curA.Token)
	assert.Equal(t, b.Token, curB.Token)

	activeB, err := shares.FetchActive(ctx, "proj-b")
	require.NoError(t, err)
	assert.Equal(t, b.Token, activeB.Token)
}

func TestIssueWithoutProjectFailsBeforeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	c := newOfflineClient(t, client.Config{BaseURL: srv.URL})

	_, err := c.Shares().Issue(context.Background(), "", client.IssueOptions{})
	assert.ErrorIs(t, err, client.ErrProjectIDRequired)

	_, ok := c.Shares().Current("")
	assert.False(t, ok)
}
