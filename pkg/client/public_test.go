package client_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/client"
	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF\n")

// seedProject 直接通过服务层创建项目与一份文档.
func seedProject(t *testing.T, ts *testServer, projectID string) *types.Document {
	t.Helper()

	_, err := service.NewProjectService(ts.Ctx).Create(ts.Ctx, &types.CreateProjectRequest{
		ID: projectID, Name: "Kitchen remodel", ClientName: "ACME",
	})
	require.NoError(t, err)

	doc, err := service.NewDocumentService(ts.Ctx).Create(ts.Ctx, projectID, &types.CreateDocumentRequest{
		Title: "Offer",
		PDF:   "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(samplePDF),
	})
	require.NoError(t, err)

	return doc
}

func TestPublicGateFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	doc := seedProject(t, ts, "proj-pub")

	grant, err := ts.Client.Shares().Issue(ctx, "proj-pub", client.IssueOptions{})
	require.NoError(t, err)

	pub := ts.Client.Public()

	p, err := pub.GetProject(ctx, grant.Token, grant.PIN)
	require.NoError(t, err)
	assert.Equal(t, "proj-pub", p.ID)
	assert.Equal(t, "Kitchen remodel", p.Name)

	docs, err := pub.GetDocuments(ctx, "proj-pub", grant.PIN)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)

	for range 2 {
		pdf, err := pub.DownloadDocumentPDF(ctx, doc.ID, grant.PIN)
		require.NoError(t, err)
		assert.Equal(t, samplePDF, pdf)
	}

	updated, err := pub.UpdateDocumentStatus(ctx, client.StatusUpdate{
		DocumentID: doc.ID,
		Status:     client.StatusApproved,
		Comment:    "ok for us",
		ProjectID:  "proj-pub",
		ClientID:   "client-7",
	}, grant.PIN)
	require.NoError(t, err)
	assert.Equal(t, client.StatusApproved, updated.ClientStatus)
	assert.Equal(t, "ok for us", updated.ClientComment)
	assert.NotNil(t, updated.StatusUpdatedAt)
}

func TestPublicGateErrors(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	doc := seedProject(t, ts, "proj-err")

	grant, err := ts.Client.Shares().Issue(ctx, "proj-err", client.IssueOptions{})
	require.NoError(t, err)

	pub := ts.Client.Public()

	_, err = pub.GetProject(ctx, grant.Token, "000000")
	assertPublicError(t, err, http.StatusUnauthorized, client.ErrAccessDenied)
	assert.False(t, errors.Is(err, client.ErrGrantExpired))

	_, err = pub.GetProject(ctx, "sh_unknown", grant.PIN)
	assertPublicError(t, err, http.StatusUnauthorized, client.ErrAccessDenied)

	_, err = pub.DownloadDocumentPDF(ctx, doc.ID, "000000")
	assertPublicError(t, err, http.StatusUnauthorized, client.ErrAccessDenied)

	_, err = pub.UpdateDocumentStatus(ctx, client.StatusUpdate{
		DocumentID: doc.ID, Status: "maybe", ProjectID: "proj-err",
	}, grant.PIN)
	assertPublicError(t, err, http.StatusBadRequest, nil)

	wrongKey, err := client.New(client.Config{BaseURL: ts.URL, PublicAPIKey: "nope"})
	require.NoError(t, err)

	_, err = wrongKey.Public().GetProject(ctx, grant.Token, grant.PIN)
	assertPublicError(t, err, http.StatusUnauthorized, client.ErrAccessDenied)
}

func TestPublicGateExpiredGrant(t *testing.T) {
	ts := newTestServer(t)
	seedProject(t, ts, "proj-old")

	require.NoError(t, ctxPkg.GetDBClient(ts.Ctx).GetDB().Create(&model.ShareGrant{
		Token:     "sh_expired",
		ProjectID: "proj-old",
		PIN:       "424242",
		ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)

	_, err := ts.Client.Public().GetProject(context.Background(), "sh_expired", "424242")
	assertPublicError(t, err, http.StatusGone, client.ErrGrantExpired)

	_, err = ts.Client.Public().GetDocuments(context.Background(), "proj-old", "424242")
	assertPublicError(t, err, http.StatusGone, client.ErrGrantExpired)
}

func TestPublicGateGrantExpiresWhileCached(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	doc := seedProject(t, ts, "proj-short")

	expires := time.Now().Add(1500 * time.Millisecond)
	grant, err := ts.Client.Shares().Issue(ctx, "proj-short", client.IssueOptions{ExpiresAt: &expires})
	require.NoError(t, err)

	pub := ts.Client.Public()

	// 预热授权缓存与 PDF 响应缓存
	_, err = pub.GetProject(ctx, grant.Token, grant.PIN)
	require.NoError(t, err)

	for range 3 {
		pdf, err := pub.DownloadDocumentPDF(ctx, doc.ID, grant.PIN)
		require.NoError(t, err)
		assert.Equal(t, samplePDF, pdf)
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(time.Until(expires) + 300*time.Millisecond)

	_, err = pub.GetProject(ctx, grant.Token, grant.PIN)
	assertPublicError(t, err, http.StatusGone, client.ErrGrantExpired)

	_, err = pub.GetDocuments(ctx, "proj-short", grant.PIN)
	assertPublicError(t, err, http.StatusGone, client.ErrGrantExpired)

	_, err = pub.DownloadDocumentPDF(ctx, doc.ID, grant.PIN)
	assertPublicError(t, err, http.StatusGone, client.ErrGrantExpired)
}

func assertPublicError(t *testing.T, err error, status int, sentinel error) {
	t.Helper()

	var pe *client.PublicAccessError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, status, pe.Status)

	if sentinel != nil {
		assert.ErrorIs(t, err, sentinel)
	}
}
