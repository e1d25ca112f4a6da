package service_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

var minimalPDF = []byte("%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF\n")

func TestPublicAccessFlow(t *testing.T) {
	ctx, _ := newTestContext(t)

	_, err := service.NewProjectService(ctx).Create(ctx, &types.CreateProjectRequest{
		ID: "proj-3", Name: "Kitchen", ClientName: "ACME",
	})
	require.NoError(t, err)

	doc, err := service.NewDocumentService(ctx).Create(ctx, "proj-3", &types.CreateDocumentRequest{
		Title: "Offer", PDF: dataURI("application/pdf", minimalPDF),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusPending, doc.ClientStatus)

	grant, err := service.NewShareService(ctx).Issue(ctx, "proj-3", nil)
	require.NoError(t, err)

	pub := service.NewPublicService(ctx)

	p, err := pub.GetProject(ctx, grant.Token, grant.PIN)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", p.Name)

	_, err = pub.GetProject(ctx, grant.Token, "000000")
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	docs, err := pub.ListDocuments(ctx, "proj-3", grant.PIN)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	updated, err := pub.UpdateDocumentStatus(ctx, doc.ID, &types.UpdateClientStatusRequest{
		Status: model.ClientStatusApproved, Comment: "looks good", ProjectID: "proj-3", ClientID: "c-1",
	}, grant.PIN)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusApproved, updated.ClientStatus)
	assert.NotNil(t, updated.StatusUpdatedAt)

	comments, err := pub.ListComments(ctx, "proj-3", grant.PIN)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.False(t, comments[0].IsAdminComment)
	assert.Equal(t, "looks good", comments[0].Text)

	_, err = pub.UpdateDocumentStatus(ctx, doc.ID, &types.UpdateClientStatusRequest{
		Status: model.ClientStatusRejected, ProjectID: "other",
	}, grant.PIN)
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	rc, _, err := pub.OpenDocumentPDF(ctx, doc.ID, grant.PIN)
	require.NoError(t, err)

	body, _ := io.ReadAll(rc)
	_ = rc.Close()

	assert.Equal(t, minimalPDF, body)

	_, _, err = pub.OpenDocumentPDF(ctx, "missing", grant.PIN)
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	rec, err := pub.UploadFile(ctx, "proj-3", &types.UploadFileRequest{
		Name: "signed.pdf", Content: dataURI("application/pdf", minimalPDF),
	}, grant.PIN)
	require.NoError(t, err)
	assert.Equal(t, model.UploadedByClient, rec.UploadedBy)
	assert.Equal(t, "proj-3", rec.ProjectID)
}

func TestDocumentRequiresPDF(t *testing.T) {
	ctx, _ := newTestContext(t)

	_, err := service.NewDocumentService(ctx).Create(ctx, "p", &types.CreateDocumentRequest{
		Title: "x", PDF: dataURI("text/plain", []byte("not a pdf")),
	})
	assert.ErrorIs(t, err, service.ErrUnsupportedMedia)
}

func TestCommentReplyMustBeInSameProject(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc := service.NewCommentService(ctx)

	root, err := svc.Create(ctx, "a", &types.CreateCommentRequest{Author: "Admin", Text: "hi"}, true)
	require.NoError(t, err)
	assert.True(t, root.IsAdminComment)

	reply, err := svc.Create(ctx, "a", &types.CreateCommentRequest{Author: "c", Text: "re", ReplyTo: root.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, root.ID, reply.ReplyTo)

	_, err = svc.Create(ctx, "b", &types.CreateCommentRequest{Author: "c", Text: "x", ReplyTo: root.ID}, false)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	list, err := svc.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, root.ID, list[0].ID)
}
