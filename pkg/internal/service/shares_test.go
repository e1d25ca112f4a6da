package service_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func TestIssueAndFetchActive(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc := service.NewShareService(ctx)

	expires := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	g, err := svc.Issue(ctx, "proj-2", &types.IssueShareRequest{ExpiresAt: &expires})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(g.Token, service.ShareTokenPrefix))
	assert.Regexp(t, sixDigits, g.PIN)
	assert.True(t, g.ExpiresAt.Equal(expires))
	assert.Equal(t, "https://portal.example.com/share/"+g.Token, g.ShareLink)

	active, err := svc.FetchActive(ctx, "proj-2")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, g.Token, active.Token)
	assert.Equal(t, g.PIN, active.PIN)

	none, err := svc.FetchActive(ctx, "proj-other")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestIssueDefaultsAndValidation(t *testing.T) {
	ctx, _ := newTestContext(t, func(c *configs.AppConfig) {
		c.Share.MaxTTL = 365 * 24 * time.Hour
	})
	svc := service.NewShareService(ctx)

	g, err := svc.Issue(ctx, "p", nil)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), g.ExpiresAt, time.Minute)

	past := time.Now().Add(-time.Hour)
	_, err = svc.Issue(ctx, "p", &types.IssueShareRequest{ExpiresAt: &past})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	tooFar := time.Now().Add(5 * 365 * 24 * time.Hour)
	_, err = svc.Issue(ctx, "p", &types.IssueShareRequest{ExpiresAt: &tooFar})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = svc.Issue(ctx, "", nil)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestReissueKeepsOtherProjectsAndOlderGrants(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc := service.NewShareService(ctx)

	a1, err := svc.Issue(ctx, "a", nil)
	require.NoError(t, err)

	b, err := svc.Issue(ctx, "b", nil)
	require.NoError(t, err)

	a2, err := svc.Issue(ctx, "a", nil)
	require.NoError(t, err)

	activeB, err := svc.FetchActive(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, b.Token, activeB.Token)

	activeA, err := svc.FetchActive(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, a2.Token, activeA.Token)

	projectID, err := svc.VerifyToken(ctx, a1.Token, a1.PIN)
	require.NoError(t, err)
	assert.Equal(t, "a", projectID)
}

func TestVerifyDistinguishesOnlyExpiry(t *testing.T) {
	ctx, mgr := newTestContext(t)
	svc := service.NewShareService(ctx)

	g, err := svc.Issue(ctx, "p", nil)
	require.NoError(t, err)

	expired := model.ShareGrant{
		Token:     service.ShareTokenPrefix + "01hzexpired",
		ProjectID: "p-old",
		PIN:       "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, mgr.DB.WithContext(ctx).Create(&expired).Error)

	cases := []struct {
		name  string
		token string
		pin   string
		want  error
	}{
		{"wrong pin", g.Token, "000000x", service.ErrAccessDenied},
		{"unknown token", service.ShareTokenPrefix + "nope", g.PIN, service.ErrAccessDenied},
		{"not a token", "p", g.PIN, service.ErrAccessDenied},
		{"expired", expired.Token, "123456", service.ErrGrantExpired},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.VerifyToken(ctx, c.token, c.pin)
			assert.ErrorIs(t, err, c.want)
		})
	}

	assert.NoError(t, svc.VerifyProject(ctx, "p", g.PIN))
	assert.ErrorIs(t, svc.VerifyProject(ctx, "p", "999999x"), service.ErrAccessDenied)
	assert.ErrorIs(t, svc.VerifyProject(ctx, "p-old", "123456"), service.ErrGrantExpired)
}

func TestVerifyTokenUsesCache(t *testing.T) {
	ctx, mgr := newTestContext(t)
	svc := service.NewShareService(ctx)

	g, err := svc.Issue(ctx, "p", nil)
	require.NoError(t, err)

	keys, err := mgr.KV.Keys(ctx, service.ShareCacheNamespace+".*")
	require.NoError(t, err)
	assert.Contains(t, keys, service.ShareCacheNamespace+"."+g.Token)

	// 删除数据库记录后仍可经由缓存校验
	require.NoError(t, mgr.DB.WithContext(ctx).Unscoped().Where("token = ?", g.Token).Delete(&model.ShareGrant{}).Error)

	projectID, err := svc.VerifyToken(ctx, g.Token, g.PIN)
	require.NoError(t, err)
	assert.Equal(t, "p", projectID)
}

func TestSweepSoftDeletesLongExpiredGrants(t *testing.T) {
	ctx, mgr := newTestContext(t)
	svc := service.NewShareService(ctx)

	old := model.ShareGrant{
		Token:     service.ShareTokenPrefix + "old",
		ProjectID: "p",
		PIN:       "111111",
		ExpiresAt: time.Now().Add(-100 * 24 * time.Hour),
	}
	recent := model.ShareGrant{
		Token:     service.ShareTokenPrefix + "recent",
		ProjectID: "p",
		PIN:       "222222",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, mgr.DB.WithContext(ctx).Create([]*model.ShareGrant{&old, &recent}).Error)

	_, swept, err := svc.Sweep(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	assert.ErrorIs(t, svc.VerifyProject(ctx, "p", "111111"), service.ErrAccessDenied)
	assert.ErrorIs(t, svc.VerifyProject(ctx, "p", "222222"), service.ErrGrantExpired)
}
