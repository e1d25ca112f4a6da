package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/projecthub/pkg/cache"
	"github.com/yeisme/projecthub/pkg/filename"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/storage/kv"
	"github.com/yeisme/projecthub/pkg/internal/types"
	"github.com/yeisme/projecthub/pkg/metrics"
	"github.com/yeisme/projecthub/pkg/queue"
)

const (
	// ShareTokenPrefix 分享令牌前缀.
	ShareTokenPrefix = "sh_"
	// ShareCacheNamespace 分享记录在 KV 中的命名空间.
	ShareCacheNamespace = "share.v1"
)

// cachedGrant KV 中缓存的授权，包含校验所需的 PIN.
type cachedGrant struct {
	Token     string    `json:"token"`
	ProjectID string    `json:"project_id"`
	PIN       string    `json:"pin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareService 分享链接的签发、查询与校验.
type ShareService struct {
	deps
	now func() time.Time
}

// NewShareService 创建 ShareService.
func NewShareService(c context.Context) *ShareService {
	return &ShareService{deps: depsFrom(c), now: time.Now}
}

func (s *ShareService) grants() *cache.Cache {
	if s.kvc == nil {
		return nil
	}

	return cache.NewCache(s.kvc, ShareCacheNamespace)
}

// Issue 为项目签发新的令牌与 PIN，旧授权在过期前仍然有效.
func (s *ShareService) Issue(ctx context.Context, projectID string, req *types.IssueShareRequest) (*types.ShareGrant, error) {
	ctx, span := startSpan(ctx, "ShareService.Issue", attribute.String("project_id", projectID))
	defer span.End()

	if strings.TrimSpace(projectID) == "" {
		return nil, invalidf("projectId is required")
	}

	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	policy := s.cfg.Share

	expiresAt := now.Add(policy.DefaultTTL)
	if req != nil && req.ExpiresAt != nil && !req.ExpiresAt.IsZero() {
		expiresAt = req.ExpiresAt.UTC()
	}

	if !expiresAt.After(now) {
		return nil, invalidf("expiresAt must be in the future")
	}

	if policy.MaxTTL > 0 && expiresAt.Sub(now) > policy.MaxTTL {
		return nil, invalidf("expiresAt exceeds the maximum share lifetime of %s", policy.MaxTTL)
	}

	pin, err := newPIN(policy.PINLength)
	if err != nil {
		return nil, fmt.Errorf("generate pin: %w", err)
	}

	g := model.ShareGrant{
		Token:     ShareTokenPrefix + filename.NewIDAt(now),
		ProjectID: projectID,
		PIN:       pin,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}

	if req != nil {
		g.NotifyEmail = req.NotifyEmail
		g.NotifyLanguage = req.NotifyLanguage
	}

	if err := orm.Create(&g).Error; err != nil {
		return nil, fmt.Errorf("save share grant: %w", err)
	}

	s.cacheGrant(ctx, &g)

	metrics.SharesIssued.Inc()

	out := s.toShareGrant(&g)

	s.publish(ctx, s.cfg.Events.Share.Issued, queue.TopicShareIssued, func(p queue.Publisher) error {
		return queue.PublishShareIssued(ctx, p, queue.ShareIssuedPayload{
			ProjectID:      g.ProjectID,
			Token:          g.Token,
			ShareLink:      out.ShareLink,
			ExpiresAt:      g.ExpiresAt,
			NotifyEmail:    g.NotifyEmail,
			NotifyLanguage: g.NotifyLanguage,
		}, eventOpts(ctx)...)
	})

	l := s.logger(ctx, "share")
	l.Info().Str("project_id", projectID).Str("token", g.Token).Time("expires_at", expiresAt).Msg("share grant issued")

	return &out, nil
}

// FetchActive 返回项目最新的未过期授权，没有时返回 nil, nil.
func (s *ShareService) FetchActive(ctx context.Context, projectID string) (*types.ShareGrant, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var grants []model.ShareGrant
	if err := orm.Where("project_id = ? AND expires_at > ?", projectID, s.now().UTC()).
		Order("created_at DESC").Order("token DESC").Limit(1).
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("fetch active grant: %w", err)
	}

	if len(grants) == 0 {
		return nil, nil
	}

	out := s.toShareGrant(&grants[0])

	return &out, nil
}

// VerifyToken 校验令牌与 PIN，返回授权对应的项目 ID.
// 过期返回 ErrGrantExpired，令牌不存在或 PIN 不符统一返回 ErrAccessDenied.
func (s *ShareService) VerifyToken(ctx context.Context, token, pin string) (string, error) {
	g, err := s.resolveToken(ctx, token)
	if err != nil {
		return "", err
	}

	if g == nil || !pinEqual(g.PIN, pin) {
		return "", ErrAccessDenied
	}

	if !s.now().Before(g.ExpiresAt) {
		return "", ErrGrantExpired
	}

	return g.ProjectID, nil
}

// VerifyProject 校验项目下任一未过期授权的 PIN.
// 只有已过期授权的 PIN 匹配时返回 ErrGrantExpired.
func (s *ShareService) VerifyProject(ctx context.Context, projectID, pin string) error {
	orm, err := s.orm(ctx)
	if err != nil {
		return err
	}

	if projectID == "" || pin == "" {
		return ErrAccessDenied
	}

	var grants []model.ShareGrant
	if err := orm.Where("project_id = ?", projectID).
		Order("expires_at DESC").
		Find(&grants).Error; err != nil {
		return fmt.Errorf("load project grants: %w", err)
	}

	now := s.now()
	expiredMatch := false

	for i := range grants {
		if !pinEqual(grants[i].PIN, pin) {
			continue
		}

		if !grants[i].Expired(now) {
			return nil
		}

		expiredMatch = true
	}

	if expiredMatch {
		return ErrGrantExpired
	}

	return ErrAccessDenied
}

// resolveToken 先查缓存再查库，不存在时返回 nil, nil.
func (s *ShareService) resolveToken(ctx context.Context, token string) (*cachedGrant, error) {
	if !strings.HasPrefix(token, ShareTokenPrefix) || !filename.IsSanitized(token) {
		return nil, nil
	}

	if c := s.grants(); c != nil {
		g, err := cache.Get[cachedGrant](ctx, c, token)
		if err == nil {
			return &g, nil
		}

		if !errors.Is(err, kv.ErrNotFound) {
			l := s.logger(ctx, "share")
			l.Warn().Err(err).Msg("share cache read failed")
		}
	}

	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var grants []model.ShareGrant
	if err := orm.Where("token = ?", token).Limit(1).Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("load share grant: %w", err)
	}

	if len(grants) == 0 {
		return nil, nil
	}

	s.cacheGrant(ctx, &grants[0])

	return toCached(&grants[0]), nil
}

// cacheGrant 写入缓存，TTL 不超过授权剩余有效期.
func (s *ShareService) cacheGrant(ctx context.Context, g *model.ShareGrant) {
	c := s.grants()
	if c == nil {
		return
	}

	ttl := time.Until(g.ExpiresAt)
	if limit := s.cfg.Share.CacheTTL; limit > 0 && limit < ttl {
		ttl = limit
	}

	if ttl <= 0 {
		return
	}

	if err := cache.Set(ctx, c, g.Token, *toCached(g), ttl); err != nil {
		l := s.logger(ctx, "share")
		l.Warn().Err(err).Str("token", g.Token).Msg("share cache write failed")
	}
}

// Sweep 清除过期授权的缓存，并软删除过期超过 olderThan 的授权.
// 返回清除的缓存条数与软删除的授权条数.
func (s *ShareService) Sweep(ctx context.Context, olderThan time.Duration) (int, int64, error) {
	now := s.now().UTC()
	evicted := 0

	if c := s.grants(); c != nil {
		keys, err := c.Keys(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("list cached grants: %w", err)
		}

		for _, k := range keys {
			g, err := cache.Get[cachedGrant](ctx, c, k)
			if err != nil && !errors.Is(err, kv.ErrNotFound) {
				_ = c.Delete(ctx, k)
				evicted++

				continue
			}

			if err == nil && !now.Before(g.ExpiresAt) {
				if err := c.Delete(ctx, k); err == nil {
					evicted++
				}
			}
		}
	}

	orm, err := s.orm(ctx)
	if err != nil {
		return evicted, 0, err
	}

	res := orm.Where("expires_at < ?", now.Add(-olderThan)).Delete(&model.ShareGrant{})
	if res.Error != nil {
		return evicted, 0, fmt.Errorf("sweep share grants: %w", res.Error)
	}

	return evicted, res.RowsAffected, nil
}

func (s *ShareService) toShareGrant(g *model.ShareGrant) types.ShareGrant {
	return types.ShareGrant{
		Token:          g.Token,
		ProjectID:      g.ProjectID,
		ShareLink:      ShareLink(s.cfg.Share.PublicBaseURL, g.Token),
		PIN:            g.PIN,
		ExpiresAt:      g.ExpiresAt,
		CreatedAt:      g.CreatedAt,
		NotifyEmail:    g.NotifyEmail,
		NotifyLanguage: g.NotifyLanguage,
	}
}

// ShareLink 拼接公共访问链接.
func ShareLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/share/" + token
}

func toCached(g *model.ShareGrant) *cachedGrant {
	return &cachedGrant{
		Token:     g.Token,
		ProjectID: g.ProjectID,
		PIN:       g.PIN,
		ExpiresAt: g.ExpiresAt,
	}
}

// newPIN 生成 n 位数字 PIN.
func newPIN(n int) (string, error) {
	if n <= 0 {
		n = 6
	}

	var b strings.Builder

	b.Grow(n)

	for range n {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}

		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}

func pinEqual(want, got string) bool {
	if want == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
