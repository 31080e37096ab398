package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/robert-f-ruff/rules-engine/config"
)

// Client Redis 客户端封装
// 当前用于携带引擎重载结果的一次性提示和接口速率限制；后续可扩展缓存等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 引擎提示 ──

const engineNoticeKey = "engine:notice"

// 提示保留时间：保存规则后的下一次列表加载应在此窗口内发生
const engineNoticeTTL = 10 * time.Minute

// SetEngineNotice 暂存引擎重载结果，供下一次规则列表加载消费
func (c *Client) SetEngineNotice(ctx context.Context, text string) error {
	return c.rdb.Set(ctx, engineNoticeKey, text, engineNoticeTTL).Err()
}

// TakeEngineNotice 读取并清除引擎提示（一次性语义）
// 没有待消费的提示时返回空字符串
func (c *Client) TakeEngineNotice(ctx context.Context) (string, error) {
	text, err := c.rdb.GetDel(ctx, engineNoticeKey).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", err
	}
	return text, nil
}

// ── 速率限制 ──

// CheckRateLimit 基于有序集合的滑动窗口计数
// 返回本次请求是否被放行；窗口内已有 limit 次请求时拒绝
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() < int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
