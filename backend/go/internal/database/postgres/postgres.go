package postgres

import (
	"PDFChat/backend/go/internal/config"
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var (
	pool    *pgxpool.Pool
	once    sync.Once
	initErr error
)

// GetPool 使用单例模式初始化并返回一个 PostgreSQL 连接池。
// 初始化时会确保 pgvector 扩展已启用。
func GetPool(ctx context.Context, cfg *config.PostgresConfig) (*pgxpool.Pool, error) {
	once.Do(func() {
		pcfg, err := pgxpool.ParseConfig(cfg.ConnString)
		if err != nil {
			initErr = fmt.Errorf("无效的 PostgreSQL 连接字符串: %w", err)
			return
		}
		if cfg.MaxConns > 0 {
			pcfg.MaxConns = cfg.MaxConns
		}

		p, err := pgxpool.NewWithConfig(ctx, pcfg)
		if err != nil {
			initErr = fmt.Errorf("无法连接到 PostgreSQL: %w", err)
			return
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			initErr = fmt.Errorf("PostgreSQL 初始化健康检查失败: %w", err)
			return
		}
		if _, err := p.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
			p.Close()
			initErr = fmt.Errorf("无法启用 pgvector 扩展: %w", err)
			return
		}

		log.Println("✅ 成功连接到 PostgreSQL!")
		pool = p
	})
	return pool, initErr
}

// HealthCheck 检查 PostgreSQL 连接的健康状况。
func HealthCheck(ctx context.Context) error {
	if pool == nil {
		return fmt.Errorf("PostgreSQL 连接池未初始化")
	}
	return pool.Ping(ctx)
}

// Close 关闭单例连接池。
func Close() {
	if pool != nil {
		pool.Close()
		log.Println("ℹ️ 已安全关闭 PostgreSQL 连接池。")
	}
}
