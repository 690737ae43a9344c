package milvus

import (
	"PDFChat/backend/go/internal/config"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	log "github.com/sirupsen/logrus"
)

// 集合中固定的字段名。
const (
	FieldID        = "id"
	FieldChunk     = "chunk"
	FieldEmbedding = "embedding"

	// MaxChunkBytes 是 chunk 字段 VarChar 的最大长度（字节）。
	MaxChunkBytes = 65535
	maxIDLength   = 64

	// Milvus 集合名最长 255 个字符，保留可读前缀并追加 "_" 与 16 位十六进制哈希。
	maxNamePrefix = 255 - 1 - 16
)

// ErrChunkTooLarge 表示某个 chunk 超过了 MaxChunkBytes，无法写入 Milvus。
var ErrChunkTooLarge = errors.New("chunk exceeds Milvus varchar limit")

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient 包含了 Milvus 客户端实例和相关配置。
type MilvusClient struct {
	Client client.Client        // Milvus 客户端实例。
	Config *config.MilvusConfig // Milvus 配置。
}

// Hit 是一次向量搜索返回的单条结果。
type Hit struct {
	ID    string
	Chunk string
	Score float32
}

// GetClient 使用单例模式创建并返回一个 Milvus 客户端实例。
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("无法连接到 Milvus: %w", err)
			return
		}
		log.Println("✅ 成功连接到 Milvus!")
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close 安全地关闭与 Milvus 的连接。
func (c *MilvusClient) Close() error {
	if c.Client == nil {
		return nil
	}
	log.Println("ℹ️ 已安全关闭 Milvus 连接。")
	return c.Client.Close()
}

// HealthCheck 检查 Milvus 连接的健康状况。
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("Milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}

var invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// CollectionName 将任意名称转换为 Milvus 允许的集合名（字母、数字、下划线，且不以数字开头）。
// 清洗后的前缀只为可读，末尾的原名哈希保证不同名称映射到不同集合。
func CollectionName(name string) string {
	safe := invalidNameChars.ReplaceAllString(name, "_")
	if safe == "" || (safe[0] >= '0' && safe[0] <= '9') {
		safe = "c_" + safe
	}
	if len(safe) > maxNamePrefix {
		safe = safe[:maxNamePrefix]
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return fmt.Sprintf("%s_%016x", safe, h.Sum64())
}

// CheckChunks 在写入前校验每个 chunk 的长度，超限时返回 ErrChunkTooLarge。
func CheckChunks(chunks []string) error {
	for i, chunk := range chunks {
		if len(chunk) > MaxChunkBytes {
			return fmt.Errorf("%w: chunk %d is %d bytes, limit is %d", ErrChunkTooLarge, i, len(chunk), MaxChunkBytes)
		}
	}
	return nil
}

// HasCollection 检查集合是否存在。
func (c *MilvusClient) HasCollection(ctx context.Context, name string) (bool, error) {
	ok, err := c.Client.HasCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("检查集合 '%s' 是否存在时出错: %w", name, err)
	}
	return ok, nil
}

// CreateCollection 创建一个包含 id、chunk、embedding 三个字段的集合，建立索引并加载到内存。
//
// 参数:
//
//	ctx: 上下文。
//	name: 集合名称，调用方需先经过 CollectionName 处理。
//	dim: 向量维度。
func (c *MilvusClient) CreateCollection(ctx context.Context, name string, dim int) error {
	schema := entity.NewSchema().
		WithName(name).
		WithDescription("PDF chunks").
		WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).
			WithIsPrimaryKey(true).WithMaxLength(maxIDLength)).
		WithField(entity.NewField().WithName(FieldChunk).WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(MaxChunkBytes)).
		WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dim)))

	if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("创建集合失败: %w", err)
	}

	idx, err := c.buildIndexFromConfig()
	if err != nil {
		return err
	}
	if err := c.Client.CreateIndex(ctx, name, FieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("为字段 '%s' 创建索引失败: %w", FieldEmbedding, err)
	}
	return c.LoadCollection(ctx, name)
}

// LoadCollection 将集合加载到内存以便搜索。
func (c *MilvusClient) LoadCollection(ctx context.Context, name string) error {
	if err := c.Client.LoadCollection(ctx, name, false); err != nil {
		return fmt.Errorf("加载 Milvus 集合 '%s' 失败: %w", name, err)
	}
	return nil
}

// DropCollection 删除集合。
func (c *MilvusClient) DropCollection(ctx context.Context, name string) error {
	return c.Client.DropCollection(ctx, name)
}

// InsertBatch 批量插入 chunk 及其向量，并立即刷新以保证随后的计数与搜索可见。
func (c *MilvusClient) InsertBatch(ctx context.Context, name string, ids, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) || len(ids) != len(chunks) {
		return fmt.Errorf("mismatch between ids (%d), chunks (%d) and vectors (%d)", len(ids), len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := CheckChunks(chunks); err != nil {
		return err
	}

	idCol := entity.NewColumnVarChar(FieldID, ids)
	chunkCol := entity.NewColumnVarChar(FieldChunk, chunks)
	vectorCol := entity.NewColumnFloatVector(FieldEmbedding, len(vectors[0]), vectors)

	if _, err := c.Client.Insert(ctx, name, "", idCol, chunkCol, vectorCol); err != nil {
		return fmt.Errorf("failed to batch insert data into Milvus: %w", err)
	}
	if err := c.Client.Flush(ctx, name, false); err != nil {
		return fmt.Errorf("刷新集合 '%s' 失败: %w", name, err)
	}

	log.Printf("✅ Successfully inserted %d records into collection '%s'.", len(chunks), name)
	return nil
}

// Count 返回集合中的实体数量。
func (c *MilvusClient) Count(ctx context.Context, name string) (int, error) {
	stats, err := c.Client.GetCollectionStatistics(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("获取集合 '%s' 统计信息失败: %w", name, err)
	}
	n, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("无法解析集合 '%s' 的 row_count: %w", name, err)
	}
	return n, nil
}

// Search 在集合中执行向量相似度搜索，结果按相似度从高到低排列。
func (c *MilvusClient) Search(ctx context.Context, name string, vector []float32, topK int) ([]Hit, error) {
	sp, err := c.searchParam()
	if err != nil {
		return nil, err
	}

	results, err := c.Client.Search(
		ctx,
		name,
		[]string{},
		"",
		[]string{FieldID, FieldChunk},
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding,
		entity.MetricType(c.Config.MetricType),
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("在集合 '%s' 中搜索失败: %w", name, err)
	}

	var hits []Hit
	for _, res := range results {
		var ids, chunks []string
		for _, field := range res.Fields {
			col, ok := field.(*entity.ColumnVarChar)
			if !ok {
				continue
			}
			switch field.Name() {
			case FieldID:
				ids = col.Data()
			case FieldChunk:
				chunks = col.Data()
			}
		}
		if ids == nil && res.IDs != nil {
			if col, ok := res.IDs.(*entity.ColumnVarChar); ok {
				ids = col.Data()
			}
		}
		for i := 0; i < res.ResultCount; i++ {
			hit := Hit{Score: res.Scores[i]}
			if i < len(ids) {
				hit.ID = ids[i]
			}
			if i < len(chunks) {
				hit.Chunk = chunks[i]
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// searchParam 返回与配置的索引类型匹配的搜索参数。
func (c *MilvusClient) searchParam() (entity.SearchParam, error) {
	switch c.Config.IndexType {
	case "IVF_FLAT":
		return entity.NewIndexIvfFlatSearchParam(10)
	case "HNSW":
		return entity.NewIndexHNSWSearchParam(64)
	default:
		return entity.NewIndexAUTOINDEXSearchParam(1)
	}
}

// buildIndexFromConfig 是一个辅助函数，用于从配置构建索引实体。
func (c *MilvusClient) buildIndexFromConfig() (entity.Index, error) {
	metricType := entity.MetricType(c.Config.MetricType)
	params := c.Config.IndexParams

	switch c.Config.IndexType {
	case "IVF_FLAT":
		nlist, ok := params["nlist"].(int)
		if !ok {
			nlist = 128
		}
		return entity.NewIndexIvfFlat(metricType, nlist)
	case "HNSW":
		M, ok := params["M"].(int)
		if !ok {
			M = 8
		}
		efConstruction, ok := params["efConstruction"].(int)
		if !ok {
			efConstruction = 96
		}
		return entity.NewIndexHNSW(metricType, M, efConstruction)
	case "AUTOINDEX", "":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("不支持的索引类型: %s", c.Config.IndexType)
	}
}
