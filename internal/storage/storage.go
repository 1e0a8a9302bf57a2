package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/RubberWatch/internal/dashboard"
	"github.com/LJTian/RubberWatch/internal/logger"
	"github.com/LJTian/RubberWatch/internal/processor"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrArchiveDisabled 表示未配置 POSTGRES_DSN
var ErrArchiveDisabled = errors.New("storage: archive disabled")

// Snapshot 记录一次成功刷新的结果，用于回看历史
type Snapshot struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Query     string `gorm:"size:512" json:"query"`
	ItemCount int    `json:"itemCount"`
	HighCount int    `json:"highCount"`
	// 各维度计数，例如 {"Thailand": 3, "Unknown": 1}
	RiskCounts    datatypes.JSONMap `gorm:"type:jsonb" json:"riskCounts"`
	RegionCounts  datatypes.JSONMap `gorm:"type:jsonb" json:"regionCounts"`
	CountryCounts datatypes.JSONMap `gorm:"type:jsonb" json:"countryCounts"`
	Items         datatypes.JSON    `gorm:"type:jsonb" json:"items"`
	FetchedAt     time.Time         `gorm:"uniqueIndex" json:"fetchedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

type Archive struct {
	DB *gorm.DB
}

func NewArchive(dsn string) (*Archive, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return &Archive{DB: db}, nil
}

// NewSnapshot 把 Batch 转成一行快照；失败的 Batch 不应归档
func NewSnapshot(query string, b processor.Batch) (*Snapshot, error) {
	if b.Failed() {
		return nil, fmt.Errorf("storage: refusing to archive failed batch: %s", b.FetchError)
	}
	items, err := json.Marshal(b.Items)
	if err != nil {
		return nil, fmt.Errorf("storage: marshal items: %w", err)
	}

	s := dashboard.Aggregate(b.Items)
	high := 0
	for _, bk := range s.Risk {
		if bk.Label == string(processor.RiskHigh) {
			high = bk.Count
		}
	}
	return &Snapshot{
		Query:         toValidUTF8(query),
		ItemCount:     s.Total,
		HighCount:     high,
		RiskCounts:    countMap(s.Risk),
		RegionCounts:  countMap(s.Region),
		CountryCounts: countMap(s.Country),
		Items:         datatypes.JSON(items),
		FetchedAt:     b.FetchedAt,
	}, nil
}

func countMap(bs []dashboard.Bucket) datatypes.JSONMap {
	m := make(datatypes.JSONMap, len(bs))
	for _, b := range bs {
		m[b.Label] = b.Count
	}
	return m
}

// SaveSnapshot 以 FetchedAt 作为幂等键，同一批数据重复归档只保留一行
func (a *Archive) SaveSnapshot(query string, b processor.Batch) error {
	if a == nil {
		return ErrArchiveDisabled
	}
	snap, err := NewSnapshot(query, b)
	if err != nil {
		return err
	}
	return a.DB.Where("fetched_at = ?", snap.FetchedAt).FirstOrCreate(snap).Error
}

// ListSnapshots 按时间倒序返回快照（不含条目明细）
func (a *Archive) ListSnapshots(limit int) ([]Snapshot, error) {
	if a == nil {
		return nil, ErrArchiveDisabled
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var list []Snapshot
	err := a.DB.Omit("items").Order("fetched_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// toValidUTF8 避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// WithArchive 在 load 成功后把结果归档；a 为 nil 时原样返回 load
func WithArchive(load LoadFunc, a *Archive, query string) LoadFunc {
	if a == nil {
		return load
	}
	return func(ctx context.Context, now time.Time) processor.Batch {
		b := load(ctx, now)
		if b.Failed() {
			return b
		}
		if err := a.SaveSnapshot(query, b); err != nil {
			logger.Component("storage").WithError(err).Warn("archive snapshot failed")
		}
		return b
	}
}
