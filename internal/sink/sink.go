// 包 sink：区域词云布局的持久化出口
package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"wordmap/internal/layout"
	"wordmap/internal/store"
	"wordmap/internal/utils"

	"github.com/google/uuid"
)

// Sink：接收区域布局记录
type Sink interface {
	Put(ctx context.Context, rec layout.Record) error
	Close() error
}

// Mode：JSON 文件写入方式
type Mode int

const (
	// ModeUpsert：同名记录原位替换，不存在时追加
	ModeUpsert Mode = iota
	// ModeAppend：无条件追加，重复运行会产生重复记录
	ModeAppend
)

// ParseMode：空串与 upsert 为 ModeUpsert，append 为 ModeAppend
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "upsert":
		return ModeUpsert, nil
	case "append":
		return ModeAppend, nil
	}
	return ModeUpsert, fmt.Errorf("sink: unknown mode %q", s)
}

// JSONFile：一个 JSON 数组文件，元素为 layout.Record
// 约束：每次 Put 都完整读改写；并发 Put 由内部互斥串行化。
type JSONFile struct {
	Path       string
	Mode       Mode
	SortByName bool

	mu sync.Mutex
}

func NewJSONFile(path string, mode Mode) *JSONFile {
	return &JSONFile{Path: path, Mode: mode}
}

// 文档注释：写入一条记录
// 背景：同一都道府県的多个区域依次写入同一个文件；重复运行时按 name 覆盖旧结果。
// 约束：文件不存在视为空列表；写出为两空格缩进、保留非 ASCII，临时文件 + rename 保证读者不会看到半个文件。
func (j *JSONFile) Put(ctx context.Context, rec layout.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	recs, err := j.Load()
	if err != nil {
		return err
	}
	replaced := false
	if j.Mode == ModeUpsert {
		for i := range recs {
			if recs[i].Name == rec.Name {
				recs[i] = rec
				replaced = true
				break
			}
		}
	}
	if !replaced {
		recs = append(recs, rec)
	}
	if j.SortByName {
		sort.SliceStable(recs, func(a, b int) bool { return recs[a].Name < recs[b].Name })
	}
	return utils.WriteJSON(j.Path, recs, true)
}

// Load：读取现有记录；文件不存在时返回空列表
func (j *JSONFile) Load() ([]layout.Record, error) {
	var recs []layout.Record
	if err := utils.ReadJSON(j.Path, &recs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []layout.Record{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", j.Path, err)
	}
	if recs == nil {
		recs = []layout.Record{}
	}
	return recs, nil
}

func (j *JSONFile) Close() error { return nil }

// Postgres：写入 layout_records 表
type Postgres struct {
	Store *store.Store
	RunID uuid.UUID
	Pref  string
}

func (p *Postgres) Put(ctx context.Context, rec layout.Record) error {
	return p.Store.UpsertLayout(ctx, p.RunID, p.Pref, rec.Name, rec)
}

// Close：连接由调用方持有，这里不关闭
func (p *Postgres) Close() error { return nil }

// Multi：依次写入全部下游，返回合并后的错误
type Multi []Sink

func (m Multi) Put(ctx context.Context, rec layout.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Put(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
