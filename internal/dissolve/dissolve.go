// 包 dissolve：按都道府県合并市区町村多边形
//
// 合并本身交给外部 mapshaper；本包负责分组、临时文件、调用与结果汇总。
package dissolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"wordmap/internal/geo"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
)

// Runner：外部命令执行器
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner：os/exec 实现，返回合并后的 stdout+stderr
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Dissolver：一次合并任务的配置
type Dissolver struct {
	Bin     string
	OutDir  string
	TempDir string
	Runner  Runner
	Log     *slog.Logger
}

// Result：合并结果；Missing 为没有产出文件的都道府県（按首次出现顺序）
type Result struct {
	Prefectures []string
	Features    []*geo.Feature
	Missing     []string
}

// Partition：按 N03_001 分组，保持首次出现顺序；N03_001 为空的要素丢弃
func Partition(fs []*geo.Feature) ([]string, map[string][]*geo.Feature) {
	var order []string
	groups := map[string][]*geo.Feature{}
	for _, f := range fs {
		p := f.Prop("N03_001")
		if p == "" {
			continue
		}
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], f)
	}
	return order, groups
}

// Args：mapshaper 参数
func Args(in, out string) []string {
	return []string{
		in,
		"-clean", "snap-interval=0.001", "overlap-rule=max-id",
		"-dissolve", "N03_001", "copy-fields=N03_001",
		"-o", out, "format=geojson",
	}
}

// OutputPath：<OutDir>/<都道府県>_merged.geojson
func (d *Dissolver) OutputPath(pref string) string {
	return filepath.Join(d.OutDir, pref+"_merged.geojson")
}

// 文档注释：逐都道府県调用 mapshaper 合并，再汇总全部产物
// 背景：mapshaper 对全国数据一次性 dissolve 内存占用过高，按都道府県拆分后逐个处理。
// 约束：临时输入文件无论成败都会删除；单个都道府県失败只记录并跳过；汇总阶段缺失的产物记入 Missing。
func (d *Dissolver) Run(ctx context.Context, fc *geo.FeatureCollection) (*Result, error) {
	if d.Runner == nil {
		d.Runner = ExecRunner{}
	}
	if d.Bin == "" {
		d.Bin = "mapshaper"
	}
	if d.Log == nil {
		d.Log = logger.Component("dissolve")
	}
	if err := os.MkdirAll(d.OutDir, 0o755); err != nil {
		return nil, err
	}
	order, groups := Partition(fc.Features)
	d.Log.Info("dissolve_partitioned", "prefectures", len(order))
	for _, pref := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.one(ctx, pref, groups[pref]); err != nil {
			metrics.SubprocessFailTotal.WithLabelValues("mapshaper").Inc()
			d.Log.Warn("dissolve_error", "prefecture", pref, "err", err)
			continue
		}
		metrics.RegionsProcessedTotal.WithLabelValues("dissolve").Inc()
		d.Log.Info("dissolve_done", "prefecture", pref, "out", d.OutputPath(pref))
	}
	return d.Merge(order)
}

func (d *Dissolver) one(ctx context.Context, pref string, feats []*geo.Feature) error {
	tmp, err := os.CreateTemp(d.TempDir, "dissolve-*.geojson")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if err := geo.WriteFeatureCollection(tmp, feats, false); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	out, err := d.Runner.Run(ctx, d.Bin, Args(name, d.OutputPath(pref))...)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", d.Bin, err, out)
	}
	return nil
}

// Merge：按 order 读取各都道府県产物并拼接
func (d *Dissolver) Merge(order []string) (*Result, error) {
	res := &Result{Prefectures: order}
	for _, pref := range order {
		p := d.OutputPath(pref)
		fc, err := geo.LoadFeatureCollection(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				d.Log.Warn("dissolve_output_missing", "prefecture", pref, "path", p)
			} else {
				d.Log.Warn("dissolve_output_invalid", "prefecture", pref, "path", p, "err", err)
			}
			metrics.RegionsSkippedTotal.WithLabelValues("dissolve", "missing").Inc()
			res.Missing = append(res.Missing, pref)
			continue
		}
		res.Features = append(res.Features, fc.Features...)
	}
	return res, nil
}
