package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/dto"
	"github.com/soumitjana/soumitjana.github.io/internal/model"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	"github.com/soumitjana/soumitjana.github.io/internal/view"
)

// ── 导出模块业务错误 ──

var (
	ErrExportRenderFail   = errors.New("渲染静态页面失败")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const (
	staticIndexFile    = "index.html"
	staticSentinelFile = ".nojekyll"
)

// ExportService 导出业务接口
//
// 说明：
//   - 静态导出只读取课程大纲，勾选状态完全取自快照，不访问进度表
//   - 相同的大纲与快照产生逐字节相同的输出（无时间戳、顺序稳定）
//   - Excel 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	// BuildStatic 渲染静态路线图页面
	BuildStatic(ctx context.Context, snap Snapshot) ([]byte, error)
	// WriteStatic 渲染并写出 index.html、.nojekyll 与样式表
	WriteStatic(ctx context.Context, snap Snapshot) (*dto.StaticExportResult, error)
	// ExportProgress 导出用户进度为 Excel
	ExportProgress(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.ExportConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.ExportConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// 静态导出
// ═══════════════════════════════════════════════════════════

type staticPage struct {
	html            []byte
	topicsChecked   int
	projectsChecked int
}

func (s *exportService) BuildStatic(ctx context.Context, snap Snapshot) ([]byte, error) {
	page, err := s.buildStatic(ctx, snap)
	if err != nil {
		return nil, err
	}
	return page.html, nil
}

func (s *exportService) buildStatic(ctx context.Context, snap Snapshot) (*staticPage, error) {
	categories, err := s.repo.Category.ListTree(ctx)
	if err != nil {
		s.logger.Error("加载大纲失败", zap.Error(err))
		return nil, err
	}

	page := &staticPage{}
	v := &dto.RoadmapView{
		Static: true,
		Categories: buildRoadmapView(categories, completionState{
			topic: func(id int64) (bool, bool) {
				checked := snap.HasTopic(id)
				if checked {
					page.topicsChecked++
				}
				return checked, false
			},
			project: func(id int64) (bool, string) {
				checked := snap.HasProject(id)
				if checked {
					page.projectsChecked++
				}
				return checked, ""
			},
		}),
	}

	var buf bytes.Buffer
	if err := view.RenderRoadmap(&buf, v); err != nil {
		s.logger.Error("渲染静态页面失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExportRenderFail, err)
	}
	page.html = buf.Bytes()
	return page, nil
}

func (s *exportService) WriteStatic(ctx context.Context, snap Snapshot) (*dto.StaticExportResult, error) {
	page, err := s.buildStatic(ctx, snap)
	if err != nil {
		return nil, err
	}

	outDir := s.cfg.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建导出目录失败: %w", err)
	}

	result := &dto.StaticExportResult{
		IndexPath:       filepath.Join(outDir, staticIndexFile),
		SentinelPath:    filepath.Join(outDir, staticSentinelFile),
		Bytes:           len(page.html),
		TopicsChecked:   page.topicsChecked,
		ProjectsChecked: page.projectsChecked,
	}

	if err := os.WriteFile(result.IndexPath, page.html, 0o644); err != nil {
		return nil, fmt.Errorf("写入 %s 失败: %w", result.IndexPath, err)
	}

	// GitHub Pages 哨兵文件：已存在时保留
	if _, err := os.Stat(result.SentinelPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(result.SentinelPath, nil, 0o644); err != nil {
			return nil, fmt.Errorf("写入 %s 失败: %w", result.SentinelPath, err)
		}
	}

	if s.cfg.Stylesheet != "" {
		dst := filepath.Join(outDir, filepath.Base(s.cfg.Stylesheet))
		copied, err := copyIfExists(s.cfg.Stylesheet, dst)
		if err != nil {
			return nil, fmt.Errorf("复制样式表失败: %w", err)
		}
		if copied {
			result.StylesheetPath = dst
		} else {
			s.logger.Info("样式表不存在，跳过复制", zap.String("path", s.cfg.Stylesheet))
		}
	}

	s.logger.Info("静态路线图导出完成",
		zap.String("index", result.IndexPath),
		zap.Int("bytes", result.Bytes),
		zap.Int("topics_checked", result.TopicsChecked),
		zap.Int("projects_checked", result.ProjectsChecked),
	)
	return result, nil
}

func copyIfExists(src, dst string) (bool, error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer in.Close()

	if srcAbs, err1 := filepath.Abs(src); err1 == nil {
		if dstAbs, err2 := filepath.Abs(dst); err2 == nil && srcAbs == dstAbs {
			return true, nil
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, err
	}
	return true, out.Close()
}

// ═══════════════════════════════════════════════════════════
// ExportProgress — 导出用户进度为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "学习进度"：分类 | 阶段 | 类型 | 名称 | 已完成 | 完成时间 | GitHub 链接
//   - 行顺序与路线图页面一致，未记录进度的条目/项目显示为未完成
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportProgress(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	categories, err := s.repo.Category.ListTree(ctx)
	if err != nil {
		s.logger.Error("加载大纲失败", zap.Error(err))
		return nil, "", err
	}
	topicRows, err := s.repo.TopicProgress.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.Error(err))
		return nil, "", err
	}
	projectRows, err := s.repo.ProjectProgress.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询项目进度失败", zap.Error(err))
		return nil, "", err
	}

	topics := make(map[int64]model.TopicProgress, len(topicRows))
	for _, r := range topicRows {
		topics[r.TopicID] = r
	}
	projects := make(map[int64]model.ProjectProgress, len(projectRows))
	for _, r := range projectRows {
		projects[r.ProjectID] = r
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "学习进度"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 36)
	f.SetColWidth(sheetName, "C", "C", 8)
	f.SetColWidth(sheetName, "D", "D", 60)
	f.SetColWidth(sheetName, "E", "E", 8)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"分类", "阶段", "类型", "名称", "已完成", "完成时间", "GitHub 链接"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	writeRow := func(category, phase, kind, name string, completed bool, completedAt, link string) {
		done := "否"
		if completed {
			done = "是"
		}
		values := []string{category, phase, kind, name, done, completedAt, link}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	for _, c := range categories {
		for _, p := range c.Phases {
			phaseName := fmt.Sprintf("%s %s", p.WeekRange, p.Title)
			for _, t := range p.Topics {
				r, ok := topics[t.ID]
				writeRow(c.Name, phaseName, "条目", t.Name, ok && r.Completed, formatCompletedAt(ok, r.CompletedAt.Format("2006-01-02 15:04")), "")
			}
			for _, pr := range p.Projects {
				r, ok := projects[pr.ID]
				writeRow(c.Name, phaseName, "项目", pr.Name, ok && r.Completed, formatCompletedAt(ok, r.CompletedAt.Format("2006-01-02 15:04")), r.GithubLink)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, "roadmap_progress.xlsx", nil
}

// ── 辅助函数 ──

func formatCompletedAt(persisted bool, formatted string) string {
	if !persisted {
		return "-"
	}
	return formatted
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
