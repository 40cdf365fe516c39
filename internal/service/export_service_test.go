package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService(t *testing.T) (ExportService, *testRepos, *config.ExportConfig) {
	t.Helper()
	cfg := &config.ExportConfig{
		OutputDir:  filepath.Join(t.TempDir(), "roadmap"),
		Stylesheet: filepath.Join(t.TempDir(), "web.css"),
	}
	tr := newTestRepos(newTestCurriculum())
	return NewExportService(cfg, tr.repo, zap.NewNop()), tr, cfg
}

// ── BuildStatic 测试 ──

func TestExportService_BuildStatic_UsesSnapshotOnly(t *testing.T) {
	svc, tr, _ := setupTestExportService(t)
	// 进度表中的记录不影响静态导出
	tr.topicProgress.insert(&model.TopicProgress{UserID: testUser, TopicID: 7, Completed: true})

	html, err := svc.BuildStatic(context.Background(), NewSnapshot([]int64{5}, []int64{4}))
	if err != nil {
		t.Fatalf("BuildStatic 应成功: %v", err)
	}
	page := string(html)

	if !strings.Contains(page, `data-topic-id="5" checked`) {
		t.Error("快照中的条目 5 应勾选")
	}
	if strings.Contains(page, `data-topic-id="7" checked`) {
		t.Error("条目 7 不在快照中，不应勾选")
	}
	if !strings.Contains(page, `data-project-id="4" checked`) {
		t.Error("快照中的项目 4 应勾选")
	}
	if strings.Contains(page, "<form") {
		t.Error("静态页面不应包含表单")
	}
}

func TestExportService_BuildStatic_Deterministic(t *testing.T) {
	svc, _, _ := setupTestExportService(t)
	snap := ParseSnapshot([]byte(`{"topics": ["5", 9], "projects": [3]}`), zap.NewNop())

	first, err := svc.BuildStatic(context.Background(), snap)
	if err != nil {
		t.Fatalf("BuildStatic 应成功: %v", err)
	}
	second, err := svc.BuildStatic(context.Background(), snap)
	if err != nil {
		t.Fatalf("BuildStatic 应成功: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("相同输入两次导出应逐字节一致")
	}
}

func TestExportService_BuildStatic_EmptySnapshot(t *testing.T) {
	svc, _, _ := setupTestExportService(t)

	html, err := svc.BuildStatic(context.Background(), NewSnapshot(nil, nil))
	if err != nil {
		t.Fatalf("BuildStatic 应成功: %v", err)
	}
	if strings.Contains(string(html), " checked") {
		t.Error("空快照导出不应有任何勾选")
	}
}

// ── WriteStatic 测试 ──

func TestExportService_WriteStatic(t *testing.T) {
	svc, _, cfg := setupTestExportService(t)
	if err := os.WriteFile(cfg.Stylesheet, []byte("body{}"), 0o644); err != nil {
		t.Fatalf("写入样式表失败: %v", err)
	}

	result, err := svc.WriteStatic(context.Background(), NewSnapshot([]int64{5, 7, 999}, nil))
	if err != nil {
		t.Fatalf("WriteStatic 应成功: %v", err)
	}

	index, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
	if err != nil {
		t.Fatalf("应写出 index.html: %v", err)
	}
	if len(index) != result.Bytes {
		t.Errorf("写出字节数不符: %d != %d", len(index), result.Bytes)
	}
	if result.TopicsChecked != 2 {
		t.Errorf("不在大纲中的 ID 不计入勾选数，期望 2，实际 %d", result.TopicsChecked)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, ".nojekyll")); err != nil {
		t.Errorf("应创建 .nojekyll: %v", err)
	}
	css, err := os.ReadFile(filepath.Join(cfg.OutputDir, "web.css"))
	if err != nil || string(css) != "body{}" {
		t.Errorf("应复制样式表: %q, err=%v", css, err)
	}
}

func TestExportService_WriteStatic_NoStylesheet(t *testing.T) {
	svc, _, cfg := setupTestExportService(t)

	result, err := svc.WriteStatic(context.Background(), NewSnapshot(nil, nil))
	if err != nil {
		t.Fatalf("WriteStatic 应成功: %v", err)
	}
	if result.StylesheetPath != "" {
		t.Errorf("样式表不存在时不应复制，实际 %s", result.StylesheetPath)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "web.css")); !os.IsNotExist(err) {
		t.Error("输出目录中不应出现 web.css")
	}
}

func TestExportService_WriteStatic_KeepsSentinel(t *testing.T) {
	svc, _, cfg := setupTestExportService(t)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	sentinel := filepath.Join(cfg.OutputDir, ".nojekyll")
	if err := os.WriteFile(sentinel, []byte("keep"), 0o644); err != nil {
		t.Fatalf("写入哨兵文件失败: %v", err)
	}

	if _, err := svc.WriteStatic(context.Background(), NewSnapshot(nil, nil)); err != nil {
		t.Fatalf("WriteStatic 应成功: %v", err)
	}
	content, _ := os.ReadFile(sentinel)
	if string(content) != "keep" {
		t.Error("已存在的 .nojekyll 不应被覆盖")
	}
}

// ── ExportProgress 测试 ──

func TestExportService_ExportProgress(t *testing.T) {
	svc, tr, _ := setupTestExportService(t)
	tr.topicProgress.insert(&model.TopicProgress{UserID: testUser, TopicID: 5, Completed: true})
	tr.projectProgress.insert(&model.ProjectProgress{UserID: testUser, ProjectID: 3, Completed: true, GithubLink: "https://github.com/u/cnn"})

	buf, filename, err := svc.ExportProgress(context.Background(), testUser)
	if err != nil {
		t.Fatalf("ExportProgress 应成功: %v", err)
	}
	if filename != "roadmap_progress.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("输出内容不是有效的 xlsx 文件: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("学习进度")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	// 表头 + 3 个条目 + 2 个项目
	if len(rows) != 6 {
		t.Fatalf("期望 6 行，实际 %d", len(rows))
	}
	if rows[1][3] != "CNNs" || rows[1][4] != "是" {
		t.Errorf("条目 5 行不符: %v", rows[1])
	}
	if rows[2][4] != "否" {
		t.Errorf("条目 7 应为未完成: %v", rows[2])
	}
	if rows[3][2] != "项目" || rows[3][6] != "https://github.com/u/cnn" {
		t.Errorf("项目 3 行不符: %v", rows[3])
	}
}
