package dto

// ── 导出模块 DTO ──

// StaticExportResult 静态导出结果
type StaticExportResult struct {
	IndexPath       string `json:"index_path"`
	SentinelPath    string `json:"sentinel_path"`
	StylesheetPath  string `json:"stylesheet_path,omitempty"` // 样式表不存在时为空
	Bytes           int    `json:"bytes"`
	TopicsChecked   int    `json:"topics_checked"`
	ProjectsChecked int    `json:"projects_checked"`
}
