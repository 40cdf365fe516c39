package dto

// ── 路线图视图 DTO ──
// 同时用于 JSON 接口、服务端渲染页面与静态导出

// RoadmapView 完整路线图视图
type RoadmapView struct {
	Authenticated bool           `json:"authenticated"`
	Username      string         `json:"username,omitempty"`
	Categories    []CategoryView `json:"categories"`
	Static        bool           `json:"-"` // 静态导出模式：不渲染表单
	// Errors 批量提交校验失败时的逐项错误（topic_id → 错误信息）
	Errors map[int64]string `json:"errors,omitempty"`
}

// CategoryView 分类视图
type CategoryView struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Description string      `json:"description,omitempty"`
	Phases      []PhaseView `json:"phases"`
}

// PhaseView 阶段视图
type PhaseView struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	WeekRange string         `json:"week_range"`
	Goal      string         `json:"goal"`
	Order     int            `json:"order"`
	Topics    []TopicView    `json:"topics"`
	Projects  []ProjectView  `json:"projects"`
	Resources []ResourceView `json:"resources,omitempty"`
}

// TopicView 学习条目视图
type TopicView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	// Persisted 是否已有进度记录（未持久化的条目为补齐的默认绑定）
	Persisted bool `json:"persisted"`
}

// ProjectView 项目视图
type ProjectView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	GithubLink  string `json:"github_link,omitempty"`
}

// ResourceView 学习资源视图
type ResourceView struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	TypeLabel   string `json:"type_label"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}
