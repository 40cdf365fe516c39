package dto

import "time"

// ── 进度模块 DTO ──

// TopicBinding 单个学习条目的完成状态绑定
// Persisted=false 表示该条目尚无进度记录，是补齐的默认绑定（CompletedAt 为 nil）
type TopicBinding struct {
	TopicID     int64      `json:"topic_id"`
	TopicName   string     `json:"topic_name"`
	Completed   bool       `json:"completed"`
	Persisted   bool       `json:"persisted"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TopicChecklist 对账结果：每个展示的条目恰好一个绑定
// Order 保持条目的展示顺序，与绑定的生成顺序无关
type TopicChecklist struct {
	Bindings map[int64]*TopicBinding `json:"-"`
	Order    []int64                 `json:"-"`
}

// Get 按条目 ID 取绑定
func (c *TopicChecklist) Get(topicID int64) (*TopicBinding, bool) {
	if c == nil {
		return nil, false
	}
	b, ok := c.Bindings[topicID]
	return b, ok
}

// List 按展示顺序返回绑定
func (c *TopicChecklist) List() []TopicBinding {
	if c == nil {
		return nil
	}
	result := make([]TopicBinding, 0, len(c.Order))
	for _, id := range c.Order {
		if b, ok := c.Bindings[id]; ok {
			result = append(result, *b)
		}
	}
	return result
}

// TopicProgressItem 批量提交中的单项
type TopicProgressItem struct {
	TopicID   int64 `json:"topic_id"`
	Completed bool  `json:"completed"`
}

// SubmitTopicBatchRequest 批量提交学习条目完成状态
type SubmitTopicBatchRequest struct {
	Items []TopicProgressItem `json:"items" binding:"required"`
}

// ToggleProjectRequest 切换项目完成状态（表单或 JSON）
type ToggleProjectRequest struct {
	ProjectID  string `form:"project_id"  json:"project_id"`
	GithubLink string `form:"github_link" json:"github_link"`
}

// ToggleLinkRequest JSON 接口中的链接参数
type ToggleLinkRequest struct {
	GithubLink string `json:"github_link" form:"github_link"`
}

// ToggleResponse 切换结果
type ToggleResponse struct {
	ID        int64 `json:"id"`
	Completed bool  `json:"completed"`
	Created   bool  `json:"created"`
}

// ToggleStatusResponse 页面异步切换接口的响应
type ToggleStatusResponse struct {
	Status    string `json:"status"`
	Completed *bool  `json:"completed,omitempty"`
}

// CategoryProgressSummary 分类进度汇总
type CategoryProgressSummary struct {
	CategoryID        int64  `json:"category_id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	TopicsTotal       int    `json:"topics_total"`
	TopicsCompleted   int    `json:"topics_completed"`
	ProjectsTotal     int    `json:"projects_total"`
	ProjectsCompleted int    `json:"projects_completed"`
}

// ProgressSummaryResponse 进度汇总响应
type ProgressSummaryResponse struct {
	Categories []CategoryProgressSummary `json:"categories"`
}
