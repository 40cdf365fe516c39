package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/internal/dto"
	"github.com/soumitjana/soumitjana.github.io/internal/model"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	pkgerrors "github.com/soumitjana/soumitjana.github.io/pkg/errors"
)

// ── 进度模块业务错误 ──

var (
	ErrProjectNotFound  = errors.New("项目不存在")
	ErrTopicNotFound    = errors.New("学习条目不存在")
	ErrValidationFailed = errors.New("提交内容校验失败")
)

// ItemError 批量提交中单项的校验错误
type ItemError struct {
	Index   int    `json:"index"`
	TopicID int64  `json:"topic_id"`
	Message string `json:"message"`
}

// BatchValidationError 批量提交校验失败，整批均未写入
type BatchValidationError struct {
	Items []ItemError
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("%s: %d 项错误", ErrValidationFailed.Error(), len(e.Items))
}

func (e *BatchValidationError) Unwrap() error { return ErrValidationFailed }

// ByTopic 按条目 ID 汇总错误信息（页面逐项标注使用）
func (e *BatchValidationError) ByTopic() map[int64]string {
	result := make(map[int64]string, len(e.Items))
	for _, item := range e.Items {
		if item.TopicID > 0 {
			result[item.TopicID] = item.Message
		}
	}
	return result
}

// ProgressService 学习进度业务接口
type ProgressService interface {
	// Reconcile 为每个展示的条目生成恰好一个绑定，缺失记录的条目补齐未完成的默认绑定
	Reconcile(ctx context.Context, userID string, topics []model.Topic) (*dto.TopicChecklist, error)
	// Checklist 对全部条目执行 Reconcile
	Checklist(ctx context.Context, userID string) (*dto.TopicChecklist, error)
	// SubmitTopicBatch 在单个事务中保存一批条目的完成状态
	SubmitTopicBatch(ctx context.Context, userID string, items []dto.TopicProgressItem) (*dto.TopicChecklist, error)
	// ToggleProject 首次调用创建未完成记录，之后每次调用取反；链接每次覆盖
	ToggleProject(ctx context.Context, userID string, projectID int64, link string) (*dto.ToggleResponse, error)
	// ToggleTopic 与 ToggleProject 语义相同
	ToggleTopic(ctx context.Context, userID string, topicID int64) (*dto.ToggleResponse, error)
	// RoadmapView 构建路线图视图；userID 为空时返回匿名视图
	RoadmapView(ctx context.Context, userID, username string) (*dto.RoadmapView, error)
	Summary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error)
}

type progressService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, logger: logger}
}

// ────────────────────── Reconcile ──────────────────────

func (s *progressService) Reconcile(ctx context.Context, userID string, topics []model.Topic) (*dto.TopicChecklist, error) {
	return s.reconcile(ctx, s.repo, userID, topics)
}

func (s *progressService) reconcile(ctx context.Context, repo *repository.Repository, userID string, topics []model.Topic) (*dto.TopicChecklist, error) {
	ids := make([]int64, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
	}

	rows, err := repo.TopicProgress.ListByUserAndTopics(ctx, userID, ids)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	existing := make(map[int64]*model.TopicProgress, len(rows))
	for i := range rows {
		existing[rows[i].TopicID] = &rows[i]
	}

	checklist := &dto.TopicChecklist{
		Bindings: make(map[int64]*dto.TopicBinding, len(topics)),
		Order:    make([]int64, 0, len(topics)),
	}
	for _, t := range topics {
		if _, dup := checklist.Bindings[t.ID]; dup {
			continue
		}
		binding := &dto.TopicBinding{TopicID: t.ID, TopicName: t.Name}
		if row, ok := existing[t.ID]; ok {
			completedAt := row.CompletedAt
			binding.Completed = row.Completed
			binding.Persisted = true
			binding.CompletedAt = &completedAt
		}
		checklist.Bindings[t.ID] = binding
		checklist.Order = append(checklist.Order, t.ID)
	}
	return checklist, nil
}

func (s *progressService) Checklist(ctx context.Context, userID string) (*dto.TopicChecklist, error) {
	topics, err := s.repo.Topic.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询学习条目失败", zap.Error(err))
		return nil, err
	}
	return s.Reconcile(ctx, userID, topics)
}

// ────────────────────── SubmitTopicBatch ──────────────────────

func (s *progressService) SubmitTopicBatch(ctx context.Context, userID string, items []dto.TopicProgressItem) (*dto.TopicChecklist, error) {
	topics, err := s.validateBatch(ctx, items)
	if err != nil {
		return nil, err
	}

	var checklist *dto.TopicChecklist
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		current, err := s.reconcile(ctx, txRepo, userID, topics)
		if err != nil {
			return err
		}
		for _, item := range items {
			binding, _ := current.Get(item.TopicID)
			// 与当前状态一致的绑定不写入，完成时间不刷新
			if binding.Completed == item.Completed {
				continue
			}
			if err := s.saveTopicState(ctx, txRepo, userID, item.TopicID, item.Completed, binding.Persisted); err != nil {
				return err
			}
		}
		checklist, err = s.reconcile(ctx, txRepo, userID, topics)
		return err
	})
	if err != nil {
		s.logger.Error("保存学习进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return checklist, nil
}

// validateBatch 校验批量提交并按提交顺序返回对应条目
func (s *progressService) validateBatch(ctx context.Context, items []dto.TopicProgressItem) ([]model.Topic, error) {
	var itemErrors []ItemError
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))

	for i, item := range items {
		if item.TopicID <= 0 {
			itemErrors = append(itemErrors, ItemError{Index: i, TopicID: item.TopicID, Message: "topic_id 必须为正整数"})
			continue
		}
		if _, dup := seen[item.TopicID]; dup {
			itemErrors = append(itemErrors, ItemError{Index: i, TopicID: item.TopicID, Message: "学习条目重复提交"})
			continue
		}
		seen[item.TopicID] = struct{}{}
		ids = append(ids, item.TopicID)
	}

	found, err := s.repo.Topic.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询学习条目失败", zap.Error(err))
		return nil, err
	}
	byID := make(map[int64]model.Topic, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	topics := make([]model.Topic, 0, len(ids))
	for i, item := range items {
		if item.TopicID <= 0 {
			continue
		}
		t, ok := byID[item.TopicID]
		if !ok {
			itemErrors = append(itemErrors, ItemError{Index: i, TopicID: item.TopicID, Message: ErrTopicNotFound.Error()})
			continue
		}
		if _, pending := seen[item.TopicID]; pending {
			topics = append(topics, t)
			delete(seen, item.TopicID)
		}
	}

	if len(itemErrors) > 0 {
		return nil, &BatchValidationError{Items: itemErrors}
	}
	return topics, nil
}

// saveTopicState 写入单个条目的目标状态；首次创建遇到唯一约束冲突时按更新重试一次
func (s *progressService) saveTopicState(ctx context.Context, repo *repository.Repository, userID string, topicID int64, completed, persisted bool) error {
	if !persisted {
		row := &model.TopicProgress{UserID: userID, TopicID: topicID, Completed: completed}
		err := repo.TopicProgress.Create(ctx, row)
		if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return err
		}
		s.logger.Info("学习进度并发创建冲突，改为更新",
			zap.String("user_id", userID), zap.Int64("topic_id", topicID))
	}

	row, err := repo.TopicProgress.GetByUserAndTopic(ctx, userID, topicID)
	if err != nil {
		return err
	}
	if row.Completed == completed {
		return nil
	}
	row.Completed = completed
	return repo.TopicProgress.Update(ctx, row)
}

// ────────────────────── ToggleProject ──────────────────────

func (s *progressService) ToggleProject(ctx context.Context, userID string, projectID int64, link string) (*dto.ToggleResponse, error) {
	if _, err := s.repo.Project.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, err
	}

	row, err := s.repo.ProjectProgress.GetByUserAndProject(ctx, userID, projectID)
	switch {
	case err == nil:
		row.Completed = !row.Completed
		row.GithubLink = link
		if err := s.repo.ProjectProgress.Update(ctx, row); err != nil {
			s.logger.Error("更新项目进度失败", zap.Int64("project_id", projectID), zap.Error(err))
			return nil, err
		}
		return &dto.ToggleResponse{ID: row.ID, Completed: row.Completed}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		row = &model.ProjectProgress{UserID: userID, ProjectID: projectID, GithubLink: link}
		cerr := s.repo.ProjectProgress.Create(ctx, row)
		if cerr == nil {
			return &dto.ToggleResponse{ID: row.ID, Completed: row.Completed, Created: true}, nil
		}
		if !errors.Is(cerr, pkgerrors.ErrDuplicateKey) {
			s.logger.Error("创建项目进度失败", zap.Int64("project_id", projectID), zap.Error(cerr))
			return nil, cerr
		}

		// 并发的首次点击：读取胜出的记录，按已存在处理
		winner, gerr := s.repo.ProjectProgress.GetByUserAndProject(ctx, userID, projectID)
		if gerr != nil {
			s.logger.Error("冲突后重新读取项目进度失败", zap.Int64("project_id", projectID), zap.Error(gerr))
			return nil, cerr
		}
		winner.Completed = !winner.Completed
		winner.GithubLink = link
		if err := s.repo.ProjectProgress.Update(ctx, winner); err != nil {
			return nil, err
		}
		return &dto.ToggleResponse{ID: winner.ID, Completed: winner.Completed}, nil

	default:
		s.logger.Error("查询项目进度失败", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, err
	}
}

// ────────────────────── ToggleTopic ──────────────────────

func (s *progressService) ToggleTopic(ctx context.Context, userID string, topicID int64) (*dto.ToggleResponse, error) {
	if _, err := s.repo.Topic.GetByID(ctx, topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询学习条目失败", zap.Int64("topic_id", topicID), zap.Error(err))
		return nil, err
	}

	row, err := s.repo.TopicProgress.GetByUserAndTopic(ctx, userID, topicID)
	switch {
	case err == nil:
		row.Completed = !row.Completed
		if err := s.repo.TopicProgress.Update(ctx, row); err != nil {
			s.logger.Error("更新学习进度失败", zap.Int64("topic_id", topicID), zap.Error(err))
			return nil, err
		}
		return &dto.ToggleResponse{ID: row.ID, Completed: row.Completed}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		row = &model.TopicProgress{UserID: userID, TopicID: topicID}
		cerr := s.repo.TopicProgress.Create(ctx, row)
		if cerr == nil {
			return &dto.ToggleResponse{ID: row.ID, Completed: row.Completed, Created: true}, nil
		}
		if !errors.Is(cerr, pkgerrors.ErrDuplicateKey) {
			s.logger.Error("创建学习进度失败", zap.Int64("topic_id", topicID), zap.Error(cerr))
			return nil, cerr
		}

		winner, gerr := s.repo.TopicProgress.GetByUserAndTopic(ctx, userID, topicID)
		if gerr != nil {
			s.logger.Error("冲突后重新读取学习进度失败", zap.Int64("topic_id", topicID), zap.Error(gerr))
			return nil, cerr
		}
		winner.Completed = !winner.Completed
		if err := s.repo.TopicProgress.Update(ctx, winner); err != nil {
			return nil, err
		}
		return &dto.ToggleResponse{ID: winner.ID, Completed: winner.Completed}, nil

	default:
		s.logger.Error("查询学习进度失败", zap.Int64("topic_id", topicID), zap.Error(err))
		return nil, err
	}
}

// ────────────────────── RoadmapView ──────────────────────

func (s *progressService) RoadmapView(ctx context.Context, userID, username string) (*dto.RoadmapView, error) {
	categories, err := s.repo.Category.ListTree(ctx)
	if err != nil {
		s.logger.Error("加载大纲失败", zap.Error(err))
		return nil, err
	}

	view := &dto.RoadmapView{}
	if userID == "" {
		view.Categories = buildRoadmapView(categories, completionState{})
		return view, nil
	}

	checklist, err := s.Reconcile(ctx, userID, flattenTopics(categories))
	if err != nil {
		return nil, err
	}
	projectRows, err := s.repo.ProjectProgress.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询项目进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	projects := make(map[int64]model.ProjectProgress, len(projectRows))
	for _, p := range projectRows {
		projects[p.ProjectID] = p
	}

	view.Authenticated = true
	view.Username = username
	view.Categories = buildRoadmapView(categories, completionState{
		topic: func(id int64) (bool, bool) {
			b, ok := checklist.Get(id)
			if !ok {
				return false, false
			}
			return b.Completed, b.Persisted
		},
		project: func(id int64) (bool, string) {
			p, ok := projects[id]
			if !ok {
				return false, ""
			}
			return p.Completed, p.GithubLink
		},
	})
	return view, nil
}

// ────────────────────── Summary ──────────────────────

func (s *progressService) Summary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error) {
	categories, err := s.repo.Category.ListTree(ctx)
	if err != nil {
		s.logger.Error("加载大纲失败", zap.Error(err))
		return nil, err
	}
	topicRows, err := s.repo.TopicProgress.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	projectRows, err := s.repo.ProjectProgress.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询项目进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	doneTopics := make(map[int64]bool, len(topicRows))
	for _, r := range topicRows {
		doneTopics[r.TopicID] = r.Completed
	}
	doneProjects := make(map[int64]bool, len(projectRows))
	for _, r := range projectRows {
		doneProjects[r.ProjectID] = r.Completed
	}

	resp := &dto.ProgressSummaryResponse{Categories: make([]dto.CategoryProgressSummary, 0, len(categories))}
	for _, c := range categories {
		sum := dto.CategoryProgressSummary{CategoryID: c.ID, Code: c.Code, Name: c.Name}
		for _, p := range c.Phases {
			sum.TopicsTotal += len(p.Topics)
			for _, t := range p.Topics {
				if doneTopics[t.ID] {
					sum.TopicsCompleted++
				}
			}
			sum.ProjectsTotal += len(p.Projects)
			for _, pr := range p.Projects {
				if doneProjects[pr.ID] {
					sum.ProjectsCompleted++
				}
			}
		}
		resp.Categories = append(resp.Categories, sum)
	}
	return resp, nil
}

func flattenTopics(categories []model.Category) []model.Topic {
	var topics []model.Topic
	for _, c := range categories {
		for _, p := range c.Phases {
			topics = append(topics, p.Topics...)
		}
	}
	return topics
}
