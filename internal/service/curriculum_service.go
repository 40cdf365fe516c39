package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/internal/dto"
	"github.com/soumitjana/soumitjana.github.io/internal/model"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	"github.com/soumitjana/soumitjana.github.io/internal/seed"
)

// CurriculumService 课程大纲业务接口
type CurriculumService interface {
	// Tree 按展示顺序返回完整大纲树
	Tree(ctx context.Context) ([]model.Category, error)
	// Seed 导入大纲；reset=false 且库中已有分类时跳过，返回是否执行了导入
	Seed(ctx context.Context, fixture *seed.Fixture, reset bool) (bool, error)
}

type curriculumService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCurriculumService 创建 CurriculumService 实例
func NewCurriculumService(repo *repository.Repository, logger *zap.Logger) CurriculumService {
	return &curriculumService{repo: repo, logger: logger}
}

func (s *curriculumService) Tree(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.Category.ListTree(ctx)
	if err != nil {
		s.logger.Error("加载大纲失败", zap.Error(err))
		return nil, err
	}
	return categories, nil
}

// ────────────────────── Seed ──────────────────────

func (s *curriculumService) Seed(ctx context.Context, fixture *seed.Fixture, reset bool) (bool, error) {
	seeded := false
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if reset {
			// 分类删除级联到阶段、条目、项目及其进度
			if err := txRepo.Category.DeleteAll(ctx); err != nil {
				return err
			}
			if err := txRepo.Resource.DeleteAll(ctx); err != nil {
				return err
			}
		} else {
			total, err := txRepo.Category.Count(ctx)
			if err != nil {
				return err
			}
			if total > 0 {
				return nil
			}
		}

		resources := fixture.BuildResources()
		if err := txRepo.Resource.BatchCreate(ctx, resources); err != nil {
			return err
		}
		byTitle := make(map[string]*model.Resource, len(resources))
		for _, r := range resources {
			byTitle[r.Title] = r
		}

		if err := txRepo.Category.CreateTree(ctx, fixture.BuildCategories(byTitle)); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		s.logger.Error("导入大纲失败", zap.Error(err))
		return false, err
	}

	if seeded {
		categories, phases, topics, projects := fixture.Counts()
		s.logger.Info("大纲导入完成",
			zap.Bool("reset", reset),
			zap.Int("categories", categories),
			zap.Int("phases", phases),
			zap.Int("topics", topics),
			zap.Int("projects", projects),
		)
	} else {
		s.logger.Info("大纲已存在，跳过导入")
	}
	return seeded, nil
}

// ── 视图构建 ──

// completionState 单个条目/项目在视图中的完成状态来源
type completionState struct {
	topic   func(id int64) (completed, persisted bool)
	project func(id int64) (completed bool, link string)
}

// buildRoadmapView 将大纲树转换为视图，顺序完全由大纲决定
func buildRoadmapView(categories []model.Category, state completionState) []dto.CategoryView {
	result := make([]dto.CategoryView, 0, len(categories))
	for _, c := range categories {
		cv := dto.CategoryView{
			ID:          c.ID,
			Name:        c.Name,
			Code:        c.Code,
			Description: c.Description,
			Phases:      make([]dto.PhaseView, 0, len(c.Phases)),
		}
		for _, p := range c.Phases {
			pv := dto.PhaseView{
				ID:        p.ID,
				Title:     p.Title,
				WeekRange: p.WeekRange,
				Goal:      p.Goal,
				Order:     p.SortOrder,
				Topics:    make([]dto.TopicView, 0, len(p.Topics)),
				Projects:  make([]dto.ProjectView, 0, len(p.Projects)),
			}
			for _, t := range p.Topics {
				tv := dto.TopicView{ID: t.ID, Name: t.Name}
				if state.topic != nil {
					tv.Completed, tv.Persisted = state.topic(t.ID)
				}
				pv.Topics = append(pv.Topics, tv)
			}
			for _, pr := range p.Projects {
				prv := dto.ProjectView{ID: pr.ID, Name: pr.Name, Description: pr.Description}
				if state.project != nil {
					prv.Completed, prv.GithubLink = state.project(pr.ID)
				}
				pv.Projects = append(pv.Projects, prv)
			}
			for _, r := range p.Resources {
				pv.Resources = append(pv.Resources, dto.ResourceView{
					Title:       r.Title,
					Type:        r.ResourceType,
					TypeLabel:   model.ResourceTypeLabels[r.ResourceType],
					URL:         r.URL,
					Description: r.Description,
				})
			}
			cv.Phases = append(cv.Phases, pv)
		}
		result = append(result, cv)
	}
	return result
}
