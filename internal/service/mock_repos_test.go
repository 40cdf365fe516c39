package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/internal/model"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	pkgerrors "github.com/soumitjana/soumitjana.github.io/pkg/errors"
)

// ── 测试用大纲 ──
// AI: 阶段 10（条目 5、7；项目 3；资源 1）
// QC: 阶段 20（条目 9；项目 4）

func newTestCurriculum() []model.Category {
	return []model.Category{
		{
			ID: 1, Name: "Full-Stack AI Engineer Path", Code: "AI", SortOrder: 1,
			Phases: []model.Phase{{
				ID: 10, CategoryID: 1, Title: "Deep Learning Foundations", WeekRange: "Phase 1", SortOrder: 1,
				Topics: []model.Topic{
					{ID: 5, PhaseID: 10, Name: "CNNs", SortOrder: 1},
					{ID: 7, PhaseID: 10, Name: "RNNs", SortOrder: 2},
				},
				Projects: []model.Project{
					{ID: 3, PhaseID: 10, Name: "CNN Image Classifier", SortOrder: 1},
				},
				Resources: []model.Resource{
					{ID: 1, Title: "Dive into Deep Learning", ResourceType: model.ResourceTypeOnline, URL: "https://d2l.ai"},
				},
			}},
		},
		{
			ID: 2, Name: "Quantum Computing Extension", Code: "QC", SortOrder: 2,
			Phases: []model.Phase{{
				ID: 20, CategoryID: 2, Title: "Quantum Foundations", WeekRange: "Phase 7", SortOrder: 1,
				Topics: []model.Topic{
					{ID: 9, PhaseID: 20, Name: "Qubits", SortOrder: 1},
				},
				Projects: []model.Project{
					{ID: 4, PhaseID: 20, Name: "Bell State Simulation", SortOrder: 1},
				},
			}},
		},
	}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock 大纲仓储（Category / Topic / Project / Resource 共享同一份数据） ──

type mockCurriculumStore struct {
	categories []model.Category
	resources  []*model.Resource
	nextID     int64
	listErr    error
}

func (s *mockCurriculumStore) topics() []model.Topic {
	return flattenTopics(s.categories)
}

func (s *mockCurriculumStore) projects() []model.Project {
	var result []model.Project
	for _, c := range s.categories {
		for _, p := range c.Phases {
			result = append(result, p.Projects...)
		}
	}
	return result
}

func (s *mockCurriculumStore) id() int64 {
	s.nextID++
	return s.nextID
}

type mockCategoryRepo struct{ store *mockCurriculumStore }

func (m *mockCategoryRepo) ListTree(_ context.Context) ([]model.Category, error) {
	if m.store.listErr != nil {
		return nil, m.store.listErr
	}
	return m.store.categories, nil
}

func (m *mockCategoryRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.store.categories)), nil
}

func (m *mockCategoryRepo) CreateTree(_ context.Context, categories []model.Category) error {
	codes := make(map[string]bool)
	for _, c := range m.store.categories {
		codes[c.Code] = true
	}
	for ci := range categories {
		c := &categories[ci]
		if codes[c.Code] {
			return pkgerrors.ErrDuplicateKey
		}
		c.ID = m.store.id()
		for pi := range c.Phases {
			p := &c.Phases[pi]
			p.ID = m.store.id()
			p.CategoryID = c.ID
			for ti := range p.Topics {
				p.Topics[ti].ID = m.store.id()
				p.Topics[ti].PhaseID = p.ID
			}
			for pj := range p.Projects {
				p.Projects[pj].ID = m.store.id()
				p.Projects[pj].PhaseID = p.ID
			}
		}
		m.store.categories = append(m.store.categories, *c)
	}
	return nil
}

func (m *mockCategoryRepo) DeleteAll(_ context.Context) error {
	m.store.categories = nil
	return nil
}

type mockTopicRepo struct{ store *mockCurriculumStore }

func (m *mockTopicRepo) GetByID(_ context.Context, id int64) (*model.Topic, error) {
	for _, t := range m.store.topics() {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) ListAll(_ context.Context) ([]model.Topic, error) {
	return m.store.topics(), nil
}

func (m *mockTopicRepo) ListByIDs(_ context.Context, ids []int64) ([]model.Topic, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var result []model.Topic
	for _, t := range m.store.topics() {
		if want[t.ID] {
			result = append(result, t)
		}
	}
	return result, nil
}

type mockProjectRepo struct{ store *mockCurriculumStore }

func (m *mockProjectRepo) GetByID(_ context.Context, id int64) (*model.Project, error) {
	for _, p := range m.store.projects() {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) ListAll(_ context.Context) ([]model.Project, error) {
	return m.store.projects(), nil
}

type mockResourceRepo struct{ store *mockCurriculumStore }

func (m *mockResourceRepo) BatchCreate(_ context.Context, resources []*model.Resource) error {
	for _, r := range resources {
		r.ID = m.store.id()
		m.store.resources = append(m.store.resources, r)
	}
	return nil
}

func (m *mockResourceRepo) DeleteAll(_ context.Context) error {
	m.store.resources = nil
	return nil
}

// ── Mock TopicProgressRepository ──
// 返回副本以模拟数据库读写；writes 统计 Create/Update 成功次数

type mockTopicProgressRepo struct {
	rows   map[string]*model.TopicProgress
	nextID int64
	writes int
	// raceWinner 非 nil 时，下一次 Create 先写入该记录再返回唯一约束冲突
	raceWinner *model.TopicProgress
}

func newMockTopicProgressRepo() *mockTopicProgressRepo {
	return &mockTopicProgressRepo{rows: make(map[string]*model.TopicProgress)}
}

func topicKey(userID string, topicID int64) string {
	return fmt.Sprintf("%s:%d", userID, topicID)
}

func (m *mockTopicProgressRepo) insert(p *model.TopicProgress) {
	m.nextID++
	p.ID = m.nextID
	p.CompletedAt = time.Now()
	cp := *p
	m.rows[topicKey(p.UserID, p.TopicID)] = &cp
}

func (m *mockTopicProgressRepo) GetByUserAndTopic(_ context.Context, userID string, topicID int64) (*model.TopicProgress, error) {
	if p, ok := m.rows[topicKey(userID, topicID)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicProgressRepo) ListByUser(_ context.Context, userID string) ([]model.TopicProgress, error) {
	var result []model.TopicProgress
	for _, p := range m.rows {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockTopicProgressRepo) ListByUserAndTopics(_ context.Context, userID string, topicIDs []int64) ([]model.TopicProgress, error) {
	var result []model.TopicProgress
	for _, id := range topicIDs {
		if p, ok := m.rows[topicKey(userID, id)]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockTopicProgressRepo) Create(_ context.Context, p *model.TopicProgress) error {
	if m.raceWinner != nil {
		m.insert(m.raceWinner)
		m.raceWinner = nil
		return pkgerrors.ErrDuplicateKey
	}
	if _, ok := m.rows[topicKey(p.UserID, p.TopicID)]; ok {
		return pkgerrors.ErrDuplicateKey
	}
	m.insert(p)
	m.writes++
	return nil
}

func (m *mockTopicProgressRepo) Update(_ context.Context, p *model.TopicProgress) error {
	p.CompletedAt = time.Now()
	cp := *p
	m.rows[topicKey(p.UserID, p.TopicID)] = &cp
	m.writes++
	return nil
}

// ── Mock ProjectProgressRepository ──

type mockProjectProgressRepo struct {
	rows       map[string]*model.ProjectProgress
	nextID     int64
	raceWinner *model.ProjectProgress
}

func newMockProjectProgressRepo() *mockProjectProgressRepo {
	return &mockProjectProgressRepo{rows: make(map[string]*model.ProjectProgress)}
}

func projectKey(userID string, projectID int64) string {
	return fmt.Sprintf("%s:%d", userID, projectID)
}

func (m *mockProjectProgressRepo) insert(p *model.ProjectProgress) {
	m.nextID++
	p.ID = m.nextID
	p.CompletedAt = time.Now()
	cp := *p
	m.rows[projectKey(p.UserID, p.ProjectID)] = &cp
}

func (m *mockProjectProgressRepo) GetByUserAndProject(_ context.Context, userID string, projectID int64) (*model.ProjectProgress, error) {
	if p, ok := m.rows[projectKey(userID, projectID)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectProgressRepo) ListByUser(_ context.Context, userID string) ([]model.ProjectProgress, error) {
	var result []model.ProjectProgress
	for _, p := range m.rows {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProjectProgressRepo) Create(_ context.Context, p *model.ProjectProgress) error {
	if m.raceWinner != nil {
		m.insert(m.raceWinner)
		m.raceWinner = nil
		return pkgerrors.ErrDuplicateKey
	}
	if _, ok := m.rows[projectKey(p.UserID, p.ProjectID)]; ok {
		return pkgerrors.ErrDuplicateKey
	}
	m.insert(p)
	return nil
}

func (m *mockProjectProgressRepo) Update(_ context.Context, p *model.ProjectProgress) error {
	p.CompletedAt = time.Now()
	cp := *p
	m.rows[projectKey(p.UserID, p.ProjectID)] = &cp
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[jti] = ttl
	return nil
}

// ── 聚合 ──

type testRepos struct {
	repo            *repository.Repository
	users           *mockUserRepo
	curriculum      *mockCurriculumStore
	topicProgress   *mockTopicProgressRepo
	projectProgress *mockProjectProgressRepo
}

func newTestRepos(categories []model.Category) *testRepos {
	store := &mockCurriculumStore{categories: categories, nextID: 100}
	tr := &testRepos{
		users:           newMockUserRepo(),
		curriculum:      store,
		topicProgress:   newMockTopicProgressRepo(),
		projectProgress: newMockProjectProgressRepo(),
	}
	tr.repo = &repository.Repository{
		User:            tr.users,
		Category:        &mockCategoryRepo{store: store},
		Topic:           &mockTopicRepo{store: store},
		Project:         &mockProjectRepo{store: store},
		Resource:        &mockResourceRepo{store: store},
		TopicProgress:   tr.topicProgress,
		ProjectProgress: tr.projectProgress,
	}
	return tr
}
