package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/internal/dto"
	"github.com/soumitjana/soumitjana.github.io/internal/model"
)

// ── 测试辅助 ──

const testUser = "user-001"

func setupTestProgressService() (ProgressService, *testRepos) {
	tr := newTestRepos(newTestCurriculum())
	svc := NewProgressService(tr.repo, zap.NewNop())
	return svc, tr
}

// ── Reconcile 测试 ──

func TestProgressService_Reconcile_SynthesizesMissing(t *testing.T) {
	svc, tr := setupTestProgressService()
	tr.topicProgress.insert(&model.TopicProgress{UserID: testUser, TopicID: 7, Completed: true})

	topics := []model.Topic{{ID: 9, Name: "Qubits"}, {ID: 5, Name: "CNNs"}, {ID: 7, Name: "RNNs"}}
	checklist, err := svc.Reconcile(context.Background(), testUser, topics)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}

	list := checklist.List()
	if len(list) != 3 {
		t.Fatalf("期望 3 个绑定，实际 %d", len(list))
	}
	// 顺序与输入一致
	if list[0].TopicID != 9 || list[1].TopicID != 5 || list[2].TopicID != 7 {
		t.Errorf("绑定顺序不符: %d %d %d", list[0].TopicID, list[1].TopicID, list[2].TopicID)
	}

	b5, _ := checklist.Get(5)
	if b5.Completed || b5.Persisted || b5.CompletedAt != nil {
		t.Errorf("缺失记录的条目应补齐为未完成、未持久化、无完成时间: %+v", b5)
	}
	b7, _ := checklist.Get(7)
	if !b7.Completed || !b7.Persisted || b7.CompletedAt == nil {
		t.Errorf("已有记录的条目应沿用记录状态: %+v", b7)
	}
}

func TestProgressService_Reconcile_NoDuplicateBindings(t *testing.T) {
	svc, _ := setupTestProgressService()

	topics := []model.Topic{{ID: 5}, {ID: 5}, {ID: 7}}
	checklist, err := svc.Reconcile(context.Background(), testUser, topics)
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if len(checklist.Order) != 2 || len(checklist.Bindings) != 2 {
		t.Errorf("每个条目只应有一个绑定: order=%v", checklist.Order)
	}
}

func TestProgressService_Checklist_AllTopics(t *testing.T) {
	svc, _ := setupTestProgressService()

	checklist, err := svc.Checklist(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Checklist 应成功: %v", err)
	}
	if len(checklist.Order) != 3 {
		t.Errorf("期望 3 个条目，实际 %d", len(checklist.Order))
	}
}

// ── SubmitTopicBatch 测试 ──

func TestProgressService_SubmitTopicBatch_CreatesOneRow(t *testing.T) {
	svc, tr := setupTestProgressService()
	ctx := context.Background()

	items := []dto.TopicProgressItem{{TopicID: 5, Completed: true}, {TopicID: 7, Completed: false}}
	checklist, err := svc.SubmitTopicBatch(ctx, testUser, items)
	if err != nil {
		t.Fatalf("SubmitTopicBatch 应成功: %v", err)
	}

	if len(tr.topicProgress.rows) != 1 {
		t.Fatalf("期望只创建 1 行，实际 %d", len(tr.topicProgress.rows))
	}
	row, err := tr.topicProgress.GetByUserAndTopic(ctx, testUser, 5)
	if err != nil || !row.Completed || row.UserID != testUser {
		t.Errorf("条目 5 应以当前用户创建为已完成: %+v, err=%v", row, err)
	}

	b5, _ := checklist.Get(5)
	if !b5.Completed || !b5.Persisted {
		t.Errorf("返回的绑定应反映已保存状态: %+v", b5)
	}
	b7, _ := checklist.Get(7)
	if b7.Completed || b7.Persisted {
		t.Errorf("未改变的条目不应写入: %+v", b7)
	}
}

func TestProgressService_SubmitTopicBatch_Idempotent(t *testing.T) {
	svc, tr := setupTestProgressService()
	ctx := context.Background()
	items := []dto.TopicProgressItem{{TopicID: 5, Completed: true}}

	if _, err := svc.SubmitTopicBatch(ctx, testUser, items); err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	first, _ := tr.topicProgress.GetByUserAndTopic(ctx, testUser, 5)
	writes := tr.topicProgress.writes

	if _, err := svc.SubmitTopicBatch(ctx, testUser, items); err != nil {
		t.Fatalf("重复提交应成功: %v", err)
	}
	second, _ := tr.topicProgress.GetByUserAndTopic(ctx, testUser, 5)

	if len(tr.topicProgress.rows) != 1 {
		t.Errorf("重复提交不应新增记录，实际 %d 行", len(tr.topicProgress.rows))
	}
	if tr.topicProgress.writes != writes {
		t.Error("状态未变化时不应写入")
	}
	if !second.CompletedAt.Equal(first.CompletedAt) {
		t.Error("状态未变化时完成时间不应刷新")
	}
}

func TestProgressService_SubmitTopicBatch_UpdatesExisting(t *testing.T) {
	svc, tr := setupTestProgressService()
	ctx := context.Background()
	tr.topicProgress.insert(&model.TopicProgress{UserID: testUser, TopicID: 5, Completed: true})

	_, err := svc.SubmitTopicBatch(ctx, testUser, []dto.TopicProgressItem{{TopicID: 5, Completed: false}})
	if err != nil {
		t.Fatalf("SubmitTopicBatch 应成功: %v", err)
	}

	row, _ := tr.topicProgress.GetByUserAndTopic(ctx, testUser, 5)
	if row.Completed {
		t.Error("已有记录应原地更新为未完成")
	}
	if row.ID != 1 {
		t.Errorf("不应新建记录，期望 ID=1，实际 %d", row.ID)
	}
}

func TestProgressService_SubmitTopicBatch_ValidationFailed(t *testing.T) {
	svc, tr := setupTestProgressService()

	items := []dto.TopicProgressItem{
		{TopicID: 5, Completed: true},
		{TopicID: 0, Completed: true},
		{TopicID: 999, Completed: true},
		{TopicID: 5, Completed: false},
	}
	_, err := svc.SubmitTopicBatch(context.Background(), testUser, items)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("期望 ErrValidationFailed，实际: %v", err)
	}

	var batchErr *BatchValidationError
	if !errors.As(err, &batchErr) {
		t.Fatalf("期望 *BatchValidationError，实际 %T", err)
	}
	if len(batchErr.Items) != 3 {
		t.Errorf("期望 3 项错误，实际 %d: %+v", len(batchErr.Items), batchErr.Items)
	}
	if msg := batchErr.ByTopic()[999]; msg != ErrTopicNotFound.Error() {
		t.Errorf("条目 999 的错误信息不符: %q", msg)
	}
	if len(tr.topicProgress.rows) != 0 {
		t.Error("校验失败时不应写入任何记录")
	}
}

func TestProgressService_SubmitTopicBatch_ConflictRetriedAsUpdate(t *testing.T) {
	svc, tr := setupTestProgressService()
	ctx := context.Background()
	// 并发请求抢先写入了未完成的记录
	tr.topicProgress.raceWinner = &model.TopicProgress{UserID: testUser, TopicID: 5, Completed: false}

	_, err := svc.SubmitTopicBatch(ctx, testUser, []dto.TopicProgressItem{{TopicID: 5, Completed: true}})
	if err != nil {
		t.Fatalf("冲突后应按更新重试成功: %v", err)
	}

	row, _ := tr.topicProgress.GetByUserAndTopic(ctx, testUser, 5)
	if !row.Completed {
		t.Error("重试更新后条目应为已完成")
	}
	if len(tr.topicProgress.rows) != 1 {
		t.Errorf("期望 1 行，实际 %d", len(tr.topicProgress.rows))
	}
}

// ── ToggleProject 测试 ──

func TestProgressService_ToggleProject_Sequence(t *testing.T) {
	svc, tr := setupTestProgressService()
	ctx := context.Background()

	want := []bool{false, true, false}
	for i, expected := range want {
		resp, err := svc.ToggleProject(ctx, testUser, 3, "")
		if err != nil {
			t.Fatalf("第 %d 次切换应成功: %v", i+1, err)
		}
		if resp.Completed != expected {
			t.Errorf("第 %d 次切换期望 completed=%v，实际 %v", i+1, expected, resp.Completed)
		}
		if resp.Created != (i == 0) {
			t.Errorf("第 %d 次切换 Created=%v 不符", i+1, resp.Created)
		}
	}
	if len(tr.projectProgress.rows) != 1 {
		t.Errorf("期望 1 行，实际 %d", len(tr.projectProgress.rows))
	}
}

func TestProgressService_ToggleProject_LinkOverwritten(t *testing.T) {
	svc, tr := setupTestProgressService()
	ctx := context.Background()

	if _, err := svc.ToggleProject(ctx, testUser, 3, "https://github.com/u/cnn"); err != nil {
		t.Fatalf("ToggleProject 应成功: %v", err)
	}
	row, _ := tr.projectProgress.GetByUserAndProject(ctx, testUser, 3)
	if row.GithubLink != "https://github.com/u/cnn" {
		t.Errorf("首次调用应保存链接，实际 %q", row.GithubLink)
	}

	if _, err := svc.ToggleProject(ctx, testUser, 3, ""); err != nil {
		t.Fatalf("ToggleProject 应成功: %v", err)
	}
	row, _ = tr.projectProgress.GetByUserAndProject(ctx, testUser, 3)
	if row.GithubLink != "" {
		t.Errorf("空链接应清除已有链接，实际 %q", row.GithubLink)
	}
}

func TestProgressService_ToggleProject_NotFound(t *testing.T) {
	svc, tr := setupTestProgressService()

	_, err := svc.ToggleProject(context.Background(), testUser, 999, "")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("期望 ErrProjectNotFound，实际: %v", err)
	}
	if len(tr.projectProgress.rows) != 0 {
		t.Error("项目不存在时不应创建记录")
	}
}

func TestProgressService_ToggleProject_ConflictFlipsWinner(t *testing.T) {
	svc, tr := setupTestProgressService()
	ctx := context.Background()
	tr.projectProgress.raceWinner = &model.ProjectProgress{UserID: testUser, ProjectID: 3, Completed: false}

	resp, err := svc.ToggleProject(ctx, testUser, 3, "https://github.com/u/x")
	if err != nil {
		t.Fatalf("冲突后应重试成功: %v", err)
	}
	if !resp.Completed || resp.Created {
		t.Errorf("胜出记录应按已存在处理并取反: %+v", resp)
	}
	row, _ := tr.projectProgress.GetByUserAndProject(ctx, testUser, 3)
	if row.GithubLink != "https://github.com/u/x" {
		t.Errorf("重试时也应覆盖链接，实际 %q", row.GithubLink)
	}
}

// ── ToggleTopic 测试 ──

func TestProgressService_ToggleTopic_Sequence(t *testing.T) {
	svc, _ := setupTestProgressService()
	ctx := context.Background()

	for i, expected := range []bool{false, true, false} {
		resp, err := svc.ToggleTopic(ctx, testUser, 5)
		if err != nil {
			t.Fatalf("第 %d 次切换应成功: %v", i+1, err)
		}
		if resp.Completed != expected {
			t.Errorf("第 %d 次切换期望 completed=%v，实际 %v", i+1, expected, resp.Completed)
		}
	}
}

func TestProgressService_ToggleTopic_NotFound(t *testing.T) {
	svc, tr := setupTestProgressService()

	_, err := svc.ToggleTopic(context.Background(), testUser, 999)
	if !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("期望 ErrTopicNotFound，实际: %v", err)
	}
	if len(tr.topicProgress.rows) != 0 {
		t.Error("条目不存在时不应创建记录")
	}
}

// ── RoadmapView / Summary 测试 ──

func TestProgressService_RoadmapView_Anonymous(t *testing.T) {
	svc, _ := setupTestProgressService()

	v, err := svc.RoadmapView(context.Background(), "", "")
	if err != nil {
		t.Fatalf("RoadmapView 应成功: %v", err)
	}
	if v.Authenticated {
		t.Error("匿名视图不应标记为已登录")
	}
	if len(v.Categories) != 2 || v.Categories[0].Code != "AI" {
		t.Fatalf("分类顺序不符: %+v", v.Categories)
	}
	res := v.Categories[0].Phases[0].Resources
	if len(res) != 1 || res[0].TypeLabel != "Online Resource" {
		t.Errorf("资源视图不符: %+v", res)
	}
}

func TestProgressService_RoadmapView_Authenticated(t *testing.T) {
	svc, tr := setupTestProgressService()
	tr.topicProgress.insert(&model.TopicProgress{UserID: testUser, TopicID: 7, Completed: true})
	tr.projectProgress.insert(&model.ProjectProgress{UserID: testUser, ProjectID: 3, Completed: true, GithubLink: "https://github.com/u/cnn"})
	// 其他用户的进度不可见
	tr.topicProgress.insert(&model.TopicProgress{UserID: "other", TopicID: 5, Completed: true})

	v, err := svc.RoadmapView(context.Background(), testUser, "alice")
	if err != nil {
		t.Fatalf("RoadmapView 应成功: %v", err)
	}
	if !v.Authenticated || v.Username != "alice" {
		t.Errorf("视图用户信息不符: %+v", v)
	}

	topics := v.Categories[0].Phases[0].Topics
	if topics[0].Completed || topics[0].Persisted {
		t.Errorf("条目 5 应为补齐的未完成绑定: %+v", topics[0])
	}
	if !topics[1].Completed || !topics[1].Persisted {
		t.Errorf("条目 7 应为已完成: %+v", topics[1])
	}
	project := v.Categories[0].Phases[0].Projects[0]
	if !project.Completed || project.GithubLink != "https://github.com/u/cnn" {
		t.Errorf("项目视图不符: %+v", project)
	}
}

func TestProgressService_Summary(t *testing.T) {
	svc, tr := setupTestProgressService()
	tr.topicProgress.insert(&model.TopicProgress{UserID: testUser, TopicID: 5, Completed: true})
	tr.topicProgress.insert(&model.TopicProgress{UserID: testUser, TopicID: 7, Completed: false})
	tr.projectProgress.insert(&model.ProjectProgress{UserID: testUser, ProjectID: 4, Completed: true})

	resp, err := svc.Summary(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Summary 应成功: %v", err)
	}

	ai, qc := resp.Categories[0], resp.Categories[1]
	if ai.TopicsTotal != 2 || ai.TopicsCompleted != 1 || ai.ProjectsCompleted != 0 {
		t.Errorf("AI 汇总不符: %+v", ai)
	}
	if qc.TopicsTotal != 1 || qc.TopicsCompleted != 0 || qc.ProjectsTotal != 1 || qc.ProjectsCompleted != 1 {
		t.Errorf("QC 汇总不符: %+v", qc)
	}
}
