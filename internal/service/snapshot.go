package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Snapshot 客户端导出的勾选快照（progress.json）
// 只记录集合成员关系，与进度表无关
type Snapshot struct {
	Topics   map[int64]struct{}
	Projects map[int64]struct{}
}

// NewSnapshot 由 ID 列表构造快照
func NewSnapshot(topics, projects []int64) Snapshot {
	s := Snapshot{
		Topics:   make(map[int64]struct{}, len(topics)),
		Projects: make(map[int64]struct{}, len(projects)),
	}
	for _, id := range topics {
		s.Topics[id] = struct{}{}
	}
	for _, id := range projects {
		s.Projects[id] = struct{}{}
	}
	return s
}

// HasTopic 条目是否在快照中被勾选
func (s Snapshot) HasTopic(id int64) bool {
	_, ok := s.Topics[id]
	return ok
}

// HasProject 项目是否在快照中被勾选
func (s Snapshot) HasProject(id int64) bool {
	_, ok := s.Projects[id]
	return ok
}

// TopicIDs 返回升序的条目 ID
func (s Snapshot) TopicIDs() []int64 { return sortedIDs(s.Topics) }

// ProjectIDs 返回升序的项目 ID
func (s Snapshot) ProjectIDs() []int64 { return sortedIDs(s.Projects) }

// ParseSnapshot 解析快照 JSON，从不返回错误
//
// 规则：
//   - 顶层须为对象，可选键 topics / projects，值须为数组；其他键忽略
//   - 数组元素可为 JSON 数字或数字字符串，统一归一化为 int64
//   - 非数字、非整数、非正数的元素被丢弃并记录 warn 日志
//   - 文档无法解析时返回空快照
func ParseSnapshot(raw []byte, logger *zap.Logger) Snapshot {
	snap := NewSnapshot(nil, nil)
	if len(strings.TrimSpace(string(raw))) == 0 {
		return snap
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Warn("快照文件无法解析，按空快照处理", zap.Error(err))
		return snap
	}

	collect := func(key string, into map[int64]struct{}) {
		value, ok := doc[key]
		if !ok {
			return
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(value, &entries); err != nil {
			logger.Warn("快照字段不是数组，已忽略", zap.String("key", key))
			return
		}
		for _, entry := range entries {
			id, err := parseSnapshotID(entry)
			if err != nil {
				logger.Warn("快照条目无效，已跳过",
					zap.String("key", key),
					zap.String("entry", string(entry)),
					zap.Error(err),
				)
				continue
			}
			into[id] = struct{}{}
		}
	}
	collect("topics", snap.Topics)
	collect("projects", snap.Projects)

	return snap
}

// LoadSnapshot 读取快照文件；文件不存在时返回空快照（导出结果全部未勾选）
func LoadSnapshot(path string, logger *zap.Logger) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("快照文件不存在，按空快照导出", zap.String("path", path))
			return NewSnapshot(nil, nil), nil
		}
		return Snapshot{}, fmt.Errorf("读取快照文件失败: %w", err)
	}
	return ParseSnapshot(raw, logger), nil
}

func parseSnapshotID(entry json.RawMessage) (int64, error) {
	var v interface{}
	dec := json.NewDecoder(strings.NewReader(string(entry)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	var text string
	switch t := v.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		return 0, fmt.Errorf("不支持的类型 %T", v)
	}

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// 形如 5.0 的整数值
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, fmt.Errorf("不是整数: %s", text)
		}
		id = int64(f)
	}
	if id <= 0 {
		return 0, fmt.Errorf("ID 必须为正数: %d", id)
	}
	return id, nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
