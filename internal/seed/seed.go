package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/soumitjana/soumitjana.github.io/internal/model"
)

//go:embed curriculum.yaml
var embeddedCurriculum []byte

// ErrDuplicateCode 同一份大纲中出现重复的分类编码
var ErrDuplicateCode = errors.New("分类编码重复")

// ── 大纲描述结构 ──
// 顺序字段为 0 时按列表位置从 1 开始编号

// Fixture 完整课程大纲
type Fixture struct {
	Categories []CategoryFixture `yaml:"categories" validate:"required,min=1,dive"`
}

// CategoryFixture 分类
type CategoryFixture struct {
	Name        string         `yaml:"name"        validate:"required,max=100"`
	Code        string         `yaml:"code"        validate:"required,max=10"`
	Description string         `yaml:"description"`
	Order       int            `yaml:"order"       validate:"gte=0"`
	Phases      []PhaseFixture `yaml:"phases"      validate:"dive"`
}

// PhaseFixture 阶段
type PhaseFixture struct {
	Title     string            `yaml:"title"      validate:"required,max=200"`
	WeekRange string            `yaml:"week_range" validate:"max=50"`
	Goal      string            `yaml:"goal"`
	Order     int               `yaml:"order"      validate:"gte=0"`
	Topics    []string          `yaml:"topics"     validate:"dive,required,max=200"`
	Projects  []ProjectFixture  `yaml:"projects"   validate:"dive"`
	Resources []ResourceFixture `yaml:"resources"  validate:"dive"`
}

// ProjectFixture 实践项目
type ProjectFixture struct {
	Name        string `yaml:"name"        validate:"required,max=200"`
	Description string `yaml:"description"`
}

// ResourceFixture 学习资源；同名资源在多个阶段间共享
type ResourceFixture struct {
	Title       string `yaml:"title"       validate:"required,max=200"`
	Type        string `yaml:"type"        validate:"required,oneof=BOOK COURSE ONLINE"`
	URL         string `yaml:"url"         validate:"omitempty,url,max=200"`
	Description string `yaml:"description"`
}

// Load 读取课程大纲：path 为空时使用内嵌的 curriculum.yaml
func Load(path string) (*Fixture, error) {
	if path == "" {
		return Parse(embeddedCurriculum)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取大纲文件失败: %w", err)
	}
	return Parse(raw)
}

// Parse 解析并校验大纲 YAML，未知字段视为错误
func Parse(raw []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("解析大纲失败: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("大纲校验失败: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		if _, ok := seen[c.Code]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, c.Code)
		}
		seen[c.Code] = struct{}{}
	}
	return &f, nil
}

// BuildResources 按首次出现顺序返回去重（按标题）后的资源模型
func (f *Fixture) BuildResources() []*model.Resource {
	var result []*model.Resource
	seen := make(map[string]struct{})
	for _, c := range f.Categories {
		for _, p := range c.Phases {
			for _, r := range p.Resources {
				if _, ok := seen[r.Title]; ok {
					continue
				}
				seen[r.Title] = struct{}{}
				result = append(result, &model.Resource{
					Title:        r.Title,
					ResourceType: r.Type,
					URL:          r.URL,
					Description:  r.Description,
				})
			}
		}
	}
	return result
}

// BuildCategories 构建待写入的分类树
// resources 为已落库的资源（按标题索引），阶段通过主键关联；缺失的资源被忽略
func (f *Fixture) BuildCategories(resources map[string]*model.Resource) []model.Category {
	categories := make([]model.Category, 0, len(f.Categories))
	for ci, c := range f.Categories {
		category := model.Category{
			Name:        c.Name,
			Code:        c.Code,
			Description: c.Description,
			SortOrder:   orderOr(c.Order, ci),
		}
		for pi, p := range c.Phases {
			phase := model.Phase{
				Title:     p.Title,
				WeekRange: p.WeekRange,
				Goal:      p.Goal,
				SortOrder: orderOr(p.Order, pi),
			}
			for ti, name := range p.Topics {
				phase.Topics = append(phase.Topics, model.Topic{Name: name, SortOrder: ti + 1})
			}
			for pj, proj := range p.Projects {
				phase.Projects = append(phase.Projects, model.Project{
					Name:        proj.Name,
					Description: proj.Description,
					SortOrder:   pj + 1,
				})
			}
			for _, r := range p.Resources {
				if res, ok := resources[r.Title]; ok {
					phase.Resources = append(phase.Resources, *res)
				}
			}
			category.Phases = append(category.Phases, phase)
		}
		categories = append(categories, category)
	}
	return categories
}

// Counts 返回大纲中分类、阶段、条目、项目的数量
func (f *Fixture) Counts() (categories, phases, topics, projects int) {
	categories = len(f.Categories)
	for _, c := range f.Categories {
		phases += len(c.Phases)
		for _, p := range c.Phases {
			topics += len(p.Topics)
			projects += len(p.Projects)
		}
	}
	return
}

func orderOr(order, index int) int {
	if order > 0 {
		return order
	}
	return index + 1
}
