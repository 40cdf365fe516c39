package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/soumitjana/soumitjana.github.io/internal/dto"
)

// RoadmapTemplate 路线图页面模板名（在线页面与静态导出共用）
const RoadmapTemplate = "roadmap.html"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// Templates 返回已解析的模板集合，供 gin.Engine.SetHTMLTemplate 使用
func Templates() *template.Template {
	return templates
}

// RenderRoadmap 渲染路线图页面
func RenderRoadmap(w io.Writer, v *dto.RoadmapView) error {
	return templates.ExecuteTemplate(w, RoadmapTemplate, v)
}
