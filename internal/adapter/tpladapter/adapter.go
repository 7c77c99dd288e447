package tpladapter

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"

	_ "embed"

	"github.com/jgivc/gdocexport/internal/entity"
	"gopkg.in/yaml.v2"
)

const (
	funcNameFrontmatter = "frontmatter"
	funcNameCell        = "cell"
	funcNameFolder      = "folder"

	rootFolderLabel = "(root)"
)

//go:embed report.md.tmpl
var defaultReportTemplate string

//go:embed page.html
var defaultPageTemplate string

type ReportData struct {
	Title     string
	Folder    string
	Run       *entity.RunInfo
	Summaries []entity.FolderSummary
	Records   []*entity.ExportRecord
}

type PageData struct {
	Title string
	Body  htmltemplate.HTML
}

type tplAdapter struct {
	report *template.Template
	page   *htmltemplate.Template
}

func NewTplAdapter() (*tplAdapter, error) {
	report, err := template.New("report").Funcs(template.FuncMap{
		funcNameFrontmatter: frontmatter,
		funcNameCell:        cell,
		funcNameFolder:      folder,
	}).Parse(defaultReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("cannot parse report template: %w", err)
	}

	page, err := htmltemplate.New("page").Parse(defaultPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("cannot parse page template: %w", err)
	}

	return &tplAdapter{report: report, page: page}, nil
}

// Report builds the markdown report, front matter included.
func (a *tplAdapter) Report(data *ReportData) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := a.report.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("cannot execute report template: %w", err)
	}

	return buf.Bytes(), nil
}

// Page wraps rendered html into a standalone document.
func (a *tplAdapter) Page(title string, body []byte) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := a.page.Execute(&buf, &PageData{Title: title, Body: htmltemplate.HTML(body)}); err != nil {
		return nil, fmt.Errorf("cannot execute page template: %w", err)
	}

	return buf.Bytes(), nil
}

type reportMeta struct {
	Title          string `yaml:"title"`
	entity.RunInfo `yaml:",inline"`
}

func frontmatter(data *ReportData) (string, error) {
	meta := reportMeta{Title: data.Title}
	if data.Run != nil {
		meta.RunInfo = *data.Run
	}

	out, err := yaml.Marshal(&meta)
	if err != nil {
		return "", fmt.Errorf("cannot marshal front matter: %w", err)
	}

	return string(out), nil
}

// cell keeps a value inside one markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)

	return strings.Join(strings.Fields(s), " ")
}

func folder(s string) string {
	if s == "" {
		return rootFolderLabel
	}

	return s
}
