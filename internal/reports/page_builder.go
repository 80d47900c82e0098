package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"oxforecast/internal/charts"
	"oxforecast/internal/models"
)

const (
	pageTitle = "光化学オキシダント予測"
	// UnavailableNotice is shown instead of a chart when the forecast API is down.
	UnavailableNotice = "現在、予測データを取得できません。しばらくしてから再度お試しください。"
)

// PageBuilder renders forecast pages: a goldmark summary header above the chart.
type PageBuilder struct {
	md      goldmark.Markdown
	version string
}

// NewPageBuilder creates a page builder stamping pages with version
func NewPageBuilder(version string) *PageBuilder {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	return &PageBuilder{md: md, version: version}
}

// HeaderMarkdown is the summary shown above the chart.
func HeaderMarkdown(data *models.ChartData, threshold float64, loc *time.Location) string {
	now := data.Now
	if loc != nil {
		now = now.In(loc)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", pageTitle)
	fmt.Fprintf(&b, "**%s**\n", charts.FormatStartTime(now))

	if data.Location != nil && data.Location.Address != "" {
		fmt.Fprintf(&b, "地点: %s (%s)\n", escapeMarkdown(data.Location.Address), escapeMarkdown(data.Region))
	} else {
		fmt.Fprintf(&b, "地域: %s\n", escapeMarkdown(data.Region))
	}

	b.WriteString("\n| 項目 | 値 |\n|---|---|\n")
	if data.Forecast != nil {
		if peak, ok := data.Forecast.OX.Max(); ok {
			fmt.Fprintf(&b, "| 予測最大値 | %.0f ppb |\n", peak)
		}
	}
	fmt.Fprintf(&b, "| %s | %.0f ppb |\n", charts.ThresholdLabel, threshold)
	if data.SunTimes != nil {
		fmt.Fprintf(&b, "| 日の出 / 日の入 | %s / %s |\n",
			data.SunTimes.Sunrise.Format("15:04"), data.SunTimes.Sunset.Format("15:04"))
	}
	return b.String()
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (p *PageBuilder) ConvertMarkdownToHTML(markdownContent string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// BuildPage renders the full page with the chart snippet embedded.
func (p *PageBuilder) BuildPage(data *models.ChartData, snippet charts.ChartSnippet, threshold float64, loc *time.Location) (string, error) {
	if data == nil {
		return "", fmt.Errorf("chart data cannot be nil")
	}
	header, err := p.ConvertMarkdownToHTML(HeaderMarkdown(data, threshold, loc))
	if err != nil {
		return "", err
	}
	return p.execute(pageData{
		Title:  pageTitle,
		Header: header,
		Chart:  template.HTML(snippet.HTML),
	}, data.Now)
}

// BuildUnavailablePage renders the page shown when no chart can be produced.
func (p *PageBuilder) BuildUnavailablePage(now time.Time, loc *time.Location) (string, error) {
	if loc != nil {
		now = now.In(loc)
	}
	header, err := p.ConvertMarkdownToHTML(fmt.Sprintf("## %s\n\n**%s**\n", pageTitle, charts.FormatStartTime(now)))
	if err != nil {
		return "", err
	}
	return p.execute(pageData{
		Title:       pageTitle,
		Header:      header,
		Unavailable: true,
		Notice:      UnavailableNotice,
	}, now)
}

func (p *PageBuilder) execute(data pageData, now time.Time) (string, error) {
	data.Version = p.version
	data.GeneratedAt = now.Format("2006-01-02 15:04 MST")

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "|", `\|`, "#", `\#`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
