// Package placeholder 生成确定性的占位图片
// 未配置图片后端（或后端未返回可用数据）时，每个场景仍能拿到一张图片：
// 把场景文本嵌入固定尺寸的 SVG 模板，编码为 data URI 返回。
// 纯函数，无网络依赖，不会失败。
package placeholder

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// DataURIPrefix 占位图 data URI 前缀
	DataURIPrefix = "data:image/svg+xml;base64,"

	svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="1024" height="1024" viewBox="0 0 1024 1024">` +
		`<rect width="1024" height="1024" fill="#e2e8f0"/>` +
		`<text x="512" y="512" font-family="sans-serif" font-size="28" fill="#475569" text-anchor="middle">%s</text>` +
		`</svg>`
)

// Generate 根据文本生成占位图
// 转义 < 和 > 防止破坏 SVG 标记，其余字符原样嵌入
func Generate(text string) string {
	escaped := escapeMarkup(text)
	svg := fmt.Sprintf(svgTemplate, escaped)
	return DataURIPrefix + base64.StdEncoding.EncodeToString([]byte(svg))
}

func escapeMarkup(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
