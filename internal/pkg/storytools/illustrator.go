package storytools

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"fable/internal/pkg/placeholder"
)

// Illustration 一次插图生成的结果
// ImagePrompt 无论走哪条图片路径都会返回，便于展示
type Illustration struct {
	ImageURL    string `json:"imageUrl"`
	ImagePrompt string `json:"imagePrompt"`
}

// Illustrator 场景插图器接口
// 启动时根据配置选择实现：配置了图片后端用 ImageIllustrator，否则用 PlaceholderIllustrator
type Illustrator interface {
	// Illustrate 为一个场景的文本生成插图
	Illustrate(ctx context.Context, sceneText, style string) (*Illustration, error)
}

// BuildImagePrompt 构建插图提示词（固定模板）
func BuildImagePrompt(sceneText, style string) string {
	return fmt.Sprintf("An illustration for the scene: \"%s\". Visual style: %s.", sceneText, style)
}

// PlaceholderIllustrator 占位图插图器
// 不依赖外部服务，所有场景返回确定性的 SVG 占位图
type PlaceholderIllustrator struct{}

// NewPlaceholderIllustrator 创建占位图插图器
func NewPlaceholderIllustrator() *PlaceholderIllustrator {
	return &PlaceholderIllustrator{}
}

// Illustrate 返回占位图和提示词
func (i *PlaceholderIllustrator) Illustrate(_ context.Context, sceneText, style string) (*Illustration, error) {
	return &Illustration{
		ImageURL:    placeholder.Generate(sceneText),
		ImagePrompt: BuildImagePrompt(sceneText, style),
	}, nil
}

// ImageIllustrator 基于图片生成后端的插图器
// 后端没有返回可用数据时静默降级为占位图；
// 调用本身的错误原样上抛，单次尝试不重试
type ImageIllustrator struct {
	provider ImageProvider
}

// NewImageIllustrator 创建基于图片后端的插图器
func NewImageIllustrator(provider ImageProvider) *ImageIllustrator {
	return &ImageIllustrator{provider: provider}
}

// Illustrate 调用图片后端生成插图
func (i *ImageIllustrator) Illustrate(ctx context.Context, sceneText, style string) (*Illustration, error) {
	prompt := BuildImagePrompt(sceneText, style)

	b64, err := i.provider.GenerateImage(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrNoImagePayload) {
			log.Warn().Msg("image backend returned no payload, using placeholder")
			return &Illustration{
				ImageURL:    placeholder.Generate(sceneText),
				ImagePrompt: prompt,
			}, nil
		}
		return nil, err
	}

	return &Illustration{
		ImageURL:    "data:image/png;base64," + b64,
		ImagePrompt: prompt,
	}, nil
}
