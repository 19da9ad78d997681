package providers

import (
	"context"
	"errors"
	"fmt"

	"fable/internal/pkg/ark"
	"fable/internal/pkg/storytools"
)

// ArkImageProvider Ark 图片生成提供者
// 适配层，调用 ark.ImageClient（使用官方 Go SDK）
// 实现了 storytools.ImageProvider 接口
type ArkImageProvider struct {
	client *ark.ImageClient
}

// NewArkImageProvider 创建 Ark 图片生成提供者
func NewArkImageProvider(client *ark.ImageClient) *ArkImageProvider {
	return &ArkImageProvider{client: client}
}

// GenerateImage 生成图片，返回 base64 编码数据
// 响应中无图片数据时映射为 storytools.ErrNoImagePayload，
// 由 Illustrator 降级为占位图
func (p *ArkImageProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	b64, err := p.client.GenerateImage(ctx, prompt)
	if err != nil {
		if errors.Is(err, ark.ErrNoImageData) {
			return "", storytools.ErrNoImagePayload
		}
		return "", fmt.Errorf("Ark generate image: %w", err)
	}
	return b64, nil
}
