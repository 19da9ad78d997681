// Package ark 封装火山引擎 Ark 的文生图调用
package ark

import (
	"context"
	"errors"
	"fmt"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"fable/internal/config"
)

// ErrNoImageData 接口调用成功但响应中没有可用的图片数据
// 调用方应降级为占位图，而不是向上报错
var ErrNoImageData = errors.New("no image data in response")

// ImageClient Ark 图片生成客户端
type ImageClient struct {
	client *arkruntime.Client
	model  string
	size   string
}

// NewImageClient 创建 Ark 图片生成客户端
func NewImageClient(cfg *config.ImageConfig) (*ImageClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("image api_key is required")
	}

	var opts []arkruntime.ConfigOption
	if cfg.BaseURL != "" {
		opts = append(opts, arkruntime.WithBaseUrl(cfg.BaseURL))
	}

	arkClient := arkruntime.NewClientWithApiKey(cfg.APIKey, opts...)

	size := cfg.Size
	if size == "" {
		size = "1024x1024"
	}

	return &ImageClient{
		client: arkClient,
		model:  cfg.Model,
		size:   size,
	}, nil
}

// GenerateImage 生成一张图片，返回 base64 编码的图片数据
// 请求 b64_json 响应格式；响应中没有图片数据时返回 ErrNoImageData
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	responseFormat := "b64_json"
	watermark := false

	input := model.GenerateImagesRequest{
		Model:          c.model,
		Prompt:         prompt,
		Size:           &c.size,
		ResponseFormat: &responseFormat,
		Watermark:      &watermark,
	}

	output, err := c.client.GenerateImages(ctx, input)
	if err != nil {
		return "", fmt.Errorf("Ark GenerateImages API call failed: %w", err)
	}

	if len(output.Data) == 0 {
		return "", ErrNoImageData
	}

	firstImage := output.Data[0]
	if firstImage.B64Json == nil || *firstImage.B64Json == "" {
		return "", ErrNoImageData
	}

	return *firstImage.B64Json, nil
}
