package storytools

import (
	"context"
	"errors"
)

// LLMProvider 定义了调用大模型的接口
// 具体的「如何调用大模型」由调用方通过实现此接口注入，方便单测和替换实现
type LLMProvider interface {
	// Generate 根据系统指令和用户内容生成文本
	//
	// Args:
	//   - ctx: 上下文
	//   - system: 系统指令
	//   - user: 用户内容
	//
	// Returns:
	//   - text: 生成的文本
	//   - err: 错误信息
	Generate(ctx context.Context, system, user string) (string, error)
}

// ErrNoImagePayload 图片后端调用成功但没有返回可用的图片数据
// Illustrator 收到此错误时降级为占位图，不向调用方暴露
var ErrNoImagePayload = errors.New("image backend returned no usable payload")

// ImageProvider 图片生成提供者接口（用于单测/替换实现）
type ImageProvider interface {
	// GenerateImage 根据提示词生成一张图片
	//
	// Args:
	//   - ctx: 上下文
	//   - prompt: 图片描述文本
	//
	// Returns:
	//   - b64: base64 编码的图片数据（PNG）
	//   - err: 响应中无可用数据时为 ErrNoImagePayload，调用失败时为对应错误
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
