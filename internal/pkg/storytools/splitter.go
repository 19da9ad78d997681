package storytools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"fable/internal/model/story"
)

// SplitParams 场景切分参数
type SplitParams struct {
	Idea      string
	Genre     string
	Tone      string
	Audience  string
	NumScenes int
}

// Splitter 场景切分器接口
// 启动时根据配置选择实现：配置了文本后端用 LLMSplitter，否则用 MockSplitter
type Splitter interface {
	// Split 把故事创意切分为有序的场景序列
	Split(ctx context.Context, p SplitParams) ([]story.Scene, error)
}

// MockSplitter 确定性场景切分器
// 不依赖任何外部服务，生成 NumScenes 个模板场景，index 从 0 递增无空洞
type MockSplitter struct{}

// NewMockSplitter 创建确定性场景切分器
func NewMockSplitter() *MockSplitter {
	return &MockSplitter{}
}

// Split 生成确定性的场景序列
func (s *MockSplitter) Split(_ context.Context, p SplitParams) ([]story.Scene, error) {
	return DeterministicScenes(p.Idea, p.NumScenes), nil
}

// DeterministicScenes 生成确定性的场景序列
// LLMSplitter 解析失败时也用它兜底
func DeterministicScenes(idea string, numScenes int) []story.Scene {
	scenes := make([]story.Scene, numScenes)
	for i := range scenes {
		scenes[i] = story.Scene{
			Index: i,
			Text:  fmt.Sprintf("Scene %d: %s", i+1, idea),
		}
	}
	return scenes
}

// LLMSplitter 基于文本生成后端的场景切分器
// 后端输出不是合法 JSON 数组时静默回退到确定性结果；
// 调用本身的错误（网络/鉴权/限流）原样上抛，单次尝试不重试
type LLMSplitter struct {
	llm LLMProvider
}

// NewLLMSplitter 创建基于文本后端的场景切分器
func NewLLMSplitter(llm LLMProvider) *LLMSplitter {
	return &LLMSplitter{llm: llm}
}

// Split 调用文本后端把创意切分为场景
func (s *LLMSplitter) Split(ctx context.Context, p SplitParams) ([]story.Scene, error) {
	raw, err := s.llm.Generate(ctx, buildSplitInstruction(p), p.Idea)
	if err != nil {
		return nil, fmt.Errorf("generate scenes: %w", err)
	}

	scenes, ok := parseScenes(raw)
	if !ok {
		log.Warn().
			Int("num_scenes", p.NumScenes).
			Msg("text backend returned non-array content, using deterministic scenes")
		return DeterministicScenes(p.Idea, p.NumScenes), nil
	}
	return scenes, nil
}

// buildSplitInstruction 构建场景切分的系统指令
func buildSplitInstruction(p SplitParams) string {
	return fmt.Sprintf(
		"You are a story planner. Split the user's story idea into exactly %d scenes. "+
			"Genre: %s. Tone: %s. Audience: %s. "+
			"Respond with only a JSON array of objects of the form "+
			`{"index": <0-based integer>, "text": <scene description>}`+
			" and nothing else.",
		p.NumScenes, p.Genre, p.Tone, p.Audience,
	)
}

// parseScenes 把后端返回的文本解析为场景序列
// 返回 ok=false 表示内容不是 JSON 或不是数组，调用方应兜底
// 注意：对解析成功的数组不做数量/index 唯一性校验，
// 后端返回多了、少了或 index 重复都按原样透传，由调用方容忍
func parseScenes(raw string) ([]story.Scene, bool) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}

	scenes := make([]story.Scene, 0, len(arr))
	for pos, el := range arr {
		scene := story.Scene{
			Index: pos,
			Text:  fmt.Sprintf("Scene %d", pos+1),
		}
		if obj, isObj := el.(map[string]any); isObj {
			if idx, isNum := obj["index"].(float64); isNum {
				scene.Index = int(idx)
			}
			if t, has := obj["text"]; has && t != nil {
				if s, isStr := t.(string); isStr {
					scene.Text = s
				} else {
					scene.Text = fmt.Sprintf("%v", t)
				}
			}
		}
		scenes = append(scenes, scene)
	}
	return scenes, true
}
