package story

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"fable/internal/model/story"
	"fable/internal/pkg/cache"
	"fable/internal/pkg/storytools"
	storyrepo "fable/internal/repository/story"
)

// GenerateParams 一次生成的输入参数（已通过校验）
type GenerateParams struct {
	Idea      string
	Genre     string
	Tone      string
	Audience  string
	NumScenes int
	Style     string
}

// StoryResult 带持久化的生成结果
type StoryResult struct {
	StoryID string        `json:"storyId"`
	Scenes  []story.Scene `json:"scenes"`
}

// StoryDetail 已持久化故事的读取结果
type StoryDetail struct {
	Story  *story.Story  `json:"story"`
	Scenes []story.Scene `json:"scenes"`
}

// StoryService 故事服务接口
// 编排场景切分、插图生成和持久化
type StoryService interface {
	// GenerateStory 切分场景并持久化（不生成插图）
	GenerateStory(ctx context.Context, p GenerateParams) (*StoryResult, error)

	// GenerateImage 为单个场景文本生成插图（不持久化）
	GenerateImage(ctx context.Context, sceneText, style string) (*storytools.Illustration, error)

	// GenerateAll 切分场景、逐个生成插图并持久化
	GenerateAll(ctx context.Context, p GenerateParams) (*StoryResult, error)

	// GetStory 读取已持久化的故事及其场景列表
	GetStory(ctx context.Context, storyID string) (*StoryDetail, error)
}

// storyService 故事服务实现
type storyService struct {
	storyRepo   storyrepo.StoryRepository
	splitter    storytools.Splitter
	illustrator storytools.Illustrator
	cache       *cache.RedisCache // 可选，nil 时不缓存
}

// NewStoryService 创建故事服务
// storyRepo 和 cache 可为 nil：storyRepo 为 nil 时持久化操作不可用，
// cache 为 nil 时单图生成不走缓存
func NewStoryService(
	storyRepo storyrepo.StoryRepository,
	splitter storytools.Splitter,
	illustrator storytools.Illustrator,
	redisCache *cache.RedisCache,
) StoryService {
	return &storyService{
		storyRepo:   storyRepo,
		splitter:    splitter,
		illustrator: illustrator,
		cache:       redisCache,
	}
}

// GenerateStory 切分场景并持久化
// 写入顺序：先建故事记录，再写场景列表；两次写入之间没有事务，
// 中途失败会留下没有场景列表的故事记录，这是允许的状态，不做补偿
func (s *storyService) GenerateStory(ctx context.Context, p GenerateParams) (*StoryResult, error) {
	scenes, err := s.splitter.Split(ctx, splitParams(p))
	if err != nil {
		return nil, fmt.Errorf("split into scenes: %w", err)
	}

	record, err := s.createRecord(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := s.storyRepo.ReplaceScenes(ctx, record.ID, scenes); err != nil {
		return nil, fmt.Errorf("write scene list: %w", err)
	}

	log.Info().
		Str("story_id", record.ID).
		Int("scenes", len(scenes)).
		Msg("story generated")

	return &StoryResult{StoryID: record.ID, Scenes: scenes}, nil
}

// GenerateImage 为单个场景文本生成插图，无持久化
// 配置了 Redis 时按提示词缓存生成结果
func (s *storyService) GenerateImage(ctx context.Context, sceneText, style string) (*storytools.Illustration, error) {
	prompt := storytools.BuildImagePrompt(sceneText, style)

	if s.cache != nil {
		var cached storytools.Illustration
		if err := s.cache.Get(ctx, cache.IllustrationCacheKey(prompt), &cached); err == nil {
			log.Debug().Msg("illustration cache hit")
			return &cached, nil
		}
	}

	illustration, err := s.illustrator.Illustrate(ctx, sceneText, style)
	if err != nil {
		return nil, fmt.Errorf("illustrate scene: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.IllustrationCacheKey(prompt), illustration, cache.IllustrationCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache illustration")
		}
	}

	return illustration, nil
}

// GenerateAll 切分场景、逐个生成插图并持久化
// 插图严格按 index 升序逐个生成，不做并发扇出；
// 全部插图完成后整体写入一次场景列表
func (s *storyService) GenerateAll(ctx context.Context, p GenerateParams) (*StoryResult, error) {
	scenes, err := s.splitter.Split(ctx, splitParams(p))
	if err != nil {
		return nil, fmt.Errorf("split into scenes: %w", err)
	}

	record, err := s.createRecord(ctx, p)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scenes, func(i, j int) bool { return scenes[i].Index < scenes[j].Index })

	for i := range scenes {
		illustration, err := s.illustrator.Illustrate(ctx, scenes[i].Text, p.Style)
		if err != nil {
			return nil, fmt.Errorf("illustrate scene %d: %w", scenes[i].Index, err)
		}
		scenes[i].ImageURL = illustration.ImageURL
		scenes[i].ImagePrompt = illustration.ImagePrompt
	}

	if err := s.storyRepo.ReplaceScenes(ctx, record.ID, scenes); err != nil {
		return nil, fmt.Errorf("write scene list: %w", err)
	}

	log.Info().
		Str("story_id", record.ID).
		Int("scenes", len(scenes)).
		Msg("illustrated story generated")

	return &StoryResult{StoryID: record.ID, Scenes: scenes}, nil
}

// GetStory 读取已持久化的故事及其场景列表
func (s *storyService) GetStory(ctx context.Context, storyID string) (*StoryDetail, error) {
	record, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("find story: %w", err)
	}

	scenes, err := s.storyRepo.FindScenes(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("find scenes: %w", err)
	}

	return &StoryDetail{Story: record, Scenes: scenes}, nil
}

// createRecord 创建故事记录，存储端分配 id 并回写
func (s *storyService) createRecord(ctx context.Context, p GenerateParams) (*story.Story, error) {
	record := &story.Story{
		Idea:      p.Idea,
		Genre:     p.Genre,
		Tone:      p.Tone,
		Audience:  p.Audience,
		NumScenes: p.NumScenes,
	}
	if err := s.storyRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	return record, nil
}

func splitParams(p GenerateParams) storytools.SplitParams {
	return storytools.SplitParams{
		Idea:      p.Idea,
		Genre:     p.Genre,
		Tone:      p.Tone,
		Audience:  p.Audience,
		NumScenes: p.NumScenes,
	}
}
