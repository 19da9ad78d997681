package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"fable/internal/model/story"
)

const (
	defaultGenre     = "general"
	defaultTone      = "general"
	defaultAudience  = "general"
	defaultNumScenes = 4
	defaultStyle     = "realistic"
)

// ErrorResponse 错误响应（所有story接口共用）
// 校验失败和后端失败都用同一个信封
type ErrorResponse struct {
	Error string `json:"error"`
}

// StoryResponse 故事生成响应
type StoryResponse struct {
	StoryID string        `json:"storyId"`
	Scenes  []story.Scene `json:"scenes"`
}

// ImageResponse 插图生成响应
type ImageResponse struct {
	ImageURL    string `json:"imageUrl"`
	ImagePrompt string `json:"imagePrompt"`
}

// respondBadRequest 返回校验错误，透传校验消息
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// respondInternalError 记录并返回后端错误
// 没有可用消息时退化为通用文案
func respondInternalError(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Msg("generation request failed")

	message := "generation failed"
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}
