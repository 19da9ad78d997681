package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "fable/internal/service/story"
)

// GenerateStoryRequest 生成故事请求
type GenerateStoryRequest struct {
	Idea      string `json:"idea" binding:"required,min=3"`              // 故事创意（必填，至少3个字符）
	Genre     string `json:"genre"`                                      // 题材（默认 general）
	Tone      string `json:"tone"`                                       // 基调（默认 general）
	Audience  string `json:"audience"`                                   // 受众（默认 general）
	NumScenes *int   `json:"numScenes" binding:"omitempty,min=1,max=10"` // 场景数（1-10，默认 4）
}

// toParams 应用默认值并转换为服务层参数
func (r *GenerateStoryRequest) toParams() storysvc.GenerateParams {
	p := storysvc.GenerateParams{
		Idea:      r.Idea,
		Genre:     r.Genre,
		Tone:      r.Tone,
		Audience:  r.Audience,
		NumScenes: defaultNumScenes,
		Style:     defaultStyle,
	}
	if p.Genre == "" {
		p.Genre = defaultGenre
	}
	if p.Tone == "" {
		p.Tone = defaultTone
	}
	if p.Audience == "" {
		p.Audience = defaultAudience
	}
	if r.NumScenes != nil {
		p.NumScenes = *r.NumScenes
	}
	return p
}

// GenerateStory 把故事创意切分为场景并持久化
// @Summary      生成故事
// @Description  把故事创意切分为有序场景，持久化后返回故事ID和场景列表。不生成插图。
// @Tags         故事生成
// @Accept       json
// @Produce      json
// @Param        request  body      GenerateStoryRequest  true  "生成故事请求"
// @Success      200      {object}  StoryResponse  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/generate/story [post]
func (h *Handler) GenerateStory(c *gin.Context) {
	var req GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.storyService.GenerateStory(c.Request.Context(), req.toParams())
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, StoryResponse{
		StoryID: result.StoryID,
		Scenes:  result.Scenes,
	})
}
