package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateAllRequest 生成完整故事请求（切分+插图）
type GenerateAllRequest struct {
	Idea      string `json:"idea" binding:"required,min=3"`              // 故事创意（必填，至少3个字符）
	Genre     string `json:"genre"`                                      // 题材（默认 general）
	Tone      string `json:"tone"`                                       // 基调（默认 general）
	Audience  string `json:"audience"`                                   // 受众（默认 general）
	NumScenes *int   `json:"numScenes" binding:"omitempty,min=1,max=10"` // 场景数（1-10，默认 4）
	Style     string `json:"style"`                                      // 视觉风格（默认 realistic）
}

// GenerateAll 切分场景、逐个生成插图并持久化
// @Summary      生成完整故事
// @Description  把故事创意切分为场景，按 index 升序逐个生成插图，持久化后返回故事ID和带插图的场景列表。
// @Tags         故事生成
// @Accept       json
// @Produce      json
// @Param        request  body      GenerateAllRequest  true  "生成完整故事请求"
// @Success      200      {object}  StoryResponse  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/generate/all [post]
func (h *Handler) GenerateAll(c *gin.Context) {
	var req GenerateAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	inner := GenerateStoryRequest{
		Idea:      req.Idea,
		Genre:     req.Genre,
		Tone:      req.Tone,
		Audience:  req.Audience,
		NumScenes: req.NumScenes,
	}
	params := inner.toParams()
	if req.Style != "" {
		params.Style = req.Style
	}

	result, err := h.storyService.GenerateAll(c.Request.Context(), params)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, StoryResponse{
		StoryID: result.StoryID,
		Scenes:  result.Scenes,
	})
}
