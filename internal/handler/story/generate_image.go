package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateImageRequest 生成插图请求
type GenerateImageRequest struct {
	SceneText string `json:"sceneText" binding:"required,min=3"` // 场景文本（必填，至少3个字符）
	Style     string `json:"style"`                              // 视觉风格（默认 realistic）
}

// GenerateImage 为单个场景文本生成插图
// @Summary      生成插图
// @Description  为一个场景的文本生成插图和所用的提示词，不持久化。
// @Tags         故事生成
// @Accept       json
// @Produce      json
// @Param        request  body      GenerateImageRequest  true  "生成插图请求"
// @Success      200      {object}  ImageResponse  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/generate/image [post]
func (h *Handler) GenerateImage(c *gin.Context) {
	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	style := req.Style
	if style == "" {
		style = defaultStyle
	}

	illustration, err := h.storyService.GenerateImage(c.Request.Context(), req.SceneText, style)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, ImageResponse{
		ImageURL:    illustration.ImageURL,
		ImagePrompt: illustration.ImagePrompt,
	})
}
