package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetStory 读取已持久化的故事及其场景列表
// @Summary      查询故事
// @Description  根据故事ID返回持久化的故事记录和场景列表。
// @Tags         故事查询
// @Produce      json
// @Param        id   path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      404  {object}  ErrorResponse  "故事不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id} [get]
func (h *Handler) GetStory(c *gin.Context) {
	storyID := c.Param("id")

	detail, err := h.storyService.GetStory(c.Request.Context(), storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "story not found"})
			return
		}
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
