package story

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"

	"fable/internal/model/story"
	"fable/internal/pkg/placeholder"
	"fable/internal/pkg/storytools"
	storysvc "fable/internal/service/story"
)

// fakeRepo 内存仓库（用于接口层单测）
type fakeRepo struct {
	createCalls  int
	replaceCalls int
	stories      map[string]*story.Story
	sceneLists   map[string][]story.Scene
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stories:    make(map[string]*story.Story),
		sceneLists: make(map[string][]story.Scene),
	}
}

func (f *fakeRepo) Create(_ context.Context, record *story.Story) error {
	f.createCalls++
	record.ID = fmt.Sprintf("story-%d", f.createCalls)
	clone := *record
	f.stories[record.ID] = &clone
	return nil
}

func (f *fakeRepo) ReplaceScenes(_ context.Context, storyID string, scenes []story.Scene) error {
	f.replaceCalls++
	f.sceneLists[storyID] = scenes
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*story.Story, error) {
	s, ok := f.stories[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return s, nil
}

func (f *fakeRepo) FindScenes(_ context.Context, storyID string) ([]story.Scene, error) {
	return f.sceneLists[storyID], nil
}

func newTestRouter(repo *fakeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := storysvc.NewStoryService(repo, storytools.NewMockSplitter(), storytools.NewPlaceholderIllustrator(), nil)
	hdl := NewHandler(svc)

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	v1.POST("/generate/story", hdl.GenerateStory)
	v1.POST("/generate/image", hdl.GenerateImage)
	v1.POST("/generate/all", hdl.GenerateAll)
	v1.GET("/stories/:id", hdl.GetStory)
	return engine
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGenerateStory(t *testing.T) {
	Convey("POST /api/v1/generate/story", t, func() {
		repo := newFakeRepo()
		engine := newTestRouter(repo)

		Convey("合法请求返回 storyId 和精确数量的场景", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/story",
				`{"idea":"A lighthouse keeper finds a message in a bottle","numScenes":3}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp StoryResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.StoryID, ShouldNotBeEmpty)
			So(len(resp.Scenes), ShouldEqual, 3)
			for i, scene := range resp.Scenes {
				So(scene.Index, ShouldEqual, i)
				So(scene.Text, ShouldContainSubstring, "lighthouse keeper")
			}
			So(repo.createCalls, ShouldEqual, 1)
			So(repo.replaceCalls, ShouldEqual, 1)
		})

		Convey("numScenes 缺省时生成 4 个场景", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/story",
				`{"idea":"An owl opens a night school"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp StoryResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(len(resp.Scenes), ShouldEqual, 4)
		})

		Convey("过短的 idea 返回 400 且不产生写入", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/story", `{"idea":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			var resp ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Error, ShouldNotBeEmpty)
			So(repo.createCalls, ShouldEqual, 0)
			So(repo.replaceCalls, ShouldEqual, 0)
		})

		Convey("缺少 idea 返回 400", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/story", `{"genre":"fantasy"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("numScenes 超出范围返回 400", func() {
			for _, body := range []string{
				`{"idea":"A valid idea","numScenes":0}`,
				`{"idea":"A valid idea","numScenes":11}`,
			} {
				w := doJSON(engine, http.MethodPost, "/api/v1/generate/story", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
			So(repo.createCalls, ShouldEqual, 0)
		})

		Convey("非法 JSON 返回 400", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/story", `{"idea":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGenerateImage(t *testing.T) {
	Convey("POST /api/v1/generate/image", t, func() {
		repo := newFakeRepo()
		engine := newTestRouter(repo)

		Convey("返回插图和固定模板的提示词，不持久化", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/image",
				`{"sceneText":"A storm rises over the sea","style":"watercolor"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp ImageResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.ImageURL, ShouldStartWith, placeholder.DataURIPrefix)
			So(resp.ImagePrompt, ShouldEqual, `An illustration for the scene: "A storm rises over the sea". Visual style: watercolor.`)
			So(repo.createCalls, ShouldEqual, 0)
			So(repo.replaceCalls, ShouldEqual, 0)
		})

		Convey("style 缺省时用 realistic", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/image",
				`{"sceneText":"A quiet meadow at dawn"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp ImageResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.ImagePrompt, ShouldContainSubstring, "Visual style: realistic.")
		})

		Convey("缺少 sceneText 返回 400", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/image", `{"style":"watercolor"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			var resp ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Error, ShouldNotBeEmpty)
		})
	})
}

func TestGenerateAll(t *testing.T) {
	Convey("POST /api/v1/generate/all", t, func() {
		repo := newFakeRepo()
		engine := newTestRouter(repo)

		Convey("每个场景都带插图，记录和场景列表各写一次", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/all",
				`{"idea":"A tiny robot plants a garden on the moon","numScenes":2}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp StoryResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(len(resp.Scenes), ShouldEqual, 2)
			for _, scene := range resp.Scenes {
				So(scene.ImageURL, ShouldStartWith, placeholder.DataURIPrefix)
				So(scene.ImagePrompt, ShouldContainSubstring, scene.Text)
			}
			So(repo.createCalls, ShouldEqual, 1)
			So(repo.replaceCalls, ShouldEqual, 1)
			So(len(repo.sceneLists[resp.StoryID]), ShouldEqual, 2)
		})

		Convey("style 透传到插图提示词", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/all",
				`{"idea":"A fox delivers letters between villages","numScenes":1,"style":"ink sketch"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp StoryResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Scenes[0].ImagePrompt, ShouldContainSubstring, "Visual style: ink sketch.")
		})

		Convey("校验失败返回 400 且不产生写入", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/generate/all", `{"idea":"ok"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(repo.createCalls, ShouldEqual, 0)
		})
	})
}

func TestGetStory(t *testing.T) {
	Convey("GET /api/v1/stories/:id", t, func() {
		repo := newFakeRepo()
		engine := newTestRouter(repo)

		Convey("返回已持久化的故事和场景列表", func() {
			created := doJSON(engine, http.MethodPost, "/api/v1/generate/story",
				`{"idea":"A whale sings to the stars","numScenes":2}`)
			So(created.Code, ShouldEqual, http.StatusOK)

			var generated StoryResponse
			So(json.Unmarshal(created.Body.Bytes(), &generated), ShouldBeNil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/stories/"+generated.StoryID, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)

			var detail storysvc.StoryDetail
			So(json.Unmarshal(w.Body.Bytes(), &detail), ShouldBeNil)
			So(detail.Story.Idea, ShouldEqual, "A whale sings to the stars")
			So(len(detail.Scenes), ShouldEqual, 2)
		})

		Convey("不存在的 id 返回 404", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/stories/missing", nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)

			var resp ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Error, ShouldEqual, "story not found")
		})
	})
}
