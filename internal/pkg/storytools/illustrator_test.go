package storytools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fable/internal/pkg/placeholder"
)

// stubImage 固定返回内容的图片提供者（用于单测）
type stubImage struct {
	b64        string
	err        error
	lastPrompt string
}

func (s *stubImage) GenerateImage(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.b64, nil
}

func TestBuildImagePrompt(t *testing.T) {
	Convey("BuildImagePrompt 使用固定模板", t, func() {
		prompt := BuildImagePrompt("A storm rises over the sea", "watercolor")
		So(prompt, ShouldEqual, `An illustration for the scene: "A storm rises over the sea". Visual style: watercolor.`)
	})
}

func TestPlaceholderIllustrator_Illustrate(t *testing.T) {
	Convey("PlaceholderIllustrator.Illustrate 返回占位图", t, func() {
		illustrator := NewPlaceholderIllustrator()

		Convey("imageUrl 是 SVG data URI，imagePrompt 按模板构建", func() {
			result, err := illustrator.Illustrate(context.Background(), "A storm rises over the sea", "watercolor")
			So(err, ShouldBeNil)
			So(result.ImageURL, ShouldStartWith, placeholder.DataURIPrefix)
			So(result.ImagePrompt, ShouldEqual, `An illustration for the scene: "A storm rises over the sea". Visual style: watercolor.`)
		})

		Convey("相同场景文本产生相同占位图", func() {
			first, err := illustrator.Illustrate(context.Background(), "the same scene", "realistic")
			So(err, ShouldBeNil)
			second, err := illustrator.Illustrate(context.Background(), "the same scene", "realistic")
			So(err, ShouldBeNil)
			So(first.ImageURL, ShouldEqual, second.ImageURL)
		})
	})
}

func TestImageIllustrator_Illustrate(t *testing.T) {
	Convey("ImageIllustrator.Illustrate 调用图片后端", t, func() {
		Convey("成功时返回 PNG data URI，提示词透传给后端", func() {
			provider := &stubImage{b64: "aGVsbG8="}
			illustrator := NewImageIllustrator(provider)

			result, err := illustrator.Illustrate(context.Background(), "A storm rises over the sea", "watercolor")
			So(err, ShouldBeNil)
			So(result.ImageURL, ShouldEqual, "data:image/png;base64,aGVsbG8=")
			So(result.ImagePrompt, ShouldEqual, provider.lastPrompt)
			So(provider.lastPrompt, ShouldContainSubstring, "A storm rises over the sea")
			So(provider.lastPrompt, ShouldContainSubstring, "watercolor")
		})

		Convey("后端无图片数据时降级为占位图，不返回错误", func() {
			provider := &stubImage{err: ErrNoImagePayload}
			illustrator := NewImageIllustrator(provider)

			result, err := illustrator.Illustrate(context.Background(), "an empty reply", "realistic")
			So(err, ShouldBeNil)
			So(result.ImageURL, ShouldStartWith, placeholder.DataURIPrefix)
			So(result.ImagePrompt, ShouldEqual, BuildImagePrompt("an empty reply", "realistic"))
		})

		Convey("包装过的无数据错误同样降级", func() {
			provider := &stubImage{err: fmt.Errorf("ark call: %w", ErrNoImagePayload)}
			illustrator := NewImageIllustrator(provider)

			result, err := illustrator.Illustrate(context.Background(), "scene", "realistic")
			So(err, ShouldBeNil)
			So(result.ImageURL, ShouldStartWith, placeholder.DataURIPrefix)
		})

		Convey("其他后端错误原样上抛，不降级", func() {
			provider := &stubImage{err: errors.New("connection refused")}
			illustrator := NewImageIllustrator(provider)

			result, err := illustrator.Illustrate(context.Background(), "scene", "realistic")
			So(err, ShouldNotBeNil)
			So(result, ShouldBeNil)
			So(strings.Contains(err.Error(), "connection refused"), ShouldBeTrue)
		})
	})
}
