package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scene 故事中的一个有序单元
// Index 决定展示顺序；文本后端可能返回重复或越界的 index，这里不做校正
type Scene struct {
	Index       int    `bson:"index" json:"index"`                                 // 0 起始的场景序号
	Text        string `bson:"text" json:"text"`                                   // 场景文本
	ImageURL    string `bson:"image_url,omitempty" json:"imageUrl,omitempty"`      // 插图（data URI 或外部 URL）
	ImagePrompt string `bson:"image_prompt,omitempty" json:"imagePrompt,omitempty"` // 生成插图所用的提示词
}

// Story 故事记录（主表）
// 一次成功的场景切分生成一条记录；ID 由存储端分配后回写，
// CreatedAt 由存储端时钟分配，之后不再变更
type Story struct {
	OID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	ID string `bson:"id,omitempty" json:"id"` // 存储端分配的ID（回写字段，冗余便于查询）

	// 生成参数（原样落库）
	Idea      string `bson:"idea" json:"idea"`
	Genre     string `bson:"genre" json:"genre"`
	Tone      string `bson:"tone" json:"tone"`
	Audience  string `bson:"audience" json:"audience"`
	NumScenes int    `bson:"num_scenes" json:"numScenes"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"createdAt"`
}

// Collection 返回集合名称
func (s *Story) Collection() string { return "stories" }

// EnsureIndexes 创建和维护索引
func (s *Story) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// SceneListKey 场景列表文档的固定 key
// 每个故事在子集合中只有一个场景列表文档
const SceneListKey = "list"

// SceneList 场景列表文档（故事的子文档）
// 场景生成完成后写入一次，整体覆盖，从不按字段合并
type SceneList struct {
	StoryID string  `bson:"story_id" json:"storyId"`
	Key     string  `bson:"key" json:"-"`
	Scenes  []Scene `bson:"scenes" json:"scenes"`
}

// Collection 返回集合名称
func (l *SceneList) Collection() string { return "scene_lists" }

// EnsureIndexes 创建和维护索引
func (l *SceneList) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(l.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "story_id", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_story_key_unique"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
