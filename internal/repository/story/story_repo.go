package story

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fable/internal/model/story"
)

// StoryRepository 故事仓库接口（供 service 层依赖）
type StoryRepository interface {
	// Create 创建故事记录
	// 存储端分配 ID 并回写到 record.ID，created_at 由服务端时钟分配
	Create(ctx context.Context, record *story.Story) error

	// ReplaceScenes 整体覆盖写入故事的场景列表文档
	ReplaceScenes(ctx context.Context, storyID string, scenes []story.Scene) error

	// FindByID 根据回写的 ID 查询故事记录
	FindByID(ctx context.Context, id string) (*story.Story, error)

	// FindScenes 查询故事的场景列表
	FindScenes(ctx context.Context, storyID string) ([]story.Scene, error)
}

// StoryRepo 故事仓库实现
type StoryRepo struct {
	stories    *mongo.Collection
	sceneLists *mongo.Collection
}

// NewStoryRepo 创建故事仓库
func NewStoryRepo(db *mongo.Database) *StoryRepo {
	var s story.Story
	var l story.SceneList
	return &StoryRepo{
		stories:    db.Collection(s.Collection()),
		sceneLists: db.Collection(l.Collection()),
	}
}

// Create 创建故事记录
// 先插入拿到存储端分配的 _id，再把其字符串形式回写到 id 字段，
// created_at 用 $currentDate 由存储端时钟分配
func (r *StoryRepo) Create(ctx context.Context, record *story.Story) error {
	res, err := r.stories.InsertOne(ctx, record)
	if err != nil {
		return err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	record.OID = oid
	record.ID = oid.Hex()

	_, err = r.stories.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$set":         bson.M{"id": record.ID},
			"$currentDate": bson.M{"created_at": true},
		},
	)
	return err
}

// ReplaceScenes 整体覆盖写入场景列表文档
// 固定 key，upsert，一个故事只有一个场景列表
func (r *StoryRepo) ReplaceScenes(ctx context.Context, storyID string, scenes []story.Scene) error {
	doc := story.SceneList{
		StoryID: storyID,
		Key:     story.SceneListKey,
		Scenes:  scenes,
	}
	_, err := r.sceneLists.ReplaceOne(ctx,
		bson.M{"story_id": storyID, "key": story.SceneListKey},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

// FindByID 根据回写的 ID 查询故事记录
func (r *StoryRepo) FindByID(ctx context.Context, id string) (*story.Story, error) {
	var s story.Story
	if err := r.stories.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindScenes 查询故事的场景列表
// 场景列表文档尚未写入时返回空列表（孤儿故事记录是允许的状态）
func (r *StoryRepo) FindScenes(ctx context.Context, storyID string) ([]story.Scene, error) {
	var l story.SceneList
	err := r.sceneLists.FindOne(ctx, bson.M{"story_id": storyID, "key": story.SceneListKey}).Decode(&l)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return l.Scenes, nil
}
