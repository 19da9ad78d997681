package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"fable/internal/model/story"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时的统一入口
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&story.Story{},
		&story.SceneList{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
