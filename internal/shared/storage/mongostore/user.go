package mongostore

import (
	"context"
	"time"

	"skillshare/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "reputation", Value: -1}})
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

// IncrementReputation 原子累加声望，避免读-改-写竞态
func (s *Store) IncrementReputation(ctx context.Context, id string, delta int) error {
	return updateByID(ctx, s.col(ColUsers), id, bson.D{
		{Key: "$inc", Value: bson.D{{Key: "reputation", Value: delta}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
	})
}

// UpdateUserStats 写回聚合任务计算出的薪资与统计缓存
func (s *Store) UpdateUserStats(ctx context.Context, id string, salary float64, totalPosts, totalLikes, totalComments int) error {
	return updateByID(ctx, s.col(ColUsers), id, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "salary", Value: salary},
			{Key: "total_posts", Value: totalPosts},
			{Key: "total_likes", Value: totalLikes},
			{Key: "total_comments", Value: totalComments},
			{Key: "updated_at", Value: time.Now()},
		}},
	})
}
