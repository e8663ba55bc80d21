package mongostore

import (
	"context"
	"errors"
	"time"

	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// PostStore
// ============================================================================

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	return insertOne(ctx, s.col(ColPosts), post)
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return findOne[model.Post](ctx, s.col(ColPosts), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListPostsByStatus(ctx context.Context, statuses ...model.PostStatus) ([]*model.Post, error) {
	filter := bson.D{}
	if len(statuses) > 0 {
		filter = bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: statuses}}}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Post](ctx, s.col(ColPosts), filter, opts)
}

func (s *Store) ListPostsByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Post](ctx, s.col(ColPosts), bson.D{{Key: "author_id", Value: authorID}}, opts)
}

// ListReportedPosts 至少有一条举报的帖子
func (s *Store) ListReportedPosts(ctx context.Context) ([]*model.Post, error) {
	filter := bson.D{{Key: "reports.0", Value: bson.D{{Key: "$exists", Value: true}}}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Post](ctx, s.col(ColPosts), filter, opts)
}

// UpdatePostFields 编辑内容字段，状态与互动数据不在此路径变更
func (s *Store) UpdatePostFields(ctx context.Context, id, title, description, category string, readingTime int) (*model.Post, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: title},
		{Key: "description", Value: description},
		{Key: "category", Value: category},
		{Key: "reading_time", Value: readingTime},
	}}}
	return findOneAndUpdate[model.Post](ctx, s.col(ColPosts), filter, update)
}

// SetPostStatus 状态机落库：写状态与对应的时间戳/操作者
func (s *Store) SetPostStatus(ctx context.Context, id string, status model.PostStatus, actor string, at time.Time) (*model.Post, error) {
	fields := bson.D{{Key: "status", Value: status}}
	switch status {
	case model.PostStatusApproved:
		fields = append(fields,
			bson.E{Key: "approved_at", Value: at},
			bson.E{Key: "approved_by", Value: actor})
	case model.PostStatusRejected:
		fields = append(fields,
			bson.E{Key: "rejected_at", Value: at},
			bson.E{Key: "rejected_by", Value: actor})
	}
	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$set", Value: fields}}
	return findOneAndUpdate[model.Post](ctx, s.col(ColPosts), filter, update)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColPosts), id)
}

// AddLike 原子 append-if-absent
//
// 过滤条件排除已包含该身份的文档，$push 与去重检查在同一次条件更新内完成，
// 两个并发点赞不可能都命中过滤条件，从而关闭读-查-写竞态窗口。
// 未命中时需区分"帖子不存在"与"已点赞"两种原因。
func (s *Store) AddLike(ctx context.Context, postID, identityKey string) (*model.Post, error) {
	filter := bson.D{
		{Key: "_id", Value: postID},
		{Key: "likes.identity_key", Value: bson.D{{Key: "$ne", Value: identityKey}}},
	}
	update := bson.D{{Key: "$push", Value: bson.D{
		{Key: "likes", Value: model.Like{IdentityKey: identityKey}},
	}}}

	post, err := findOneAndUpdate[model.Post](ctx, s.col(ColPosts), filter, update)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	// 未命中：帖子不存在 → ErrNotFound；帖子存在但身份已点赞 → ErrDuplicate
	if _, getErr := s.GetPost(ctx, postID); getErr != nil {
		return nil, getErr
	}
	return nil, storage.ErrDuplicate
}

func (s *Store) AddComment(ctx context.Context, postID string, comment model.Comment) error {
	return updateByID(ctx, s.col(ColPosts), postID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "comments", Value: comment}}},
	})
}

// AddReply 通过位置操作符追加到匹配评论的 replies 数组
func (s *Store) AddReply(ctx context.Context, postID, commentID string, reply model.Reply) error {
	filter := bson.D{
		{Key: "_id", Value: postID},
		{Key: "comments.id", Value: commentID},
	}
	update := bson.D{{Key: "$push", Value: bson.D{
		{Key: "comments.$.replies", Value: reply},
	}}}
	res, err := s.col(ColPosts).UpdateOne(ctx, filter, update)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AddReport(ctx context.Context, postID string, report model.Report) error {
	return updateByID(ctx, s.col(ColPosts), postID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "reports", Value: report}}},
	})
}

// IncrementViews 原子累加浏览计数并返回更新后的帖子
func (s *Store) IncrementViews(ctx context.Context, id string, delta float64) (*model.Post, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: delta}}}}
	return findOneAndUpdate[model.Post](ctx, s.col(ColPosts), filter, update)
}
