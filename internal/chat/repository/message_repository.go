package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	messageCollection = "messages"
	counterCollection = "counters"
	messageCounterID  = "messages"
)

// MessageRepository durable one-to-one message store
type MessageRepository interface {
	// InsertMessage 寫入訊息並指定遞增的 seq
	InsertMessage(ctx context.Context, msg *domain.Message) error
	// FindByID returns nil, nil when the message does not exist
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// MarkRead 只更新尚未已讀的訊息, 回傳是否由本次呼叫更新
	MarkRead(ctx context.Context, messageID string, readAt time.Time) (bool, error)
	// FindBetween 兩人之間的訊息, 依 seq 升冪
	FindBetween(ctx context.Context, userID, counterpartID string, q domain.HistoryQuery) ([]domain.Message, error)
	// FindLatestPerCounterpart 每個對象最新的一則訊息
	FindLatestPerCounterpart(ctx context.Context, userID string) ([]domain.Message, error)
	EnsureIndexes(ctx context.Context) error
}

type messageRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll:     db.Collection(messageCollection),
		counters: db.Collection(counterCollection),
	}
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "seq", Value: -1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

func (r *messageRepository) nextSeq(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": messageCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next message seq: %w", err)
	}
	return counter.Seq, nil
}

func (r *messageRepository) InsertMessage(ctx context.Context, msg *domain.Message) error {
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}
	msg.Seq = seq

	_, err = r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID string, readAt time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": messageID, "is_read": false},
		bson.M{"$set": bson.M{
			"is_read":      true,
			"read_at":      readAt,
			"is_delivered": true,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func pairFilter(userID, counterpartID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": userID, "receiver_id": counterpartID},
		bson.M{"sender_id": counterpartID, "receiver_id": userID},
	}}
}

func (r *messageRepository) FindBetween(ctx context.Context, userID, counterpartID string, q domain.HistoryQuery) ([]domain.Message, error) {
	filter := pairFilter(userID, counterpartID)
	if q.Before > 0 {
		filter["seq"] = bson.M{"$lt": q.Before}
	}

	// 取最新一頁再反轉成升冪
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// latestPerCounterpartPipeline 與 userID 有關的訊息, 每個對象只留最新一則
func latestPerCounterpartPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		// 1. 與 userID 有關的訊息
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "sender_id", Value: userID}},
				bson.D{{Key: "receiver_id", Value: userID}},
			}},
		}}},
		// 2. 最新在前, 同時間以 seq 決定
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "created_at", Value: -1},
			{Key: "seq", Value: -1},
		}}},
		// 3. 依對象分組取第一則
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$sender_id", userID}}},
				"$receiver_id",
				"$sender_id",
			}}}},
			{Key: "last", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$last"}}}},
	}
}

func (r *messageRepository) FindLatestPerCounterpart(ctx context.Context, userID string) ([]domain.Message, error) {
	cur, err := r.coll.Aggregate(ctx, latestPerCounterpartPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}

	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}
	return messages, nil
}
