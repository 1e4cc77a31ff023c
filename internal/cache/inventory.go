package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	QuestionKeyPrefix = "question:%d"
	TagListKey        = "tags:all"
	TagKeyPrefix      = "tag:%s"
)

const (
	UserTTL     = 5 * time.Minute
	QuestionTTL = 10 * time.Minute
	TagTTL      = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func QuestionKey(questionID uint) string {
	return fmt.Sprintf(QuestionKeyPrefix, questionID)
}

func TagKey(name string) string {
	return fmt.Sprintf(TagKeyPrefix, name)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateQuestion(ctx context.Context, questionID uint) {
	Invalidate(ctx, QuestionKey(questionID))
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagListKey)
}
