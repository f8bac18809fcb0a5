package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quizboard-service/internal/app"
	"quizboard-service/internal/domain"
)

// CatalogRepository caches answer keys in Redis hashes and delegates full
// content reads to an inner repository.
// Keys: HSET quizboard:answers {qid} {letter}
//
//	HSET quizboard:points  {qid} {points}
//
// Only the scoring hot path (AnswerKey) is served from the hashes; prompts
// and options always come from the inner repository.
type CatalogRepository struct {
	client *redis.Client
	inner  app.CatalogRepository
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, inner app.CatalogRepository, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Questions(ctx context.Context) ([]domain.Question, error) {
	return r.inner.Questions(ctx)
}

func (r *CatalogRepository) QuestionByID(ctx context.Context, qid string) (domain.Question, error) {
	return r.inner.QuestionByID(ctx, qid)
}

func (r *CatalogRepository) AnswerKey(ctx context.Context, qid string) (domain.AnswerKey, error) {
	if key, ok := r.cachedKey(ctx, qid); ok {
		return key, nil
	}

	_, err, _ := r.sf.Do("fill", func() (interface{}, error) {
		// Re-check in case another goroutine filled the hashes.
		if _, ok := r.cachedKey(ctx, qid); ok {
			return nil, nil
		}
		questions, err := r.inner.Questions(ctx)
		if err != nil {
			return nil, err
		}
		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, q := range questions {
			pipe.HSet(ctx, answersKey, q.ID, string(q.Answer))
			pipe.HSet(ctx, pointsKey, q.ID, q.Points)
		}
		if ttl > 0 {
			pipe.Expire(ctx, answersKey, ttl)
			pipe.Expire(ctx, pointsKey, ttl)
		}
		_, _ = pipe.Exec(ctx)
		return nil, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}

	if key, ok := r.cachedKey(ctx, qid); ok {
		return key, nil
	}
	// Hash fill is best-effort; fall back to the inner repository.
	return r.inner.AnswerKey(ctx, qid)
}

const (
	answersKey = "quizboard:answers"
	pointsKey  = "quizboard:points"
)

func (r *CatalogRepository) cachedKey(ctx context.Context, qid string) (domain.AnswerKey, bool) {
	answer, err := r.client.HGet(ctx, answersKey, qid).Result()
	if err != nil || !domain.ValidLetter(answer) {
		return domain.AnswerKey{}, false
	}
	points := 1
	if pStr, err := r.client.HGet(ctx, pointsKey, qid).Result(); err == nil {
		if p, err := strconv.Atoi(pStr); err == nil {
			points = p
		}
	}
	return domain.AnswerKey{Answer: domain.AnswerLetter(answer), Points: points}, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
