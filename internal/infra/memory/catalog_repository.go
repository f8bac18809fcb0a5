package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quizboard-service/internal/catalog"
	"quizboard-service/internal/domain"
)

// BankLoader fetches the question bank from a backing store (text file,
// Postgres, etc).
type BankLoader interface {
	Load(ctx context.Context) ([]domain.Question, error)
}

// CatalogRepository caches the question bank with TTL so every game creation
// does not hit the backing store.
type CatalogRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	bank      *catalog.Catalog
	expiresAt time.Time
	rndMu     sync.Mutex
}

// NewCatalogRepository wraps loader with a TTL cache. A non-positive ttl
// means the bank is loaded once and never expires.
func NewCatalogRepository(loader BankLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Questions(ctx context.Context) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if r.bank != nil && (r.ttl <= 0 || r.expiresAt.After(now)) {
		bank := r.bank
		r.mu.RUnlock()
		return bank.Questions(), nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.bank != nil && (r.ttl <= 0 || r.expiresAt.After(now)) {
			bank := r.bank
			r.mu.RUnlock()
			return bank, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		bank := catalog.New(questions)

		r.mu.Lock()
		r.bank = bank
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*catalog.Catalog).Questions(), nil
}

func (r *CatalogRepository) QuestionByID(ctx context.Context, qid string) (domain.Question, error) {
	if _, err := r.Questions(ctx); err != nil {
		return domain.Question{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.bank.QuestionByID(qid)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (r *CatalogRepository) AnswerKey(ctx context.Context, qid string) (domain.AnswerKey, error) {
	q, err := r.QuestionByID(ctx, qid)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return domain.AnswerKey{Answer: q.Answer, Points: q.Points}, nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
