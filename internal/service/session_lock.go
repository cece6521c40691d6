package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionLocker serializa turnos concorrentes na mesma sessão. O lock é
// melhor esforço: sem ele dois turnos podem intercalar as chamadas ao
// motor, mas os appends continuam serializados pelo store.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (release func(), err error)
}

type noopSessionLocker struct{}

// NewNoopSessionLocker devolve um locker que não trava nada, usado quando
// o Redis não está configurado.
func NewNoopSessionLocker() SessionLocker {
	return noopSessionLocker{}
}

func (noopSessionLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	return func() {}, nil
}

const redisUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisLockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisSessionLocker struct {
	client redisLockClient
	ttl    time.Duration
	prefix string
}

// NewRedisSessionLocker cria um mutex por sessão sobre Redis (SET NX com
// TTL). Cliente nulo degrada para o locker noop.
func NewRedisSessionLocker(client *redis.Client, ttl time.Duration) SessionLocker {
	if client == nil {
		return NewNoopSessionLocker()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisSessionLocker{
		client: client,
		ttl:    ttl,
		prefix: "triagem:lock:",
	}
}

func (l *redisSessionLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := l.prefix + sessionID
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			// Redis fora do ar não pode bloquear um turno do paciente.
			return func() {}, nil
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		l.client.Eval(rctx, redisUnlockScript, []string{key}, token)
	}, nil
}
