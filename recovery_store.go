package avfacepay

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const redirectRecordVersionV1 = 1

var (
	errRecoveryNotFound         = errors.New("redirect recovery record not found")
	errRecoveryRedisUnavailable = errors.New("redirect recovery redis unavailable")
)

// redirectRecoveryStore persists the pending-checkout record across the
// hosted-checkout round trip, so a redirect that lands in a fresh process
// can still resolve its payment.
type redirectRecoveryStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func newRedirectRecoveryStore(redisClient *redis.Client, cfg RecoveryConfig) *redirectRecoveryStore {
	return &redirectRecoveryStore{
		redis:  redisClient,
		prefix: cfg.RedisPrefix,
		ttl:    cfg.TTL,
	}
}

func (s *redirectRecoveryStore) key(userID string) string {
	return s.prefix + ":" + userID
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *redirectRecoveryStore) Save(ctx context.Context, userID string, record *PendingRedirect) error {
	encoded, err := encodePendingRedirect(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(userID), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRecoveryRedisUnavailable, err)
	}
	return nil
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *redirectRecoveryStore) Load(ctx context.Context, userID string) (*PendingRedirect, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errRecoveryNotFound
		}
		return nil, fmt.Errorf("%w: %v", errRecoveryRedisUnavailable, err)
	}
	return decodePendingRedirect(data)
}

// Clear describes the clear operation and its observable behavior.
func (s *redirectRecoveryStore) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRecoveryRedisUnavailable, err)
	}
	return nil
}

func encodePendingRedirect(record *PendingRedirect) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(redirectRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt.Unix()); err != nil {
		return nil, err
	}

	for _, field := range []string{
		record.PaymentID,
		record.CustomerID,
		record.Amount.Currency,
		record.Amount.Value,
		record.Purpose,
	} {
		if len(field) > 65535 {
			return nil, errors.New("redirect record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodePendingRedirect(data []byte) (*PendingRedirect, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != redirectRecordVersionV1 {
		return nil, errors.New("invalid redirect record version")
	}

	var createdAt int64
	if err := binary.Read(reader, binary.BigEndian, &createdAt); err != nil {
		return nil, err
	}

	fields := make([]string, 5)
	for i := range fields {
		var n uint16
		if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		fields[i] = string(raw)
	}

	return &PendingRedirect{
		PaymentID:  fields[0],
		CustomerID: fields[1],
		Amount:     Amount{Currency: fields[2], Value: fields[3]},
		Purpose:    fields[4],
		CreatedAt:  time.Unix(createdAt, 0),
	}, nil
}
