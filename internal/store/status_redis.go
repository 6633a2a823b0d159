package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Document processing states.
const (
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// Status is the processing record of one document.
type Status struct {
	Status   string                 `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Filename string                 `json:"filename,omitempty"`
	Service  string                 `json:"service,omitempty"`
	Score    int                    `json:"complexity_score"`
	Start    *time.Time             `json:"start_time,omitempty"`
	End      *time.Time             `json:"end_time,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RedisStatus keeps one hash per document under document:<id>:status.
type RedisStatus struct {
	client *redis.Client
	keyNS  string
	ttl    time.Duration
}

func NewRedisStatus(client *redis.Client, ttl time.Duration) *RedisStatus {
	return &RedisStatus{client: client, keyNS: "document", ttl: ttl}
}

func (s *RedisStatus) key(documentID string) string {
	return fmt.Sprintf("%s:%s:status", s.keyNS, documentID)
}

// Set writes st and refreshes the record's expiry.
func (s *RedisStatus) Set(ctx context.Context, documentID string, st Status) error {
	key := s.key(documentID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, toHash(st))
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStatus) Get(ctx context.Context, documentID string) (Status, bool, error) {
	res, err := s.client.HGetAll(ctx, s.key(documentID)).Result()
	if err != nil {
		return Status{}, false, err
	}
	if len(res) == 0 {
		return Status{}, false, nil
	}
	return fromHash(res), true, nil
}

func toHash(st Status) map[string]interface{} {
	m := map[string]interface{}{
		"status":  st.Status,
		"message": st.Message,
		"score":   st.Score,
	}
	if st.Filename != "" {
		m["filename"] = st.Filename
	}
	if st.Service != "" {
		m["service"] = st.Service
	}
	if st.Start != nil {
		m["start"] = st.Start.Format(time.RFC3339Nano)
	}
	if st.End != nil {
		m["end"] = st.End.Format(time.RFC3339Nano)
	}
	if st.Metadata != nil {
		b, _ := json.Marshal(st.Metadata)
		m["metadata"] = string(b)
	}
	return m
}

func fromHash(res map[string]string) Status {
	st := Status{
		Status:   res["status"],
		Message:  res["message"],
		Filename: res["filename"],
		Service:  res["service"],
	}
	// ignore parse error; default 0
	st.Score, _ = strconv.Atoi(res["score"])
	if v := res["start"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.Start = &t
		}
	}
	if v := res["end"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.End = &t
		}
	}
	if v := res["metadata"]; v != "" {
		_ = json.Unmarshal([]byte(v), &st.Metadata)
	}
	return st
}
