// Package redisstore keeps curriculum snapshots and attempt history in Redis.
//
// Keys, under a configurable prefix:
//
//	<prefix>snapshot:<session key>           latest snapshot JSON
//	<prefix>attempts:<user>:<topic>           attempt list, newest at the head
//	<prefix>session:<session key>:attempts    set of attempt lists the session wrote to
//	<prefix>sessions:<user>                   session keys scored by last save (unix ms)
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/logger"
)

// DefaultMaxAttempts caps each attempt list.
const DefaultMaxAttempts = 500

// Options configures the Redis connection and key layout.
type Options struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	MaxAttempts int
}

// Client owns the Redis connection shared by all learners' gateways.
type Client struct {
	rdb    *goredis.Client
	prefix string
	max    int64
	log    *logger.Logger
}

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, opts Options, log *logger.Logger) (*Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	capped := opts.MaxAttempts
	if capped <= 0 {
		capped = DefaultMaxAttempts
	}
	return &Client{
		rdb:    rdb,
		prefix: opts.Prefix,
		max:    int64(capped),
		log:    logger.OrNop(log).Named("redisstore"),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Sessions returns a gateway scoped to one learner.
func (c *Client) Sessions(userID string) *Gateway {
	return &Gateway{c: c, user: userID}
}

// Gateway is the Redis-backed session gateway for one learner.
type Gateway struct {
	c    *Client
	user string
}

func (g *Gateway) snapshotKey(key string) string {
	return g.c.prefix + "snapshot:" + key
}

func (g *Gateway) attemptsKey(topic string) string {
	return g.c.prefix + "attempts:" + g.user + ":" + topic
}

func (g *Gateway) indexKey() string {
	return g.c.prefix + "sessions:" + g.user
}

func (g *Gateway) sessionListsKey(key string) string {
	return g.c.prefix + "session:" + key + ":attempts"
}

// Load returns the saved snapshot for key, or nil if there is none.
func (g *Gateway) Load(ctx context.Context, key string) (*curriculum.Snapshot, error) {
	raw, err := g.c.rdb.Get(ctx, g.snapshotKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %q: %w", key, err)
	}
	var snap curriculum.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", key, err)
	}
	return &snap, nil
}

// Save overwrites the snapshot for key.
func (g *Gateway) Save(ctx context.Context, key string, snap curriculum.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = g.c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, g.snapshotKey(key), raw, 0)
		if strings.HasPrefix(key, g.user+"/") {
			p.ZAdd(ctx, g.indexKey(), goredis.Z{Score: float64(time.Now().UnixMilli()), Member: key})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set snapshot %q: %w", key, err)
	}
	return nil
}

// ListSessions returns the learner's saved sessions, most recently updated
// first. Index entries whose snapshot is gone are skipped.
func (g *Gateway) ListSessions(ctx context.Context) ([]curriculum.SessionInfo, error) {
	entries, err := g.c.rdb.ZRevRangeWithScores(ctx, g.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read session index: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	keys := make([]string, len(entries))
	snapKeys := make([]string, len(entries))
	for i, e := range entries {
		keys[i], _ = e.Member.(string)
		snapKeys[i] = g.snapshotKey(keys[i])
	}
	raws, err := g.c.rdb.MGet(ctx, snapKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}

	out := make([]curriculum.SessionInfo, 0, len(entries))
	for i, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var snap curriculum.Snapshot
		if err := json.Unmarshal([]byte(s), &snap); err != nil {
			g.c.log.Warn("skipping undecodable snapshot", "session_key", keys[i], "error", err)
			continue
		}
		out = append(out, curriculum.SessionInfo{
			Key:       keys[i],
			Topic:     snap.Topic,
			UpdatedAt: time.UnixMilli(int64(entries[i].Score)).UTC(),
		})
	}
	return out, nil
}

// AppendAttempt pushes rec onto the learner's list for its topic and trims
// the list to the configured cap.
func (g *Gateway) AppendAttempt(ctx context.Context, rec curriculum.AttemptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.Outcome != curriculum.OutcomePass && rec.Outcome != curriculum.OutcomeFail {
		return fmt.Errorf("invalid attempt outcome %q", rec.Outcome)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}

	list := g.attemptsKey(rec.Topic)
	_, err = g.c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.LPush(ctx, list, raw)
		p.LTrim(ctx, list, 0, g.c.max-1)
		if rec.SessionKey != "" {
			p.SAdd(ctx, g.sessionListsKey(rec.SessionKey), list)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// RecentAttempts returns up to limit attempts on topic, most recent first.
func (g *Gateway) RecentAttempts(ctx context.Context, topic string, limit int) ([]curriculum.AttemptRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	items, err := g.c.rdb.LRange(ctx, g.attemptsKey(topic), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}

	out := make([]curriculum.AttemptRecord, 0, len(items))
	for _, item := range items {
		var rec curriculum.AttemptRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			g.c.log.Warn("skipping undecodable attempt", "topic", topic, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteSession removes the snapshot for key and the attempt lists the
// session wrote to.
func (g *Gateway) DeleteSession(ctx context.Context, key string) (bool, error) {
	lists, err := g.c.rdb.SMembers(ctx, g.sessionListsKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("read session lists: %w", err)
	}
	keys := append([]string{g.snapshotKey(key), g.sessionListsKey(key)}, lists...)
	var del *goredis.IntCmd
	_, err = g.c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		del = p.Del(ctx, keys...)
		p.ZRem(ctx, g.indexKey(), key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete session %q: %w", key, err)
	}
	return del.Val() > 0, nil
}
