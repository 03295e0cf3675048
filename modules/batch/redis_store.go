package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tryon-canvas-server/modules/common/model"
)

// RedisStore - 메타는 JSON 문자열, task 는 해시 필드(index → JSON)로 저장
// task 단위 HSET 이라 워커끼리 서로의 갱신을 덮어쓰지 않는다.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore - prefix 예: "batch"
func NewRedisStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) metaKey(batchID string) string {
	return fmt.Sprintf("%s:%s:meta", s.prefix, batchID)
}

func (s *RedisStore) tasksKey(batchID string) string {
	return fmt.Sprintf("%s:%s:tasks", s.prefix, batchID)
}

// KEYS[1] meta, KEYS[2] tasks, ARGV[1] field, ARGV[2] task JSON
// meta 가 없으면 0, 있으면 HSET 후 tasks 의 만료를 meta 에 맞춘다.
var updateTaskScript = redis.NewScript(`
local ttl = redis.call('PTTL', KEYS[1])
if ttl == -2 then
  return 0
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[2], ttl)
end
return 1
`)

func (s *RedisStore) Save(ctx context.Context, job *model.BatchJob) error {
	meta := *job
	meta.Tasks = nil
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal batch meta: %w", err)
	}

	fields := make([]interface{}, 0, len(job.Tasks)*2)
	for _, t := range job.Tasks {
		taskJSON, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal task %d: %w", t.Index, err)
		}
		fields = append(fields, strconv.Itoa(t.Index), taskJSON)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.metaKey(job.BatchID), metaJSON, s.ttl)
		pipe.Del(ctx, s.tasksKey(job.BatchID))
		if len(fields) > 0 {
			pipe.HSet(ctx, s.tasksKey(job.BatchID), fields...)
			if s.ttl > 0 {
				pipe.Expire(ctx, s.tasksKey(job.BatchID), s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save batch %s: %w", job.BatchID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, batchID string) (*model.BatchJob, error) {
	metaJSON, err := s.rdb.Get(ctx, s.metaKey(batchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}

	var job model.BatchJob
	if err := json.Unmarshal(metaJSON, &job); err != nil {
		return nil, fmt.Errorf("failed to decode batch %s: %w", batchID, err)
	}

	raw, err := s.rdb.HGetAll(ctx, s.tasksKey(batchID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks of %s: %w", batchID, err)
	}

	job.Tasks = make([]model.BatchTask, 0, len(raw))
	for field, value := range raw {
		var t model.BatchTask
		if err := json.Unmarshal([]byte(value), &t); err != nil {
			return nil, fmt.Errorf("failed to decode task %s of %s: %w", field, batchID, err)
		}
		job.Tasks = append(job.Tasks, t)
	}
	sort.Slice(job.Tasks, func(i, j int) bool { return job.Tasks[i].Index < job.Tasks[j].Index })

	return &job, nil
}

func (s *RedisStore) UpdateTask(ctx context.Context, batchID string, task model.BatchTask) error {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task %d: %w", task.Index, err)
	}

	updated, err := updateTaskScript.Run(ctx, s.rdb,
		[]string{s.metaKey(batchID), s.tasksKey(batchID)},
		strconv.Itoa(task.Index), taskJSON).Int()
	if err != nil {
		return fmt.Errorf("failed to update task %d of %s: %w", task.Index, batchID, err)
	}
	if updated == 0 {
		return notFound(batchID)
	}
	return nil
}
