package checkin

import (
	"hash/fnv"
	"sync"
)

const shardCount = 16

// recordMap is a key-partitioned concurrent map of participant key to
// attendance record. Fine-grained shard locks keep unrelated participants'
// upserts from serializing on a single mutex; Snapshot gives iteration-safe
// copies per shard.
type recordMap struct {
	shards [shardCount]recordShard
}

type recordShard struct {
	mu sync.RWMutex
	m  map[string]AttendanceRecord
}

func newRecordMap() *recordMap {
	rm := &recordMap{}
	for i := range rm.shards {
		rm.shards[i].m = make(map[string]AttendanceRecord)
	}
	return rm
}

func (rm *recordMap) shard(key string) *recordShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &rm.shards[h.Sum32()%shardCount]
}

// Set atomically upserts a single key.
func (rm *recordMap) Set(key string, rec AttendanceRecord) {
	s := rm.shard(key)
	s.mu.Lock()
	s.m[key] = rec
	s.mu.Unlock()
}

// Get returns the record for key.
func (rm *recordMap) Get(key string) (AttendanceRecord, bool) {
	s := rm.shard(key)
	s.mu.RLock()
	rec, ok := s.m[key]
	s.mu.RUnlock()
	return rec, ok
}

// Len counts records across all shards.
func (rm *recordMap) Len() int {
	n := 0
	for i := range rm.shards {
		rm.shards[i].mu.RLock()
		n += len(rm.shards[i].m)
		rm.shards[i].mu.RUnlock()
	}
	return n
}

// Snapshot copies every record. Shards are locked one at a time, so the
// result is a per-shard-consistent view, which is all reports need.
func (rm *recordMap) Snapshot() []AttendanceRecord {
	out := make([]AttendanceRecord, 0, rm.Len())
	for i := range rm.shards {
		rm.shards[i].mu.RLock()
		for _, rec := range rm.shards[i].m {
			out = append(out, rec)
		}
		rm.shards[i].mu.RUnlock()
	}
	return out
}
