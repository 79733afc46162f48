package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStorage keeps objects in process. It backs the report archive when
// no bucket is configured and in tests.
type MemoryStorage struct {
	mu       sync.RWMutex
	objects  map[string]memoryObject
	maxBytes int64
	used     int64
}

// NewMemoryStorage returns an empty store. A positive maxBytes caps the total
// payload size; puts beyond it fail with ErrQuotaExceeded.
func NewMemoryStorage(maxBytes int64) *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject), maxBytes: maxBytes}
}

func (m *MemoryStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ObjectInfo, 0, len(m.objects))
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		result = append(result, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.modified,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *MemoryStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (m *MemoryStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + int64(len(data))
	if prev, ok := m.objects[key]; ok {
		used -= int64(len(prev.data))
	}
	if m.maxBytes > 0 && used > m.maxBytes {
		return ErrQuotaExceeded
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = memoryObject{data: buf, contentType: contentType, modified: time.Now()}
	m.used = used
	return nil
}

func (m *MemoryStorage) DeleteObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if obj, ok := m.objects[key]; ok {
		m.used -= int64(len(obj.data))
		delete(m.objects, key)
	}
	return nil
}
