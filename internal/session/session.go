package session

import (
	"sync"

	"github.com/google/uuid"

	"researcher-agent-go/internal/model"
)

// Session 用户会话：当前profile + 会话级API key
// 会话结束或新搜索时record被替换，无持久化
type Session struct {
	ID      string
	APIKey  string
	Current *model.ResearcherRecord
	// 本会话导入的CSV记录
	CSVRecords []model.ResearcherRecord
}

// Store 内存会话存储
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore 创建会话存储
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Create 创建新会话
func (s *Store) Create() *Session {
	sess := &Session{ID: uuid.NewString()}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get 按ID取会话，不存在返回nil
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// GetOrCreate ID有效则复用，否则新建
func (s *Store) GetOrCreate(id string) *Session {
	if id != "" {
		if sess := s.Get(id); sess != nil {
			return sess
		}
	}
	return s.Create()
}

// Delete 删除会话
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
