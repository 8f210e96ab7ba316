package game

import (
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/google/uuid"
)

// Store is the directory of live games, addressed by id and by room code.
type Store interface {
	Get(id uuid.UUID) (*Game, bool)
	GetByRoomCode(code string) (*Game, bool)
	Put(g *Game) error
	Remove(id uuid.UUID)
	List() []*Game
}

// MemoryStore keeps games in process memory. Room codes are matched case-insensitively.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*Game
	rooms *treemap.Map // room code -> *Game, ordered
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[uuid.UUID]*Game),
		rooms: treemap.NewWithStringComparator(),
	}
}

func normalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *MemoryStore) Get(id uuid.UUID) (*Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, exists := s.games[id]
	return g, exists
}

func (s *MemoryStore) GetByRoomCode(code string) (*Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, found := s.rooms.Get(normalizeRoomCode(code)); found {
		return v.(*Game), true
	}
	return nil, false
}

// Put adds or replaces g. It fails with ErrRoomCodeTaken if another game holds the room code.
func (s *MemoryStore) Put(g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := normalizeRoomCode(g.RoomCode)
	if v, found := s.rooms.Get(code); found && v.(*Game).ID != g.ID {
		return ErrRoomCodeTaken
	}
	if old, exists := s.games[g.ID]; exists {
		s.rooms.Remove(normalizeRoomCode(old.RoomCode))
	}
	s.games[g.ID] = g
	s.rooms.Put(code, g)
	return nil
}

func (s *MemoryStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, exists := s.games[id]; exists {
		s.rooms.Remove(normalizeRoomCode(g.RoomCode))
		delete(s.games, id)
	}
}

// List returns every game ordered by room code.
func (s *MemoryStore) List() []*Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Game, 0, s.rooms.Size())
	it := s.rooms.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Game))
	}
	return out
}
