package quizbank

import "sync"

// BankCache memoizes parsed banks by key with FIFO eviction.
// Banks are never mutated after parsing and their accessors return copies,
// so one cached bank serves every caller.
type BankCache struct {
	mu       sync.RWMutex
	banks    map[string]*QuizBank
	queue    []string // FIFO queue of keys, oldest first
	capacity int
}

// NewBankCache creates a cache holding at most capacity banks; capacity < 1 means 16
func NewBankCache(capacity int) *BankCache {
	if capacity < 1 {
		capacity = 16
	}
	return &BankCache{
		banks:    make(map[string]*QuizBank),
		queue:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Get returns the bank cached under key
func (bc *BankCache) Get(key string) (*QuizBank, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	bank, ok := bc.banks[key]
	return bank, ok
}

// Add caches bank under key, evicting the oldest entry when full
func (bc *BankCache) Add(key string, bank *QuizBank) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if _, ok := bc.banks[key]; ok {
		bc.banks[key] = bank
		return
	}
	for len(bc.queue) >= bc.capacity {
		oldest := bc.queue[0]
		bc.queue = bc.queue[1:]
		delete(bc.banks, oldest)
	}
	bc.banks[key] = bank
	bc.queue = append(bc.queue, key)
}

// GetOrLoad returns the cached bank or calls load and caches its result
func (bc *BankCache) GetOrLoad(key string, load func() (*QuizBank, error)) (*QuizBank, error) {
	if bank, ok := bc.Get(key); ok {
		return bank, nil
	}
	bank, err := load()
	if err != nil {
		return nil, err
	}
	bc.Add(key, bank)
	return bank, nil
}

// Remove drops key from the cache
func (bc *BankCache) Remove(key string) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	delete(bc.banks, key)
	for i, k := range bc.queue {
		if k == key {
			bc.queue = append(bc.queue[:i], bc.queue[i+1:]...)
			break
		}
	}
}

// Size returns the number of cached banks
func (bc *BankCache) Size() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.queue)
}
