package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"messenger-service/internal/observability"
)

// Record is one captured message. Text arrives as plaintext: the monitor sits
// before encryption on purpose.
type Record struct {
	Sender     string `json:"sender"`
	SenderID   int64  `json:"sender_id"`
	ChatID     int64  `json:"chat_id"`
	Text       string `json:"text"`
	Encrypted  bool   `json:"encrypted"`
	Timestamp  int64  `json:"timestamp"`
	ReceivedAt string `json:"received_at"`
}

// Stats summarizes the log contents.
type Stats struct {
	TotalMessages int      `json:"total_messages"`
	Users         []string `json:"users"`
	Chats         []int64  `json:"chats"`
	Encrypted     int      `json:"encrypted"`
	LastUpdate    string   `json:"last_update"`
}

// Store holds the capped message log. All access is serialized behind one
// mutex: the persisted file is rewritten wholesale on every append, so there
// must be exactly one writer.
type Store struct {
	mu       sync.Mutex
	path     string
	capacity int
	records  []Record
}

// NewStore creates a store persisting to path, keeping at most capacity
// records. An existing file is loaded; a corrupt one starts empty.
func NewStore(path string, capacity int) (*Store, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be positive")
	}

	s := &Store{path: path, capacity: capacity}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read log file: %w", err)
		}
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		s.records = nil
	}
	if len(s.records) > capacity {
		s.records = s.records[len(s.records)-capacity:]
	}
	observability.SetMonitorRecords(len(s.records))
	return s, nil
}

// Append stamps the record, appends it, trims to capacity and persists.
// Returns the resulting record count.
func (s *Store) Append(rec Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rec.Timestamp = now.UnixMilli()
	rec.ReceivedAt = now.UTC().Format(time.RFC3339)

	// Memory and file must not diverge: a failed save rolls the append back.
	prev := s.records
	s.records = append(s.records, rec)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}

	if err := s.save(); err != nil {
		s.records = prev
		return 0, err
	}
	observability.SetMonitorRecords(len(s.records))
	return len(s.records), nil
}

// Filter returns matching records, newest first. Empty filters match all.
func (s *Store) Filter(sender string, chatID int64, search string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	search = strings.ToLower(search)
	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if sender != "" && rec.Sender != sender {
			continue
		}
		if chatID != 0 && rec.ChatID != chatID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Text), search) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Snapshot returns a copy of the log, oldest first.
func (s *Store) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Stats computes log totals and distinct senders/chats.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	userSet := map[string]struct{}{}
	chatSet := map[int64]struct{}{}
	encrypted := 0
	for _, rec := range s.records {
		userSet[rec.Sender] = struct{}{}
		chatSet[rec.ChatID] = struct{}{}
		if rec.Encrypted {
			encrypted++
		}
	}

	users := make([]string, 0, len(userSet))
	for u := range userSet {
		users = append(users, u)
	}
	sort.Strings(users)

	chats := make([]int64, 0, len(chatSet))
	for c := range chatSet {
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i] < chats[j] })

	return Stats{
		TotalMessages: len(s.records),
		Users:         users,
		Chats:         chats,
		Encrypted:     encrypted,
		LastUpdate:    time.Now().UTC().Format(time.RFC3339),
	}
}

// Clear wipes the log and persists the empty state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	if err := s.save(); err != nil {
		return err
	}
	observability.SetMonitorRecords(0)
	return nil
}

// Count returns the current record count.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	if s.records == nil {
		data = []byte("[]")
	}
	return os.WriteFile(s.path, data, 0o644)
}
