// Package moderation keeps the moderator and ban sets the hub consults on
// every BanUser/UnbanUser/RequestUserCount/Message dispatch, persisted as
// newline-delimited UUID files. Bans append; unbans rewrite the whole
// file, following the original's moderation.rs.
package moderation

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
)

// Moderation holds the in-memory view; the hub is its sole caller, so no
// internal locking is needed.
type Moderation struct {
	moderators *set
	banned     *set
}

// Load reads both files, creating either if it does not yet exist.
func Load(moderatorsPath, bannedPath string) (*Moderation, error) {
	moderators, err := loadSet(moderatorsPath)
	if err != nil {
		return nil, fmt.Errorf("load moderators file %q: %w", moderatorsPath, err)
	}
	banned, err := loadSet(bannedPath)
	if err != nil {
		return nil, fmt.Errorf("load ban file %q: %w", bannedPath, err)
	}
	return &Moderation{moderators: moderators, banned: banned}, nil
}

// IsModerator reports whether user is a known moderator.
func (m *Moderation) IsModerator(user uuid.UUID) bool {
	return m.moderators.has(user)
}

// IsBanned reports whether user is currently banned.
func (m *Moderation) IsBanned(user uuid.UUID) bool {
	return m.banned.has(user)
}

// Ban adds user to the ban set, refusing moderators.
func (m *Moderation) Ban(user uuid.UUID) error {
	if m.moderators.has(user) {
		return clienterror.New(clienterror.NotPermitted)
	}
	return m.banned.add(user)
}

// Unban removes user from the ban set, or reports NotBanned.
func (m *Moderation) Unban(user uuid.UUID) error {
	if !m.banned.has(user) {
		return clienterror.New(clienterror.NotBanned)
	}
	return m.banned.remove(user)
}

type set struct {
	path    string
	members map[uuid.UUID]struct{}
}

func loadSet(path string) (*set, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	members := make(map[uuid.UUID]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		id, err := uuid.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("malformed uuid %q: %w", line, err)
		}
		members[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &set{path: path, members: members}, nil
}

func (s *set) has(id uuid.UUID) bool {
	_, ok := s.members[id]
	return ok
}

// add appends the id to disk before admitting it to memory; already-present
// ids are a no-op so the file never gains duplicate lines.
func (s *set) add(id uuid.UUID) error {
	if s.has(id) {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("append to %q: %w", s.path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, id.String()); err != nil {
		return fmt.Errorf("append to %q: %w", s.path, err)
	}
	s.members[id] = struct{}{}
	return nil
}

// remove rewrites the whole file without id.
func (s *set) remove(id uuid.UUID) error {
	delete(s.members, id)
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("rewrite %q: %w", s.path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for member := range s.members {
		if _, err := fmt.Fprintln(w, member.String()); err != nil {
			return fmt.Errorf("rewrite %q: %w", s.path, err)
		}
	}
	return w.Flush()
}
