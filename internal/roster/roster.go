// Package roster loads the member and guest bootstrap files at startup and
// serves case-insensitive name lookups. Load failures leave an empty roster;
// the rest of the system tolerates zero members.
package roster

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"checkin/internal/checkin"
)

// GuestProfile is a pre-registered guest from a guest-event file.
type GuestProfile struct {
	Name       string `json:"name"`
	Profession string `json:"profession"`
	Referrer   string `json:"referrer"`
	Source     string `json:"-"`
}

// Store holds the loaded roster. Profiles never change after load; the lock
// only guards against a reload racing a reader.
type Store struct {
	mu      sync.RWMutex
	members map[string]checkin.RosterProfile
	guests  map[string]GuestProfile
	logger  *logrus.Logger
}

var (
	_ checkin.Roster         = (*Store)(nil)
	_ checkin.GuestDirectory = (*Store)(nil)
)

// New returns an empty store.
func New(logger *logrus.Logger) *Store {
	return &Store{
		members: make(map[string]checkin.RosterProfile),
		guests:  make(map[string]GuestProfile),
		logger:  logger,
	}
}

// LoadMembers reads the pipe-delimited members file:
// name|domain|type|membershipId|referrer with a header row.
func (s *Store) LoadMembers(path string) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Error("members file not loaded, roster is empty")
		return
	}
	defer f.Close()

	loaded := 0
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 3 {
			continue
		}
		p := checkin.RosterProfile{
			Name:   parts[0],
			Domain: parts[1],
			Type:   parts[2],
		}
		if len(parts) > 3 && strings.EqualFold(p.Type, "member") {
			p.MembershipID = parts[3]
		}
		if len(parts) > 4 && strings.EqualFold(p.Type, "guest") {
			p.Referrer = parts[4]
		}
		s.mu.Lock()
		s.members[strings.ToLower(p.Name)] = p
		s.mu.Unlock()
		loaded++
	}
	if err := scanner.Err(); err != nil {
		s.logger.WithError(err).WithField("path", path).Error("members file read failed")
	}
	s.logger.WithFields(logrus.Fields{"path": path, "members": loaded}).Info("roster loaded")
}

// LoadGuests reads comma-delimited guest-event files: Name,Profession,Referrer
// with a header row. Missing files are skipped.
func (s *Store) LoadGuests(paths []string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			s.logger.WithField("path", path).Warn("guest file not found, skipping")
			continue
		}
		loaded := 0
		scanner := bufio.NewScanner(f)
		first := true
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if first {
				first = false
				continue
			}
			if line == "" {
				continue
			}
			parts := strings.Split(line, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			if len(parts) < 2 || parts[0] == "" {
				continue
			}
			g := GuestProfile{Name: parts[0], Profession: parts[1], Source: path}
			if len(parts) > 2 {
				g.Referrer = parts[2]
			}
			s.mu.Lock()
			s.guests[strings.ToLower(g.Name)] = g
			s.mu.Unlock()
			loaded++
		}
		f.Close()
		s.logger.WithFields(logrus.Fields{"path": path, "guests": loaded}).Info("guest file loaded")
	}
}

// Lookup returns the profile for a case-insensitive name.
func (s *Store) Lookup(name string) (checkin.RosterProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.members[strings.ToLower(name)]
	return p, ok
}

// AllNames lists member names sorted ascending.
func (s *Store) AllNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.members))
	for _, p := range s.members {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// AllProfiles lists member profiles sorted by name.
func (s *Store) AllProfiles() []checkin.RosterProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]checkin.RosterProfile, 0, len(s.members))
	for _, p := range s.members {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GuestByName returns a pre-registered guest for a case-insensitive name.
func (s *Store) GuestByName(name string) (GuestProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guests[strings.ToLower(name)]
	return g, ok
}

// GuestProfile implements checkin.GuestDirectory over the guest files.
func (s *Store) GuestProfile(name string) (string, string, bool) {
	g, ok := s.GuestByName(name)
	return g.Profession, g.Referrer, ok
}

// AllGuests lists pre-registered guests sorted by name.
func (s *Store) AllGuests() []GuestProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GuestProfile, 0, len(s.guests))
	for _, g := range s.guests {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
