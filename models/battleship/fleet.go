package battleship

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	cerr "github.com/saeidalz13/battleship-placement/internal/error"
)

type FleetEntry struct {
	Length int `yaml:"length" json:"length"`
	Count  int `yaml:"count" json:"count"`
}

// Fleet lists the ships a player has to place before being ready.
type Fleet struct {
	Name  string       `yaml:"name" json:"name"`
	Ships []FleetEntry `yaml:"ships" json:"ships"`
}

// One four-decker, two three-deckers, three two-deckers and
// four single-deckers on a 10x10 grid.
func ClassicFleet() Fleet {
	return Fleet{
		Name: "classic",
		Ships: []FleetEntry{
			{Length: 4, Count: 1},
			{Length: 3, Count: 2},
			{Length: 2, Count: 3},
			{Length: 1, Count: 4},
		},
	}
}

func LoadFleet(path string) (Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fleet{}, fmt.Errorf("failed to read fleet file %s: %w", path, err)
	}
	return ParseFleet(data)
}

func ParseFleet(data []byte) (Fleet, error) {
	var fleet Fleet
	if err := yaml.Unmarshal(data, &fleet); err != nil {
		return Fleet{}, fmt.Errorf("failed to parse fleet: %w", err)
	}
	if err := fleet.Validate(); err != nil {
		return Fleet{}, err
	}
	return fleet, nil
}

func (fl Fleet) Validate() error {
	if len(fl.Ships) == 0 {
		return cerr.ErrInvalidFleet("no ships")
	}

	seen := make(map[int]bool, len(fl.Ships))
	for _, entry := range fl.Ships {
		if entry.Length < 1 || entry.Count < 1 {
			return cerr.ErrInvalidFleet(fmt.Sprintf("length and count must be positive, got length %d count %d", entry.Length, entry.Count))
		}
		if seen[entry.Length] {
			return cerr.ErrInvalidFleet(fmt.Sprintf("length %d listed twice", entry.Length))
		}
		seen[entry.Length] = true
	}
	return nil
}

func (fl Fleet) TotalShips() int {
	total := 0
	for _, entry := range fl.Ships {
		total += entry.Count
	}
	return total
}

// Longest ship of the fleet.
func (fl Fleet) MaxLength() int {
	longest := 0
	for _, entry := range fl.Ships {
		longest = max(longest, entry.Length)
	}
	return longest
}

// Remaining returns, per ship length, how many ships still have to be
// placed. Only committed ships count; previews do not. A negative
// count means more ships of that length than the fleet allows.
func (fl Fleet) Remaining(f *Field) map[int]int {
	remaining := make(map[int]int, len(fl.Ships))
	for _, entry := range fl.Ships {
		remaining[entry.Length] = entry.Count
	}
	for _, ship := range f.Ships() {
		if ship.IsPhantom {
			continue
		}
		remaining[ship.Length()]--
	}
	return remaining
}

func (fl Fleet) RemainingTotal(f *Field) int {
	total := 0
	for _, count := range fl.Remaining(f) {
		total += max(count, 0)
	}
	return total
}

// Allows reports whether another ship of length fits in the fleet.
func (fl Fleet) Allows(f *Field, length int) bool {
	return fl.Remaining(f)[length] > 0
}

// Complete reports whether the committed ships match the fleet
// exactly.
func (fl Fleet) Complete(f *Field) bool {
	for _, count := range fl.Remaining(f) {
		if count != 0 {
			return false
		}
	}
	return true
}

// Lengths still to place, longest first, one entry per ship.
func (fl Fleet) MissingLengths(f *Field) []int {
	missing := make([]int, 0, fl.TotalShips())
	for length, count := range fl.Remaining(f) {
		for i := 0; i < count; i++ {
			missing = append(missing, length)
		}
	}
	slices.Sort(missing)
	slices.Reverse(missing)
	return missing
}
