package battleship

import (
	"sync"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-placement/internal/error"
)

type FieldManager interface {
	CreateField(gridSize int) (*Field, error)
	GetField(fieldUuid string) (*Field, error)
	TerminateField(fieldUuid string)
	CountFields() int

	isGridSizeValid(int) bool
}

// BattleshipFieldManager keeps the fields of every connected
// session. The map is shared between sessions and guarded; a single
// field is only ever driven by the session that created it.
type BattleshipFieldManager struct {
	fields map[string]*Field
	mu     sync.RWMutex
}

var _ FieldManager = (*BattleshipFieldManager)(nil)

func NewBattleshipFieldManager() *BattleshipFieldManager {
	return &BattleshipFieldManager{
		fields: make(map[string]*Field, 10),
	}
}

func (bfm *BattleshipFieldManager) CreateField(gridSize int) (*Field, error) {
	if !bfm.isGridSizeValid(gridSize) {
		return nil, cerr.ErrInvalidGridSize(gridSize, MinGridSize, MaxGridSize)
	}

	field := NewField(gridSize, gridSize)
	field.uuid = uuid.NewString()[:6]

	bfm.mu.Lock()
	bfm.fields[field.uuid] = field
	bfm.mu.Unlock()

	return field, nil
}

func (bfm *BattleshipFieldManager) GetField(fieldUuid string) (*Field, error) {
	bfm.mu.RLock()
	field, prs := bfm.fields[fieldUuid]
	bfm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrFieldNotExists(fieldUuid)
	}
	if field == nil {
		return nil, cerr.ErrFieldIsNil(fieldUuid)
	}

	return field, nil
}

func (bfm *BattleshipFieldManager) TerminateField(fieldUuid string) {
	bfm.mu.Lock()
	delete(bfm.fields, fieldUuid)
	bfm.mu.Unlock()
}

func (bfm *BattleshipFieldManager) CountFields() int {
	bfm.mu.RLock()
	defer bfm.mu.RUnlock()
	return len(bfm.fields)
}

func (bfm *BattleshipFieldManager) isGridSizeValid(gridSize int) bool {
	return gridSize >= MinGridSize && gridSize <= MaxGridSize
}
