package shop

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/validation"
)

// Grade is a membership level.
type Grade string

const (
	GradeBasic Grade = "BASIC"
	GradeVIP   Grade = "VIP"
)

// ErrCodeMemberNotFound is returned when no member has the requested id.
const ErrCodeMemberNotFound errors.ErrorCode = "MEMBER_NOT_FOUND"

// ErrMemberNotFound matches not-found errors with errors.Is.
var ErrMemberNotFound = errors.New(ErrCodeMemberNotFound, "member not found")

// Member is a registered customer.
type Member struct {
	ID    int64  `mapstructure:"id" validate:"gte=1"`
	Name  string `mapstructure:"name" validate:"required"`
	Grade Grade  `mapstructure:"grade" validate:"oneof=BASIC VIP"`
}

// Validate checks the member fields.
func (m Member) Validate() error {
	return validation.ValidateStruct(m)
}

// MemberRepository stores members.
type MemberRepository interface {
	Save(ctx context.Context, m Member) error
	FindByID(ctx context.Context, id int64) (Member, error)
}

// MemoryMemberRepository keeps members in a map. It is safe for concurrent use.
type MemoryMemberRepository struct {
	mu      sync.RWMutex
	members map[int64]Member
}

// NewMemoryMemberRepository creates an empty repository.
func NewMemoryMemberRepository() *MemoryMemberRepository {
	return &MemoryMemberRepository{members: make(map[int64]Member)}
}

// Save stores m, replacing any member with the same id.
func (r *MemoryMemberRepository) Save(_ context.Context, m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m.ID] = m
	return nil
}

// FindByID returns the member with id.
func (r *MemoryMemberRepository) FindByID(_ context.Context, id int64) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return Member{}, errors.New(ErrCodeMemberNotFound, fmt.Sprintf("member %d not found", id)).
			WithDetail("member_id", id)
	}
	return m, nil
}

// Len returns the number of stored members.
func (r *MemoryMemberRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
