package usecase

import (
	"context"
	"sort"
	"testing"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (r *fakeSpecializationRepo) FindAll(context.Context) ([]entity.Specialization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Specialization, 0, len(r.s.specializations))
	for _, spec := range r.s.specializations {
		out = append(out, *spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func TestListSpecializations(t *testing.T) {
	f := newClinicFixture(t)
	uc := NewSpecializationUsecase(quietLogger(), fakeTransactor{}, &fakeSpecializationRepo{s: f.store}, f.audit, service.NewAccessGate())

	list, err := uc.List(asUser(f.patient))
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, "Cardiology", list[0].Name)

	_, err = uc.List(asUser(f.cashier))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.List(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
