package txmanager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// Serialization failure должен распознаваться на любой глубине цепочки
// оберток: голая ошибка драйвера, обертка коммита и обертки
// репозитория/use case поверх нее
func TestIsSerializationFailure(t *testing.T) {
	errExec := errors.New("repository: failed to execute query")
	errInternal := errors.New("usecase: internal error")

	serialization := &pq.Error{Code: "40001"}
	deadlock := &pq.Error{Code: "40P01"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"голая ошибка 40001", serialization, true},
		{"голая ошибка 40P01", deadlock, true},
		{"обертка коммита", fmt.Errorf("txmanager: commit transaction: %w", serialization), true},
		{
			"обертка репозитория",
			fmt.Errorf("%w: GetActiveByProviderAndDate - execute query: %w", errExec, serialization),
			true,
		},
		{
			"обертки репозитория и use case",
			fmt.Errorf("%w: failed to get bookings: %w", errInternal,
				fmt.Errorf("%w: GetByID - execute query: %w", errExec, deadlock)),
			true,
		},
		{"другой код SQLSTATE", &pq.Error{Code: "23505"}, false},
		{"обычная ошибка", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSerializationFailure(tt.err))
		})
	}
}
