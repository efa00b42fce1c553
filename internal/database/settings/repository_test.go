package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func ptr[T any](v T) *T { return &v }

func TestRepository_Get(t *testing.T) {
	repo := setupTestDB(t)

	value, ok, err := repo.Get(entities.ParamMaxReservationsPerSlot)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10", value)

	value, ok, err = repo.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestRepository_SetKeepsType(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Set(entities.ParamMaxReservationsPerDay, "3", entities.ParameterTypeString))
	params, err := repo.List()
	require.NoError(t, err)
	for _, p := range params {
		if p.Key == entities.ParamMaxReservationsPerDay {
			assert.Equal(t, "3", p.Value)
			assert.Equal(t, entities.ParameterTypeNumber, p.Type)
		}
	}

	require.NoError(t, repo.Set("welcome_banner", `{"en":"Hi"}`, entities.ParameterTypeJSON))
	value, ok, err := repo.Get("welcome_banner")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"en":"Hi"}`, value)
}

func TestRepository_Apply(t *testing.T) {
	repo := setupTestDB(t)

	keys, err := repo.Apply(Update{
		OpenSunday:             ptr(true),
		OpenMonday:             ptr(false),
		MaxReservationsPerSlot: ptr(2),
		CenterName:             ptr("Maison du Livre"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		entities.ParamOpenSunday, entities.ParamOpenMonday,
		entities.ParamMaxReservationsPerSlot, entities.ParamCenterName,
	}, keys)

	pub, err := repo.Public()
	require.NoError(t, err)
	assert.True(t, pub.OpeningDays["sunday"])
	assert.False(t, pub.OpeningDays["monday"])
	assert.True(t, pub.OpeningDays["tuesday"])
	require.NotNil(t, pub.MaxReservationsPerSlot)
	assert.Equal(t, 2, *pub.MaxReservationsPerSlot)
	require.NotNil(t, pub.MaxReservationsPerDay)
	assert.Equal(t, 50, *pub.MaxReservationsPerDay)
	assert.Equal(t, "Maison du Livre", pub.CenterName)
}

func TestRepository_DeleteLimit(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Delete(entities.ParamMaxReservationsPerDay))
	pub, err := repo.Public()
	require.NoError(t, err)
	assert.Nil(t, pub.MaxReservationsPerDay)
}

func TestTyped(t *testing.T) {
	tests := []struct {
		name  string
		param entities.SystemParameter
		want  interface{}
		err   bool
	}{
		{"boolean true", entities.SystemParameter{Type: entities.ParameterTypeBoolean, Value: "true"}, true, false},
		{"boolean one", entities.SystemParameter{Type: entities.ParameterTypeBoolean, Value: "1"}, true, false},
		{"boolean other", entities.SystemParameter{Type: entities.ParameterTypeBoolean, Value: "yes"}, false, false},
		{"number", entities.SystemParameter{Type: entities.ParameterTypeNumber, Value: "10"}, float64(10), false},
		{"empty number", entities.SystemParameter{Type: entities.ParameterTypeNumber, Value: ""}, nil, false},
		{"bad number", entities.SystemParameter{Type: entities.ParameterTypeNumber, Value: "ten"}, nil, true},
		{"json", entities.SystemParameter{Type: entities.ParameterTypeJSON, Value: `[1]`}, []interface{}{float64(1)}, false},
		{"string", entities.SystemParameter{Type: entities.ParameterTypeString, Value: "x"}, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Typed(tt.param)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
