package repository

import (
	"testing"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewUserRepository(testDB)

	tests := []struct {
		name    string
		user    *model.User
		wantErr error
	}{
		{
			name: "Valid user",
			user: &model.User{
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Name:         "Test User",
				Phone:        "01012345678",
				Role:         model.RoleUser,
			},
		},
		{
			name: "Duplicate email",
			user: &model.User{
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Name:         "Another User",
				Role:         model.RoleUser,
			},
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}
}

func TestUserRepository_Find(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewUserRepository(testDB)
	user := createUser(t, testDB, "find@example.com")

	byID, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "find@example.com", byID.Email)

	byEmail, err := repo.FindByEmail("find@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
