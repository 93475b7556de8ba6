package validation

import (
	"errors"
	"testing"

	"bakereserve-storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,password"`
}

type pickup struct {
	Date string `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	Time string `json:"pickupTime" validate:"required,pickupslot"`
}

func TestStructReportsFirstFieldByJSONName(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "longenough1!"})
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, "must be a valid email", verr.Message)
}

func TestPasswordRule(t *testing.T) {
	for _, weak := range []string{"password1", "!!!!!!!!", "12345678!", "password!", "pass word1~"} {
		err := Struct(signup{Email: "a@b.co", Password: weak})
		require.Error(t, err, weak)
		assert.Equal(t, "password: must contain letters, numbers and one of !@#$%^&*", err.Error(), weak)
	}

	err := Struct(signup{Email: "a@b.co", Password: "ab1!"})
	require.Error(t, err)
	assert.Equal(t, "password: must be at least 7", err.Error())

	assert.NoError(t, Struct(signup{Email: "a@b.co", Password: "pass#wo1"}))
}

func TestPickupRules(t *testing.T) {
	assert.NoError(t, Struct(pickup{Date: "2026-10-20", Time: "08:00-10:00"}))

	err := Struct(pickup{Date: "20/10/2026", Time: "08:00-10:00"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "pickupDate")

	err = Struct(pickup{Date: "2026-10-20", Time: "midnight"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pickupTime")
}
