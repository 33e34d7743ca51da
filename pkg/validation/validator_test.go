package validation

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type registerReq struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Priority        string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

func TestToDetails_ValidationErrors(t *testing.T) {
	Init()
	req := registerReq{Email: "nope", Password: "abc", ConfirmPassword: "abd", Priority: "urgent"}
	err := binding.Validator.ValidateStruct(&req)

	d := ToDetails(err)
	assert.Equal(t, "is required", d["name"])
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be between 6 and 72 characters long", d["password"])
	assert.Equal(t, "must match password", d["confirmPassword"])
	assert.Equal(t, "must be one of: low, medium, high", d["priority"])
}

func TestToDetails_AcceptsSixCharPassword(t *testing.T) {
	Init()
	req := registerReq{Name: "A", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, binding.Validator.ValidateStruct(&req))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
