package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gobd/zodgen/transform"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pet", "Pet"},
		{"user_profile", "user_profile"},
		{"pet-store", "PetStore"},
		{"pet_store.v2", "PetStoreV2"},
		{"api.UserResponse", "ApiUserResponse"},
		{"3dModel", "_3dModel"},
		{"default", "Default"},
		{"---", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, transform.Identifier(tt.in))
		})
	}
}

func TestPropertyKey(t *testing.T) {
	assert.Equal(t, "id", transform.PropertyKey("id"))
	assert.Equal(t, "default", transform.PropertyKey("default"))
	assert.Equal(t, `"content-type"`, transform.PropertyKey("content-type"))
	assert.Equal(t, `"1st"`, transform.PropertyKey("1st"))
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "getPetsByPetId", transform.OperationName("GET", "/pets/{petId}"))
	assert.Equal(t, "postStoreOrder", transform.OperationName("POST", "/store/order"))
	assert.Equal(t, "delete", transform.OperationName("DELETE", "/"))
}

func TestNamer(t *testing.T) {
	n := transform.NewNamer("endpoints")
	assert.Equal(t, "PetStore", n.Name("pet-store"))
	assert.Equal(t, "PetStore2", n.Name("pet store"))
	assert.Equal(t, "PetStore", n.Name("pet-store"))
	assert.Equal(t, "endpoints2", n.Name("endpoints"))
}

func TestCamel(t *testing.T) {
	assert.Equal(t, "petStore", transform.Camel("Pet Store"))
	assert.Equal(t, "xRateLimit", transform.Camel("X-Rate-Limit"))
	assert.Equal(t, "_2fa", transform.Camel("2fa"))
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "pet-store", transform.SafeFileName("PetStore"))
}
