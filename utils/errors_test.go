package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationError("config", errors.New("bad value"))
	test.That(t, err.Error(), test.ShouldEqual, `error validating "config": bad value`)

	err = NewConfigValidationFieldRequiredError("config", "reference_order")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "config": "reference_order" is required`)
}
