// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator returns new validator.Validate instance with all custom validations registered.
func Validator() *validator.Validate {
	v := validator.New()
	RegisterAll(v)
	return v
}

// RegisterAll adds registers all custom validations with the provider validator.
func RegisterAll(v *validator.Validate) {
	mustRegisterValidation(v, "denyhost", IsDenyHost)
}

func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// IsDenyHost checks that the field is a valid denylist entry, see IsDenyHostName.
func IsDenyHost(fl validator.FieldLevel) bool {
	return IsDenyHostName(fl.Field().String())
}

// IsDenyHostName checks if name can be used as a denylist entry:
// - Not empty, at most 253 characters.
// - Labels are not empty and at most 63 characters.
// - No URL syntax characters or whitespace.
// A single trailing dot is allowed.
func IsDenyHostName(name string) bool {
	name = strings.TrimSuffix(name, ".")
	if name == "" || len(name) > 253 {
		return false
	}
	if strings.ContainsAny(name, "/:@?#[]% \t\r\n") {
		return false
	}
	for _, l := range strings.Split(name, ".") {
		if l == "" || len(l) > 63 {
			return false
		}
	}
	return true
}
