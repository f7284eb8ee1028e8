package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// usernamePattern is \w in its Unicode sense plus . @ + -
var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// reservedUsernames collide with fixed routes such as /api/users/me
var reservedUsernames = map[string]struct{}{
	"me": {},
}

// IsReservedUsername reports whether name is taken by a route, ignoring case
func IsReservedUsername(name string) bool {
	_, ok := reservedUsernames[strings.ToLower(name)]
	return ok
}

// IsValidUsername checks the character set and the reserved names
func IsValidUsername(name string) bool {
	return usernamePattern.MatchString(name) && !IsReservedUsername(name)
}

// IsValidSlug checks the tag slug character set
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// RegisterValidators adds the "username" and "slug" tags to gin's validator
// engine so request structs can use them in binding tags.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}

// Register adds the custom rules to an arbitrary validator instance. Field
// errors are reported under their json names.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsValidSlug(fl.Field().String())
	})
}
