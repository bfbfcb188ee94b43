package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tableName accepts plain, schema-qualified and BigQuery project.dataset.table
// references.
var tableName = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+){0,2}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return tableName.MatchString(fl.Field().String())
	})

	// Report YAML key names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and driver-specific requirements.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	switch c.Store.Driver {
	case "bigquery":
		if c.Store.BigQuery.ProjectID == "" {
			return fmt.Errorf("store.bigquery.project_id is required for driver bigquery")
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for driver sqlite")
		}
	}
	return nil
}

// fieldError renders a validation failure with its dotted YAML path.
func fieldError(fe validator.FieldError) error {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", ns)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %v", ns, fe.Param(), fe.Value())
	case "sqlident":
		return fmt.Errorf("%s is not a valid table reference: %q", ns, fe.Value())
	case "ltefield":
		return fmt.Errorf("%s (%v) cannot exceed %s", ns, fe.Value(), fe.Param())
	default:
		return fmt.Errorf("%s failed %s=%s, got %v", ns, fe.Tag(), fe.Param(), fe.Value())
	}
}
