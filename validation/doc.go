// Package validation validates publisher configuration eagerly, before any
// backend handle is opened.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// CONFIGURATION_ERROR AppErrors naming the offending configuration keys.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    RequestURL string `mapstructure:"requestUrl" validate:"required,url"`
//	}
//	err := validation.Validate(cfg, "techdocs")
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("techdocs.publisher.awsS3.bucketName", cfg.BucketName)
//	err := v.Validate()
package validation
